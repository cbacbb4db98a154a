package connectivity_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/temirov/autopush/internal/connectivity"
	"github.com/temirov/autopush/internal/execshell"
)

type stubProbeExecutor struct {
	pingTargets      []string
	lookupTargets    []string
	pingSucceeds     bool
	nslookupSucceeds bool
}

func (executor *stubProbeExecutor) ExecutePing(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.pingTargets = append(executor.pingTargets, details.Arguments[len(details.Arguments)-1])
	if executor.pingSucceeds {
		return execshell.ExecutionResult{}, nil
	}
	return execshell.ExecutionResult{}, execshell.CommandFailedError{
		Command: execshell.ShellCommand{Name: execshell.CommandPing, Details: details},
		Result:  execshell.ExecutionResult{ExitCode: 1},
	}
}

func (executor *stubProbeExecutor) ExecuteNslookup(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.lookupTargets = append(executor.lookupTargets, details.Arguments[0])
	if executor.nslookupSucceeds {
		return execshell.ExecutionResult{}, nil
	}
	return execshell.ExecutionResult{}, execshell.CommandFailedError{
		Command: execshell.ShellCommand{Name: execshell.CommandNslookup, Details: details},
		Result:  execshell.ExecutionResult{ExitCode: 1},
	}
}

func TestNewCheckerValidation(testInstance *testing.T) {
	_, creationError := connectivity.NewChecker(nil)
	require.ErrorIs(testInstance, creationError, connectivity.ErrExecutorNotConfigured)

	checker, successError := connectivity.NewChecker(&stubProbeExecutor{})
	require.NoError(testInstance, successError)
	require.NotNil(testInstance, checker)
}

func TestCheckerConfirmsViaHTTP(testInstance *testing.T) {
	probeServer := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, _ *http.Request) {
		responseWriter.WriteHeader(http.StatusNoContent)
	}))
	defer probeServer.Close()

	probeExecutor := &stubProbeExecutor{}
	checker, creationError := connectivity.NewChecker(probeExecutor)
	require.NoError(testInstance, creationError)
	checker.SetTargets([]string{probeServer.URL}, []string{"192.0.2.1"}, []string{"example.invalid"})

	probeResult := checker.Check(context.Background())
	require.True(testInstance, probeResult.Online)
	require.Equal(testInstance, "http", probeResult.ProbeName)
	require.Equal(testInstance, probeServer.URL, probeResult.Target)
	require.Empty(testInstance, probeExecutor.pingTargets)
}

func TestCheckerServerErrorsDoNotConfirm(testInstance *testing.T) {
	probeServer := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, _ *http.Request) {
		responseWriter.WriteHeader(http.StatusBadGateway)
	}))
	defer probeServer.Close()

	probeExecutor := &stubProbeExecutor{pingSucceeds: true}
	checker, creationError := connectivity.NewChecker(probeExecutor)
	require.NoError(testInstance, creationError)
	checker.SetTargets([]string{probeServer.URL}, []string{"8.8.8.8"}, []string{"google.com"})

	probeResult := checker.Check(context.Background())
	require.True(testInstance, probeResult.Online)
	require.Equal(testInstance, "ping", probeResult.ProbeName)
	require.Equal(testInstance, "8.8.8.8", probeResult.Target)
}

func TestCheckerFallsBackToNslookup(testInstance *testing.T) {
	probeExecutor := &stubProbeExecutor{nslookupSucceeds: true}
	checker, creationError := connectivity.NewChecker(probeExecutor)
	require.NoError(testInstance, creationError)
	checker.SetTargets([]string{"http://127.0.0.1:0"}, []string{"8.8.8.8", "1.1.1.1"}, []string{"google.com"})

	probeResult := checker.Check(context.Background())
	require.True(testInstance, probeResult.Online)
	require.Equal(testInstance, "nslookup", probeResult.ProbeName)
	require.Equal(testInstance, []string{"8.8.8.8", "1.1.1.1"}, probeExecutor.pingTargets)
	require.Equal(testInstance, []string{"google.com"}, probeExecutor.lookupTargets)
}

func TestCheckerReportsOfflineWhenEveryProbeFails(testInstance *testing.T) {
	probeExecutor := &stubProbeExecutor{}
	checker, creationError := connectivity.NewChecker(probeExecutor)
	require.NoError(testInstance, creationError)
	checker.SetTargets([]string{"http://127.0.0.1:0"}, []string{"192.0.2.1"}, []string{"example.invalid"})

	probeResult := checker.Check(context.Background())
	require.False(testInstance, probeResult.Online)
	require.Empty(testInstance, probeResult.ProbeName)
}
