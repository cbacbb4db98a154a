package cli

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/autopush/internal/autopush"
	"github.com/temirov/autopush/internal/connectivity"
	"github.com/temirov/autopush/internal/runlog"
	"github.com/temirov/autopush/internal/watch"
)

const (
	signalDeliveryTimeoutConstant   = 5 * time.Second
	shutdownJournalMarkerConstant   = "WATCH STOPPED"
	signalTestRepositoryConstant    = "/tmp/project"
	signalTestCheckIntervalConstant = 5 * time.Millisecond
)

type idlePushRunner struct{}

func (idlePushRunner) Run(context.Context, autopush.RunOptions) (autopush.RunOutcome, error) {
	return autopush.RunOutcome{}, nil
}

func (idlePushRunner) DescribeRepository(context.Context, string) string {
	return "Repository: " + signalTestRepositoryConstant
}

type onlineChecker struct{}

func (onlineChecker) Check(context.Context) connectivity.ProbeResult {
	return connectivity.ProbeResult{Online: true, ProbeName: "http", Target: "https://www.google.com"}
}

type capturingJournal struct {
	entries []string
}

func (journal *capturingJournal) Append(entryMessage string) error {
	journal.entries = append(journal.entries, entryMessage)
	return nil
}

func (journal *capturingJournal) Status() (runlog.JournalStatus, error) {
	return runlog.JournalStatus{Exists: true, LineCount: len(journal.entries)}, nil
}

func TestTerminationSignalCancelsRootCommandContext(testInstance *testing.T) {
	application := NewApplication()
	defer application.signalStopFunction()

	commandContext := application.rootCommand.Context()
	require.NoError(testInstance, commandContext.Err())

	require.NoError(testInstance, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))

	select {
	case <-commandContext.Done():
	case <-time.After(signalDeliveryTimeoutConstant):
		testInstance.Fatal("root command context was not cancelled by the termination signal")
	}
}

func TestTerminationSignalStopsWatchLoopWithShutdownEntry(testInstance *testing.T) {
	application := NewApplication()
	defer application.signalStopFunction()

	journal := &capturingJournal{}
	supervisor, creationError := watch.NewSupervisor(watch.SupervisorDependencies{
		Logger:              zap.NewNop(),
		PushRunner:          idlePushRunner{},
		ConnectivityChecker: onlineChecker{},
		Journal:             journal,
	}, watch.Configuration{
		RepositoryPath:  signalTestRepositoryConstant,
		RemoteName:      "origin",
		BranchName:      "main",
		InitialChecks:   1,
		InitialInterval: signalTestCheckIntervalConstant,
		NormalInterval:  signalTestCheckIntervalConstant,
		MaximumRetries:  3,
	})
	require.NoError(testInstance, creationError)

	runCompleted := make(chan error, 1)
	go func() {
		runCompleted <- supervisor.Run(application.rootCommand.Context())
	}()

	time.Sleep(signalTestCheckIntervalConstant)
	require.NoError(testInstance, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))

	select {
	case runError := <-runCompleted:
		require.NoError(testInstance, runError)
	case <-time.After(signalDeliveryTimeoutConstant):
		testInstance.Fatal("watch loop did not stop after the termination signal")
	}

	require.NotEmpty(testInstance, journal.entries)
	require.Contains(testInstance, journal.entries[len(journal.entries)-1], shutdownJournalMarkerConstant)
}
