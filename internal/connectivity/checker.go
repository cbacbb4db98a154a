package connectivity

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/temirov/autopush/internal/execshell"
)

const (
	// DefaultProbeTimeout bounds every individual probe attempt.
	DefaultProbeTimeout = 10 * time.Second

	pingCountFlagConstant     = "-c"
	pingCountValueConstant    = "1"
	probeHTTPNameConstant     = "http"
	probePingNameConstant     = "ping"
	probeNslookupNameConstant = "nslookup"
	executorRequiredConstant  = "connectivity checker requires a shell executor"
)

// Default probe targets mirror well-known always-on endpoints.
var (
	DefaultProbeURLs     = []string{"https://www.google.com", "https://www.cloudflare.com", "https://github.com"}
	DefaultPingAddresses = []string{"8.8.8.8", "1.1.1.1"}
	DefaultLookupHosts   = []string{"google.com"}
)

// ErrExecutorNotConfigured reports a checker constructed without a shell executor.
var ErrExecutorNotConfigured = errors.New(executorRequiredConstant)

// ProbeExecutor exposes the shell probes used by the checker.
type ProbeExecutor interface {
	ExecutePing(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteNslookup(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// ProbeResult names the probe that confirmed connectivity.
type ProbeResult struct {
	Online    bool
	ProbeName string
	Target    string
}

// Checker confirms network reachability through layered HTTP, ping, and DNS probes.
type Checker struct {
	probeExecutor ProbeExecutor
	httpClient    *http.Client
	probeURLs     []string
	pingAddresses []string
	lookupHosts   []string
	probeTimeout  time.Duration
}

// NewChecker validates dependencies and constructs a Checker with default targets.
func NewChecker(probeExecutor ProbeExecutor) (*Checker, error) {
	if probeExecutor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Checker{
		probeExecutor: probeExecutor,
		httpClient:    &http.Client{Timeout: DefaultProbeTimeout},
		probeURLs:     DefaultProbeURLs,
		pingAddresses: DefaultPingAddresses,
		lookupHosts:   DefaultLookupHosts,
		probeTimeout:  DefaultProbeTimeout,
	}, nil
}

// SetHTTPClient replaces the HTTP client used for URL probes.
func (checker *Checker) SetHTTPClient(httpClient *http.Client) {
	if httpClient != nil {
		checker.httpClient = httpClient
	}
}

// SetTargets replaces the probe targets; empty slices keep the current targets.
func (checker *Checker) SetTargets(probeURLs []string, pingAddresses []string, lookupHosts []string) {
	if len(probeURLs) > 0 {
		checker.probeURLs = probeURLs
	}
	if len(pingAddresses) > 0 {
		checker.pingAddresses = pingAddresses
	}
	if len(lookupHosts) > 0 {
		checker.lookupHosts = lookupHosts
	}
}

// Check runs the probe layers in order and stops at the first confirmation.
// Any HTTP response below the server error range counts as reachable.
func (checker *Checker) Check(executionContext context.Context) ProbeResult {
	for _, probeURL := range checker.probeURLs {
		if checker.probeHTTP(executionContext, probeURL) {
			return ProbeResult{Online: true, ProbeName: probeHTTPNameConstant, Target: probeURL}
		}
	}

	for _, pingAddress := range checker.pingAddresses {
		if checker.probePing(executionContext, pingAddress) {
			return ProbeResult{Online: true, ProbeName: probePingNameConstant, Target: pingAddress}
		}
	}

	for _, lookupHost := range checker.lookupHosts {
		if checker.probeNslookup(executionContext, lookupHost) {
			return ProbeResult{Online: true, ProbeName: probeNslookupNameConstant, Target: lookupHost}
		}
	}

	return ProbeResult{}
}

func (checker *Checker) probeHTTP(executionContext context.Context, probeURL string) bool {
	probeContext, cancelProbe := context.WithTimeout(executionContext, checker.probeTimeout)
	defer cancelProbe()

	probeRequest, requestError := http.NewRequestWithContext(probeContext, http.MethodGet, probeURL, nil)
	if requestError != nil {
		return false
	}

	probeResponse, responseError := checker.httpClient.Do(probeRequest)
	if responseError != nil {
		return false
	}
	defer func() { _ = probeResponse.Body.Close() }()

	return probeResponse.StatusCode < http.StatusInternalServerError
}

func (checker *Checker) probePing(executionContext context.Context, pingAddress string) bool {
	probeContext, cancelProbe := context.WithTimeout(executionContext, checker.probeTimeout)
	defer cancelProbe()

	_, probeError := checker.probeExecutor.ExecutePing(probeContext, execshell.CommandDetails{
		Arguments: []string{pingCountFlagConstant, pingCountValueConstant, pingAddress},
	})
	return probeError == nil
}

func (checker *Checker) probeNslookup(executionContext context.Context, lookupHost string) bool {
	probeContext, cancelProbe := context.WithTimeout(executionContext, checker.probeTimeout)
	defer cancelProbe()

	_, probeError := checker.probeExecutor.ExecuteNslookup(probeContext, execshell.CommandDetails{
		Arguments: []string{lookupHost},
	})
	return probeError == nil
}
