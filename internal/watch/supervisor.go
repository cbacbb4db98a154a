package watch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/autopush/internal/autopush"
	"github.com/temirov/autopush/internal/connectivity"
	"github.com/temirov/autopush/internal/runlog"
)

const (
	loggerRequiredMessageConstant   = "watch supervisor requires a logger"
	runnerRequiredMessageConstant   = "watch supervisor requires a push runner"
	checkerRequiredMessageConstant  = "watch supervisor requires a connectivity checker"
	offlineJournalTemplateConstant  = "CHECK #%d - NO INTERNET\nPending operations: %t\nNext check in: %s"
	suspendJournalTemplateConstant  = "Maximum retries (%d) reached; suspending until the next scheduled check"
	shutdownJournalTemplateConstant = "WATCH STOPPED\nTotal checks performed: %d\nPending operations: %t"
	statusJournalTemplateConstant   = "STATUS REPORT - check #%d\nJournal lines: %d\nJournal size: %d bytes\n%s"
	logMessageCheckStartedConstant  = "Scheduled check started"
	logMessageOfflineConstant       = "Connectivity unavailable; deferring push"
	logMessageOnlineConstant        = "Connectivity confirmed"
	logMessageRunFailedConstant     = "Push attempt failed"
	logMessageSuspendedConstant     = "Failure budget exhausted; suspending"
	logMessageFileTriggerConstant   = "File change trigger received"
	logMessageShutdownConstant      = "Watch loop stopped"
	logFieldCheckNumberConstant     = "check_number"
	logFieldIntervalConstant        = "interval"
	logFieldProbeConstant           = "probe"
	logFieldProbeTargetConstant     = "probe_target"
	logFieldFailureCountConstant    = "failure_count"
	logFieldRetryLimitConstant      = "retry_limit"
	logFieldTotalChecksConstant     = "total_checks"
)

// Sentinel errors surfaced during supervisor construction.
var (
	ErrLoggerNotConfigured  = errors.New(loggerRequiredMessageConstant)
	ErrRunnerNotConfigured  = errors.New(runnerRequiredMessageConstant)
	ErrCheckerNotConfigured = errors.New(checkerRequiredMessageConstant)
)

// PushRunner executes a single push sequence and describes the repository.
type PushRunner interface {
	Run(executionContext context.Context, options autopush.RunOptions) (autopush.RunOutcome, error)
	DescribeRepository(executionContext context.Context, repositoryPath string) string
}

// ConnectivityChecker confirms network reachability before a push attempt.
type ConnectivityChecker interface {
	Check(executionContext context.Context) connectivity.ProbeResult
}

// JournalRecorder appends watch loop entries and reports journal health.
type JournalRecorder interface {
	Append(entryMessage string) error
	Status() (runlog.JournalStatus, error)
}

// SupervisorDependencies enumerates the collaborators required by the supervisor.
type SupervisorDependencies struct {
	Logger              *zap.Logger
	PushRunner          PushRunner
	ConnectivityChecker ConnectivityChecker
	Journal             JournalRecorder
	FileTriggers        <-chan struct{}
}

// Supervisor repeatedly runs the push sequence on an interval schedule.
type Supervisor struct {
	logger              *zap.Logger
	pushRunner          PushRunner
	connectivityChecker ConnectivityChecker
	journal             JournalRecorder
	fileTriggers        <-chan struct{}
	configuration       Configuration
}

// NewSupervisor validates dependencies and constructs a Supervisor.
func NewSupervisor(dependencies SupervisorDependencies, configuration Configuration) (*Supervisor, error) {
	if dependencies.Logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if dependencies.PushRunner == nil {
		return nil, ErrRunnerNotConfigured
	}
	if dependencies.ConnectivityChecker == nil {
		return nil, ErrCheckerNotConfigured
	}

	return &Supervisor{
		logger:              dependencies.Logger,
		pushRunner:          dependencies.PushRunner,
		connectivityChecker: dependencies.ConnectivityChecker,
		journal:             dependencies.Journal,
		fileTriggers:        dependencies.FileTriggers,
		configuration:       configuration.normalized(),
	}, nil
}

// Run executes the watch loop until the context is cancelled.
// The first checks use the short interval; later checks use the normal one.
// Consecutive push failures beyond the retry budget suspend attempts until
// the following scheduled check.
func (supervisor *Supervisor) Run(executionContext context.Context) error {
	checkNumber := 0
	consecutiveFailures := 0
	pendingOperations := false

	for {
		checkNumber++
		checkInterval := supervisor.intervalForCheck(checkNumber)

		supervisor.logger.Info(
			logMessageCheckStartedConstant,
			zap.Int(logFieldCheckNumberConstant, checkNumber),
			zap.Duration(logFieldIntervalConstant, checkInterval),
		)

		probeResult := supervisor.connectivityChecker.Check(executionContext)
		if probeResult.Online {
			supervisor.logger.Info(
				logMessageOnlineConstant,
				zap.String(logFieldProbeConstant, probeResult.ProbeName),
				zap.String(logFieldProbeTargetConstant, probeResult.Target),
			)

			_, runError := supervisor.pushRunner.Run(executionContext, autopush.RunOptions{
				RepositoryPath: supervisor.configuration.RepositoryPath,
				RemoteName:     supervisor.configuration.RemoteName,
				BranchName:     supervisor.configuration.BranchName,
			})
			if runError != nil {
				consecutiveFailures++
				supervisor.logger.Warn(
					logMessageRunFailedConstant,
					zap.Int(logFieldFailureCountConstant, consecutiveFailures),
					zap.Int(logFieldRetryLimitConstant, supervisor.configuration.MaximumRetries),
					zap.Error(runError),
				)
				if consecutiveFailures >= supervisor.configuration.MaximumRetries {
					supervisor.logger.Warn(logMessageSuspendedConstant)
					supervisor.journalAppend(fmt.Sprintf(suspendJournalTemplateConstant, supervisor.configuration.MaximumRetries))
					consecutiveFailures = 0
					pendingOperations = false
				} else {
					pendingOperations = true
				}
			} else {
				consecutiveFailures = 0
				pendingOperations = false
			}
		} else {
			supervisor.logger.Warn(logMessageOfflineConstant, zap.Int(logFieldCheckNumberConstant, checkNumber))
			pendingOperations = true
			supervisor.journalAppend(fmt.Sprintf(offlineJournalTemplateConstant, checkNumber, pendingOperations, checkInterval))
		}

		if checkNumber%statusReportCheckPeriodConstant == 0 {
			supervisor.journalStatusReport(executionContext, checkNumber)
		}

		if waitError := supervisor.waitForNextCheck(executionContext, checkInterval); waitError != nil {
			supervisor.logger.Info(
				logMessageShutdownConstant,
				zap.Int(logFieldTotalChecksConstant, checkNumber),
			)
			supervisor.journalAppend(fmt.Sprintf(shutdownJournalTemplateConstant, checkNumber, pendingOperations))
			return nil
		}
	}
}

func (supervisor *Supervisor) intervalForCheck(checkNumber int) time.Duration {
	if checkNumber <= supervisor.configuration.InitialChecks {
		return supervisor.configuration.InitialInterval
	}
	return supervisor.configuration.NormalInterval
}

func (supervisor *Supervisor) waitForNextCheck(executionContext context.Context, checkInterval time.Duration) error {
	intervalTimer := time.NewTimer(checkInterval)
	defer intervalTimer.Stop()

	select {
	case <-executionContext.Done():
		return executionContext.Err()
	case <-intervalTimer.C:
		return nil
	case <-supervisor.fileTriggers:
		supervisor.logger.Info(logMessageFileTriggerConstant)
		return nil
	}
}

func (supervisor *Supervisor) journalAppend(entryMessage string) {
	if supervisor.journal == nil {
		return
	}
	_ = supervisor.journal.Append(entryMessage)
}

func (supervisor *Supervisor) journalStatusReport(executionContext context.Context, checkNumber int) {
	if supervisor.journal == nil {
		return
	}
	journalStatus, statusError := supervisor.journal.Status()
	if statusError != nil {
		return
	}
	repositorySummary := supervisor.pushRunner.DescribeRepository(executionContext, supervisor.configuration.RepositoryPath)
	supervisor.journalAppend(fmt.Sprintf(
		statusJournalTemplateConstant,
		checkNumber,
		journalStatus.LineCount,
		journalStatus.SizeBytes,
		repositorySummary,
	))
}
