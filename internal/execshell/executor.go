package execshell

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	loggerRequiredMessageConstant        = "shell executor requires a logger"
	commandRunnerRequiredMessageConstant = "shell executor requires a command runner"
	commandFailureTemplateConstant       = "%s exited with code %d%s"
	commandExecutionTemplateConstant     = "%s could not be executed: %s"
	commandPartsJoinSeparatorConstant    = " "
	standardErrorSuffixTemplateConstant  = ": %s"
	logFieldCommandNameConstant          = "command_name"
	logFieldCommandArgumentsConstant     = "command_arguments"
	logFieldWorkingDirectoryConstant     = "working_directory"
	logFieldExitCodeConstant             = "exit_code"
	logFieldStandardErrorConstant        = "standard_error"
)

// CommandName identifies an external executable invoked through the executor.
type CommandName string

// Supported external commands.
const (
	CommandGit      CommandName = CommandName("git")
	CommandPing     CommandName = CommandName("ping")
	CommandNslookup CommandName = CommandName("nslookup")
)

// CommandDetails captures the invocation parameters for a shell command.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
}

// ShellCommand couples an executable name with its invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult reports the captured output and exit code of a completed command.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner abstracts process execution for testability.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// Sentinel errors surfaced during executor construction.
var (
	ErrLoggerNotConfigured        = errors.New(loggerRequiredMessageConstant)
	ErrCommandRunnerNotConfigured = errors.New(commandRunnerRequiredMessageConstant)
)

// CommandFailedError reports a command that ran to completion with a non-zero exit code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the command failure including captured standard error output.
func (failure CommandFailedError) Error() string {
	standardErrorSuffix := ""
	trimmedStandardError := strings.TrimSpace(failure.Result.StandardError)
	if len(trimmedStandardError) > 0 {
		standardErrorSuffix = fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
	}
	return fmt.Sprintf(commandFailureTemplateConstant, describeCommand(failure.Command), failure.Result.ExitCode, standardErrorSuffix)
}

// CommandExecutionError reports a command that could not be started or did not produce a result.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the execution failure.
func (failure CommandExecutionError) Error() string {
	causeMessage := unknownFailureMessageConstant
	if failure.Cause != nil {
		causeMessage = failure.Cause.Error()
	}
	return fmt.Sprintf(commandExecutionTemplateConstant, describeCommand(failure.Command), causeMessage)
}

// Unwrap exposes the underlying cause for errors.Is and errors.As inspection.
func (failure CommandExecutionError) Unwrap() error {
	return failure.Cause
}

func describeCommand(command ShellCommand) string {
	commandParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		commandParts = append(commandParts, strings.Join(command.Details.Arguments, commandPartsJoinSeparatorConstant))
	}
	return strings.Join(commandParts, commandPartsJoinSeparatorConstant)
}

// ShellExecutor runs external commands through a CommandRunner with structured lifecycle logging.
type ShellExecutor struct {
	logger               *zap.Logger
	commandRunner        CommandRunner
	eventObserver        CommandEventObserver
	messageFormatter     CommandMessageFormatter
	humanReadableLogging bool
}

// NewShellExecutor validates dependencies and constructs a ShellExecutor.
// The optional trailing flag switches lifecycle logging to human-readable messages.
func NewShellExecutor(logger *zap.Logger, commandRunner CommandRunner, humanReadableLogging ...bool) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if commandRunner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}

	humanReadable := false
	if len(humanReadableLogging) > 0 {
		humanReadable = humanReadableLogging[0]
	}

	return &ShellExecutor{
		logger:               logger,
		commandRunner:        commandRunner,
		eventObserver:        noopCommandEventObserver{},
		messageFormatter:     CommandMessageFormatter{},
		humanReadableLogging: humanReadable,
	}, nil
}

// SetCommandEventObserver replaces the observer notified about command lifecycle events.
func (executor *ShellExecutor) SetCommandEventObserver(observer CommandEventObserver) {
	if executor == nil {
		return
	}
	if observer == nil {
		executor.eventObserver = noopCommandEventObserver{}
		return
	}
	executor.eventObserver = observer
}

// ExecuteGit runs the git executable with the provided details.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

// ExecutePing runs the ping executable with the provided details.
func (executor *ShellExecutor) ExecutePing(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandPing, Details: details})
}

// ExecuteNslookup runs the nslookup executable with the provided details.
func (executor *ShellExecutor) ExecuteNslookup(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandNslookup, Details: details})
}

// Execute runs an arbitrary shell command and translates failures into typed errors.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executor.eventObserver.CommandStarted(command)
	executor.logStart(command)

	executionResult, runError := executor.commandRunner.Run(executionContext, command)
	if runError != nil {
		executor.eventObserver.CommandExecutionFailed(command, runError)
		executor.logExecutionFailure(command, runError)
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runError}
	}

	executor.eventObserver.CommandCompleted(command, executionResult)

	if executionResult.ExitCode != 0 {
		executor.logFailure(command, executionResult)
		return ExecutionResult{}, CommandFailedError{Command: command, Result: executionResult}
	}

	executor.logSuccess(command, executionResult)
	return executionResult, nil
}

func (executor *ShellExecutor) logStart(command ShellCommand) {
	if executor.humanReadableLogging {
		executor.logger.Info(executor.messageFormatter.BuildMessage(command, ExecutionResult{}, nil, messageStageStart))
		return
	}
	executor.logger.Info(
		executor.messageFormatter.BuildMessage(command, ExecutionResult{}, nil, messageStageStart),
		zap.String(logFieldCommandNameConstant, string(command.Name)),
		zap.Strings(logFieldCommandArgumentsConstant, command.Details.Arguments),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
	)
}

func (executor *ShellExecutor) logSuccess(command ShellCommand, result ExecutionResult) {
	if executor.humanReadableLogging {
		executor.logger.Info(executor.messageFormatter.BuildMessage(command, result, nil, messageStageSuccess))
		return
	}
	executor.logger.Info(
		executor.messageFormatter.BuildMessage(command, result, nil, messageStageSuccess),
		zap.String(logFieldCommandNameConstant, string(command.Name)),
		zap.Int(logFieldExitCodeConstant, result.ExitCode),
	)
}

func (executor *ShellExecutor) logFailure(command ShellCommand, result ExecutionResult) {
	if executor.humanReadableLogging {
		executor.logger.Warn(executor.messageFormatter.BuildMessage(command, result, nil, messageStageFailure))
		return
	}
	executor.logger.Warn(
		executor.messageFormatter.BuildMessage(command, result, nil, messageStageFailure),
		zap.String(logFieldCommandNameConstant, string(command.Name)),
		zap.Int(logFieldExitCodeConstant, result.ExitCode),
		zap.String(logFieldStandardErrorConstant, strings.TrimSpace(result.StandardError)),
	)
}

func (executor *ShellExecutor) logExecutionFailure(command ShellCommand, failure error) {
	if executor.humanReadableLogging {
		executor.logger.Error(executor.messageFormatter.BuildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure))
		return
	}
	executor.logger.Error(
		executor.messageFormatter.BuildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure),
		zap.String(logFieldCommandNameConstant, string(command.Name)),
		zap.Strings(logFieldCommandArgumentsConstant, command.Details.Arguments),
	)
}
