package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	messageStandardErrorTemplateConstant    = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	flagPrefixConstant                      = "-"
)

const (
	gitAddSubcommandNameConstant      = "add"
	gitCommitSubcommandNameConstant   = "commit"
	gitPushSubcommandNameConstant     = "push"
	gitStatusSubcommandNameConstant   = "status"
	gitRevParseSubcommandNameConstant = "rev-parse"
	gitLSRemoteSubcommandNameConstant = "ls-remote"
	gitRemoteSubcommandNameConstant   = "remote"
	gitConfigSubcommandNameConstant   = "config"
	gitLogSubcommandNameConstant      = "log"
	gitBranchSubcommandNameConstant   = "branch"
)

const (
	gitAddStartTemplateConstant                  = "Staging changes in %s"
	gitAddSuccessTemplateConstant                = "Staged changes in %s"
	gitAddFailureTemplateConstant                = "Failed to stage changes in %s (exit code %d%s)"
	gitAddExecutionFailureTemplateConstant       = "Unable to stage changes in %s: %s"
	gitCommitStartTemplateConstant               = "Recording commit in %s"
	gitCommitSuccessTemplateConstant             = "Recorded commit in %s"
	gitCommitFailureTemplateConstant             = "Commit in %s did not complete (exit code %d%s)"
	gitCommitExecutionFailureTemplateConstant    = "Unable to record commit in %s: %s"
	gitPushStartTemplateConstant                 = "Pushing %s to %s from %s"
	gitPushSuccessTemplateConstant               = "Pushed %s to %s from %s"
	gitPushFailureTemplateConstant               = "Failed to push %s to %s from %s (exit code %d%s)"
	gitPushExecutionFailureTemplateConstant      = "Unable to push %s to %s from %s: %s"
	gitStatusStartTemplateConstant               = "Reviewing working tree status in %s"
	gitStatusSuccessTemplateConstant             = "Collected working tree status for %s"
	gitStatusFailureTemplateConstant             = "Failed to review working tree status in %s (exit code %d%s)"
	gitStatusExecutionFailureTemplateConstant    = "Unable to review working tree status in %s: %s"
	gitRevisionStartTemplateConstant             = "Resolving %s in %s"
	gitRevisionSuccessTemplateConstant           = "Resolved %s in %s"
	gitRevisionFailureTemplateConstant           = "Failed to resolve %s in %s (exit code %d%s)"
	gitRevisionExecutionFailureTemplateConstant  = "Unable to resolve %s in %s: %s"
	gitLSRemoteStartTemplateConstant             = "Querying remote %s for %s"
	gitLSRemoteSuccessTemplateConstant           = "Queried remote %s for %s"
	gitLSRemoteFailureTemplateConstant           = "Failed to query remote %s for %s (exit code %d%s)"
	gitLSRemoteExecutionFailureTemplateConstant  = "Unable to query remote %s for %s: %s"
	gitRemotesStartTemplateConstant              = "Listing remotes configured in %s"
	gitRemotesSuccessTemplateConstant            = "Listed remotes configured in %s"
	gitRemotesFailureTemplateConstant            = "Failed to list remotes in %s (exit code %d%s)"
	gitRemotesExecutionFailureTemplateConstant   = "Unable to list remotes in %s: %s"
	gitConfigStartTemplateConstant               = "Reading git configuration %s in %s"
	gitConfigSuccessTemplateConstant             = "Read git configuration %s in %s"
	gitConfigFailureTemplateConstant             = "Failed to read git configuration %s in %s (exit code %d%s)"
	gitConfigExecutionFailureTemplateConstant    = "Unable to read git configuration %s in %s: %s"
	gitLogStartTemplateConstant                  = "Collecting commit history in %s"
	gitLogSuccessTemplateConstant                = "Collected commit history in %s"
	gitLogFailureTemplateConstant                = "Failed to collect commit history in %s (exit code %d%s)"
	gitLogExecutionFailureTemplateConstant       = "Unable to collect commit history in %s: %s"
	gitBranchStartTemplateConstant               = "Identifying current branch in %s"
	gitBranchSuccessTemplateConstant             = "Identified current branch in %s"
	gitBranchFailureTemplateConstant             = "Failed to identify current branch in %s (exit code %d%s)"
	gitBranchExecutionFailureTemplateConstant    = "Unable to identify current branch in %s: %s"
	connectivityStartTemplateConstant            = "Probing %s via %s"
	connectivitySuccessTemplateConstant          = "Reached %s via %s"
	connectivityFailureTemplateConstant          = "Could not reach %s via %s (exit code %d%s)"
	connectivityExecutionFailureTemplateConstant = "Unable to probe %s via %s: %s"
)

// CommandMessageFormatter renders human-readable lifecycle messages for shell commands.
type CommandMessageFormatter struct{}

// BuildMessage produces the message describing the supplied command at the requested stage.
func (formatter CommandMessageFormatter) BuildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	switch command.Name {
	case CommandGit:
		return formatter.describeGitMessage(command, result, failure, stage)
	case CommandPing, CommandNslookup:
		return formatter.describeConnectivityMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	subcommand := formatter.argumentAtIndex(command.Details.Arguments, 0)
	switch subcommand {
	case gitAddSubcommandNameConstant:
		return formatter.describeLocationMessage(command, result, failure, stage, gitAddStartTemplateConstant, gitAddSuccessTemplateConstant, gitAddFailureTemplateConstant, gitAddExecutionFailureTemplateConstant)
	case gitCommitSubcommandNameConstant:
		return formatter.describeLocationMessage(command, result, failure, stage, gitCommitStartTemplateConstant, gitCommitSuccessTemplateConstant, gitCommitFailureTemplateConstant, gitCommitExecutionFailureTemplateConstant)
	case gitPushSubcommandNameConstant:
		return formatter.describeGitPushMessage(command, result, failure, stage)
	case gitStatusSubcommandNameConstant:
		return formatter.describeLocationMessage(command, result, failure, stage, gitStatusStartTemplateConstant, gitStatusSuccessTemplateConstant, gitStatusFailureTemplateConstant, gitStatusExecutionFailureTemplateConstant)
	case gitRevParseSubcommandNameConstant:
		return formatter.describeGitRevisionMessage(command, result, failure, stage)
	case gitLSRemoteSubcommandNameConstant:
		return formatter.describeGitLSRemoteMessage(command, result, failure, stage)
	case gitRemoteSubcommandNameConstant:
		return formatter.describeLocationMessage(command, result, failure, stage, gitRemotesStartTemplateConstant, gitRemotesSuccessTemplateConstant, gitRemotesFailureTemplateConstant, gitRemotesExecutionFailureTemplateConstant)
	case gitConfigSubcommandNameConstant:
		return formatter.describeGitConfigMessage(command, result, failure, stage)
	case gitLogSubcommandNameConstant:
		return formatter.describeLocationMessage(command, result, failure, stage, gitLogStartTemplateConstant, gitLogSuccessTemplateConstant, gitLogFailureTemplateConstant, gitLogExecutionFailureTemplateConstant)
	case gitBranchSubcommandNameConstant:
		return formatter.describeLocationMessage(command, result, failure, stage, gitBranchStartTemplateConstant, gitBranchSuccessTemplateConstant, gitBranchFailureTemplateConstant, gitBranchExecutionFailureTemplateConstant)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeLocationMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage, startTemplate string, successTemplate string, failureTemplate string, executionFailureTemplate string) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(startTemplate, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(successTemplate, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(failureTemplate, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(executionFailureTemplate, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitPushMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	positionalArguments := formatter.collectPositionalArguments(command.Details.Arguments[1:])
	remoteName := formatter.ensureValue(formatter.argumentAtIndex(positionalArguments, 0))
	branchReference := formatter.ensureValue(formatter.argumentAtIndex(positionalArguments, 1))

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitPushStartTemplateConstant, branchReference, remoteName, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitPushSuccessTemplateConstant, branchReference, remoteName, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitPushFailureTemplateConstant, branchReference, remoteName, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitPushExecutionFailureTemplateConstant, branchReference, remoteName, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitRevisionMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	revisionReference := formatter.ensureValue(formatter.lastArgument(command.Details.Arguments))
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitRevisionStartTemplateConstant, revisionReference, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitRevisionSuccessTemplateConstant, revisionReference, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitRevisionFailureTemplateConstant, revisionReference, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitRevisionExecutionFailureTemplateConstant, revisionReference, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitLSRemoteMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	remoteName := formatter.ensureValue(formatter.argumentAtIndex(command.Details.Arguments, 1))
	referenceName := formatter.ensureValue(formatter.argumentAtIndex(command.Details.Arguments, 2))
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitLSRemoteStartTemplateConstant, remoteName, referenceName)
	case messageStageSuccess:
		return fmt.Sprintf(gitLSRemoteSuccessTemplateConstant, remoteName, referenceName)
	case messageStageFailure:
		return fmt.Sprintf(gitLSRemoteFailureTemplateConstant, remoteName, referenceName, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitLSRemoteExecutionFailureTemplateConstant, remoteName, referenceName, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitConfigMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	configurationKey := formatter.ensureValue(formatter.argumentAtIndex(command.Details.Arguments, 1))
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitConfigStartTemplateConstant, configurationKey, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitConfigSuccessTemplateConstant, configurationKey, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitConfigFailureTemplateConstant, configurationKey, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitConfigExecutionFailureTemplateConstant, configurationKey, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeConnectivityMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	probeTarget := formatter.ensureValue(formatter.lastArgument(command.Details.Arguments))
	probeName := string(command.Name)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(connectivityStartTemplateConstant, probeTarget, probeName)
	case messageStageSuccess:
		return fmt.Sprintf(connectivitySuccessTemplateConstant, probeTarget, probeName)
	case messageStageFailure:
		return fmt.Sprintf(connectivityFailureTemplateConstant, probeTarget, probeName, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(connectivityExecutionFailureTemplateConstant, probeTarget, probeName, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		commandParts = append(commandParts, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	commandLabel := strings.Join(commandParts, commandArgumentsJoinSeparatorConstant)
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return commandLabel
	}
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory))
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(messageStandardErrorTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	if index < 0 || index >= len(arguments) {
		return emptyStringConstant
	}
	return strings.TrimSpace(arguments[index])
}

func (formatter CommandMessageFormatter) lastArgument(arguments []string) string {
	if len(arguments) == 0 {
		return emptyStringConstant
	}
	return strings.TrimSpace(arguments[len(arguments)-1])
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	if len(strings.TrimSpace(value)) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return strings.TrimSpace(value)
}

func (formatter CommandMessageFormatter) collectPositionalArguments(arguments []string) []string {
	positionalArguments := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		if strings.HasPrefix(argument, flagPrefixConstant) {
			continue
		}
		positionalArguments = append(positionalArguments, argument)
	}
	return positionalArguments
}
