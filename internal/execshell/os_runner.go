package execshell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

const (
	environmentAssignmentSeparatorConstant = "="
	environmentAssignmentTemplateConstant  = "%s%s%s"
)

// OSCommandRunner runs shell commands through os/exec.
type OSCommandRunner struct{}

// NewOSCommandRunner constructs an OSCommandRunner.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{}
}

// Run launches the command and captures its streams. A non-zero exit is reported
// through ExecutionResult.ExitCode, not as an error; only launch failures return one.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	commandArguments := append([]string{}, command.Details.Arguments...)
	processCommand := exec.CommandContext(executionContext, string(command.Name), commandArguments...)

	if len(command.Details.WorkingDirectory) > 0 {
		processCommand.Dir = command.Details.WorkingDirectory
	}

	if len(command.Details.EnvironmentVariables) > 0 {
		processCommand.Env = mergedProcessEnvironment(command.Details.EnvironmentVariables)
	}

	var standardOutputBuffer bytes.Buffer
	var standardErrorBuffer bytes.Buffer
	processCommand.Stdout = &standardOutputBuffer
	processCommand.Stderr = &standardErrorBuffer

	if len(command.Details.StandardInput) > 0 {
		processCommand.Stdin = bytes.NewReader(command.Details.StandardInput)
	}

	runError := processCommand.Run()
	if runError != nil {
		exitError := &exec.ExitError{}
		if !errors.As(runError, &exitError) {
			return ExecutionResult{}, runError
		}
		return ExecutionResult{
			StandardOutput: standardOutputBuffer.String(),
			StandardError:  standardErrorBuffer.String(),
			ExitCode:       exitError.ExitCode(),
		}, nil
	}

	return ExecutionResult{
		StandardOutput: standardOutputBuffer.String(),
		StandardError:  standardErrorBuffer.String(),
		ExitCode:       0,
	}, nil
}

// mergedProcessEnvironment appends the command environment variables to the inherited process environment.
func mergedProcessEnvironment(environmentVariables map[string]string) []string {
	mergedEnvironment := append([]string{}, os.Environ()...)
	for environmentKey, environmentValue := range environmentVariables {
		mergedEnvironment = append(mergedEnvironment, fmt.Sprintf(environmentAssignmentTemplateConstant, environmentKey, environmentAssignmentSeparatorConstant, environmentValue))
	}
	return mergedEnvironment
}
