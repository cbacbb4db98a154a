package execshell

// CommandEventObserver is notified as the executor runs each shell command, letting
// callers mirror command activity to a human-readable console.
type CommandEventObserver interface {
	// CommandStarted fires just before the command launches.
	CommandStarted(command ShellCommand)
	// CommandCompleted fires after the command finishes and carries the captured result.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed fires when the command could not be launched at all.
	CommandExecutionFailed(command ShellCommand, failure error)
}

// noopCommandEventObserver is the observer the executor falls back to when no observer is set.
type noopCommandEventObserver struct{}

func (noopCommandEventObserver) CommandStarted(ShellCommand) {}

func (noopCommandEventObserver) CommandCompleted(ShellCommand, ExecutionResult) {}

func (noopCommandEventObserver) CommandExecutionFailed(ShellCommand, error) {}
