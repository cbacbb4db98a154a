package utils

import "context"

type commandContextKey string

const configurationFilePathContextKeyConstant commandContextKey = "configurationFilePath"

// CommandContextAccessor reads and writes the values the CLI threads through command contexts.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationFilePath returns a context carrying the resolved configuration file path.
func (accessor CommandContextAccessor) WithConfigurationFilePath(parentContext context.Context, configurationFilePath string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, configurationFilePathContextKeyConstant, configurationFilePath)
}

// ConfigurationFilePath reports the configuration file path stored in the context, when present.
func (accessor CommandContextAccessor) ConfigurationFilePath(executionContext context.Context) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	storedFilePath, storedFilePathPresent := executionContext.Value(configurationFilePathContextKeyConstant).(string)
	if !storedFilePathPresent {
		return "", false
	}
	return storedFilePath, true
}
