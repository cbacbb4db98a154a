package watch

import "time"

const (
	// DefaultInitialChecks is the number of leading checks run at the short interval.
	DefaultInitialChecks = 3

	// DefaultInitialInterval separates the leading checks.
	DefaultInitialInterval = 60 * time.Second

	// DefaultNormalInterval separates checks after the initial phase.
	DefaultNormalInterval = 300 * time.Second

	// DefaultMaximumRetries bounds consecutive failed push attempts before suspension.
	DefaultMaximumRetries = 3

	// DefaultDebounceInterval coalesces bursts of file change events.
	DefaultDebounceInterval = 2 * time.Second

	statusReportCheckPeriodConstant = 10
)

// Configuration captures the watch command settings sourced from configuration files and flags.
type Configuration struct {
	RepositoryPath     string        `mapstructure:"repository"`
	RemoteName         string        `mapstructure:"remote"`
	BranchName         string        `mapstructure:"branch"`
	InitialChecks      int           `mapstructure:"initial_checks"`
	InitialInterval    time.Duration `mapstructure:"initial_interval"`
	NormalInterval     time.Duration `mapstructure:"normal_interval"`
	MaximumRetries     int           `mapstructure:"max_retries"`
	FileTriggerEnabled bool          `mapstructure:"file_trigger"`
	DebounceInterval   time.Duration `mapstructure:"debounce_interval"`
}

// DefaultConfiguration returns the watch command defaults.
func DefaultConfiguration() Configuration {
	return Configuration{
		RepositoryPath:   ".",
		RemoteName:       "origin",
		BranchName:       "main",
		InitialChecks:    DefaultInitialChecks,
		InitialInterval:  DefaultInitialInterval,
		NormalInterval:   DefaultNormalInterval,
		MaximumRetries:   DefaultMaximumRetries,
		DebounceInterval: DefaultDebounceInterval,
	}
}

func (configuration Configuration) normalized() Configuration {
	if configuration.InitialChecks <= 0 {
		configuration.InitialChecks = DefaultInitialChecks
	}
	if configuration.InitialInterval <= 0 {
		configuration.InitialInterval = DefaultInitialInterval
	}
	if configuration.NormalInterval <= 0 {
		configuration.NormalInterval = DefaultNormalInterval
	}
	if configuration.MaximumRetries <= 0 {
		configuration.MaximumRetries = DefaultMaximumRetries
	}
	if configuration.DebounceInterval <= 0 {
		configuration.DebounceInterval = DefaultDebounceInterval
	}
	return configuration
}
