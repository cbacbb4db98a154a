package watch

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/autopush/internal/autopush"
	"github.com/temirov/autopush/internal/connectivity"
	"github.com/temirov/autopush/internal/execshell"
	"github.com/temirov/autopush/internal/gitrepo"
	"github.com/temirov/autopush/internal/runlog"
	"github.com/temirov/autopush/internal/ui"
	pathutils "github.com/temirov/autopush/internal/utils/path"
	"github.com/temirov/autopush/internal/version"
)

const (
	commandUseConstant                    = "watch"
	commandShortDescriptionConstant       = "Continuously push pending changes on a schedule"
	commandLongDescriptionConstant        = "watch checks connectivity and runs the push sequence on an interval, optionally reacting to file changes, until interrupted."
	repositoryFlagNameConstant            = "repository"
	repositoryFlagUsageConstant           = "Path to the repository working directory"
	remoteFlagNameConstant                = "remote"
	remoteFlagUsageConstant               = "Remote the branch is pushed to"
	branchFlagNameConstant                = "branch"
	branchFlagUsageConstant               = "Branch pushed when the repository reports no current branch"
	fileTriggerFlagNameConstant           = "file-trigger"
	defaultRepositoryPathConstant         = "."
	fileTriggerFlagUsageConstant          = "Run the push sequence when repository files change"
	executorCreationErrorTemplateConstant = "unable to construct shell executor: %w"
	managerCreationErrorTemplateConstant  = "unable to construct repository manager: %w"
	excluderCreationErrorTemplate         = "unable to construct exclusion manager: %w"
	serviceCreationErrorTemplateConstant  = "unable to construct push service: %w"
	checkerCreationErrorTemplateConstant  = "unable to construct connectivity checker: %w"
	watcherCreationErrorTemplate          = "unable to construct file watcher: %w"
	supervisorCreationErrorTemplate       = "unable to construct watch supervisor: %w"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// SupervisorProvider constructs a watch loop from resolved dependencies.
type SupervisorProvider func(dependencies SupervisorDependencies, configuration Configuration) (*Supervisor, error)

// CommandBuilder assembles the watch Cobra command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	SupervisorProvider           SupervisorProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() Configuration
	HomeExpander                 *pathutils.HomeExpander
}

// Build constructs the watch command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           commandUseConstant,
		Short:         commandShortDescriptionConstant,
		Long:          commandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          builder.runWatch,
	}

	defaults := builder.resolveConfiguration()
	command.Flags().String(repositoryFlagNameConstant, defaults.RepositoryPath, repositoryFlagUsageConstant)
	command.Flags().String(remoteFlagNameConstant, defaults.RemoteName, remoteFlagUsageConstant)
	command.Flags().String(branchFlagNameConstant, defaults.BranchName, branchFlagUsageConstant)
	command.Flags().Bool(fileTriggerFlagNameConstant, defaults.FileTriggerEnabled, fileTriggerFlagUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) runWatch(command *cobra.Command, _ []string) error {
	configuration := builder.parseConfiguration(command)
	logger := builder.resolveLogger()

	executor, executorError := builder.resolveExecutor(logger)
	if executorError != nil {
		return executorError
	}

	repositoryManager, managerError := gitrepo.NewRepositoryManager(executor)
	if managerError != nil {
		return fmt.Errorf(managerCreationErrorTemplateConstant, managerError)
	}

	excludeManager, excluderError := gitrepo.NewExcludeManager(executor)
	if excluderError != nil {
		return fmt.Errorf(excluderCreationErrorTemplate, excluderError)
	}

	journal := runlog.NewJournal(
		runlog.DefaultJournalPath(configuration.RepositoryPath),
		runlog.DefaultMaximumLineCount,
		runlog.DefaultRetainedLineCount,
	)
	failureReporter := runlog.NewFailureReporter(runlog.DefaultReportDirectory(configuration.RepositoryPath))

	pushService, serviceError := autopush.NewService(autopush.ServiceDependencies{
		Logger:           logger,
		Repository:       repositoryManager,
		VersionTracker:   version.NewStore(""),
		Journal:          journal,
		FailureRecorder:  failureReporter,
		ArtifactExcluder: excludeManager,
	})
	if serviceError != nil {
		return fmt.Errorf(serviceCreationErrorTemplateConstant, serviceError)
	}

	connectivityChecker, checkerError := connectivity.NewChecker(executor)
	if checkerError != nil {
		return fmt.Errorf(checkerCreationErrorTemplateConstant, checkerError)
	}

	var fileTriggers <-chan struct{}
	if configuration.FileTriggerEnabled {
		fileWatcher, watcherError := NewFileWatcher(logger, configuration.RepositoryPath, configuration.DebounceInterval)
		if watcherError != nil {
			return fmt.Errorf(watcherCreationErrorTemplate, watcherError)
		}
		fileTriggers = fileWatcher.Triggers()
		go func() { _ = fileWatcher.Start(command.Context()) }()
	}

	dependencies := SupervisorDependencies{
		Logger:              logger,
		PushRunner:          pushService,
		ConnectivityChecker: connectivityChecker,
		Journal:             journal,
		FileTriggers:        fileTriggers,
	}

	supervisor, supervisorError := builder.resolveSupervisor(dependencies, configuration)
	if supervisorError != nil {
		return fmt.Errorf(supervisorCreationErrorTemplate, supervisorError)
	}

	return supervisor.Run(command.Context())
}

func (builder *CommandBuilder) parseConfiguration(command *cobra.Command) Configuration {
	configuration := builder.resolveConfiguration()

	if command != nil {
		if command.Flags().Changed(repositoryFlagNameConstant) {
			configuration.RepositoryPath, _ = command.Flags().GetString(repositoryFlagNameConstant)
		}
		if command.Flags().Changed(remoteFlagNameConstant) {
			configuration.RemoteName, _ = command.Flags().GetString(remoteFlagNameConstant)
		}
		if command.Flags().Changed(branchFlagNameConstant) {
			configuration.BranchName, _ = command.Flags().GetString(branchFlagNameConstant)
		}
		if command.Flags().Changed(fileTriggerFlagNameConstant) {
			configuration.FileTriggerEnabled, _ = command.Flags().GetBool(fileTriggerFlagNameConstant)
		}
	}

	configuration.RepositoryPath = builder.resolveHomeExpander().Expand(strings.TrimSpace(configuration.RepositoryPath))
	if len(configuration.RepositoryPath) == 0 {
		configuration.RepositoryPath = defaultRepositoryPathConstant
	}
	configuration.RepositoryPath = filepath.Clean(configuration.RepositoryPath)

	return configuration.normalized()
}

func (builder *CommandBuilder) resolveConfiguration() Configuration {
	if builder.ConfigurationProvider != nil {
		return builder.ConfigurationProvider()
	}
	return DefaultConfiguration()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	var logger *zap.Logger
	if builder.LoggerProvider != nil {
		logger = builder.LoggerProvider()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveExecutor(logger *zap.Logger) (*execshell.ShellExecutor, error) {
	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}
	shellExecutor, creationError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), humanReadableLogging)
	if creationError != nil {
		return nil, fmt.Errorf(executorCreationErrorTemplateConstant, creationError)
	}
	if humanReadableLogging {
		shellExecutor.SetCommandEventObserver(ui.NewConsoleCommandEventLogger(logger))
	}
	return shellExecutor, nil
}

func (builder *CommandBuilder) resolveSupervisor(dependencies SupervisorDependencies, configuration Configuration) (*Supervisor, error) {
	if builder.SupervisorProvider != nil {
		return builder.SupervisorProvider(dependencies, configuration)
	}
	return NewSupervisor(dependencies, configuration)
}

func (builder *CommandBuilder) resolveHomeExpander() *pathutils.HomeExpander {
	if builder.HomeExpander != nil {
		return builder.HomeExpander
	}
	return pathutils.NewHomeExpander()
}
