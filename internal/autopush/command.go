package autopush

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/autopush/internal/execshell"
	"github.com/temirov/autopush/internal/gitrepo"
	"github.com/temirov/autopush/internal/runlog"
	"github.com/temirov/autopush/internal/ui"
	pathutils "github.com/temirov/autopush/internal/utils/path"
	"github.com/temirov/autopush/internal/version"
)

const (
	commandUseConstant                    = "push"
	commandShortDescriptionConstant       = "Stage, commit, and push pending changes"
	commandLongDescriptionConstant        = "push stages every pending change, records a commit, and pushes the current branch to the configured remote in strict order."
	repositoryFlagNameConstant            = "repository"
	repositoryFlagUsageConstant           = "Path to the repository working directory"
	remoteFlagNameConstant                = "remote"
	remoteFlagUsageConstant               = "Remote the branch is pushed to"
	branchFlagNameConstant                = "branch"
	branchFlagUsageConstant               = "Branch pushed when the repository reports no current branch"
	messageFlagNameConstant               = "message"
	messageFlagShorthandConstant          = "m"
	messageFlagUsageConstant              = "Commit message used verbatim instead of the generated summary"
	executorCreationErrorTemplateConstant = "unable to construct shell executor: %w"
	managerCreationErrorTemplateConstant  = "unable to construct repository manager: %w"
	excluderCreationErrorTemplateConstant = "unable to construct exclusion manager: %w"
	serviceCreationErrorTemplateConstant  = "unable to construct push service: %w"
	runFailureTemplateConstant            = "push failed: %w"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ServiceRunner executes the push sequence; the production implementation is *Service.
type ServiceRunner interface {
	Run(executionContext context.Context, options RunOptions) (RunOutcome, error)
}

// ServiceProvider constructs a ServiceRunner from resolved dependencies.
type ServiceProvider func(dependencies ServiceDependencies) (ServiceRunner, error)

// CommandBuilder assembles the push Cobra command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	Executor                     gitrepo.GitExecutor
	ServiceProvider              ServiceProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() Configuration
	HomeExpander                 *pathutils.HomeExpander
}

type commandOptions struct {
	repositoryPath        string
	remoteName            string
	branchName            string
	commitMessageOverride string
	configuration         Configuration
}

// Build constructs the push command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           commandUseConstant,
		Short:         commandShortDescriptionConstant,
		Long:          commandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          builder.runPush,
	}

	defaults := builder.resolveConfiguration()
	command.Flags().String(repositoryFlagNameConstant, defaults.RepositoryPath, repositoryFlagUsageConstant)
	command.Flags().String(remoteFlagNameConstant, defaults.RemoteName, remoteFlagUsageConstant)
	command.Flags().String(branchFlagNameConstant, defaults.BranchName, branchFlagUsageConstant)
	command.Flags().StringP(messageFlagNameConstant, messageFlagShorthandConstant, defaults.CommitMessage, messageFlagUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) runPush(command *cobra.Command, _ []string) error {
	options := builder.parseOptions(command)
	logger := builder.resolveLogger()

	pushService, serviceError := builder.resolveService(logger, options)
	if serviceError != nil {
		return serviceError
	}

	_, runError := pushService.Run(command.Context(), RunOptions{
		RepositoryPath:        options.repositoryPath,
		RemoteName:            options.remoteName,
		BranchName:            options.branchName,
		CommitMessageOverride: options.commitMessageOverride,
	})
	if runError != nil {
		return fmt.Errorf(runFailureTemplateConstant, runError)
	}
	return nil
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command) commandOptions {
	configuration := builder.resolveConfiguration()
	options := commandOptions{
		repositoryPath:        configuration.RepositoryPath,
		remoteName:            configuration.RemoteName,
		branchName:            configuration.BranchName,
		commitMessageOverride: configuration.CommitMessage,
		configuration:         configuration,
	}

	if command != nil {
		if command.Flags().Changed(repositoryFlagNameConstant) {
			options.repositoryPath, _ = command.Flags().GetString(repositoryFlagNameConstant)
		}
		if command.Flags().Changed(remoteFlagNameConstant) {
			options.remoteName, _ = command.Flags().GetString(remoteFlagNameConstant)
		}
		if command.Flags().Changed(branchFlagNameConstant) {
			options.branchName, _ = command.Flags().GetString(branchFlagNameConstant)
		}
		if command.Flags().Changed(messageFlagNameConstant) {
			options.commitMessageOverride, _ = command.Flags().GetString(messageFlagNameConstant)
		}
	}

	options.repositoryPath = builder.resolveHomeExpander().Expand(strings.TrimSpace(options.repositoryPath))
	if len(options.repositoryPath) == 0 {
		options.repositoryPath = defaultRepositoryPathConstant
	}
	options.repositoryPath = filepath.Clean(options.repositoryPath)

	if len(strings.TrimSpace(options.remoteName)) == 0 {
		options.remoteName = DefaultRemoteName
	}
	return options
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

func (builder *CommandBuilder) resolveExecutor(logger *zap.Logger) (gitrepo.GitExecutor, error) {
	if builder.Executor != nil {
		return builder.Executor, nil
	}

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

func (builder *CommandBuilder) resolveService(logger *zap.Logger, options commandOptions) (ServiceRunner, error) {
	executor, executorError := builder.resolveExecutor(logger)
	if executorError != nil {
		return nil, executorError
	}

	repositoryManager, managerError := gitrepo.NewRepositoryManager(executor)
	if managerError != nil {
		return nil, fmt.Errorf(managerCreationErrorTemplateConstant, managerError)
	}

	excludeManager, excluderError := gitrepo.NewExcludeManager(executor)
	if excluderError != nil {
		return nil, fmt.Errorf(excluderCreationErrorTemplateConstant, excluderError)
	}

	dependencies := ServiceDependencies{
		Logger:           logger,
		Repository:       repositoryManager,
		VersionTracker:   newVersionTracker(options.configuration.VersionFileName),
		Journal:          newJournal(options.repositoryPath, options.configuration.JournalFileName),
		FailureRecorder:  newFailureRecorder(options.repositoryPath, options.configuration.ReportDirectoryName),
		ArtifactExcluder: excludeManager,
		ArtifactPatterns: newArtifactPatterns(options.configuration),
	}

	if builder.ServiceProvider != nil {
		return builder.ServiceProvider(dependencies)
	}

	pushService, creationError := NewService(dependencies)
	if creationError != nil {
		return nil, fmt.Errorf(serviceCreationErrorTemplateConstant, creationError)
	}
	return pushService, nil
}

func (builder *CommandBuilder) resolveHomeExpander() *pathutils.HomeExpander {
	if builder.HomeExpander != nil {
		return builder.HomeExpander
	}
	return pathutils.NewHomeExpander()
}

func newVersionTracker(versionFileName string) VersionTracker {
	return version.NewStore(versionFileName)
}

func newJournal(repositoryPath string, journalFileName string) JournalWriter {
	journalPath := runlog.DefaultJournalPath(repositoryPath)
	if len(strings.TrimSpace(journalFileName)) > 0 {
		journalPath = filepath.Join(repositoryPath, journalFileName)
	}
	return runlog.NewJournal(journalPath, runlog.DefaultMaximumLineCount, runlog.DefaultRetainedLineCount)
}

func newArtifactPatterns(configuration Configuration) []string {
	versionFileName := strings.TrimSpace(configuration.VersionFileName)
	if len(versionFileName) == 0 {
		versionFileName = version.DefaultFileName
	}
	journalFileName := strings.TrimSpace(configuration.JournalFileName)
	if len(journalFileName) == 0 {
		journalFileName = runlog.DefaultJournalFileName
	}
	reportDirectoryName := strings.TrimSpace(configuration.ReportDirectoryName)
	if len(reportDirectoryName) == 0 {
		reportDirectoryName = runlog.DefaultReportDirectoryName
	}
	return []string{versionFileName, journalFileName, reportDirectoryName + "/"}
}

func newFailureRecorder(repositoryPath string, reportDirectoryName string) FailureRecorder {
	reportDirectory := runlog.DefaultReportDirectory(repositoryPath)
	if len(strings.TrimSpace(reportDirectoryName)) > 0 {
		reportDirectory = filepath.Join(repositoryPath, reportDirectoryName)
	}
	return runlog.NewFailureReporter(reportDirectory)
}
