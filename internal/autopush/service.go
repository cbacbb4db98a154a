package autopush

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/autopush/internal/changeset"
	"github.com/temirov/autopush/internal/execshell"
	"github.com/temirov/autopush/internal/runlog"
	"github.com/temirov/autopush/internal/version"
)

const (
	loggerRequiredMessageConstant     = "push service requires a logger"
	repositoryRequiredMessageConstant = "push service requires repository operations"
	notRepositoryTemplateConstant     = "%s is not a git repository"
	branchResolutionTemplateConstant  = "unable to resolve branch for %s: %w"
	stageFailureTemplateConstant      = "stage step failed: %w"
	commitFailureTemplateConstant     = "commit step failed: %w"
	pushFailureTemplateConstant       = "push step failed: %w"
	runFailureJournalTemplateConstant = "OPERATION FAILED - Version %s\nError: %s"
	runSuccessJournalTemplateConstant = "OPERATION COMPLETED - Version %s\nBranch: %s\nCommit: %s\nPush verified: %t"
	noChangesJournalTemplateConstant  = "No changes to commit; push attempted for branch %s"
	commitTimestampLayoutConstant     = "15:04:05"
	identityFallbackConstant          = "not configured"
	summaryTemplateConstant           = "Repository: %s\nBranch: %s\nUser: %s\nRemotes:\n%s\nRecent commits:\n%s"
	logMessageRunStartedConstant      = "Push sequence started"
	logMessageExcludeFailedConstant   = "Unable to register artifact exclusions; continuing"
	logMessageChangesDetectedConstant = "Pending changes detected"
	logMessageNoChangesConstant       = "No pending changes; continuing with push"
	logMessageCommitSkippedConstant   = "Commit reported nothing to commit"
	logMessageRunCompletedConstant    = "Push sequence completed"
	logMessagePushRejectedConstant    = "Push rejected; local commit retained"
	logFieldRepositoryConstant        = "repository"
	logFieldBranchConstant            = "branch"
	logFieldRemoteConstant            = "remote"
	logFieldVersionConstant           = "version"
	logFieldChangeCountConstant       = "change_count"
	logFieldCommitMessageConstant     = "commit_message"
	logFieldPushVerifiedConstant      = "push_verified"
)

// Sentinel errors surfaced during service construction.
var (
	ErrLoggerNotConfigured     = errors.New(loggerRequiredMessageConstant)
	ErrRepositoryNotConfigured = errors.New(repositoryRequiredMessageConstant)
)

// RepositoryOperations is the subset of git operations consumed by the push service.
type RepositoryOperations interface {
	IsInsideWorkTree(executionContext context.Context, repositoryPath string) (bool, error)
	StatusPorcelain(executionContext context.Context, repositoryPath string) (string, error)
	StageAllChanges(executionContext context.Context, repositoryPath string) error
	CreateCommit(executionContext context.Context, repositoryPath string, commitMessage string) error
	PushBranch(executionContext context.Context, repositoryPath string, remoteName string, branchName string) error
	GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error)
	HeadRevision(executionContext context.Context, repositoryPath string) (string, error)
	RemoteBranchRevision(executionContext context.Context, repositoryPath string, remoteName string, branchName string) (string, error)
	ListRemotes(executionContext context.Context, repositoryPath string) (string, error)
	UserIdentity(executionContext context.Context, repositoryPath string) (string, error)
	RecentCommits(executionContext context.Context, repositoryPath string, commitCount int) (string, error)
}

// VersionTracker loads and persists the repository automation version.
type VersionTracker interface {
	Load(repositoryPath string) (string, error)
	Save(repositoryPath string, versionValue string) error
}

// JournalWriter appends run outcomes to the automation journal.
type JournalWriter interface {
	Append(entryMessage string) error
}

// FailureRecorder captures failed runs in standalone report files.
type FailureRecorder interface {
	Report(repositoryPath string, failureMessage string) (string, error)
}

// ArtifactExcluder hides the runner's own files from git change tracking so
// they never retrigger a commit.
type ArtifactExcluder interface {
	EnsureExcluded(executionContext context.Context, repositoryPath string, patterns []string) error
}

// ServiceDependencies enumerates the collaborators required by the push service.
type ServiceDependencies struct {
	Logger           *zap.Logger
	Repository       RepositoryOperations
	VersionTracker   VersionTracker
	Journal          JournalWriter
	FailureRecorder  FailureRecorder
	ArtifactExcluder ArtifactExcluder
	ArtifactPatterns []string
	Clock            func() time.Time
}

// RunOptions parameterizes a single push sequence.
type RunOptions struct {
	RepositoryPath        string
	RemoteName            string
	BranchName            string
	CommitMessageOverride string
}

// RunOutcome reports what the push sequence observed and performed.
type RunOutcome struct {
	RepositoryPath  string
	BranchName      string
	ChangesDetected bool
	ChangeCount     int
	CommitCreated   bool
	CommitMessage   string
	Version         string
	PushVerified    bool
	LocalRevision   string
	RemoteRevision  string
}

// Service executes the stage, commit, and push sequence strictly in order.
type Service struct {
	logger           *zap.Logger
	repository       RepositoryOperations
	versionTracker   VersionTracker
	journal          JournalWriter
	failureRecorder  FailureRecorder
	artifactExcluder ArtifactExcluder
	artifactPatterns []string
	clock            func() time.Time
}

// NewService validates dependencies and constructs a Service.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if dependencies.Repository == nil {
		return nil, ErrRepositoryNotConfigured
	}

	clock := dependencies.Clock
	if clock == nil {
		clock = time.Now
	}

	artifactPatterns := dependencies.ArtifactPatterns
	if len(artifactPatterns) == 0 {
		artifactPatterns = DefaultArtifactPatterns()
	}

	return &Service{
		logger:           dependencies.Logger,
		repository:       dependencies.Repository,
		versionTracker:   dependencies.VersionTracker,
		journal:          dependencies.Journal,
		failureRecorder:  dependencies.FailureRecorder,
		artifactExcluder: dependencies.ArtifactExcluder,
		artifactPatterns: artifactPatterns,
		clock:            clock,
	}, nil
}

// DefaultArtifactPatterns lists the runner's own files kept out of change
// tracking: the version file, the journal, and the failure report directory.
func DefaultArtifactPatterns() []string {
	return []string{
		version.DefaultFileName,
		runlog.DefaultJournalFileName,
		runlog.DefaultReportDirectoryName + "/",
	}
}

// Run executes add, commit, and push in order and returns the observed outcome.
// A commit that finds nothing to record does not stop the push step, and a
// rejected push leaves the local commit in place.
func (service *Service) Run(executionContext context.Context, options RunOptions) (RunOutcome, error) {
	outcome := RunOutcome{RepositoryPath: options.RepositoryPath}

	insideWorkTree, inspectionError := service.repository.IsInsideWorkTree(executionContext, options.RepositoryPath)
	if inspectionError != nil {
		return outcome, service.recordFailure(options, outcome, inspectionError)
	}
	if !insideWorkTree {
		notRepositoryError := fmt.Errorf(notRepositoryTemplateConstant, options.RepositoryPath)
		return outcome, service.recordFailure(options, outcome, notRepositoryError)
	}

	if service.artifactExcluder != nil {
		if excludeError := service.artifactExcluder.EnsureExcluded(executionContext, options.RepositoryPath, service.artifactPatterns); excludeError != nil {
			service.logger.Warn(logMessageExcludeFailedConstant, zap.Error(excludeError))
		}
	}

	branchName, branchError := service.resolveBranch(executionContext, options)
	if branchError != nil {
		return outcome, service.recordFailure(options, outcome, branchError)
	}
	outcome.BranchName = branchName

	service.logger.Info(
		logMessageRunStartedConstant,
		zap.String(logFieldRepositoryConstant, options.RepositoryPath),
		zap.String(logFieldBranchConstant, branchName),
		zap.String(logFieldRemoteConstant, options.RemoteName),
	)

	porcelainOutput, statusError := service.repository.StatusPorcelain(executionContext, options.RepositoryPath)
	if statusError != nil {
		return outcome, service.recordFailure(options, outcome, statusError)
	}

	pendingChanges := changeset.ParsePorcelain(porcelainOutput)
	outcome.ChangesDetected = !pendingChanges.IsEmpty()
	outcome.ChangeCount = pendingChanges.TotalPathCount()

	if outcome.ChangesDetected {
		service.logger.Info(
			logMessageChangesDetectedConstant,
			zap.Int(logFieldChangeCountConstant, outcome.ChangeCount),
		)
	} else {
		service.logger.Info(logMessageNoChangesConstant)
	}

	if stageError := service.repository.StageAllChanges(executionContext, options.RepositoryPath); stageError != nil {
		return outcome, service.recordFailure(options, outcome, fmt.Errorf(stageFailureTemplateConstant, stageError))
	}

	commitMessage, commitVersion, messageError := service.resolveCommitMessage(options, pendingChanges)
	if messageError != nil {
		return outcome, service.recordFailure(options, outcome, messageError)
	}
	outcome.CommitMessage = commitMessage
	outcome.Version = commitVersion

	// The incremented version is persisted before the commit runs so a later
	// commit failure does not lose the recorded increment.
	if outcome.ChangesDetected && service.versionTracker != nil && len(commitVersion) > 0 {
		if saveError := service.versionTracker.Save(options.RepositoryPath, commitVersion); saveError != nil {
			return outcome, service.recordFailure(options, outcome, saveError)
		}
	}

	commitError := service.repository.CreateCommit(executionContext, options.RepositoryPath, commitMessage)
	switch {
	case commitError == nil:
		outcome.CommitCreated = true
	case !outcome.ChangesDetected && isCommandFailure(commitError):
		service.logger.Info(logMessageCommitSkippedConstant)
	default:
		return outcome, service.recordFailure(options, outcome, fmt.Errorf(commitFailureTemplateConstant, commitError))
	}

	if pushError := service.repository.PushBranch(executionContext, options.RepositoryPath, options.RemoteName, branchName); pushError != nil {
		service.logger.Warn(
			logMessagePushRejectedConstant,
			zap.String(logFieldBranchConstant, branchName),
			zap.String(logFieldRemoteConstant, options.RemoteName),
			zap.Error(pushError),
		)
		return outcome, service.recordFailure(options, outcome, fmt.Errorf(pushFailureTemplateConstant, pushError))
	}

	service.verifyPush(executionContext, options, branchName, &outcome)
	service.journalSuccess(outcome)

	service.logger.Info(
		logMessageRunCompletedConstant,
		zap.String(logFieldBranchConstant, branchName),
		zap.String(logFieldVersionConstant, outcome.Version),
		zap.String(logFieldCommitMessageConstant, firstLine(outcome.CommitMessage)),
		zap.Bool(logFieldPushVerifiedConstant, outcome.PushVerified),
	)

	return outcome, nil
}

// DescribeRepository assembles a human-readable repository summary for journal entries.
func (service *Service) DescribeRepository(executionContext context.Context, repositoryPath string) string {
	branchName, branchError := service.repository.GetCurrentBranch(executionContext, repositoryPath)
	if branchError != nil || len(branchName) == 0 {
		branchName = identityFallbackConstant
	}

	userIdentity, identityError := service.repository.UserIdentity(executionContext, repositoryPath)
	if identityError != nil || len(strings.TrimSpace(strings.Trim(userIdentity, "<> "))) == 0 {
		userIdentity = identityFallbackConstant
	}

	remoteListing, remoteError := service.repository.ListRemotes(executionContext, repositoryPath)
	if remoteError != nil || len(remoteListing) == 0 {
		remoteListing = identityFallbackConstant
	}

	recentCommits, historyError := service.repository.RecentCommits(executionContext, repositoryPath, recentCommitCountConstant)
	if historyError != nil || len(recentCommits) == 0 {
		recentCommits = identityFallbackConstant
	}

	return fmt.Sprintf(summaryTemplateConstant, repositoryPath, branchName, userIdentity, remoteListing, recentCommits)
}

func (service *Service) resolveBranch(executionContext context.Context, options RunOptions) (string, error) {
	currentBranch, branchError := service.repository.GetCurrentBranch(executionContext, options.RepositoryPath)
	if branchError != nil {
		return "", fmt.Errorf(branchResolutionTemplateConstant, options.RepositoryPath, branchError)
	}
	if len(currentBranch) > 0 {
		return currentBranch, nil
	}
	if len(options.BranchName) > 0 {
		return options.BranchName, nil
	}
	return DefaultBranchName, nil
}

func (service *Service) resolveCommitMessage(options RunOptions, pendingChanges changeset.ChangeSet) (string, string, error) {
	if len(options.CommitMessageOverride) > 0 {
		return options.CommitMessageOverride, "", nil
	}

	currentVersion := ""
	if service.versionTracker != nil {
		loadedVersion, loadError := service.versionTracker.Load(options.RepositoryPath)
		if loadError != nil {
			return "", "", loadError
		}
		currentVersion = loadedVersion
	}

	commitVersion := currentVersion
	if !pendingChanges.IsEmpty() && len(currentVersion) > 0 {
		incrementedVersion, incrementError := version.Increment(currentVersion)
		if incrementError != nil {
			return "", "", incrementError
		}
		commitVersion = incrementedVersion
	}

	commitTimestamp := service.clock().Format(commitTimestampLayoutConstant)
	return changeset.BuildCommitMessage(commitVersion, commitTimestamp, pendingChanges), commitVersion, nil
}

func (service *Service) verifyPush(executionContext context.Context, options RunOptions, branchName string, outcome *RunOutcome) {
	localRevision, localError := service.repository.HeadRevision(executionContext, options.RepositoryPath)
	if localError != nil {
		return
	}
	outcome.LocalRevision = localRevision

	remoteRevision, remoteError := service.repository.RemoteBranchRevision(executionContext, options.RepositoryPath, options.RemoteName, branchName)
	if remoteError != nil {
		return
	}
	outcome.RemoteRevision = remoteRevision
	outcome.PushVerified = len(remoteRevision) > 0 && localRevision == remoteRevision
}

func (service *Service) journalSuccess(outcome RunOutcome) {
	if service.journal == nil {
		return
	}
	if !outcome.ChangesDetected {
		_ = service.journal.Append(fmt.Sprintf(noChangesJournalTemplateConstant, outcome.BranchName))
		return
	}
	_ = service.journal.Append(fmt.Sprintf(
		runSuccessJournalTemplateConstant,
		outcome.Version,
		outcome.BranchName,
		firstLine(outcome.CommitMessage),
		outcome.PushVerified,
	))
}

func (service *Service) recordFailure(options RunOptions, outcome RunOutcome, runError error) error {
	if service.journal != nil {
		_ = service.journal.Append(fmt.Sprintf(runFailureJournalTemplateConstant, ensureVersionLabel(outcome.Version), runError.Error()))
	}
	if service.failureRecorder != nil {
		_, _ = service.failureRecorder.Report(options.RepositoryPath, runError.Error())
	}
	return runError
}

func isCommandFailure(candidateError error) bool {
	var commandFailure execshell.CommandFailedError
	return errors.As(candidateError, &commandFailure)
}

func ensureVersionLabel(versionValue string) string {
	if len(versionValue) == 0 {
		return identityFallbackConstant
	}
	return versionValue
}

func firstLine(multilineValue string) string {
	lineEnd := strings.IndexByte(multilineValue, '\n')
	if lineEnd < 0 {
		return multilineValue
	}
	return multilineValue[:lineEnd]
}
