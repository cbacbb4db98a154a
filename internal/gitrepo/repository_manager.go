package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/autopush/internal/execshell"
)

const (
	gitStatusSubcommandConstant         = "status"
	gitStatusPorcelainFlagConstant      = "--porcelain"
	gitAddSubcommandConstant            = "add"
	gitAddAllPathSpecConstant           = "."
	gitCommitSubcommandConstant         = "commit"
	gitCommitMessageFlagConstant        = "-m"
	gitPushSubcommandConstant           = "push"
	gitPushSetUpstreamFlagConstant      = "-u"
	gitRevParseSubcommandConstant       = "rev-parse"
	gitRevParseShortFlagConstant        = "--short"
	gitHeadReferenceConstant            = "HEAD"
	gitWorkTreeFlagConstant             = "--is-inside-work-tree"
	gitBranchSubcommandConstant         = "branch"
	gitBranchShowCurrentFlagConstant    = "--show-current"
	gitLSRemoteSubcommandConstant       = "ls-remote"
	gitRemoteSubcommandConstant         = "remote"
	gitRemoteVerboseFlagConstant        = "-v"
	gitConfigSubcommandConstant         = "config"
	gitConfigUserNameKeyConstant        = "user.name"
	gitConfigUserEmailKeyConstant       = "user.email"
	gitLogSubcommandConstant            = "log"
	gitLogOnelineFlagConstant           = "--oneline"
	gitLogCountFlagTemplateConstant     = "-%d"
	branchReferencePrefixConstant       = "refs/heads/"
	workTreeConfirmationValueConstant   = "true"
	userIdentityTemplateConstant        = "%s <%s>"
	executorRequiredMessageConstant     = "repository manager requires a git executor"
	repositoryPathRequiredConstant      = "repository path must be provided"
	commitMessageRequiredConstant       = "commit message must be provided"
	stageChangesErrorTemplateConstant   = "unable to stage changes: %w"
	commitErrorTemplateConstant         = "unable to create commit: %w"
	pushErrorTemplateConstant           = "unable to push branch: %w"
	statusErrorTemplateConstant         = "unable to read worktree status: %w"
	branchErrorTemplateConstant         = "unable to determine current branch: %w"
	revisionErrorTemplateConstant       = "unable to resolve revision: %w"
	remoteRevisionErrorTemplateConstant = "unable to query remote revision: %w"
	remoteListingErrorTemplateConstant  = "unable to list remotes: %w"
	userIdentityErrorTemplateConstant   = "unable to read user identity: %w"
	commitHistoryErrorTemplateConstant  = "unable to read commit history: %w"
	workTreeInspectionTemplateConstant  = "unable to inspect repository: %w"
)

// Sentinel errors reported by RepositoryManager.
var (
	ErrExecutorNotConfigured  = errors.New(executorRequiredMessageConstant)
	ErrRepositoryPathRequired = errors.New(repositoryPathRequiredConstant)
	ErrCommitMessageRequired  = errors.New(commitMessageRequiredConstant)
)

// GitExecutor exposes the subset of shell execution used by the repository manager.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryManager performs git operations against a repository working directory.
type RepositoryManager struct {
	gitExecutor GitExecutor
}

// NewRepositoryManager validates dependencies and constructs a RepositoryManager.
func NewRepositoryManager(gitExecutor GitExecutor) (*RepositoryManager, error) {
	if gitExecutor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &RepositoryManager{gitExecutor: gitExecutor}, nil
}

// IsInsideWorkTree reports whether the provided path belongs to a git working tree.
func (manager *RepositoryManager) IsInsideWorkTree(executionContext context.Context, repositoryPath string) (bool, error) {
	executionResult, executionError := manager.runGit(executionContext, repositoryPath, gitRevParseSubcommandConstant, gitWorkTreeFlagConstant)
	if executionError != nil {
		commandFailure := execshell.CommandFailedError{}
		if errors.As(executionError, &commandFailure) {
			return false, nil
		}
		return false, fmt.Errorf(workTreeInspectionTemplateConstant, executionError)
	}
	return strings.TrimSpace(executionResult.StandardOutput) == workTreeConfirmationValueConstant, nil
}

// StatusPorcelain returns the porcelain working tree status output.
func (manager *RepositoryManager) StatusPorcelain(executionContext context.Context, repositoryPath string) (string, error) {
	executionResult, executionError := manager.runGit(executionContext, repositoryPath, gitStatusSubcommandConstant, gitStatusPorcelainFlagConstant)
	if executionError != nil {
		return "", fmt.Errorf(statusErrorTemplateConstant, executionError)
	}
	return executionResult.StandardOutput, nil
}

// CheckCleanWorktree reports whether the working tree holds no pending changes.
func (manager *RepositoryManager) CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error) {
	porcelainOutput, statusError := manager.StatusPorcelain(executionContext, repositoryPath)
	if statusError != nil {
		return false, statusError
	}
	return len(strings.TrimSpace(porcelainOutput)) == 0, nil
}

// StageAllChanges stages every change beneath the repository root.
func (manager *RepositoryManager) StageAllChanges(executionContext context.Context, repositoryPath string) error {
	_, executionError := manager.runGit(executionContext, repositoryPath, gitAddSubcommandConstant, gitAddAllPathSpecConstant)
	if executionError != nil {
		return fmt.Errorf(stageChangesErrorTemplateConstant, executionError)
	}
	return nil
}

// CreateCommit records the staged changes using the provided message verbatim.
func (manager *RepositoryManager) CreateCommit(executionContext context.Context, repositoryPath string, commitMessage string) error {
	if len(commitMessage) == 0 {
		return ErrCommitMessageRequired
	}
	_, executionError := manager.runGit(executionContext, repositoryPath, gitCommitSubcommandConstant, gitCommitMessageFlagConstant, commitMessage)
	if executionError != nil {
		return fmt.Errorf(commitErrorTemplateConstant, executionError)
	}
	return nil
}

// PushBranch pushes the branch to the remote and records the upstream association.
func (manager *RepositoryManager) PushBranch(executionContext context.Context, repositoryPath string, remoteName string, branchName string) error {
	_, executionError := manager.runGit(executionContext, repositoryPath, gitPushSubcommandConstant, gitPushSetUpstreamFlagConstant, remoteName, branchName)
	if executionError != nil {
		return fmt.Errorf(pushErrorTemplateConstant, executionError)
	}
	return nil
}

// GetCurrentBranch resolves the checked-out branch name; the result is empty for detached heads.
func (manager *RepositoryManager) GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error) {
	executionResult, executionError := manager.runGit(executionContext, repositoryPath, gitBranchSubcommandConstant, gitBranchShowCurrentFlagConstant)
	if executionError != nil {
		return "", fmt.Errorf(branchErrorTemplateConstant, executionError)
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// HeadRevision resolves the full revision identifier of the current HEAD.
func (manager *RepositoryManager) HeadRevision(executionContext context.Context, repositoryPath string) (string, error) {
	executionResult, executionError := manager.runGit(executionContext, repositoryPath, gitRevParseSubcommandConstant, gitHeadReferenceConstant)
	if executionError != nil {
		return "", fmt.Errorf(revisionErrorTemplateConstant, executionError)
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// ShortHeadRevision resolves the abbreviated revision identifier of the current HEAD.
func (manager *RepositoryManager) ShortHeadRevision(executionContext context.Context, repositoryPath string) (string, error) {
	executionResult, executionError := manager.runGit(executionContext, repositoryPath, gitRevParseSubcommandConstant, gitRevParseShortFlagConstant, gitHeadReferenceConstant)
	if executionError != nil {
		return "", fmt.Errorf(revisionErrorTemplateConstant, executionError)
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// RemoteBranchRevision queries the remote for the revision its branch reference points at.
// The result is empty when the remote does not advertise the branch.
func (manager *RepositoryManager) RemoteBranchRevision(executionContext context.Context, repositoryPath string, remoteName string, branchName string) (string, error) {
	branchReference := branchReferencePrefixConstant + branchName
	executionResult, executionError := manager.runGit(executionContext, repositoryPath, gitLSRemoteSubcommandConstant, remoteName, branchReference)
	if executionError != nil {
		return "", fmt.Errorf(remoteRevisionErrorTemplateConstant, executionError)
	}

	trimmedOutput := strings.TrimSpace(executionResult.StandardOutput)
	if len(trimmedOutput) == 0 {
		return "", nil
	}

	outputFields := strings.Fields(trimmedOutput)
	return outputFields[0], nil
}

// ListRemotes returns the verbose remote listing for the repository.
func (manager *RepositoryManager) ListRemotes(executionContext context.Context, repositoryPath string) (string, error) {
	executionResult, executionError := manager.runGit(executionContext, repositoryPath, gitRemoteSubcommandConstant, gitRemoteVerboseFlagConstant)
	if executionError != nil {
		return "", fmt.Errorf(remoteListingErrorTemplateConstant, executionError)
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// UserIdentity combines the configured git user name and email address.
func (manager *RepositoryManager) UserIdentity(executionContext context.Context, repositoryPath string) (string, error) {
	nameResult, nameError := manager.runGit(executionContext, repositoryPath, gitConfigSubcommandConstant, gitConfigUserNameKeyConstant)
	if nameError != nil {
		return "", fmt.Errorf(userIdentityErrorTemplateConstant, nameError)
	}

	emailResult, emailError := manager.runGit(executionContext, repositoryPath, gitConfigSubcommandConstant, gitConfigUserEmailKeyConstant)
	if emailError != nil {
		return "", fmt.Errorf(userIdentityErrorTemplateConstant, emailError)
	}

	return fmt.Sprintf(userIdentityTemplateConstant, strings.TrimSpace(nameResult.StandardOutput), strings.TrimSpace(emailResult.StandardOutput)), nil
}

// RecentCommits returns the abbreviated log of the most recent commits.
func (manager *RepositoryManager) RecentCommits(executionContext context.Context, repositoryPath string, commitCount int) (string, error) {
	countFlag := fmt.Sprintf(gitLogCountFlagTemplateConstant, commitCount)
	executionResult, executionError := manager.runGit(executionContext, repositoryPath, gitLogSubcommandConstant, gitLogOnelineFlagConstant, countFlag)
	if executionError != nil {
		return "", fmt.Errorf(commitHistoryErrorTemplateConstant, executionError)
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

func (manager *RepositoryManager) runGit(executionContext context.Context, repositoryPath string, arguments ...string) (execshell.ExecutionResult, error) {
	if len(strings.TrimSpace(repositoryPath)) == 0 {
		return execshell.ExecutionResult{}, ErrRepositoryPathRequired
	}
	return manager.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: repositoryPath,
	})
}
