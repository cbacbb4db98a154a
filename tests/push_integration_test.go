package tests

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/autopush/internal/autopush"
)

func defaultIntegrationOptions(repositoryPath string) autopush.RunOptions {
	return autopush.RunOptions{
		RepositoryPath: repositoryPath,
		RemoteName:     "origin",
		BranchName:     "main",
	}
}

func TestPushSequencePublishesPendingChanges(testInstance *testing.T) {
	requireGit(testInstance)

	repositoryPath, remotePath := createRepositoryWithRemote(testInstance)
	writeFile(testInstance, repositoryPath, "feature.txt", "new feature\n")

	service := newIntegrationService(testInstance)
	outcome, runError := service.Run(context.Background(), defaultIntegrationOptions(repositoryPath))
	require.NoError(testInstance, runError)

	require.True(testInstance, outcome.ChangesDetected)
	require.True(testInstance, outcome.CommitCreated)
	require.True(testInstance, outcome.PushVerified)
	require.Equal(testInstance, localHeadRevision(testInstance, repositoryPath), remoteHeadRevision(testInstance, remotePath))

	commitMessage := runGitCommand(testInstance, repositoryPath, "log", "-1", "--format=%B")
	require.Contains(testInstance, commitMessage, "Version 1.1.4")
	require.Contains(testInstance, commitMessage, "feature.txt")
}

func TestPushSequenceContinuesWithoutPendingChanges(testInstance *testing.T) {
	requireGit(testInstance)

	repositoryPath, remotePath := createRepositoryWithRemote(testInstance)
	remoteRevisionBefore := remoteHeadRevision(testInstance, remotePath)

	service := newIntegrationService(testInstance)
	outcome, runError := service.Run(context.Background(), defaultIntegrationOptions(repositoryPath))
	require.NoError(testInstance, runError)

	require.False(testInstance, outcome.ChangesDetected)
	require.False(testInstance, outcome.CommitCreated)
	require.Equal(testInstance, remoteRevisionBefore, remoteHeadRevision(testInstance, remotePath))
}

func TestPushSequencePassesCommitMessageVerbatim(testInstance *testing.T) {
	requireGit(testInstance)

	repositoryPath, _ := createRepositoryWithRemote(testInstance)
	writeFile(testInstance, repositoryPath, "notes.txt", "draft\n")

	literalMessage := "fix: keep \"quoted\" words and --flag-like text intact"
	options := defaultIntegrationOptions(repositoryPath)
	options.CommitMessageOverride = literalMessage

	service := newIntegrationService(testInstance)
	_, runError := service.Run(context.Background(), options)
	require.NoError(testInstance, runError)

	commitMessage := strings.TrimSpace(runGitCommand(testInstance, repositoryPath, "log", "-1", "--format=%B"))
	require.Equal(testInstance, literalMessage, commitMessage)
}

func TestRejectedPushLeavesLocalCommitInPlace(testInstance *testing.T) {
	requireGit(testInstance)

	repositoryPath, remotePath := createRepositoryWithRemote(testInstance)

	// Advance the remote from a second clone so the next push is rejected.
	secondClonePath := filepath.Join(testInstance.TempDir(), "second")
	runGitCommand(testInstance, filepath.Dir(secondClonePath), "clone", remotePath, secondClonePath)
	runGitCommand(testInstance, secondClonePath, "config", "user.name", "Integration Bot")
	runGitCommand(testInstance, secondClonePath, "config", "user.email", "integration@example.com")
	writeFile(testInstance, secondClonePath, "competing.txt", "remote side change\n")
	runGitCommand(testInstance, secondClonePath, "add", ".")
	runGitCommand(testInstance, secondClonePath, "commit", "-m", "competing commit")
	runGitCommand(testInstance, secondClonePath, "push", "origin", "main")

	writeFile(testInstance, repositoryPath, "local.txt", "local change\n")
	localRevisionBefore := localHeadRevision(testInstance, repositoryPath)

	service := newIntegrationService(testInstance)
	outcome, runError := service.Run(context.Background(), defaultIntegrationOptions(repositoryPath))
	require.Error(testInstance, runError)
	require.Contains(testInstance, runError.Error(), "push step failed")

	require.True(testInstance, outcome.CommitCreated)
	localRevisionAfter := localHeadRevision(testInstance, repositoryPath)
	require.NotEqual(testInstance, localRevisionBefore, localRevisionAfter)

	commitMessage := runGitCommand(testInstance, repositoryPath, "log", "-1", "--format=%B")
	require.Contains(testInstance, commitMessage, "local.txt")
}

func TestSecondRunWithoutInterveningChangesAddsSingleCommit(testInstance *testing.T) {
	requireGit(testInstance)

	repositoryPath, _ := createRepositoryWithRemote(testInstance)
	service := newIntegrationService(testInstance)

	writeFile(testInstance, repositoryPath, "feature.txt", "new feature\n")
	firstOutcome, firstError := service.Run(context.Background(), defaultIntegrationOptions(repositoryPath))
	require.NoError(testInstance, firstError)
	require.True(testInstance, firstOutcome.CommitCreated)

	commitCountAfterFirstRun := localCommitCount(testInstance, repositoryPath)
	require.Equal(testInstance, "2", commitCountAfterFirstRun)

	secondOutcome, secondError := service.Run(context.Background(), defaultIntegrationOptions(repositoryPath))
	require.NoError(testInstance, secondError)
	require.False(testInstance, secondOutcome.ChangesDetected)
	require.False(testInstance, secondOutcome.CommitCreated)
	require.Equal(testInstance, commitCountAfterFirstRun, localCommitCount(testInstance, repositoryPath))
}

func TestVersionFilePersistsAcrossRuns(testInstance *testing.T) {
	requireGit(testInstance)

	repositoryPath, _ := createRepositoryWithRemote(testInstance)
	service := newIntegrationService(testInstance)

	writeFile(testInstance, repositoryPath, "first.txt", "first\n")
	firstOutcome, firstError := service.Run(context.Background(), defaultIntegrationOptions(repositoryPath))
	require.NoError(testInstance, firstError)
	require.Equal(testInstance, "1.1.4", firstOutcome.Version)

	writeFile(testInstance, repositoryPath, "second.txt", "second\n")
	secondOutcome, secondError := service.Run(context.Background(), defaultIntegrationOptions(repositoryPath))
	require.NoError(testInstance, secondError)
	require.Equal(testInstance, "1.1.5", secondOutcome.Version)
}
