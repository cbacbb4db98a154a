package gitrepo_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/autopush/internal/execshell"
	"github.com/temirov/autopush/internal/gitrepo"
)

func newExcludeManagerUnderTest(testInstance *testing.T, repositoryPath string) *gitrepo.ExcludeManager {
	testInstance.Helper()

	executor := &stubGitExecutor{
		results: []execshell.ExecutionResult{{StandardOutput: ".git\n"}},
	}
	manager, creationError := gitrepo.NewExcludeManager(executor)
	require.NoError(testInstance, creationError)
	require.NoError(testInstance, os.MkdirAll(filepath.Join(repositoryPath, ".git"), 0o755))
	return manager
}

func readExcludeFile(testInstance *testing.T, repositoryPath string) string {
	testInstance.Helper()
	contentBytes, readError := os.ReadFile(filepath.Join(repositoryPath, ".git", "info", "exclude"))
	require.NoError(testInstance, readError)
	return string(contentBytes)
}

func TestNewExcludeManagerValidation(testInstance *testing.T) {
	_, creationError := gitrepo.NewExcludeManager(nil)
	require.ErrorIs(testInstance, creationError, gitrepo.ErrExecutorNotConfigured)
}

func TestEnsureExcludedCreatesExclusionFile(testInstance *testing.T) {
	repositoryPath := testInstance.TempDir()
	manager := newExcludeManagerUnderTest(testInstance, repositoryPath)

	ensureError := manager.EnsureExcluded(context.Background(), repositoryPath, []string{".autopush-version", "autopush-journal.log"})
	require.NoError(testInstance, ensureError)

	excludeContent := readExcludeFile(testInstance, repositoryPath)
	require.Contains(testInstance, excludeContent, ".autopush-version\n")
	require.Contains(testInstance, excludeContent, "autopush-journal.log\n")
}

func TestEnsureExcludedPreservesExistingEntries(testInstance *testing.T) {
	repositoryPath := testInstance.TempDir()
	manager := newExcludeManagerUnderTest(testInstance, repositoryPath)

	excludeDirectory := filepath.Join(repositoryPath, ".git", "info")
	require.NoError(testInstance, os.MkdirAll(excludeDirectory, 0o755))
	require.NoError(testInstance, os.WriteFile(filepath.Join(excludeDirectory, "exclude"), []byte("*.swp\n"), 0o644))

	ensureError := manager.EnsureExcluded(context.Background(), repositoryPath, []string{".autopush-version"})
	require.NoError(testInstance, ensureError)

	excludeContent := readExcludeFile(testInstance, repositoryPath)
	require.Contains(testInstance, excludeContent, "*.swp\n")
	require.Contains(testInstance, excludeContent, ".autopush-version\n")
}

func TestEnsureExcludedIsIdempotent(testInstance *testing.T) {
	repositoryPath := testInstance.TempDir()

	executor := &stubGitExecutor{
		results: []execshell.ExecutionResult{
			{StandardOutput: ".git\n"},
			{StandardOutput: ".git\n"},
		},
	}
	manager, creationError := gitrepo.NewExcludeManager(executor)
	require.NoError(testInstance, creationError)
	require.NoError(testInstance, os.MkdirAll(filepath.Join(repositoryPath, ".git"), 0o755))

	patterns := []string{".autopush-version", "autopush-errors/"}
	require.NoError(testInstance, manager.EnsureExcluded(context.Background(), repositoryPath, patterns))
	firstContent := readExcludeFile(testInstance, repositoryPath)

	require.NoError(testInstance, manager.EnsureExcluded(context.Background(), repositoryPath, patterns))
	require.Equal(testInstance, firstContent, readExcludeFile(testInstance, repositoryPath))
}

func TestEnsureExcludedRequiresRepositoryPath(testInstance *testing.T) {
	manager, creationError := gitrepo.NewExcludeManager(&stubGitExecutor{})
	require.NoError(testInstance, creationError)

	ensureError := manager.EnsureExcluded(context.Background(), "  ", []string{".autopush-version"})
	require.ErrorIs(testInstance, ensureError, gitrepo.ErrRepositoryPathRequired)
}
