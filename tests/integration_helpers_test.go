package tests

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/autopush/internal/autopush"
	"github.com/temirov/autopush/internal/execshell"
	"github.com/temirov/autopush/internal/gitrepo"
	"github.com/temirov/autopush/internal/runlog"
	"github.com/temirov/autopush/internal/version"
)

const integrationTimeout = 30 * time.Second

func requireGit(testInstance *testing.T) {
	testInstance.Helper()
	if _, lookupError := exec.LookPath("git"); lookupError != nil {
		testInstance.Skip("git binary not available")
	}
}

func runGitCommand(testInstance *testing.T, workingDirectory string, arguments ...string) string {
	testInstance.Helper()

	executionContext, cancel := context.WithTimeout(context.Background(), integrationTimeout)
	defer cancel()

	command := exec.CommandContext(executionContext, "git", arguments...)
	command.Dir = workingDirectory
	command.Env = append(os.Environ(),
		"GIT_CONFIG_NOSYSTEM=1",
		"HOME="+testInstance.TempDir(),
	)

	outputBytes, runError := command.CombinedOutput()
	require.NoError(testInstance, runError, string(outputBytes))
	return string(outputBytes)
}

// createRepositoryWithRemote builds a working repository with one commit pushed
// to a bare remote named origin, then returns both paths.
func createRepositoryWithRemote(testInstance *testing.T) (string, string) {
	testInstance.Helper()

	baseDirectory := testInstance.TempDir()
	remotePath := filepath.Join(baseDirectory, "remote.git")
	repositoryPath := filepath.Join(baseDirectory, "work")

	require.NoError(testInstance, os.MkdirAll(remotePath, 0o755))
	require.NoError(testInstance, os.MkdirAll(repositoryPath, 0o755))

	runGitCommand(testInstance, remotePath, "init", "--bare", "--initial-branch", "main")
	runGitCommand(testInstance, repositoryPath, "init", "--initial-branch", "main")
	runGitCommand(testInstance, repositoryPath, "config", "user.name", "Integration Bot")
	runGitCommand(testInstance, repositoryPath, "config", "user.email", "integration@example.com")
	runGitCommand(testInstance, repositoryPath, "remote", "add", "origin", remotePath)

	writeFile(testInstance, repositoryPath, "README.md", "initial contents\n")
	runGitCommand(testInstance, repositoryPath, "add", ".")
	runGitCommand(testInstance, repositoryPath, "commit", "-m", "initial commit")
	runGitCommand(testInstance, repositoryPath, "push", "-u", "origin", "main")

	return repositoryPath, remotePath
}

func writeFile(testInstance *testing.T, repositoryPath string, fileName string, fileContents string) {
	testInstance.Helper()
	require.NoError(testInstance, os.WriteFile(filepath.Join(repositoryPath, fileName), []byte(fileContents), 0o644))
}

func newIntegrationService(testInstance *testing.T) *autopush.Service {
	testInstance.Helper()

	shellExecutor, executorError := execshell.NewShellExecutor(zap.NewNop(), execshell.NewOSCommandRunner())
	require.NoError(testInstance, executorError)

	repositoryManager, managerError := gitrepo.NewRepositoryManager(shellExecutor)
	require.NoError(testInstance, managerError)

	excludeManager, excluderError := gitrepo.NewExcludeManager(shellExecutor)
	require.NoError(testInstance, excluderError)

	journal := runlog.NewJournal(
		runlog.DefaultJournalPath(testInstance.TempDir()),
		runlog.DefaultMaximumLineCount,
		runlog.DefaultRetainedLineCount,
	)
	failureReporter := runlog.NewFailureReporter(runlog.DefaultReportDirectory(testInstance.TempDir()))

	service, serviceError := autopush.NewService(autopush.ServiceDependencies{
		Logger:           zap.NewNop(),
		Repository:       repositoryManager,
		VersionTracker:   version.NewStore(""),
		Journal:          journal,
		FailureRecorder:  failureReporter,
		ArtifactExcluder: excludeManager,
	})
	require.NoError(testInstance, serviceError)
	return service
}

func remoteHeadRevision(testInstance *testing.T, remotePath string) string {
	testInstance.Helper()
	return strings.TrimSpace(runGitCommand(testInstance, remotePath, "rev-parse", "refs/heads/main"))
}

func localHeadRevision(testInstance *testing.T, repositoryPath string) string {
	testInstance.Helper()
	return strings.TrimSpace(runGitCommand(testInstance, repositoryPath, "rev-parse", "HEAD"))
}

func localCommitCount(testInstance *testing.T, repositoryPath string) string {
	testInstance.Helper()
	return strings.TrimSpace(runGitCommand(testInstance, repositoryPath, "rev-list", "--count", "HEAD"))
}
