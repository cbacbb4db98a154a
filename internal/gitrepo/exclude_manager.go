package gitrepo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/autopush/internal/execshell"
)

const (
	gitDirectoryFlagConstant            = "--git-dir"
	excludeInfoDirectoryNameConstant    = "info"
	excludeFileNameConstant             = "exclude"
	excludeFilePermissionsConstant      = 0o644
	excludeDirectoryPermissionsConstant = 0o755
	gitDirResolutionTemplateConstant    = "unable to resolve git directory: %w"
	excludeReadErrorTemplateConstant    = "unable to read exclusion file: %w"
	excludeWriteErrorTemplateConstant   = "unable to update exclusion file: %w"
)

// ExcludeManager registers path patterns in the repository's local exclusion
// file (info/exclude inside the git directory) so they never surface as
// pending changes and are skipped by stage-all operations.
type ExcludeManager struct {
	gitExecutor GitExecutor
}

// NewExcludeManager validates dependencies and constructs an ExcludeManager.
func NewExcludeManager(gitExecutor GitExecutor) (*ExcludeManager, error) {
	if gitExecutor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &ExcludeManager{gitExecutor: gitExecutor}, nil
}

// EnsureExcluded appends the patterns missing from the local exclusion file.
// Existing entries are preserved and patterns already present are not
// duplicated, so repeated calls leave the file unchanged.
func (manager *ExcludeManager) EnsureExcluded(executionContext context.Context, repositoryPath string, patterns []string) error {
	if len(patterns) == 0 {
		return nil
	}
	if len(strings.TrimSpace(repositoryPath)) == 0 {
		return ErrRepositoryPathRequired
	}

	executionResult, executionError := manager.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRevParseSubcommandConstant, gitDirectoryFlagConstant},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return fmt.Errorf(gitDirResolutionTemplateConstant, executionError)
	}

	gitDirectory := strings.TrimSpace(executionResult.StandardOutput)
	if !filepath.IsAbs(gitDirectory) {
		gitDirectory = filepath.Join(repositoryPath, gitDirectory)
	}

	excludeFilePath := filepath.Join(gitDirectory, excludeInfoDirectoryNameConstant, excludeFileNameConstant)
	existingContent, readError := os.ReadFile(excludeFilePath)
	if readError != nil && !os.IsNotExist(readError) {
		return fmt.Errorf(excludeReadErrorTemplateConstant, readError)
	}

	existingPatterns := make(map[string]struct{})
	for _, existingLine := range strings.Split(string(existingContent), "\n") {
		existingPatterns[strings.TrimSpace(existingLine)] = struct{}{}
	}

	missingPatterns := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if _, alreadyPresent := existingPatterns[pattern]; !alreadyPresent {
			missingPatterns = append(missingPatterns, pattern)
		}
	}
	if len(missingPatterns) == 0 {
		return nil
	}

	if directoryError := os.MkdirAll(filepath.Dir(excludeFilePath), excludeDirectoryPermissionsConstant); directoryError != nil {
		return fmt.Errorf(excludeWriteErrorTemplateConstant, directoryError)
	}

	updatedContent := string(existingContent)
	if len(updatedContent) > 0 && !strings.HasSuffix(updatedContent, "\n") {
		updatedContent += "\n"
	}
	updatedContent += strings.Join(missingPatterns, "\n") + "\n"

	if writeError := os.WriteFile(excludeFilePath, []byte(updatedContent), excludeFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(excludeWriteErrorTemplateConstant, writeError)
	}
	return nil
}
