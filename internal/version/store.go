package version

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
)

const (
	// DefaultVersion seeds repositories that have no recorded version yet.
	DefaultVersion = "1.1.3"

	// DefaultFileName is the version file created inside the repository root.
	DefaultFileName = ".autopush-version"

	versionFileModeConstant         = 0o644
	componentRolloverLimitConstant  = 99
	versionTemplateConstant         = "%d.%d.%d"
	parseErrorTemplateConstant      = "unable to parse version %q: %w"
	readErrorTemplateConstant       = "unable to read version file: %w"
	writeErrorTemplateConstant      = "unable to write version file: %w"
	fileNameRequiredMessageConstant = "version store requires a file name"
)

// Store loads and saves the repository version from a file beneath the repository root.
type Store struct {
	fileName string
}

// NewStore constructs a Store writing to the provided file name, falling back to DefaultFileName.
func NewStore(fileName string) *Store {
	resolvedFileName := strings.TrimSpace(fileName)
	if len(resolvedFileName) == 0 {
		resolvedFileName = DefaultFileName
	}
	return &Store{fileName: resolvedFileName}
}

// Load reads the recorded version, returning DefaultVersion when the file is absent or empty.
func (store *Store) Load(repositoryPath string) (string, error) {
	versionFilePath := filepath.Join(repositoryPath, store.fileName)

	fileContents, readError := os.ReadFile(versionFilePath)
	if readError != nil {
		if os.IsNotExist(readError) {
			return DefaultVersion, nil
		}
		return "", fmt.Errorf(readErrorTemplateConstant, readError)
	}

	recordedVersion := strings.TrimSpace(string(fileContents))
	if len(recordedVersion) == 0 {
		return DefaultVersion, nil
	}

	if _, parseError := semver.StrictNewVersion(recordedVersion); parseError != nil {
		return DefaultVersion, nil
	}

	return recordedVersion, nil
}

// Save records the version for subsequent runs.
func (store *Store) Save(repositoryPath string, versionValue string) error {
	versionFilePath := filepath.Join(repositoryPath, store.fileName)
	if writeError := os.WriteFile(versionFilePath, []byte(versionValue), versionFileModeConstant); writeError != nil {
		return fmt.Errorf(writeErrorTemplateConstant, writeError)
	}
	return nil
}

// Increment advances the version one patch step, rolling components over past 99.
// 1.1.99 becomes 1.2.0 and 1.99.99 becomes 2.0.0.
func Increment(currentVersion string) (string, error) {
	parsedVersion, parseError := semver.StrictNewVersion(strings.TrimSpace(currentVersion))
	if parseError != nil {
		return "", fmt.Errorf(parseErrorTemplateConstant, currentVersion, parseError)
	}

	majorComponent := parsedVersion.Major()
	minorComponent := parsedVersion.Minor()
	patchComponent := parsedVersion.Patch() + 1

	if patchComponent > componentRolloverLimitConstant {
		patchComponent = 0
		minorComponent++
	}
	if minorComponent > componentRolloverLimitConstant {
		minorComponent = 0
		majorComponent++
	}

	return fmt.Sprintf(versionTemplateConstant, majorComponent, minorComponent, patchComponent), nil
}
