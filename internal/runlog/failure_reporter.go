package runlog

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultReportDirectoryName holds per-failure report files beneath the repository root.
	DefaultReportDirectoryName = "autopush-errors"

	reportDirectoryModeConstant          = 0o755
	reportFileModeConstant               = 0o644
	reportNameTemplateConstant           = "error_%s_%s.txt"
	reportStampLayoutConstant            = "20060102_150405"
	reportTimeLineTemplateConstant       = "Failure time: %s"
	reportErrorLineTemplateConstant      = "Failure: %s"
	reportRepositoryLineTemplateConstant = "Repository: %s"
	reportPlatformLineTemplateConstant   = "Platform: %s"
	reportWriteErrorTemplateConstant     = "unable to write failure report: %w"
	uuidSuffixLengthConstant             = 8
)

// FailureReporter writes one report file per failed automation run.
type FailureReporter struct {
	reportDirectory string
	clock           func() time.Time
}

// NewFailureReporter constructs a FailureReporter writing beneath the provided directory.
func NewFailureReporter(reportDirectory string) *FailureReporter {
	return &FailureReporter{
		reportDirectory: reportDirectory,
		clock:           time.Now,
	}
}

// SetClock replaces the time source used for report names and timestamps.
func (reporter *FailureReporter) SetClock(clock func() time.Time) {
	if clock != nil {
		reporter.clock = clock
	}
}

// Report records the failure in a uniquely named file and returns the file path.
func (reporter *FailureReporter) Report(repositoryPath string, failureMessage string) (string, error) {
	if directoryError := os.MkdirAll(reporter.reportDirectory, reportDirectoryModeConstant); directoryError != nil {
		return "", fmt.Errorf(reportWriteErrorTemplateConstant, directoryError)
	}

	reportTime := reporter.clock()
	uniqueSuffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:uuidSuffixLengthConstant]
	reportName := fmt.Sprintf(reportNameTemplateConstant, reportTime.Format(reportStampLayoutConstant), uniqueSuffix)
	reportPath := filepath.Join(reporter.reportDirectory, reportName)

	reportLines := []string{
		fmt.Sprintf(reportTimeLineTemplateConstant, reportTime.Format(journalTimestampLayoutConstant)),
		fmt.Sprintf(reportErrorLineTemplateConstant, failureMessage),
		fmt.Sprintf(reportRepositoryLineTemplateConstant, repositoryPath),
		fmt.Sprintf(reportPlatformLineTemplateConstant, runtime.GOOS),
		"",
	}

	if writeError := os.WriteFile(reportPath, []byte(strings.Join(reportLines, newlineConstant)), reportFileModeConstant); writeError != nil {
		return "", fmt.Errorf(reportWriteErrorTemplateConstant, writeError)
	}
	return reportPath, nil
}

// DefaultReportDirectory resolves the report directory beneath the repository root.
func DefaultReportDirectory(repositoryPath string) string {
	return filepath.Join(repositoryPath, DefaultReportDirectoryName)
}
