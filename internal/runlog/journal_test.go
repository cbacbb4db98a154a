package runlog_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/temirov/autopush/internal/runlog"
)

func fixedClock() time.Time {
	return time.Date(2026, time.March, 14, 9, 26, 53, 0, time.UTC)
}

func TestJournalAppendWritesTimestampedEntry(testInstance *testing.T) {
	journalPath := filepath.Join(testInstance.TempDir(), runlog.DefaultJournalFileName)
	journal := runlog.NewJournal(journalPath, 0, 0)
	journal.SetClock(fixedClock)

	appendError := journal.Append("Push completed for version 1.1.4")
	require.NoError(testInstance, appendError)

	journalContents, readError := os.ReadFile(journalPath)
	require.NoError(testInstance, readError)
	require.Contains(testInstance, string(journalContents), "[2026-03-14 09:26:53]")
	require.Contains(testInstance, string(journalContents), "Push completed for version 1.1.4")
}

func TestJournalRotatesBeforeAppend(testInstance *testing.T) {
	journalPath := filepath.Join(testInstance.TempDir(), runlog.DefaultJournalFileName)

	var seedLines []string
	for lineIndex := 0; lineIndex < 30; lineIndex++ {
		seedLines = append(seedLines, fmt.Sprintf("historic entry %d", lineIndex))
	}
	writeError := os.WriteFile(journalPath, []byte(strings.Join(seedLines, "\n")), 0o644)
	require.NoError(testInstance, writeError)

	journal := runlog.NewJournal(journalPath, 30, 10)
	journal.SetClock(fixedClock)

	appendError := journal.Append("entry after rotation")
	require.NoError(testInstance, appendError)

	journalContents, readError := os.ReadFile(journalPath)
	require.NoError(testInstance, readError)
	rotatedJournal := string(journalContents)

	require.NotContains(testInstance, rotatedJournal, "historic entry 0")
	require.Contains(testInstance, rotatedJournal, "historic entry 29")
	require.Contains(testInstance, rotatedJournal, "JOURNAL ROTATED")
	require.Contains(testInstance, rotatedJournal, "Previous size: 30 lines")
	require.Contains(testInstance, rotatedJournal, "entry after rotation")
}

func TestJournalSkipsRotationBelowThreshold(testInstance *testing.T) {
	journalPath := filepath.Join(testInstance.TempDir(), runlog.DefaultJournalFileName)
	writeError := os.WriteFile(journalPath, []byte("first entry\nsecond entry\n"), 0o644)
	require.NoError(testInstance, writeError)

	journal := runlog.NewJournal(journalPath, 100, 10)
	journal.SetClock(fixedClock)

	appendError := journal.Append("third entry")
	require.NoError(testInstance, appendError)

	journalContents, readError := os.ReadFile(journalPath)
	require.NoError(testInstance, readError)
	require.Contains(testInstance, string(journalContents), "first entry")
	require.NotContains(testInstance, string(journalContents), "JOURNAL ROTATED")
}

func TestJournalStatus(testInstance *testing.T) {
	testInstance.Run("missing_journal", func(testInstance *testing.T) {
		journal := runlog.NewJournal(filepath.Join(testInstance.TempDir(), "missing.log"), 0, 0)

		journalStatus, statusError := journal.Status()
		require.NoError(testInstance, statusError)
		require.False(testInstance, journalStatus.Exists)
	})

	testInstance.Run("existing_journal", func(testInstance *testing.T) {
		journalPath := filepath.Join(testInstance.TempDir(), runlog.DefaultJournalFileName)
		journal := runlog.NewJournal(journalPath, 0, 0)
		journal.SetClock(fixedClock)
		require.NoError(testInstance, journal.Append("cycle completed"))

		journalStatus, statusError := journal.Status()
		require.NoError(testInstance, statusError)
		require.True(testInstance, journalStatus.Exists)
		require.Greater(testInstance, journalStatus.LineCount, 0)
		require.Greater(testInstance, journalStatus.SizeBytes, int64(0))
		require.Equal(testInstance, "cycle completed", journalStatus.LastEntry)
	})
}

func TestFailureReporterWritesReportFile(testInstance *testing.T) {
	reportDirectory := filepath.Join(testInstance.TempDir(), runlog.DefaultReportDirectoryName)
	failureReporter := runlog.NewFailureReporter(reportDirectory)
	failureReporter.SetClock(fixedClock)

	reportPath, reportError := failureReporter.Report("/tmp/project", "git push exited with code 1")
	require.NoError(testInstance, reportError)

	reportName := filepath.Base(reportPath)
	require.True(testInstance, strings.HasPrefix(reportName, "error_20260314_092653_"))
	require.True(testInstance, strings.HasSuffix(reportName, ".txt"))

	reportContents, readError := os.ReadFile(reportPath)
	require.NoError(testInstance, readError)
	require.Contains(testInstance, string(reportContents), "Failure: git push exited with code 1")
	require.Contains(testInstance, string(reportContents), "Repository: /tmp/project")
}

func TestFailureReporterProducesUniqueNames(testInstance *testing.T) {
	reportDirectory := filepath.Join(testInstance.TempDir(), runlog.DefaultReportDirectoryName)
	failureReporter := runlog.NewFailureReporter(reportDirectory)
	failureReporter.SetClock(fixedClock)

	firstReportPath, firstError := failureReporter.Report("/tmp/project", "first failure")
	require.NoError(testInstance, firstError)
	secondReportPath, secondError := failureReporter.Report("/tmp/project", "second failure")
	require.NoError(testInstance, secondError)

	require.NotEqual(testInstance, firstReportPath, secondReportPath)
}
