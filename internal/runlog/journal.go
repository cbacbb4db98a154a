package runlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultJournalFileName is the journal created beside the repository.
	DefaultJournalFileName = "autopush-journal.log"

	// DefaultMaximumLineCount triggers rotation once the journal reaches it.
	DefaultMaximumLineCount = 2000

	// DefaultRetainedLineCount is the tail kept after rotation.
	DefaultRetainedLineCount = 1000

	journalFileModeConstant          = 0o644
	journalEntrySeparatorConstant    = "============================================================"
	rotationMarkerBorderConstant     = "================================================================================"
	rotationMarkerTitleConstant      = "JOURNAL ROTATED"
	rotationTimeTemplateConstant     = "Time: %s"
	rotationPreviousTemplateConstant = "Previous size: %d lines"
	rotationRetainedTemplateConstant = "New size: %d lines"
	rotationLimitTemplateConstant    = "Rotation threshold: %d lines"
	entryTimestampTemplateConstant   = "[%s]"
	journalTimestampLayoutConstant   = "2006-01-02 15:04:05"
	appendErrorTemplateConstant      = "unable to append journal entry: %w"
	rotationErrorTemplateConstant    = "unable to rotate journal: %w"
	statusErrorTemplateConstant      = "unable to inspect journal: %w"
	newlineConstant                  = "\n"
)

// JournalStatus summarizes the journal file on disk.
type JournalStatus struct {
	Exists    bool
	LineCount int
	SizeBytes int64
	LastEntry string
}

// Journal appends timestamped entries to a log file and rotates it by line count.
type Journal struct {
	journalPath       string
	maximumLineCount  int
	retainedLineCount int
	clock             func() time.Time
	mutex             sync.Mutex
}

// NewJournal constructs a Journal for the given path with defaulted rotation limits.
func NewJournal(journalPath string, maximumLineCount int, retainedLineCount int) *Journal {
	if maximumLineCount <= 0 {
		maximumLineCount = DefaultMaximumLineCount
	}
	if retainedLineCount <= 0 || retainedLineCount >= maximumLineCount {
		retainedLineCount = DefaultRetainedLineCount
	}
	return &Journal{
		journalPath:       journalPath,
		maximumLineCount:  maximumLineCount,
		retainedLineCount: retainedLineCount,
		clock:             time.Now,
	}
}

// SetClock replaces the time source used for entry timestamps.
func (journal *Journal) SetClock(clock func() time.Time) {
	if clock != nil {
		journal.clock = clock
	}
}

// Append rotates the journal when needed and then writes a timestamped entry.
func (journal *Journal) Append(entryMessage string) error {
	journal.mutex.Lock()
	defer journal.mutex.Unlock()

	if rotationError := journal.rotateIfNeeded(); rotationError != nil {
		return rotationError
	}

	entryTimestamp := journal.clock().Format(journalTimestampLayoutConstant)
	entryLines := []string{
		"",
		journalEntrySeparatorConstant,
		fmt.Sprintf(entryTimestampTemplateConstant, entryTimestamp),
		journalEntrySeparatorConstant,
		entryMessage,
		"",
	}

	journalFile, openError := os.OpenFile(journal.journalPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, journalFileModeConstant)
	if openError != nil {
		return fmt.Errorf(appendErrorTemplateConstant, openError)
	}
	defer func() { _ = journalFile.Close() }()

	if _, writeError := journalFile.WriteString(strings.Join(entryLines, newlineConstant)); writeError != nil {
		return fmt.Errorf(appendErrorTemplateConstant, writeError)
	}
	return nil
}

// Status reports the current journal size, line count, and last non-empty line.
func (journal *Journal) Status() (JournalStatus, error) {
	journal.mutex.Lock()
	defer journal.mutex.Unlock()

	fileInformation, statError := os.Stat(journal.journalPath)
	if statError != nil {
		if os.IsNotExist(statError) {
			return JournalStatus{}, nil
		}
		return JournalStatus{}, fmt.Errorf(statusErrorTemplateConstant, statError)
	}

	journalLines, readError := journal.readLines()
	if readError != nil {
		return JournalStatus{}, readError
	}

	lastEntry := ""
	for lineIndex := len(journalLines) - 1; lineIndex >= 0; lineIndex-- {
		trimmedLine := strings.TrimSpace(journalLines[lineIndex])
		if len(trimmedLine) > 0 && trimmedLine != journalEntrySeparatorConstant && trimmedLine != rotationMarkerBorderConstant {
			lastEntry = trimmedLine
			break
		}
	}

	return JournalStatus{
		Exists:    true,
		LineCount: len(journalLines),
		SizeBytes: fileInformation.Size(),
		LastEntry: lastEntry,
	}, nil
}

func (journal *Journal) rotateIfNeeded() error {
	if _, statError := os.Stat(journal.journalPath); statError != nil {
		if os.IsNotExist(statError) {
			return nil
		}
		return fmt.Errorf(rotationErrorTemplateConstant, statError)
	}

	journalLines, readError := journal.readLines()
	if readError != nil {
		return readError
	}
	if len(journalLines) < journal.maximumLineCount {
		return nil
	}

	retainedLines := journalLines[len(journalLines)-journal.retainedLineCount:]
	rotationTimestamp := journal.clock().Format(journalTimestampLayoutConstant)
	markerLines := []string{
		"",
		rotationMarkerBorderConstant,
		rotationMarkerTitleConstant,
		fmt.Sprintf(rotationTimeTemplateConstant, rotationTimestamp),
		fmt.Sprintf(rotationPreviousTemplateConstant, len(journalLines)),
		fmt.Sprintf(rotationRetainedTemplateConstant, len(retainedLines)),
		fmt.Sprintf(rotationLimitTemplateConstant, journal.maximumLineCount),
		rotationMarkerBorderConstant,
		"",
	}

	rotatedContents := strings.Join(retainedLines, newlineConstant) + strings.Join(markerLines, newlineConstant)
	if writeError := os.WriteFile(journal.journalPath, []byte(rotatedContents), journalFileModeConstant); writeError != nil {
		return fmt.Errorf(rotationErrorTemplateConstant, writeError)
	}
	return nil
}

func (journal *Journal) readLines() ([]string, error) {
	journalContents, readError := os.ReadFile(journal.journalPath)
	if readError != nil {
		return nil, fmt.Errorf(rotationErrorTemplateConstant, readError)
	}
	return strings.Split(string(journalContents), newlineConstant), nil
}

// DefaultJournalPath resolves the journal location beneath the repository root.
func DefaultJournalPath(repositoryPath string) string {
	return filepath.Join(repositoryPath, DefaultJournalFileName)
}
