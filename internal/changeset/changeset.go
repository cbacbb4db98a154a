package changeset

import (
	"fmt"
	"strings"
)

const (
	untrackedStatusCodeConstant     = "??"
	addedStatusCodeConstant         = "A"
	modifiedStatusCodeConstant      = "M"
	deletedStatusCodeConstant       = "D"
	porcelainPathOffsetConstant     = 3
	porcelainStatusWidthConstant    = 2
	sectionPathLimitConstant        = 5
	commitMessageHeaderConstant     = "Automated changes:"
	addedSectionTitleConstant       = "Added files:"
	modifiedSectionTitleConstant    = "Modified files:"
	deletedSectionTitleConstant     = "Deleted files:"
	sectionEntryTemplateConstant    = "- %s"
	sectionOverflowTemplateConstant = "... and %d more files"
	versionHeaderTemplateConstant   = "Version %s - %s"
	newlineConstant                 = "\n"
)

// ChangeSet groups pending working tree paths by the kind of change.
type ChangeSet struct {
	AddedPaths    []string
	ModifiedPaths []string
	DeletedPaths  []string
}

// IsEmpty reports whether the change set holds no pending paths.
func (changes ChangeSet) IsEmpty() bool {
	return len(changes.AddedPaths) == 0 && len(changes.ModifiedPaths) == 0 && len(changes.DeletedPaths) == 0
}

// TotalPathCount returns the number of pending paths across all sections.
func (changes ChangeSet) TotalPathCount() int {
	return len(changes.AddedPaths) + len(changes.ModifiedPaths) + len(changes.DeletedPaths)
}

// ParsePorcelain interprets `git status --porcelain` output.
// Untracked entries count as additions; unrecognized status codes are ignored.
func ParsePorcelain(porcelainOutput string) ChangeSet {
	parsedChanges := ChangeSet{}

	for _, statusLine := range strings.Split(porcelainOutput, newlineConstant) {
		if len(strings.TrimSpace(statusLine)) == 0 {
			continue
		}
		if len(statusLine) <= porcelainPathOffsetConstant {
			continue
		}

		statusCode := strings.TrimSpace(statusLine[:porcelainStatusWidthConstant])
		changedPath := statusLine[porcelainPathOffsetConstant:]

		switch statusCode {
		case addedStatusCodeConstant, untrackedStatusCodeConstant:
			parsedChanges.AddedPaths = append(parsedChanges.AddedPaths, changedPath)
		case modifiedStatusCodeConstant:
			parsedChanges.ModifiedPaths = append(parsedChanges.ModifiedPaths, changedPath)
		case deletedStatusCodeConstant:
			parsedChanges.DeletedPaths = append(parsedChanges.DeletedPaths, changedPath)
		}
	}

	return parsedChanges
}

// Describe renders the change set as a human-readable summary with capped sections.
func (changes ChangeSet) Describe() string {
	summaryLines := []string{commitMessageHeaderConstant, ""}
	summaryLines = appendSection(summaryLines, addedSectionTitleConstant, changes.AddedPaths)
	summaryLines = appendSection(summaryLines, modifiedSectionTitleConstant, changes.ModifiedPaths)
	summaryLines = appendSection(summaryLines, deletedSectionTitleConstant, changes.DeletedPaths)
	return strings.TrimSpace(strings.Join(summaryLines, newlineConstant))
}

// BuildCommitMessage prefixes the change summary with a version and timestamp header line.
func BuildCommitMessage(versionLabel string, timestampLabel string, changes ChangeSet) string {
	headerLine := fmt.Sprintf(versionHeaderTemplateConstant, versionLabel, timestampLabel)
	return headerLine + newlineConstant + changes.Describe()
}

func appendSection(summaryLines []string, sectionTitle string, sectionPaths []string) []string {
	if len(sectionPaths) == 0 {
		return summaryLines
	}

	summaryLines = append(summaryLines, sectionTitle)
	for pathIndex, sectionPath := range sectionPaths {
		if pathIndex == sectionPathLimitConstant {
			break
		}
		summaryLines = append(summaryLines, fmt.Sprintf(sectionEntryTemplateConstant, sectionPath))
	}
	if len(sectionPaths) > sectionPathLimitConstant {
		summaryLines = append(summaryLines, fmt.Sprintf(sectionOverflowTemplateConstant, len(sectionPaths)-sectionPathLimitConstant))
	}
	return append(summaryLines, "")
}
