package parser

import (
	"regexp"
	"strings"
)

// NotesExtractor handles extraction of speaker notes from slide markdown
type NotesExtractor struct {
	noteRegex *regexp.Regexp
}

// NewNotesExtractor creates a new notes extractor
func NewNotesExtractor() *NotesExtractor {
	return &NotesExtractor{
		noteRegex: regexp.MustCompile(`(?is)<!--\s*notes\s*-->(.*?)<!--\s*/notes\s*-->`),
	}
}

// Locate returns the byte range of the first complete notes block
func (e *NotesExtractor) Locate(content string) (start, end int, ok bool) {
	loc := e.noteRegex.FindStringIndex(content)
	if loc == nil {
		return 0, 0, false
	}
	return loc[0], loc[1], true
}

// ExtractNotes removes the first <!-- notes --> ... <!-- /notes --> block
// from content. notes is nil when there is no complete block; an opener
// without a closer stays in the content.
func (e *NotesExtractor) ExtractNotes(content string) (mainContent string, notes *string) {
	loc := e.noteRegex.FindStringSubmatchIndex(content)
	if loc == nil {
		return strings.TrimSpace(content), nil
	}

	text := strings.TrimSpace(content[loc[2]:loc[3]])
	mainContent = content[:loc[0]] + content[loc[1]:]

	return strings.TrimSpace(mainContent), &text
}
