package entities

import (
	"errors"
	"strconv"
	"strings"
)

// ParsedSlide represents a single rendered slide
type ParsedSlide struct {
	// Index is the slide position in the presentation (0-based)
	Index int `json:"index"`

	// Title is extracted from the first heading or generated
	Title string `json:"title"`

	// Content is the slide markdown with the notes block removed
	Content string `json:"content"`

	// HTML is the rendered, layout-wrapped HTML fragment
	HTML string `json:"html"`

	// Notes contains the speaker notes; nil when the slide has no notes block
	Notes *string `json:"notes,omitempty"`

	// NotesHTML is the speaker notes rendered for the presenter view
	NotesHTML string `json:"notesHtml,omitempty"`

	// LineOffset is the 0-based document line where the slide content begins
	LineOffset int `json:"lineOffset"`

	// AppliedLayout is the display name of the layout that was applied
	AppliedLayout string `json:"appliedLayout,omitempty"`
}

// Validate ensures the slide is structurally consistent
func (s *ParsedSlide) Validate() error {
	if s.Index < 0 {
		return errors.New("slide index must be non-negative")
	}

	if s.LineOffset < 0 {
		return errors.New("slide line offset must be non-negative")
	}

	return nil
}

// ExtractTitle attempts to extract the slide title from content
func (s *ParsedSlide) ExtractTitle() string {
	for _, line := range strings.Split(s.Content, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#") {
			continue
		}
		title := strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
		if title != "" {
			return title
		}
	}

	return "Slide " + strconv.Itoa(s.Index+1)
}

// HasNotes returns true if the slide carried a notes block
func (s *ParsedSlide) HasNotes() bool {
	return s.Notes != nil
}

// NotesText returns the speaker notes or an empty string
func (s *ParsedSlide) NotesText() string {
	if s.Notes == nil {
		return ""
	}
	return *s.Notes
}

// HasLayout returns true if a layout transform was applied
func (s *ParsedSlide) HasLayout() bool {
	return s.AppliedLayout != ""
}
