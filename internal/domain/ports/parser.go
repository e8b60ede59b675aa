package ports

import (
	"context"
	"io"

	"github.com/fredcamaral/deckflow/internal/domain/entities"
)

// SlideParser turns a markdown document into rendered slides
type SlideParser interface {
	// Parse splits, renders and lays out every slide. A nil or empty rule
	// list selects the built-in layout heuristics.
	Parse(ctx context.Context, markdown string, rules []entities.LayoutRule) (*entities.ParsedPresentation, error)
}

// RawSlide is one slide cut from the document, before rendering
type RawSlide struct {
	Index      int
	Content    string
	Notes      *string
	LineOffset int
}

// SlideRenderer converts slide markdown to HTML
type SlideRenderer interface {
	Render(content string) string
	RenderNotes(notes string) string
	WriteHighlightCSS(w io.Writer) error
}

// LayoutEngine rearranges rendered slide HTML
type LayoutEngine interface {
	// Process applies the structural transforms and the first matching layout
	Process(html string, rules []entities.LayoutRule) entities.LayoutResult
}
