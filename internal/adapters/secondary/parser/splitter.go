package parser

import (
	"strings"
	"unicode"

	"github.com/fredcamaral/deckflow/internal/domain/ports"
)

// SlideSeparator is the line that ends one slide and starts the next
const SlideSeparator = "---"

// SplitSlides cuts a document into raw slides. Every line that is exactly
// SlideSeparator is a boundary, including consecutive ones and one on the
// first or last line, so N separator lines always give N+1 slides.
//
// LineOffset is the document line where the slide's content starts, after
// the notes block is removed. Line numbers inside the content are relative
// to that line; a notes block in the middle of a slide shifts the lines
// after it.
func SplitSlides(doc string) []ports.RawSlide {
	lines := strings.Split(strings.ReplaceAll(doc, "\r\n", "\n"), "\n")
	extractor := NewNotesExtractor()

	var slides []ports.RawSlide
	emit := func(start, end int) {
		segment := strings.Join(lines[start:end], "\n")
		content, notes := extractor.ExtractNotes(segment)

		offset := start + contentLine(segment, extractor)
		if last := len(lines) - 1; offset > last {
			offset = last
		}

		slides = append(slides, ports.RawSlide{
			Index:      len(slides),
			Content:    content,
			Notes:      notes,
			LineOffset: offset,
		})
	}

	start := 0
	for i, line := range lines {
		if line == SlideSeparator {
			emit(start, i)
			start = i + 1
		}
	}
	emit(start, len(lines))

	return slides
}

// contentLine returns the line within segment where the slide content
// begins: the first non-blank line outside the notes block. A segment
// with no content reports its last line.
func contentLine(segment string, extractor *NotesExtractor) int {
	from := 0
	if start, end, ok := extractor.Locate(segment); ok && strings.TrimSpace(segment[:start]) == "" {
		from = end
	}

	rest := segment[from:]
	if i := strings.IndexFunc(rest, notSpace); i >= 0 {
		return strings.Count(segment[:from+i], "\n")
	}
	if from > 0 {
		return strings.Count(segment[:from], "\n")
	}
	return strings.Count(segment, "\n")
}

func notSpace(r rune) bool {
	return !unicode.IsSpace(r)
}
