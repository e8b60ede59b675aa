package builders

import (
	"fmt"
	"strings"
)

// SlideSeparator joins slides in built decks
const SlideSeparator = "\n\n---\n\n"

// DeckBuilder helps build Markdown decks for testing
type DeckBuilder struct {
	slides []string
}

// NewDeckBuilder creates an empty deck
func NewDeckBuilder() *DeckBuilder {
	return &DeckBuilder{}
}

// Slide appends a slide with the given Markdown
func (b *DeckBuilder) Slide(markdown string) *DeckBuilder {
	b.slides = append(b.slides, markdown)
	return b
}

// TitleSlide appends a heading followed by body paragraphs
func (b *DeckBuilder) TitleSlide(title string, body ...string) *DeckBuilder {
	parts := append([]string{"# " + title}, body...)
	return b.Slide(strings.Join(parts, "\n\n"))
}

// ImageSlide appends a slide with a heading and count images
func (b *DeckBuilder) ImageSlide(title string, count int) *DeckBuilder {
	lines := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		lines = append(lines, fmt.Sprintf("![Image %d](image-%d.png)", i, i))
	}
	return b.Slide("## " + title + "\n\n" + strings.Join(lines, "\n"))
}

// CardSlide appends a titled bullet list; cards alternates names and bodies
func (b *DeckBuilder) CardSlide(title string, cards ...string) *DeckBuilder {
	var sb strings.Builder
	sb.WriteString("## " + title + "\n\n")
	for i := 0; i+1 < len(cards); i += 2 {
		fmt.Fprintf(&sb, "- **%s:** %s\n", cards[i], cards[i+1])
	}
	return b.Slide(strings.TrimSuffix(sb.String(), "\n"))
}

// SectionSlide appends an h2 with one h3 section per name
func (b *DeckBuilder) SectionSlide(title string, sections ...string) *DeckBuilder {
	parts := []string{"## " + title}
	for _, s := range sections {
		parts = append(parts, "### "+s, s+" details")
	}
	return b.Slide(strings.Join(parts, "\n\n"))
}

// WithNotes attaches a notes block to the last slide
func (b *DeckBuilder) WithNotes(notes string) *DeckBuilder {
	if len(b.slides) == 0 {
		b.slides = append(b.slides, "")
	}
	last := len(b.slides) - 1
	b.slides[last] += "\n\n<!-- notes -->\n" + notes + "\n<!-- /notes -->"
	return b
}

// Count returns the number of slides added so far
func (b *DeckBuilder) Count() int {
	return len(b.slides)
}

// Build joins the slides into one document
func (b *DeckBuilder) Build() string {
	return strings.Join(b.slides, SlideSeparator)
}

// Common decks for testing

// MinimalDeck is a single hero slide
func MinimalDeck() string {
	return NewDeckBuilder().TitleSlide("Minimal", "Just one slide").Build()
}

// MixedDeck exercises every built-in layout once
func MixedDeck() string {
	return NewDeckBuilder().
		TitleSlide("Welcome", "An overview").
		WithNotes("Introduce yourself").
		SectionSlide("Agenda", "Design", "Build").
		ImageSlide("Gallery", 3).
		ImageSlide("Diagram", 1).
		CardSlide("Why", "Fast", "Compiles quickly", "Simple", "Small surface").
		Build()
}

// LargeDeck repeats the mixed slides until the deck holds n slides
func LargeDeck(n int) string {
	b := NewDeckBuilder()
	for i := 0; b.Count() < n; i++ {
		switch i % 4 {
		case 0:
			b.TitleSlide(fmt.Sprintf("Slide %d", i+1), "Body text with **bold** and `code`.")
		case 1:
			b.ImageSlide(fmt.Sprintf("Images %d", i+1), 2)
		case 2:
			b.CardSlide(fmt.Sprintf("Cards %d", i+1), "One", "first", "Two", "second")
		default:
			b.Slide(fmt.Sprintf("## Code %d\n\n```go\nfmt.Println(%d)\n```", i+1, i))
		}
	}
	return b.Build()
}
