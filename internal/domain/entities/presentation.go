package entities

import (
	"fmt"
)

// ParsedPresentation is the ordered result of one parse call
type ParsedPresentation struct {
	// Slides contains all rendered slides in document order
	Slides []ParsedSlide `json:"slides"`
}

// Validate ensures every slide is valid and offsets never go backwards
func (p *ParsedPresentation) Validate() error {
	last := 0
	for i := range p.Slides {
		slide := &p.Slides[i]
		if err := slide.Validate(); err != nil {
			return fmt.Errorf("slide %d validation failed: %w", i+1, err)
		}
		if slide.LineOffset < last {
			return fmt.Errorf("slide %d line offset %d precedes previous offset %d", i+1, slide.LineOffset, last)
		}
		last = slide.LineOffset
	}

	return nil
}

// GetSlideByIndex returns a slide by its index (0-based)
func (p *ParsedPresentation) GetSlideByIndex(index int) (*ParsedSlide, error) {
	if index < 0 || index >= len(p.Slides) {
		return nil, fmt.Errorf("slide index %d out of range (0-%d)", index, len(p.Slides)-1)
	}
	return &p.Slides[index], nil
}

// SlideCount returns the total number of slides
func (p *ParsedPresentation) SlideCount() int {
	return len(p.Slides)
}

// SlideAtLine maps a 0-based document line to the index of the slide
// containing it. Lines before the first slide map to slide 0.
func (p *ParsedPresentation) SlideAtLine(line int) int {
	index := 0
	for i := range p.Slides {
		if p.Slides[i].LineOffset > line {
			break
		}
		index = i
	}
	return index
}

// AppliedLayouts returns how many slides received each layout
func (p *ParsedPresentation) AppliedLayouts() map[string]int {
	counts := make(map[string]int)
	for i := range p.Slides {
		if name := p.Slides[i].AppliedLayout; name != "" {
			counts[name]++
		}
	}
	return counts
}
