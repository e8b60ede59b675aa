package parser

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/fredcamaral/deckflow/internal/domain/entities"
	"github.com/fredcamaral/deckflow/internal/domain/ports"
)

// Pipeline turns a markdown deck into rendered, laid out slides
type Pipeline struct {
	renderer ports.SlideRenderer
	engine   ports.LayoutEngine
	cache    ports.SlideCache
	workers  int
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithWorkers processes up to n slides concurrently
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithCache reuses rendered slides whose source and rules are unchanged.
// The cache must only be shared by pipelines with the same renderer
// settings.
func WithCache(cache ports.SlideCache) Option {
	return func(p *Pipeline) {
		p.cache = cache
	}
}

// NewPipeline creates a pipeline from a renderer and a layout engine
func NewPipeline(renderer ports.SlideRenderer, engine ports.LayoutEngine, opts ...Option) *Pipeline {
	p := &Pipeline{
		renderer: renderer,
		engine:   engine,
		workers:  1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse splits the document, renders every slide and lays it out with the
// first matching rule. Rules must be in ascending priority order; a nil or
// empty list selects the built-in heuristics. Slides never fail on their
// own; a cancelled context stops the parse.
func (p *Pipeline) Parse(ctx context.Context, markdown string, rules []entities.LayoutRule) (*entities.ParsedPresentation, error) {
	raw := SplitSlides(markdown)
	slides := make([]entities.ParsedSlide, len(raw))
	fingerprint := rulesFingerprint(rules)

	if p.workers <= 1 || len(raw) <= 1 {
		for i := range raw {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			slides[i] = p.buildSlide(raw[i], rules, fingerprint)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.workers)

		for i := range raw {
			g.Go(func() error {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				slides[i] = p.buildSlide(raw[i], rules, fingerprint)
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	presentation := &entities.ParsedPresentation{Slides: slides}
	if err := presentation.Validate(); err != nil {
		return nil, fmt.Errorf("invalid presentation: %w", err)
	}

	return presentation, nil
}

// buildSlide renders one raw slide and applies the layout
func (p *Pipeline) buildSlide(raw ports.RawSlide, rules []entities.LayoutRule, fingerprint string) entities.ParsedSlide {
	var key string
	if p.cache != nil {
		key = cacheKey(fingerprint, raw)
	}

	rendered, ok := entities.RenderedSlide{}, false
	if key != "" {
		rendered, ok = p.cache.Get(key)
	}
	if !ok {
		rendered = p.render(raw, rules)
		if key != "" {
			p.cache.Set(key, rendered)
		}
	}

	slide := entities.ParsedSlide{
		Index:         raw.Index,
		Content:       raw.Content,
		HTML:          rendered.HTML,
		Notes:         raw.Notes,
		NotesHTML:     rendered.NotesHTML,
		LineOffset:    raw.LineOffset,
		AppliedLayout: rendered.AppliedLayout,
	}
	slide.Title = slide.ExtractTitle()

	return slide
}

func (p *Pipeline) render(raw ports.RawSlide, rules []entities.LayoutRule) entities.RenderedSlide {
	result := p.engine.Process(p.renderer.Render(raw.Content), rules)

	rendered := entities.RenderedSlide{
		HTML:          result.HTML,
		AppliedLayout: result.AppliedLayout,
	}
	if raw.Notes != nil {
		rendered.NotesHTML = p.renderer.RenderNotes(*raw.Notes)
	}
	return rendered
}

// rulesFingerprint identifies a rule set; nil and empty sets both select
// the built-in heuristics and share a fingerprint
func rulesFingerprint(rules []entities.LayoutRule) string {
	if len(rules) == 0 {
		return "legacy"
	}

	data, err := json.Marshal(rules)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// cacheKey is empty when the rules could not be fingerprinted
func cacheKey(fingerprint string, raw ports.RawSlide) string {
	if fingerprint == "" {
		return ""
	}

	h := sha256.New()
	h.Write([]byte(fingerprint))
	h.Write([]byte{0})
	h.Write([]byte(raw.Content))
	if raw.Notes != nil {
		h.Write([]byte{1})
		h.Write([]byte(*raw.Notes))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Ensure Pipeline implements ports.SlideParser
var _ ports.SlideParser = (*Pipeline)(nil)
