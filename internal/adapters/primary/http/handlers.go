package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/microcosm-cc/bluemonday"

	"github.com/fredcamaral/deckflow/internal/adapters/secondary/rules"
	"github.com/fredcamaral/deckflow/internal/domain/entities"
)

// maxParseBody bounds POST /api/parse request bodies
const maxParseBody = 4 << 20

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string    `json:"error"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// SlidesResponse is the body of the slide list and parse endpoints
type SlidesResponse struct {
	Slides  []SlideResponse `json:"slides"`
	Layouts map[string]int  `json:"layouts"`
}

// SlideResponse is one slide in an API response
type SlideResponse struct {
	Index         int     `json:"index"`
	Title         string  `json:"title"`
	HTML          string  `json:"html"`
	Notes         *string `json:"notes,omitempty"`
	NotesHTML     string  `json:"notesHtml,omitempty"`
	LineOffset    int     `json:"lineOffset"`
	AppliedLayout string  `json:"appliedLayout,omitempty"`
}

// NotesResponse is the body of the notes endpoint
type NotesResponse struct {
	Index     int     `json:"index"`
	Notes     *string `json:"notes"`
	NotesHTML string  `json:"notesHtml"`
}

// ParseRequest is the body of POST /api/parse. A missing rules field uses
// the configured rules; an empty array selects the built-in heuristics.
type ParseRequest struct {
	Markdown string          `json:"markdown"`
	Rules    json.RawMessage `json:"rules,omitempty"`
}

// RulesResponse is the body of the layout rules endpoint
type RulesResponse struct {
	Legacy bool                  `json:"legacy"`
	Rules  []entities.LayoutRule `json:"rules"`
}

// handleIndex serves the preview page
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	presentation := s.sanitized(s.currentPresentation())

	page, err := s.page.RenderPreview(r.Context(), presentation)
	if err != nil {
		s.handleError(w, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(page); err != nil {
		s.logger.Error("failed to write preview page", "error", err)
	}
}

// handleSlides returns the current slides
func (s *Server) handleSlides(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.toResponse(s.currentPresentation()))
}

// handleSlide returns one slide by index
func (s *Server) handleSlide(w http.ResponseWriter, r *http.Request) {
	slide, ok := s.slideFromPath(w, r)
	if !ok {
		return
	}

	s.writeJSON(w, s.toSlideResponse(*slide))
}

// handleSlideNotes returns the speaker notes of one slide
func (s *Server) handleSlideNotes(w http.ResponseWriter, r *http.Request) {
	slide, ok := s.slideFromPath(w, r)
	if !ok {
		return
	}

	s.writeJSON(w, NotesResponse{
		Index:     slide.Index,
		Notes:     slide.Notes,
		NotesHTML: s.sanitize(slide.NotesHTML),
	})
}

// handleSlideAtLine maps an editor line to the slide containing it
func (s *Server) handleSlideAtLine(w http.ResponseWriter, r *http.Request) {
	line, err := strconv.Atoi(mux.Vars(r)["line"])
	if err != nil {
		s.handleError(w, err, http.StatusBadRequest)
		return
	}

	presentation := s.currentPresentation()
	if presentation.SlideCount() == 0 {
		s.handleError(w, errors.New("no slides loaded"), http.StatusNotFound)
		return
	}

	slide := presentation.Slides[presentation.SlideAtLine(line)]
	s.writeJSON(w, s.toSlideResponse(slide))
}

// handleParse parses the posted markdown without touching the served deck
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxParseBody))
	if err := decoder.Decode(&req); err != nil {
		s.handleError(w, err, http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	start := time.Now()
	var (
		presentation *entities.ParsedPresentation
		err          error
	)

	if len(req.Rules) == 0 || bytes.Equal(bytes.TrimSpace(req.Rules), []byte("null")) {
		presentation, err = s.presenter.ParsePresentation(ctx, req.Markdown)
	} else {
		var ruleSet []entities.LayoutRule
		ruleSet, err = rules.Decode(req.Rules, rules.FormatJSON)
		if err == nil && len(ruleSet) > 0 {
			ruleSet, err = rules.Prepare(ruleSet)
		}
		if err != nil {
			s.handleError(w, err, http.StatusBadRequest)
			return
		}
		if len(ruleSet) == 0 {
			ruleSet = nil
		}
		presentation, err = s.presenter.ParseWithRules(ctx, req.Markdown, ruleSet)
	}

	if err != nil {
		s.handleError(w, err, http.StatusInternalServerError)
		return
	}
	if s.monitor != nil {
		s.monitor.RecordParse(presentation.SlideCount(), time.Since(start))
	}

	s.writeJSON(w, s.toResponse(presentation))
}

// handleHealth reports uptime, memory and activity counters
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{"healthy": true}
	if s.monitor != nil {
		health = s.monitor.Health()
	}
	health["slides"] = s.currentPresentation().SlideCount()
	health["clients"] = s.connMgr.Count()

	s.writeJSON(w, health)
}

// handleLayoutRules returns the configured rule set
func (s *Server) handleLayoutRules(w http.ResponseWriter, r *http.Request) {
	ruleSet, err := s.presenter.Rules(r.Context())
	if err != nil {
		s.handleError(w, err, http.StatusInternalServerError)
		return
	}

	if ruleSet == nil {
		s.writeJSON(w, RulesResponse{Legacy: true, Rules: []entities.LayoutRule{}})
		return
	}
	s.writeJSON(w, RulesResponse{Rules: ruleSet})
}

// handleLayoutRulesCSS serves the stylesheets of the enabled rules. The
// built-in heuristics share class names with the default rules, so they
// get the default stylesheet.
func (s *Server) handleLayoutRulesCSS(w http.ResponseWriter, r *http.Request) {
	ruleSet, err := s.presenter.Rules(r.Context())
	if err == nil && ruleSet == nil {
		ruleSet, err = rules.Defaults()
	}
	if err != nil {
		s.handleError(w, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, rules.CSS(ruleSet)); err != nil {
		s.logger.Error("failed to write rules stylesheet", "error", err)
	}
}

// handleHighlightCSS serves the code highlighting stylesheet
func (s *Server) handleHighlightCSS(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.styles.WriteHighlightCSS(&buf); err != nil {
		s.handleError(w, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.Error("failed to write highlight stylesheet", "error", err)
	}
}

// slideFromPath resolves the {index} route variable, writing a 404 when
// the slide does not exist
func (s *Server) slideFromPath(w http.ResponseWriter, r *http.Request) (*entities.ParsedSlide, bool) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		s.handleError(w, err, http.StatusBadRequest)
		return nil, false
	}

	slide, err := s.currentPresentation().GetSlideByIndex(index)
	if err != nil {
		s.handleError(w, err, http.StatusNotFound)
		return nil, false
	}

	return slide, true
}

// currentPresentation never returns nil
func (s *Server) currentPresentation() *entities.ParsedPresentation {
	if p := s.GetPresentation(); p != nil {
		return p
	}
	return &entities.ParsedPresentation{}
}

// handleMethodNotAllowed answers a known path requested with the wrong method
func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.handleError(w, fmt.Errorf("%s %s", r.Method, r.URL.Path), http.StatusMethodNotAllowed)
}

// handleError writes a sanitized error body and logs the real error
func (s *Server) handleError(w http.ResponseWriter, err error, status int) {
	var message string
	switch status {
	case http.StatusBadRequest:
		message = "Invalid request"
	case http.StatusNotFound:
		message = "Resource not found"
	case http.StatusMethodNotAllowed:
		message = "Method not allowed"
	case http.StatusTooManyRequests:
		message = "Too many requests"
	case http.StatusInternalServerError:
		message = "Internal server error"
	default:
		message = "An error occurred"
	}

	s.logger.Error("HTTP error", "status", status, "error", err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encodeErr := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Time:    time.Now(),
	}); encodeErr != nil {
		s.logger.Error("failed to encode error response", "error", encodeErr)
	}
}

// writeJSON encodes before writing so an encoding failure can still
// produce an error status
func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		s.handleError(w, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(append(body, '\n')); err != nil {
		s.logger.Error("failed to write JSON response", "error", err)
	}
}

func (s *Server) toResponse(p *entities.ParsedPresentation) SlidesResponse {
	slides := make([]SlideResponse, len(p.Slides))
	for i := range p.Slides {
		slides[i] = s.toSlideResponse(p.Slides[i])
	}

	return SlidesResponse{Slides: slides, Layouts: p.AppliedLayouts()}
}

func (s *Server) toSlideResponse(slide entities.ParsedSlide) SlideResponse {
	return SlideResponse{
		Index:         slide.Index,
		Title:         slide.Title,
		HTML:          s.sanitize(slide.HTML),
		Notes:         slide.Notes,
		NotesHTML:     s.sanitize(slide.NotesHTML),
		LineOffset:    slide.LineOffset,
		AppliedLayout: slide.AppliedLayout,
	}
}

// sanitized returns a copy of p with sanitized HTML, or p itself when
// sanitizing is off
func (s *Server) sanitized(p *entities.ParsedPresentation) *entities.ParsedPresentation {
	if s.sanitizer == nil {
		return p
	}

	out := &entities.ParsedPresentation{Slides: make([]entities.ParsedSlide, len(p.Slides))}
	for i, slide := range p.Slides {
		slide.HTML = s.sanitize(slide.HTML)
		slide.NotesHTML = s.sanitize(slide.NotesHTML)
		out.Slides[i] = slide
	}
	return out
}

func (s *Server) sanitize(html string) string {
	if s.sanitizer == nil || html == "" {
		return html
	}
	return s.sanitizer.Sanitize(html)
}

// newSlideSanitizer allows the markup the slide pipeline produces:
// layout containers, cards, figures, highlighted code and mermaid blocks
func newSlideSanitizer() *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	p.AllowElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowElements("p", "br", "hr")
	p.AllowElements("strong", "b", "em", "i", "u", "s", "del", "mark", "sup", "sub")
	p.AllowElements("ul", "ol", "li")
	p.AllowElements("blockquote", "pre", "code", "span", "div")
	p.AllowElements("figure", "figcaption")
	p.AllowElements("table", "thead", "tbody", "tr", "th", "td")
	p.AllowAttrs("align").OnElements("th", "td")

	p.AllowStandardURLs()
	p.AllowAttrs("href", "title").OnElements("a")
	p.AllowAttrs("src", "alt", "title").OnElements("img")
	p.AllowAttrs("type", "checked", "disabled").OnElements("input")

	p.AllowAttrs("class").Globally()
	p.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowDataAttributes()

	return p
}
