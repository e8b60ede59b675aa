// Package markdown renders slide markdown into HTML fragments.
package markdown

import (
	"bytes"
	"html"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// Class names of the manual two-column container
const (
	ColumnsClass = "slide-columns"
	ColumnClass  = "slide-column"
)

// Config holds the process-wide rendering options. It is built once and
// never mutated afterwards.
type Config struct {
	// HighlightStyle is the chroma style used for stylesheets and notes
	HighlightStyle string
	// LineNumbers adds line numbers to highlighted code blocks
	LineNumbers bool
}

// DefaultConfig returns the rendering defaults
func DefaultConfig() Config {
	return Config{HighlightStyle: "github"}
}

// Renderer converts slide markdown to HTML
type Renderer struct {
	md    goldmark.Markdown
	notes goldmark.Markdown
	style *chroma.Style
	css   *chromahtml.Formatter
}

// NewRenderer creates a renderer from the given configuration
func NewRenderer(cfg Config) *Renderer {
	style := styles.Get(cfg.HighlightStyle)
	if style == nil {
		style = styles.Fallback
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,         // Tables, strikethrough, autolinks, task lists
			extension.Typographer, // Smart punctuation
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(
				util.Prioritized(&sourceLineTransformer{}, 1000),
			),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithUnsafe(), // Directives and list separators are raw HTML comments
			renderer.WithNodeRenderers(
				// Takes precedence over the default fenced code renderer
				util.Prioritized(newCodeBlockRenderer(style, cfg.LineNumbers), 100),
			),
		),
	)

	notes := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithCustomStyle(style),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
	)

	return &Renderer{
		md:    md,
		notes: notes,
		style: style,
		css:   chromahtml.New(chromahtml.WithClasses(true)),
	}
}

// Render converts one slide's markdown into an HTML fragment.
// It never fails: conversion errors degrade to escaped text.
func (r *Renderer) Render(content string) string {
	content = SeparateLists(content)

	cols, ok := splitColumns(content)
	if !ok {
		return r.renderPart(content, 0)
	}

	var b strings.Builder
	b.WriteString(r.renderPart(cols.before.text, cols.before.line))
	b.WriteString(`<div class="` + ColumnsClass + `">`)
	b.WriteString(`<div class="` + ColumnClass + `">`)
	b.WriteString(r.renderPart(cols.left.text, cols.left.line))
	b.WriteString(`</div><div class="` + ColumnClass + `">`)
	b.WriteString(r.renderPart(cols.right.text, cols.right.line))
	b.WriteString("</div></div>\n")
	b.WriteString(r.renderPart(cols.after.text, cols.after.line))
	return b.String()
}

// renderPart renders a markdown region whose first line is baseLine
// within the slide
func (r *Renderer) renderPart(content string, baseLine int) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}

	pc := parser.NewContext()
	pc.Set(baseLineKey, baseLine)

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(content), &buf, parser.WithContext(pc)); err != nil {
		return "<p>" + html.EscapeString(content) + "</p>"
	}
	return buf.String()
}

// RenderNotes converts markdown speaker notes to HTML
func (r *Renderer) RenderNotes(notes string) string {
	if strings.TrimSpace(notes) == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := r.notes.Convert([]byte(notes), &buf); err != nil {
		return "<p>" + html.EscapeString(notes) + "</p>"
	}
	return buf.String()
}

// WriteHighlightCSS writes the stylesheet for highlighted code blocks
func (r *Renderer) WriteHighlightCSS(w io.Writer) error {
	return r.css.WriteCSS(w, r.style)
}
