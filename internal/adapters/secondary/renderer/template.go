// Package renderer renders the browser preview page for a parsed deck.
package renderer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/fredcamaral/deckflow/internal/domain/entities"
	"github.com/fredcamaral/deckflow/internal/domain/ports"
)

// Asset routes referenced by the preview page
const (
	HighlightCSSPath = "/assets/highlight.css"
	RulesCSSPath     = "/api/layout-rules/css"
	WebSocketPath    = "/ws"
)

// TemplateRenderer renders the preview with html/template
type TemplateRenderer struct {
	templates *template.Template
	title     string
}

// NewTemplateRenderer parses the built-in templates. The title is shown in
// the browser tab.
func NewTemplateRenderer(title string) (*TemplateRenderer, error) {
	tmpl := template.New("preview").Funcs(template.FuncMap{
		"safeHTML": func(s string) template.HTML {
			return template.HTML(s) // #nosec G203 - slide HTML is produced by the pipeline and optionally sanitized upstream
		},
	})

	if _, err := tmpl.Parse(previewTemplate); err != nil {
		return nil, fmt.Errorf("parsing preview template: %w", err)
	}

	if _, err := tmpl.New("slide").Parse(slideTemplate); err != nil {
		return nil, fmt.Errorf("parsing slide template: %w", err)
	}

	if title == "" {
		title = "deckflow"
	}

	return &TemplateRenderer{templates: tmpl, title: title}, nil
}

type previewData struct {
	Title         string
	Slides        []entities.ParsedSlide
	HighlightCSS  string
	RulesCSS      string
	WebSocketPath string
}

// RenderPreview renders every slide into one scrolling preview page
func (r *TemplateRenderer) RenderPreview(ctx context.Context, p *entities.ParsedPresentation) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data := previewData{
		Title:         r.title,
		HighlightCSS:  HighlightCSSPath,
		RulesCSS:      RulesCSSPath,
		WebSocketPath: WebSocketPath,
	}
	if p != nil {
		data.Slides = p.Slides
	}

	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, "preview", data); err != nil {
		return nil, fmt.Errorf("executing preview template: %w", err)
	}

	return buf.Bytes(), nil
}

// RenderSlide renders a single slide section
func (r *TemplateRenderer) RenderSlide(ctx context.Context, s *entities.ParsedSlide) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, "slide", s); err != nil {
		return nil, fmt.Errorf("executing slide template: %w", err)
	}

	return buf.Bytes(), nil
}

const previewTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <link rel="stylesheet" href="{{.HighlightCSS}}">
    <link rel="stylesheet" href="{{.RulesCSS}}">
    <style>
        body { margin: 0; background: #e5e7eb; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; }
        .slide { box-sizing: border-box; width: 960px; min-height: 540px; margin: 2em auto; padding: 3em; background: #fff; box-shadow: 0 2px 8px rgba(0,0,0,.15); position: relative; }
        .slide-meta { position: absolute; right: 1em; bottom: .5em; font-size: .75em; color: #9ca3af; }
        .slide-columns { display: grid; grid-template-columns: 1fr 1fr; gap: 2em; }
        .slide-card-grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(200px, 1fr)); gap: 1em; }
        .slide-card { border: 1px solid #e5e7eb; border-radius: 8px; padding: 1em; }
        .slide-card-title { font-weight: 600; margin-bottom: .5em; }
        figure { margin: 0; text-align: center; }
        figure img, .slide img { max-width: 100%; }
        figcaption { font-size: .85em; color: #6b7280; }
        .speaker-notes { display: none; }
    </style>
</head>
<body>
    <main class="deck">
        {{range .Slides}}{{template "slide" .}}{{else}}
        <section class="slide"><h1>No slides</h1></section>
        {{end}}
    </main>
    <script src="https://unpkg.com/mermaid@10/dist/mermaid.min.js"></script>
    <script>
        if (window.mermaid) { mermaid.initialize({ startOnLoad: true }); }
        (function () {
            var proto = location.protocol === "https:" ? "wss://" : "ws://";
            var ws = new WebSocket(proto + location.host + "{{.WebSocketPath}}");
            ws.onmessage = function (msg) {
                var event = JSON.parse(msg.data);
                if (event.type === "reload" || event.type === "rules") { location.reload(); }
                if (event.type === "error") { console.error("deckflow:", event.data && event.data.error); }
            };
        })();
    </script>
</body>
</html>`

const slideTemplate = `<section class="slide" id="slide-{{.Index}}" data-index="{{.Index}}" data-line-offset="{{.LineOffset}}"{{if .AppliedLayout}} data-layout="{{.AppliedLayout}}"{{end}}>
    {{.HTML | safeHTML}}
    {{if .NotesHTML}}<aside class="speaker-notes">{{.NotesHTML | safeHTML}}</aside>{{end}}
    <div class="slide-meta">{{.Title}}{{if .AppliedLayout}} · {{.AppliedLayout}}{{end}}</div>
</section>
`

// Ensure TemplateRenderer implements ports.PageRenderer
var _ ports.PageRenderer = (*TemplateRenderer)(nil)
