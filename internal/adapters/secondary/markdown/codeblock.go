package markdown

import (
	"bufio"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// MermaidClass marks diagram sources for client-side rendering
const MermaidClass = "mermaid"

// codeBlockRenderer renders fenced code blocks with chroma highlighting
type codeBlockRenderer struct {
	style     *chroma.Style
	formatter *chromahtml.Formatter
}

func newCodeBlockRenderer(style *chroma.Style, lineNumbers bool) *codeBlockRenderer {
	return &codeBlockRenderer{
		style: style,
		formatter: chromahtml.New(
			chromahtml.WithClasses(true), // CSS classes, stylesheet served separately
			chromahtml.WithLineNumbers(lineNumbers),
			chromahtml.PreventSurroundingPre(true),
		),
	}
}

// RegisterFuncs registers rendering functions for fenced code blocks
func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
}

func (r *codeBlockRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	n := node.(*ast.FencedCodeBlock)
	language := string(n.Language(source))

	var content strings.Builder
	for i := 0; i < n.Lines().Len(); i++ {
		line := n.Lines().At(i)
		content.Write(line.Value(source))
	}

	var out strings.Builder
	switch {
	case strings.EqualFold(language, MermaidClass):
		out.WriteString(`<pre class="` + MermaidClass + `"`)
		writeAttributes(&out, n)
		out.WriteString(`>`)
		out.Write(util.EscapeHTML([]byte(content.String())))
		out.WriteString("</pre>\n")
	default:
		highlighted, ok := r.highlight(language, content.String())
		if ok {
			out.WriteString(`<pre class="chroma"`)
		} else {
			out.WriteString(`<pre`)
		}
		writeAttributes(&out, n)
		out.WriteString(`><code`)
		if language != "" {
			out.WriteString(` class="language-`)
			out.Write(util.EscapeHTML([]byte(language)))
			out.WriteString(`"`)
		}
		out.WriteString(`>`)
		if ok {
			out.WriteString(highlighted)
		} else {
			out.Write(util.EscapeHTML([]byte(content.String())))
		}
		out.WriteString("</code></pre>\n")
	}

	if _, err := w.WriteString(out.String()); err != nil {
		return ast.WalkStop, err
	}
	return ast.WalkSkipChildren, nil
}

// highlight tokenises code with the lexer for language. ok is false when
// no lexer exists or the highlighter fails in any way.
func (r *codeBlockRenderer) highlight(language, code string) (out string, ok bool) {
	if language == "" {
		return "", false
	}

	defer func() {
		if recover() != nil {
			out, ok = "", false
		}
	}()

	lexer := lexers.Get(language)
	if lexer == nil {
		return "", false
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", false
	}

	var buf strings.Builder
	if err := r.formatter.Format(&buf, r.style, iterator); err != nil {
		return "", false
	}
	return buf.String(), true
}

// writeAttributes writes the node attributes (data-source-line) the way
// goldmark writes them for other blocks
func writeAttributes(out *strings.Builder, n ast.Node) {
	if n.Attributes() == nil {
		return
	}
	var buf strings.Builder
	bw := bufio.NewWriter(&buf)
	gmhtml.RenderAttributes(bw, n, nil)
	_ = bw.Flush()
	out.WriteString(buf.String())
}
