package markdown

import (
	"bytes"
	"strconv"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// SourceLineAttr is the attribute carrying a block's 0-based line within its slide
const SourceLineAttr = "data-source-line"

// baseLineKey holds the slide-relative line of the first line of the parsed text
var baseLineKey = parser.NewContextKey()

// sourceLineTransformer tags top-level blocks with the line they start on
type sourceLineTransformer struct{}

// Transform implements parser.ASTTransformer
func (t *sourceLineTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	base, _ := pc.Get(baseLineKey).(int)
	source := reader.Source()

	for child := doc.FirstChild(); child != nil; child = child.NextSibling() {
		line, ok := startLine(child, source)
		if !ok {
			continue
		}
		child.SetAttributeString(SourceLineAttr, []byte(strconv.Itoa(base+line)))
	}
}

// startLine returns the 0-based line of the first source byte of a block
func startLine(n ast.Node, source []byte) (int, bool) {
	if code, ok := n.(*ast.FencedCodeBlock); ok {
		if code.Info != nil {
			return lineAt(source, code.Info.Segment.Start), true
		}
		if code.Lines().Len() > 0 {
			// Content starts on the line after the fence
			return lineAt(source, code.Lines().At(0).Start) - 1, true
		}
		return 0, false
	}

	offset, ok := firstOffset(n)
	if !ok {
		return 0, false
	}
	return lineAt(source, offset), true
}

// firstOffset finds the first line segment of a block or of its first
// descendant block that has one
func firstOffset(n ast.Node) (int, bool) {
	if n.Type() != ast.TypeBlock {
		return 0, false
	}
	if n.Lines().Len() > 0 {
		return n.Lines().At(0).Start, true
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if offset, ok := firstOffset(c); ok {
			return offset, true
		}
	}
	return 0, false
}

func lineAt(source []byte, offset int) int {
	if offset > len(source) {
		offset = len(source)
	}
	return bytes.Count(source[:offset], []byte{'\n'})
}
