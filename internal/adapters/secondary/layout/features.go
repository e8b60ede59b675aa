package layout

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/fredcamaral/deckflow/internal/domain/entities"
)

// Analyze computes the structural features of a rendered slide
func Analyze(s string) entities.ContentFeatures {
	var f entities.ContentFeatures

	root, err := parseRoot(s)
	if err != nil {
		return f
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.H1, atom.H2:
				f.HasHeading = true
			case atom.H3:
				f.HasHeading = true
				f.H3Count++
			case atom.Img:
				f.ImageCount++
			case atom.Figure:
				f.FigureCount++
			case atom.Div:
				if hasClass(n, CardGridClass) {
					f.HasCards = true
				}
			case atom.Ul, atom.Ol:
				f.HasList = true
			case atom.Pre:
				f.HasCodeBlock = true
			case atom.Blockquote:
				f.HasBlockquote = true
			case atom.P:
				if isTextParagraph(n) {
					f.TextParagraphCount++
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return f
}

// isTextParagraph reports whether a paragraph is prose rather than an
// image or a caption
func isTextParagraph(p *html.Node) bool {
	if insideAny(p, atom.Li) {
		return false
	}
	if len(significantChildren(p)) == 0 {
		return false
	}
	if imageOnly(p) || emphasisOnly(p) {
		return false
	}
	return strings.TrimSpace(textOf([]*html.Node{p})) != "" || countElements(p, atom.Img) > 0
}
