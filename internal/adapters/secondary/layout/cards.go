package layout

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Card grid class names
const (
	CardGridClass  = "slide-card-grid"
	CardClass      = "slide-card"
	CardTitleClass = "slide-card-title"
	CardBodyClass  = "slide-card-body"
)

const sourceLineAttr = "data-source-line"

type card struct {
	title []*html.Node
	body  []*html.Node
}

// ApplyCards turns bullet lists whose items all read "**Title:** body" into
// a card grid. A list with a single item that does not fit is left as is.
func ApplyCards(s string) string {
	if !strings.Contains(s, "<ul") {
		return s
	}

	root, err := parseRoot(s)
	if err != nil {
		return s
	}

	lists := collect(root, func(n *html.Node) bool {
		return n.DataAtom == atom.Ul && !insideAny(n, atom.Li)
	})

	changed := false
	for _, ul := range lists {
		cards, ok := cardItems(ul)
		if !ok {
			continue
		}

		line, _ := attr(ul, sourceLineAttr)
		grid := newElement(atom.Div, CardGridClass, line)
		for _, c := range cards {
			grid.AppendChild(buildCard(c))
		}

		ul.Parent.InsertBefore(grid, ul)
		ul.Parent.RemoveChild(ul)
		changed = true
	}

	if !changed {
		return s
	}
	return renderChildren(root)
}

// cardItems checks every item of the list; ok is false unless all of them
// are cards
func cardItems(ul *html.Node) ([]card, bool) {
	var cards []card
	for _, c := range significantChildren(ul) {
		if !isElement(c, atom.Li) {
			return nil, false
		}
		item, ok := cardItem(c)
		if !ok {
			return nil, false
		}
		cards = append(cards, item)
	}
	return cards, len(cards) > 0
}

func cardItem(li *html.Node) (card, bool) {
	content := li
	// Loose lists wrap item text in a paragraph
	if children := significantChildren(li); len(children) == 1 && isElement(children[0], atom.P) {
		content = children[0]
	}

	var nodes []*html.Node
	for c := content.FirstChild; c != nil; c = c.NextSibling {
		nodes = append(nodes, c)
	}
	for len(nodes) > 0 && blank(nodes[0]) {
		nodes = nodes[1:]
	}
	if len(nodes) == 0 || !isElement(nodes[0], atom.Strong) {
		return card{}, false
	}

	strong := nodes[0]
	var title []*html.Node
	for c := strong.FirstChild; c != nil; c = c.NextSibling {
		title = append(title, c)
	}
	body := nodes[1:]

	if trimTitle(textOf(title)) == "" || !bodyHasContent(body) {
		return card{}, false
	}
	return card{title: title, body: body}, true
}

func buildCard(c card) *html.Node {
	stripTitleColon(c.title)
	body := stripBodyColon(c.body)

	cardDiv := newElement(atom.Div, CardClass, "")
	title := newElement(atom.Div, CardTitleClass, "")
	bodyDiv := newElement(atom.Div, CardBodyClass, "")
	adopt(title, c.title)
	adopt(bodyDiv, body)
	cardDiv.AppendChild(title)
	cardDiv.AppendChild(bodyDiv)
	return cardDiv
}

func trimTitle(s string) string {
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), ":"))
}

func trimBody(s string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), ":"))
}

// stripTitleColon removes a trailing colon from the last title text node
func stripTitleColon(title []*html.Node) {
	for i := len(title) - 1; i >= 0; i-- {
		n := title[i]
		if n.Type != html.TextNode {
			return
		}
		if strings.TrimSpace(n.Data) == "" {
			continue
		}
		n.Data = strings.TrimRight(strings.TrimSuffix(strings.TrimRight(n.Data, " \t\n"), ":"), " \t\n")
		return
	}
}

// stripBodyColon removes a leading colon and whitespace from the body
func stripBodyColon(body []*html.Node) []*html.Node {
	for len(body) > 0 && body[0].Type == html.TextNode {
		trimmed := strings.TrimLeft(body[0].Data, " \t\n")
		trimmed = strings.TrimLeft(strings.TrimPrefix(trimmed, ":"), " \t\n")
		if trimmed != "" {
			body[0].Data = trimmed
			break
		}
		if body[0].Parent != nil {
			body[0].Parent.RemoveChild(body[0])
		}
		body = body[1:]
	}
	return body
}

func bodyHasContent(body []*html.Node) bool {
	var text strings.Builder
	for _, n := range body {
		switch n.Type {
		case html.ElementNode:
			return true
		case html.TextNode:
			text.WriteString(n.Data)
		}
	}
	return trimBody(text.String()) != ""
}

// textOf concatenates the text content of nodes
func textOf(nodes []*html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return b.String()
}

func blank(n *html.Node) bool {
	return n.Type == html.CommentNode || (n.Type == html.TextNode && strings.TrimSpace(n.Data) == "")
}
