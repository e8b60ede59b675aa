// Package layout rearranges rendered slide HTML: structural transforms,
// feature analysis and the layout rule engine.
package layout

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// fragmentTags are the block tags that form their own top-level fragment
var fragmentTags = map[atom.Atom]bool{
	atom.H1: true, atom.H2: true, atom.H3: true,
	atom.H4: true, atom.H5: true, atom.H6: true,
	atom.P:          true,
	atom.Div:        true,
	atom.Ul:         true,
	atom.Ol:         true,
	atom.Blockquote: true,
	atom.Pre:        true,
	atom.Figure:     true,
	atom.Table:      true,
}

// fragment is one unit of rearrangement. An opaque fragment groups
// consecutive nodes that are not fragment tags.
type fragment struct {
	tag   atom.Atom
	nodes []*html.Node
}

func (f fragment) opaque() bool {
	return f.tag == 0
}

// isHeading reports whether the fragment is an <hN> for the given level
func (f fragment) isHeading(level int) bool {
	return f.tag != 0 && f.tag == headingAtom(level)
}

// isMedia reports whether the fragment is a figure or an image-only paragraph
func (f fragment) isMedia() bool {
	if f.opaque() {
		return false
	}
	switch f.tag {
	case atom.Figure:
		return true
	case atom.P:
		return imageOnly(f.nodes[0])
	}
	return false
}

// imageCount counts images inside the fragment
func (f fragment) imageCount() int {
	count := 0
	for _, n := range f.nodes {
		count += countElements(n, atom.Img)
	}
	return count
}

func (f fragment) render(b *strings.Builder) {
	for _, n := range f.nodes {
		_ = html.Render(b, n)
	}
}

// parseRoot parses an HTML fragment in a <body> context and hangs the
// resulting nodes under a detached root element
func parseRoot(s string) (*html.Node, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(s), body)
	if err != nil {
		return nil, err
	}

	root := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root, nil
}

// renderChildren serializes the children of root
func renderChildren(root *html.Node) string {
	var buf bytes.Buffer
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&buf, c)
	}
	return buf.String()
}

// splitFragments types the direct children of root. Whitespace text and
// comments are dropped.
func splitFragments(root *html.Node) []fragment {
	var (
		frags  []fragment
		opaque []*html.Node
	)

	flush := func() {
		if len(opaque) > 0 {
			frags = append(frags, fragment{nodes: opaque})
			opaque = nil
		}
	}

	for c := root.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.Type == html.CommentNode:
			continue
		case c.Type == html.TextNode && strings.TrimSpace(c.Data) == "":
			continue
		case c.Type == html.ElementNode && fragmentTags[c.DataAtom]:
			flush()
			frags = append(frags, fragment{tag: c.DataAtom, nodes: []*html.Node{c}})
		default:
			opaque = append(opaque, c)
		}
	}
	flush()

	return frags
}

func renderFragments(b *strings.Builder, frags []fragment) {
	for _, f := range frags {
		f.render(b)
	}
}

func headingAtom(level int) atom.Atom {
	switch level {
	case 1:
		return atom.H1
	case 2:
		return atom.H2
	case 3:
		return atom.H3
	case 4:
		return atom.H4
	case 5:
		return atom.H5
	case 6:
		return atom.H6
	}
	return 0
}

// significantChildren returns the children of n without whitespace text
// and comments
func significantChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.CommentNode {
			continue
		}
		if c.Type == html.TextNode && strings.TrimSpace(c.Data) == "" {
			continue
		}
		out = append(out, c)
	}
	return out
}

// imageOnly reports whether a paragraph holds one or more images and
// nothing else but line breaks
func imageOnly(p *html.Node) bool {
	images := 0
	for _, c := range significantChildren(p) {
		switch {
		case isElement(c, atom.Img):
			images++
		case isElement(c, atom.Br):
		default:
			return false
		}
	}
	return images > 0
}

// emphasisOnly reports whether a paragraph holds a single <em> and nothing else
func emphasisOnly(p *html.Node) bool {
	children := significantChildren(p)
	return len(children) == 1 && isElement(children[0], atom.Em)
}

func isElement(n *html.Node, a atom.Atom) bool {
	return n != nil && n.Type == html.ElementNode && n.DataAtom == a
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Namespace == "" && attr.Key == "class" {
			for _, c := range strings.Fields(attr.Val) {
				if c == class {
					return true
				}
			}
		}
	}
	return false
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// insideAny reports whether any ancestor of n is one of the given elements
func insideAny(n *html.Node, atoms ...atom.Atom) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		for _, a := range atoms {
			if isElement(p, a) {
				return true
			}
		}
	}
	return false
}

func countElements(n *html.Node, a atom.Atom) int {
	count := 0
	if isElement(n, a) {
		count++
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		count += countElements(c, a)
	}
	return count
}

// collect returns the elements in the subtree of n, in document order,
// for which keep returns true
func collect(n *html.Node, keep func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && keep(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

// newElement creates an element carrying the given class and, when
// present, a source line attribute
func newElement(a atom.Atom, class, sourceLine string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: a.String(), DataAtom: a}
	if class != "" {
		n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: class})
	}
	if sourceLine != "" {
		n.Attr = append(n.Attr, html.Attribute{Key: sourceLineAttr, Val: sourceLine})
	}
	return n
}

// adopt moves nodes under parent
func adopt(parent *html.Node, nodes []*html.Node) {
	for _, n := range nodes {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
		parent.AppendChild(n)
	}
}
