package layout

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ApplyCaptions turns an image followed by an italic line into a
// <figure> with a <figcaption>. The caption may be the next paragraph or
// follow a line break inside the image paragraph.
func ApplyCaptions(s string) string {
	if !strings.Contains(s, "<img") {
		return s
	}

	root, err := parseRoot(s)
	if err != nil {
		return s
	}

	paragraphs := collect(root, func(n *html.Node) bool {
		return n.DataAtom == atom.P && !insideAny(n, atom.Li, atom.Figure)
	})

	changed := false
	for _, p := range paragraphs {
		// Already consumed as the caption of the previous image
		if p.Parent == nil {
			continue
		}

		if img, em, ok := inlineCaption(p); ok {
			replaceWithFigure(p, img, em)
			changed = true
			continue
		}

		children := significantChildren(p)
		if len(children) != 1 || !isElement(children[0], atom.Img) {
			continue
		}
		next := nextElement(p)
		if next == nil || !isElement(next, atom.P) || !emphasisOnly(next) {
			continue
		}

		em := significantChildren(next)[0]
		replaceWithFigure(p, children[0], em)
		next.Parent.RemoveChild(next)
		changed = true
	}

	if !changed {
		return s
	}
	return renderChildren(root)
}

// inlineCaption matches <p><img> (line breaks) <em>caption</em></p>
func inlineCaption(p *html.Node) (img, em *html.Node, ok bool) {
	children := significantChildren(p)
	if len(children) < 2 {
		return nil, nil, false
	}

	img, em = children[0], children[len(children)-1]
	if !isElement(img, atom.Img) || !isElement(em, atom.Em) {
		return nil, nil, false
	}
	for _, c := range children[1 : len(children)-1] {
		if !isElement(c, atom.Br) {
			return nil, nil, false
		}
	}
	return img, em, true
}

func replaceWithFigure(p, img, em *html.Node) {
	line, _ := attr(p, sourceLineAttr)
	figure := newElement(atom.Figure, "", line)
	caption := newElement(atom.Figcaption, "", "")

	var text []*html.Node
	for c := em.FirstChild; c != nil; c = c.NextSibling {
		text = append(text, c)
	}
	adopt(caption, text)

	img.Parent.RemoveChild(img)
	figure.AppendChild(img)
	figure.AppendChild(caption)

	p.Parent.InsertBefore(figure, p)
	p.Parent.RemoveChild(p)
}

// nextElement returns the next sibling element, skipping whitespace and comments
func nextElement(n *html.Node) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if blank(s) {
			continue
		}
		if s.Type == html.ElementNode {
			return s
		}
		return nil
	}
	return nil
}
