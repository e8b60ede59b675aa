package layout

import (
	"html"
	"strings"

	"github.com/fredcamaral/deckflow/internal/domain/entities"
)

// transform rearranges a slide. ok is false when the transform's
// preconditions do not hold and the slide must stay as it is.
type transform func(s string, opts entities.TransformOptions) (string, bool)

var transforms = map[entities.TransformType]transform{
	entities.TransformWrap:           wrap,
	entities.TransformSplitTwo:       splitTwo,
	entities.TransformSplitTopBottom: splitTopBottom,
	entities.TransformGroupByHeading: groupByHeading,
}

// applyTransform runs t over s
func applyTransform(s string, t entities.LayoutTransform) (string, bool) {
	fn, ok := transforms[t.Type]
	if !ok {
		return s, false
	}
	return fn(s, t.Options)
}

func wrap(s string, opts entities.TransformOptions) (string, bool) {
	var b strings.Builder
	openDiv(&b, opts.ClassName)
	b.WriteString(s)
	b.WriteString("</div>")
	return b.String(), true
}

// splitTwo puts media on the right. The cards selector moves every media
// fragment, the text selector only the first one.
func splitTwo(s string, opts entities.TransformOptions) (string, bool) {
	frags, ok := fragments(s)
	if !ok {
		return s, false
	}

	var left, right []fragment
	for _, f := range frags {
		if f.isMedia() && (opts.LeftSelector == entities.SelectorCards || len(right) == 0) {
			right = append(right, f)
			continue
		}
		left = append(left, f)
	}
	if len(right) == 0 {
		return s, false
	}

	var b strings.Builder
	openDiv(&b, opts.ClassName)
	openDiv(&b, opts.LeftClass())
	renderFragments(&b, left)
	b.WriteString("</div>")
	openDiv(&b, opts.RightClass())
	renderFragments(&b, right)
	b.WriteString("</div></div>")
	return b.String(), true
}

// splitTopBottom keeps text on top and gathers media in a grid below it
func splitTopBottom(s string, opts entities.TransformOptions) (string, bool) {
	frags, ok := fragments(s)
	if !ok {
		return s, false
	}

	var top, bottom []fragment
	images := 0
	for _, f := range frags {
		if f.isMedia() {
			bottom = append(bottom, f)
			images += f.imageCount()
			continue
		}
		top = append(top, f)
	}
	if images < 2 {
		return s, false
	}

	var b strings.Builder
	renderFragments(&b, top)
	openDiv(&b, opts.ClassName)
	renderFragments(&b, bottom)
	b.WriteString("</div>")
	return b.String(), true
}

// groupByHeading puts each heading of the configured level and the
// fragments after it into its own column
func groupByHeading(s string, opts entities.TransformOptions) (string, bool) {
	frags, ok := fragments(s)
	if !ok {
		return s, false
	}

	var (
		header   []fragment
		sections [][]fragment
	)
	for _, f := range frags {
		switch {
		case f.isHeading(opts.HeadingLevel):
			sections = append(sections, []fragment{f})
		case len(sections) == 0:
			header = append(header, f)
		default:
			last := len(sections) - 1
			sections[last] = append(sections[last], f)
		}
	}
	if len(sections) < 2 {
		return s, false
	}

	var b strings.Builder
	renderFragments(&b, header)
	openDiv(&b, opts.ContainerClass())
	for _, section := range sections {
		openDiv(&b, opts.ColumnClass())
		renderFragments(&b, section)
		b.WriteString("</div>")
	}
	b.WriteString("</div>")
	return b.String(), true
}

func fragments(s string) ([]fragment, bool) {
	root, err := parseRoot(s)
	if err != nil {
		return nil, false
	}
	return splitFragments(root), true
}

func openDiv(b *strings.Builder, class string) {
	b.WriteString(`<div class="`)
	b.WriteString(html.EscapeString(class))
	b.WriteString(`">`)
}
