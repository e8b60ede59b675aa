package markdown

import (
	"regexp"
	"strings"
)

var (
	columnsOpen  = regexp.MustCompile(`(?i)<!--\s*columns\s*-->`)
	columnsSplit = regexp.MustCompile(`(?i)<!--\s*split\s*-->`)
	columnsClose = regexp.MustCompile(`(?i)<!--\s*/columns\s*-->`)
)

// region is a slice of slide markdown and the slide line it starts on
type region struct {
	text string
	line int
}

// columns is a slide cut by the two-column directive
type columns struct {
	before region
	left   region
	right  region
	after  region
}

// splitColumns cuts content at the first columns directive. The closing
// marker is optional; without it the right column runs to the end.
func splitColumns(content string) (columns, bool) {
	open := columnsOpen.FindStringIndex(content)
	if open == nil {
		return columns{}, false
	}

	split := columnsSplit.FindStringIndex(content[open[1]:])
	if split == nil {
		return columns{}, false
	}
	split[0] += open[1]
	split[1] += open[1]

	end := len(content)
	afterStart := len(content)
	if closing := columnsClose.FindStringIndex(content[split[1]:]); closing != nil {
		end = split[1] + closing[0]
		afterStart = split[1] + closing[1]
	}

	at := func(start, stop int) region {
		return region{
			text: content[start:stop],
			line: strings.Count(content[:start], "\n"),
		}
	}

	return columns{
		before: at(0, open[0]),
		left:   at(open[1], split[0]),
		right:  at(split[1], end),
		after:  at(afterStart, len(content)),
	}, true
}
