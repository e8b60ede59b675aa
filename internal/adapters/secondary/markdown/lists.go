package markdown

import (
	"regexp"
	"strings"
)

// ListSeparator is the empty comment that ends a bullet list
const ListSeparator = "<!-- -->"

var (
	bulletLine = regexp.MustCompile(`^[-*+][ \t]+\S`)
	fenceLine  = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})")
)

// SeparateLists keeps bullet lists that are separated by blank lines apart.
// goldmark would otherwise merge them into one loose list. The first blank
// line between two such lists is replaced by an empty HTML comment, so line
// numbers are unchanged. Fenced code is left alone. The result is stable
// under repeated application.
func SeparateLists(content string) string {
	lines := strings.Split(content, "\n")

	var (
		fence      string
		prevBullet bool
		blankAt    = -1
		changed    bool
	)

	for i, line := range lines {
		if fence != "" {
			if strings.HasPrefix(strings.TrimSpace(line), fence) {
				fence = ""
			}
			continue
		}

		if m := fenceLine.FindStringSubmatch(line); m != nil {
			fence = m[1][:3]
			prevBullet = false
			blankAt = -1
			continue
		}

		if strings.TrimSpace(line) == "" {
			if prevBullet && blankAt < 0 {
				blankAt = i
			}
			continue
		}

		isBullet := bulletLine.MatchString(line)
		if isBullet && blankAt >= 0 {
			lines[blankAt] = ListSeparator
			changed = true
		}

		prevBullet = isBullet
		blankAt = -1
	}

	if !changed {
		return content
	}
	return strings.Join(lines, "\n")
}
