package layout

import (
	"github.com/fredcamaral/deckflow/internal/domain/entities"
)

// Layout names reported by the built-in heuristics
const (
	LegacySections   = "Sections"
	LegacyHero       = "Hero"
	LegacyCardsImage = "Cards + Image"
	LegacyImageGrid  = "Image Grid"
	LegacyTextImage  = "Text + Image"
)

// heuristic is one step of the built-in decision list
type heuristic struct {
	name      string
	when      func(f entities.ContentFeatures) bool
	transform entities.LayoutTransform
}

// heuristics are checked in order; the first that holds decides
var heuristics = []heuristic{
	{
		name: LegacySections,
		when: func(f entities.ContentFeatures) bool { return f.H3Count >= 2 },
		transform: entities.LayoutTransform{
			Type:    entities.TransformGroupByHeading,
			Options: entities.TransformOptions{HeadingLevel: 3},
		},
	},
	{
		name: LegacyHero,
		when: func(f entities.ContentFeatures) bool {
			return f.HasHeading && !f.HasMedia() &&
				!f.HasCards && !f.HasList && !f.HasCodeBlock && !f.HasBlockquote &&
				f.TextParagraphCount <= 1
		},
		transform: entities.LayoutTransform{
			Type:    entities.TransformWrap,
			Options: entities.TransformOptions{ClassName: "layout-hero"},
		},
	},
	{
		name: LegacyCardsImage,
		when: func(f entities.ContentFeatures) bool { return f.HasCards && f.ImageCount >= 1 },
		transform: entities.LayoutTransform{
			Type: entities.TransformSplitTwo,
			Options: entities.TransformOptions{
				ClassName:    "layout-cards-image",
				LeftSelector: entities.SelectorCards,
			},
		},
	},
	{
		name: LegacyImageGrid,
		when: func(f entities.ContentFeatures) bool { return f.ImageCount >= 2 && !f.HasCards },
		transform: entities.LayoutTransform{
			Type:    entities.TransformSplitTopBottom,
			Options: entities.TransformOptions{ClassName: "layout-image-grid"},
		},
	},
	{
		name: LegacyTextImage,
		when: func(f entities.ContentFeatures) bool { return f.HasHeading && f.ImageCount == 1 },
		transform: entities.LayoutTransform{
			Type: entities.TransformSplitTwo,
			Options: entities.TransformOptions{
				ClassName:    "layout-text-image",
				LeftSelector: entities.SelectorText,
			},
		},
	},
}

// applyLegacy lays out a slide with the built-in heuristics, used when no
// rule set is configured
func applyLegacy(s string, features entities.ContentFeatures) Result {
	result := Result{HTML: s, Features: features}

	for _, h := range heuristics {
		if !h.when(features) {
			continue
		}
		if out, ok := applyTransform(s, h.transform); ok {
			result.HTML = out
			result.AppliedLayout = h.name
		}
		return result
	}

	return result
}
