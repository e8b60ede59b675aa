// Package builders assembles layout rules and Markdown decks for tests.
package builders

import (
	"strings"

	"github.com/fredcamaral/deckflow/internal/domain/entities"
)

// RuleBuilder helps build LayoutRule entities for testing
type RuleBuilder struct {
	rule entities.LayoutRule
}

// NewRuleBuilder creates an enabled wrap rule named displayName
func NewRuleBuilder(displayName string) *RuleBuilder {
	return &RuleBuilder{
		rule: entities.LayoutRule{
			ID:          slug(displayName),
			Name:        slug(displayName),
			DisplayName: displayName,
			Priority:    100,
			Enabled:     true,
			Transform: entities.LayoutTransform{
				Type:    entities.TransformWrap,
				Options: entities.TransformOptions{ClassName: "layout-" + slug(displayName)},
			},
		},
	}
}

// WithPriority sets the rule priority; lower values are tried first
func (b *RuleBuilder) WithPriority(priority int) *RuleBuilder {
	b.rule.Priority = priority
	return b
}

// Disabled turns the rule off
func (b *RuleBuilder) Disabled() *RuleBuilder {
	b.rule.Enabled = false
	return b
}

// WithHeading requires the slide to have (or lack) an h1-h3
func (b *RuleBuilder) WithHeading(want bool) *RuleBuilder {
	b.rule.Conditions.HasHeading = entities.BoolPtr(want)
	return b
}

// WithCards requires the slide to have (or lack) a card grid
func (b *RuleBuilder) WithCards(want bool) *RuleBuilder {
	b.rule.Conditions.HasCards = entities.BoolPtr(want)
	return b
}

// WithMinImages requires at least n images
func (b *RuleBuilder) WithMinImages(n int) *RuleBuilder {
	b.rule.Conditions.ImageCount = &entities.NumberCondition{Gte: entities.IntPtr(n)}
	return b
}

// WithImages requires exactly n images
func (b *RuleBuilder) WithImages(n int) *RuleBuilder {
	b.rule.Conditions.ImageCount = &entities.NumberCondition{Eq: entities.IntPtr(n)}
	return b
}

// WithMinSections requires at least n h3 headings
func (b *RuleBuilder) WithMinSections(n int) *RuleBuilder {
	b.rule.Conditions.H3Count = &entities.NumberCondition{Gte: entities.IntPtr(n)}
	return b
}

// Wrap wraps the slide in a div with className
func (b *RuleBuilder) Wrap(className string) *RuleBuilder {
	b.rule.Transform = entities.LayoutTransform{
		Type:    entities.TransformWrap,
		Options: entities.TransformOptions{ClassName: className},
	}
	return b
}

// SplitTwo splits the slide into columns with leftSelector on the left
func (b *RuleBuilder) SplitTwo(className, leftSelector string) *RuleBuilder {
	b.rule.Transform = entities.LayoutTransform{
		Type: entities.TransformSplitTwo,
		Options: entities.TransformOptions{
			ClassName:    className,
			LeftSelector: leftSelector,
		},
	}
	return b
}

// SplitTopBottom moves media below the rest of the slide
func (b *RuleBuilder) SplitTopBottom(className string) *RuleBuilder {
	b.rule.Transform = entities.LayoutTransform{
		Type:    entities.TransformSplitTopBottom,
		Options: entities.TransformOptions{ClassName: className},
	}
	return b
}

// GroupByHeading groups content under each heading of level
func (b *RuleBuilder) GroupByHeading(level int) *RuleBuilder {
	b.rule.Transform = entities.LayoutTransform{
		Type:    entities.TransformGroupByHeading,
		Options: entities.TransformOptions{HeadingLevel: level},
	}
	return b
}

// WithCSS attaches a stylesheet fragment to the rule
func (b *RuleBuilder) WithCSS(css string) *RuleBuilder {
	b.rule.CSSContent = css
	return b
}

// Build returns a copy of the rule
func (b *RuleBuilder) Build() entities.LayoutRule {
	rule := b.rule
	rule.Conditions = copyConditions(b.rule.Conditions)
	return rule
}

// copyConditions keeps built rules from sharing predicate pointers
func copyConditions(c entities.LayoutConditions) entities.LayoutConditions {
	out := entities.LayoutConditions{
		HasHeading:    copyBool(c.HasHeading),
		HasCards:      copyBool(c.HasCards),
		HasList:       copyBool(c.HasList),
		HasCodeBlock:  copyBool(c.HasCodeBlock),
		HasBlockquote: copyBool(c.HasBlockquote),
	}
	out.ImageCount = copyNumber(c.ImageCount)
	out.FigureCount = copyNumber(c.FigureCount)
	out.H3Count = copyNumber(c.H3Count)
	out.TextParagraphCount = copyNumber(c.TextParagraphCount)
	return out
}

func copyBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	return entities.BoolPtr(*b)
}

func copyNumber(n *entities.NumberCondition) *entities.NumberCondition {
	if n == nil {
		return nil
	}
	out := &entities.NumberCondition{}
	if n.Eq != nil {
		out.Eq = entities.IntPtr(*n.Eq)
	}
	if n.Gte != nil {
		out.Gte = entities.IntPtr(*n.Gte)
	}
	if n.Lte != nil {
		out.Lte = entities.IntPtr(*n.Lte)
	}
	if n.Gt != nil {
		out.Gt = entities.IntPtr(*n.Gt)
	}
	return out
}

func slug(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), "-"))
}

// Common rule sets for testing

// ImageGridRule matches slides with two or more images
func ImageGridRule(priority int) entities.LayoutRule {
	return NewRuleBuilder("Image Grid").
		WithPriority(priority).
		WithMinImages(2).
		SplitTopBottom("layout-image-grid").
		Build()
}

// HeroRule matches heading slides without images
func HeroRule(priority int) entities.LayoutRule {
	return NewRuleBuilder("Hero").
		WithPriority(priority).
		WithHeading(true).
		WithImages(0).
		Wrap("layout-hero").
		Build()
}

// StandardRules is a small rule set covering images, sections and heroes
func StandardRules() []entities.LayoutRule {
	return []entities.LayoutRule{
		NewRuleBuilder("Sections").WithPriority(10).WithMinSections(2).GroupByHeading(3).Build(),
		ImageGridRule(20),
		NewRuleBuilder("Text + Image").WithPriority(30).WithHeading(true).WithImages(1).
			SplitTwo("layout-text-image", entities.SelectorText).Build(),
		HeroRule(40),
	}
}
