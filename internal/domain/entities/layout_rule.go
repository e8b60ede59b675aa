package entities

import (
	"errors"
	"fmt"
	"strings"
)

// TransformType identifies one of the fragment rearrangement operations
type TransformType string

const (
	TransformWrap           TransformType = "wrap"
	TransformSplitTwo       TransformType = "split-two"
	TransformSplitTopBottom TransformType = "split-top-bottom"
	TransformGroupByHeading TransformType = "group-by-heading"
)

// Left selectors understood by split-two
const (
	SelectorText  = "text"
	SelectorCards = "cards"
)

// Default class names used when a transform leaves them empty
const (
	DefaultLeftClassName      = "layout-body"
	DefaultRightClassName     = "layout-media"
	DefaultContainerClassName = "layout-sections"
	DefaultColumnClassName    = "layout-section"
)

// LayoutRule maps content conditions to a layout transform.
// Rules are owned by the surrounding application and read-only here.
type LayoutRule struct {
	ID          string           `json:"id,omitempty" yaml:"id,omitempty" toml:"id,omitempty"`
	Name        string           `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	DisplayName string           `json:"displayName" yaml:"displayName" toml:"displayName"`
	Description string           `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Priority    int              `json:"priority" yaml:"priority" toml:"priority"`
	Enabled     bool             `json:"enabled" yaml:"enabled" toml:"enabled"`
	IsDefault   bool             `json:"isDefault,omitempty" yaml:"isDefault,omitempty" toml:"isDefault,omitempty"`
	Conditions  LayoutConditions `json:"conditions" yaml:"conditions" toml:"conditions"`
	Transform   LayoutTransform  `json:"transform" yaml:"transform" toml:"transform"`
	CSSContent  string           `json:"cssContent,omitempty" yaml:"cssContent,omitempty" toml:"cssContent,omitempty"`
}

// Validate checks that the rule can be evaluated
func (r LayoutRule) Validate() error {
	if strings.TrimSpace(r.DisplayName) == "" {
		return errors.New("display name cannot be empty")
	}

	if err := r.Conditions.Validate(); err != nil {
		return fmt.Errorf("conditions: %w", err)
	}

	if err := r.Transform.Validate(); err != nil {
		return fmt.Errorf("transform: %w", err)
	}

	return nil
}

// Matches reports whether the rule is enabled and its conditions hold
func (r LayoutRule) Matches(f ContentFeatures) bool {
	return r.Enabled && r.Conditions.Matches(f)
}

// LayoutConditions is a conjunction of optional predicates over ContentFeatures.
// A nil predicate does not constrain the match.
type LayoutConditions struct {
	HasHeading         *bool            `json:"hasHeading,omitempty" yaml:"hasHeading,omitempty" toml:"hasHeading,omitempty"`
	HasCards           *bool            `json:"hasCards,omitempty" yaml:"hasCards,omitempty" toml:"hasCards,omitempty"`
	HasList            *bool            `json:"hasList,omitempty" yaml:"hasList,omitempty" toml:"hasList,omitempty"`
	HasCodeBlock       *bool            `json:"hasCodeBlock,omitempty" yaml:"hasCodeBlock,omitempty" toml:"hasCodeBlock,omitempty"`
	HasBlockquote      *bool            `json:"hasBlockquote,omitempty" yaml:"hasBlockquote,omitempty" toml:"hasBlockquote,omitempty"`
	ImageCount         *NumberCondition `json:"imageCount,omitempty" yaml:"imageCount,omitempty" toml:"imageCount,omitempty"`
	FigureCount        *NumberCondition `json:"figureCount,omitempty" yaml:"figureCount,omitempty" toml:"figureCount,omitempty"`
	H3Count            *NumberCondition `json:"h3Count,omitempty" yaml:"h3Count,omitempty" toml:"h3Count,omitempty"`
	TextParagraphCount *NumberCondition `json:"textParagraphCount,omitempty" yaml:"textParagraphCount,omitempty" toml:"textParagraphCount,omitempty"`
}

// Matches evaluates every present predicate against the features
func (c LayoutConditions) Matches(f ContentFeatures) bool {
	return boolHolds(c.HasHeading, f.HasHeading) &&
		boolHolds(c.HasCards, f.HasCards) &&
		boolHolds(c.HasList, f.HasList) &&
		boolHolds(c.HasCodeBlock, f.HasCodeBlock) &&
		boolHolds(c.HasBlockquote, f.HasBlockquote) &&
		c.ImageCount.Holds(f.ImageCount) &&
		c.FigureCount.Holds(f.FigureCount) &&
		c.H3Count.Holds(f.H3Count) &&
		c.TextParagraphCount.Holds(f.TextParagraphCount)
}

// Validate checks every numeric predicate
func (c LayoutConditions) Validate() error {
	numeric := map[string]*NumberCondition{
		"imageCount":         c.ImageCount,
		"figureCount":        c.FigureCount,
		"h3Count":            c.H3Count,
		"textParagraphCount": c.TextParagraphCount,
	}
	for _, name := range []string{"imageCount", "figureCount", "h3Count", "textParagraphCount"} {
		if err := numeric[name].Validate(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func boolHolds(want *bool, got bool) bool {
	return want == nil || *want == got
}

// NumberCondition constrains a count. All present bounds must hold.
type NumberCondition struct {
	Eq  *int `json:"eq,omitempty" yaml:"eq,omitempty" toml:"eq,omitempty"`
	Gte *int `json:"gte,omitempty" yaml:"gte,omitempty" toml:"gte,omitempty"`
	Lte *int `json:"lte,omitempty" yaml:"lte,omitempty" toml:"lte,omitempty"`
	Gt  *int `json:"gt,omitempty" yaml:"gt,omitempty" toml:"gt,omitempty"`
}

// Holds reports whether n satisfies the condition; a nil condition always holds
func (c *NumberCondition) Holds(n int) bool {
	if c == nil {
		return true
	}
	if c.Eq != nil && n != *c.Eq {
		return false
	}
	if c.Gte != nil && n < *c.Gte {
		return false
	}
	if c.Lte != nil && n > *c.Lte {
		return false
	}
	if c.Gt != nil && n <= *c.Gt {
		return false
	}
	return true
}

// Validate rejects empty conditions
func (c *NumberCondition) Validate() error {
	if c == nil {
		return nil
	}
	if c.Eq == nil && c.Gte == nil && c.Lte == nil && c.Gt == nil {
		return errors.New("numeric condition needs one of eq, gte, lte, gt")
	}
	return nil
}

// LayoutTransform is the tagged transform variant applied when a rule matches
type LayoutTransform struct {
	Type    TransformType    `json:"type" yaml:"type" toml:"type"`
	Options TransformOptions `json:"options" yaml:"options" toml:"options"`
}

// TransformOptions holds the options of every transform type.
// Which fields are meaningful depends on the transform type.
type TransformOptions struct {
	ClassName          string `json:"className,omitempty" yaml:"className,omitempty" toml:"className,omitempty"`
	LeftSelector       string `json:"leftSelector,omitempty" yaml:"leftSelector,omitempty" toml:"leftSelector,omitempty"`
	RightSelector      string `json:"rightSelector,omitempty" yaml:"rightSelector,omitempty" toml:"rightSelector,omitempty"`
	LeftClassName      string `json:"leftClassName,omitempty" yaml:"leftClassName,omitempty" toml:"leftClassName,omitempty"`
	RightClassName     string `json:"rightClassName,omitempty" yaml:"rightClassName,omitempty" toml:"rightClassName,omitempty"`
	HeadingLevel       int    `json:"headingLevel,omitempty" yaml:"headingLevel,omitempty" toml:"headingLevel,omitempty"`
	ContainerClassName string `json:"containerClassName,omitempty" yaml:"containerClassName,omitempty" toml:"containerClassName,omitempty"`
	ColumnClassName    string `json:"columnClassName,omitempty" yaml:"columnClassName,omitempty" toml:"columnClassName,omitempty"`
}

// Validate checks the options required by the transform type
func (t LayoutTransform) Validate() error {
	switch t.Type {
	case TransformWrap, TransformSplitTopBottom:
		if t.Options.ClassName == "" {
			return fmt.Errorf("%s requires className", t.Type)
		}
	case TransformSplitTwo:
		if t.Options.ClassName == "" {
			return fmt.Errorf("%s requires className", t.Type)
		}
		switch t.Options.LeftSelector {
		case SelectorText, SelectorCards:
		default:
			return fmt.Errorf("invalid leftSelector %q (must be text or cards)", t.Options.LeftSelector)
		}
	case TransformGroupByHeading:
		if t.Options.HeadingLevel < 1 || t.Options.HeadingLevel > 6 {
			return fmt.Errorf("headingLevel must be between 1 and 6, got %d", t.Options.HeadingLevel)
		}
	case "":
		return errors.New("transform type cannot be empty")
	default:
		return fmt.Errorf("unknown transform type: %s", t.Type)
	}
	return nil
}

// LeftClass returns the left column class with its default
func (o TransformOptions) LeftClass() string {
	if o.LeftClassName == "" {
		return DefaultLeftClassName
	}
	return o.LeftClassName
}

// RightClass returns the right column class with its default
func (o TransformOptions) RightClass() string {
	if o.RightClassName == "" {
		return DefaultRightClassName
	}
	return o.RightClassName
}

// ContainerClass returns the section container class with its default
func (o TransformOptions) ContainerClass() string {
	if o.ContainerClassName == "" {
		return DefaultContainerClassName
	}
	return o.ContainerClassName
}

// ColumnClass returns the section column class with its default
func (o TransformOptions) ColumnClass() string {
	if o.ColumnClassName == "" {
		return DefaultColumnClassName
	}
	return o.ColumnClassName
}

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool { return &b }

// IntPtr returns a pointer to n
func IntPtr(n int) *int { return &n }
