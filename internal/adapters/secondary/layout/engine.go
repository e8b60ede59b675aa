package layout

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/fredcamaral/deckflow/internal/domain/entities"
)

// ManualColumnsClass is the container emitted by the two-column directive
const ManualColumnsClass = "slide-columns"

// Result is the outcome of laying out one slide
type Result = entities.LayoutResult

// Engine lays out rendered slides. It holds no state and is safe for
// concurrent use.
type Engine struct{}

// NewEngine creates a layout engine
func NewEngine() *Engine {
	return &Engine{}
}

// Process runs the structural transforms on a rendered slide and lays it out
func (e *Engine) Process(s string, rules []entities.LayoutRule) Result {
	s = ApplyCards(s)
	s = ApplyCaptions(s)
	return e.Apply(s, rules)
}

// Apply lays out a slide with the first enabled rule whose conditions hold.
// Rules must already be in ascending priority order. With no rules the
// built-in heuristics are used instead.
func (e *Engine) Apply(s string, rules []entities.LayoutRule) Result {
	features := Analyze(s)
	result := Result{HTML: s, Features: features}

	// Manual columns always win
	if hasManualColumns(s) {
		return result
	}

	if len(rules) == 0 {
		return applyLegacy(s, features)
	}

	rule, ok := MatchRule(rules, features)
	if !ok {
		return result
	}
	if out, ok := applyTransform(s, rule.Transform); ok {
		result.HTML = out
		result.AppliedLayout = rule.DisplayName
	}
	return result
}

// MatchRule returns the rule that would be applied to features, if any
func MatchRule(rules []entities.LayoutRule, features entities.ContentFeatures) (entities.LayoutRule, bool) {
	for _, rule := range rules {
		if rule.Matches(features) {
			return rule, true
		}
	}
	return entities.LayoutRule{}, false
}

func hasManualColumns(s string) bool {
	if !strings.Contains(s, ManualColumnsClass) {
		return false
	}
	root, err := parseRoot(s)
	if err != nil {
		return true
	}
	return len(collect(root, func(n *html.Node) bool { return hasClass(n, ManualColumnsClass) })) > 0
}
