package ports

import (
	"context"

	"github.com/fredcamaral/deckflow/internal/domain/entities"
)

// RuleRepository provides the layout rule set
type RuleRepository interface {
	// Load returns the validated rules in ascending priority order
	Load(ctx context.Context) ([]entities.LayoutRule, error)

	// Source describes where the rules come from
	Source() string

	// File is the rule file to watch for edits; empty for built-in rules
	File() string
}
