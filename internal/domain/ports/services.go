package ports

import (
	"context"

	"github.com/fredcamaral/deckflow/internal/domain/entities"
)

// PresentationService loads and parses slide decks
type PresentationService interface {
	// LoadPresentation reads and parses a deck from a file path
	LoadPresentation(ctx context.Context, path string) (*entities.ParsedPresentation, error)

	// ParsePresentation parses markdown with the configured rules
	ParsePresentation(ctx context.Context, markdown string) (*entities.ParsedPresentation, error)

	// ParseWithRules parses markdown with an explicit rule set
	ParseWithRules(ctx context.Context, markdown string, rules []entities.LayoutRule) (*entities.ParsedPresentation, error)

	// Rules returns the configured layout rules
	Rules(ctx context.Context) ([]entities.LayoutRule, error)

	// WatchPresentation watches a deck file, and the rule file when there
	// is one, for changes
	WatchPresentation(ctx context.Context, path string) (<-chan FileChangeEvent, error)
}
