package ports

import (
	"context"

	"github.com/fredcamaral/deckflow/internal/domain/entities"
)

// PageRenderer renders the browser preview of a parsed deck
type PageRenderer interface {
	// RenderPreview renders the full preview page
	RenderPreview(ctx context.Context, p *entities.ParsedPresentation) ([]byte, error)

	// RenderSlide renders one slide section of the preview page
	RenderSlide(ctx context.Context, s *entities.ParsedSlide) ([]byte, error)
}
