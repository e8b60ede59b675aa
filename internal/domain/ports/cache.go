package ports

import (
	"github.com/fredcamaral/deckflow/internal/domain/entities"
)

// SlideCache stores rendered slides by content key
type SlideCache interface {
	Get(key string) (entities.RenderedSlide, bool)
	Set(key string, slide entities.RenderedSlide)
	Stats() entities.CacheStats
}
