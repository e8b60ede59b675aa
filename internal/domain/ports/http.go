package ports

import (
	"context"
	"time"

	"github.com/fredcamaral/deckflow/internal/domain/entities"
)

// HTTPServer defines the interface for the preview server
type HTTPServer interface {
	Start(ctx context.Context, port int, host string) error
	Stop(ctx context.Context) error
	NotifyClients(event UpdateEvent) error
	IsRunning() bool
	SetPresentation(presentation *entities.ParsedPresentation)
}

// UpdateEvent represents an event sent to WebSocket clients
type UpdateEvent struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// UpdateEvent types
const (
	EventTypeReload = "reload"
	EventTypeError  = "error"
	EventTypeRules  = "rules"
)
