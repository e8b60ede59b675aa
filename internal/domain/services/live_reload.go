package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fredcamaral/deckflow/internal/domain/ports"
)

// LiveReloadService re-parses the deck on every file change and pushes the
// result to connected preview clients
type LiveReloadService struct {
	server      ports.HTTPServer
	presenter   ports.PresentationService
	logger      ports.Logger
	monitor     ports.Monitor
	mu          sync.Mutex
	watching    bool
	watchCancel context.CancelFunc
	path        string
}

// NewLiveReloadService creates a new live reload service
func NewLiveReloadService(server ports.HTTPServer, presenter ports.PresentationService, logger ports.Logger) *LiveReloadService {
	return &LiveReloadService{
		server:    server,
		presenter: presenter,
		logger:    logger,
	}
}

// SetMonitor records every reload and its parse time
func (s *LiveReloadService) SetMonitor(monitor ports.Monitor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.monitor = monitor
}

// Start watches the deck at path until Stop is called or ctx ends
func (s *LiveReloadService) Start(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watching {
		return errors.New("already watching")
	}

	watchCtx, cancel := context.WithCancel(ctx)
	events, err := s.presenter.WatchPresentation(watchCtx, path)
	if err != nil {
		cancel()
		return fmt.Errorf("starting watcher: %w", err)
	}

	s.watching = true
	s.watchCancel = cancel
	s.path = path

	go s.handleEvents(watchCtx, events)

	return nil
}

// Stop stops watching; it is a no-op when not watching
func (s *LiveReloadService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.watching {
		return nil
	}

	if s.watchCancel != nil {
		s.watchCancel()
		s.watchCancel = nil
	}

	s.watching = false
	return nil
}

// IsWatching returns whether the service is currently watching
func (s *LiveReloadService) IsWatching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watching
}

func (s *LiveReloadService) handleEvents(ctx context.Context, events <-chan ports.FileChangeEvent) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-events:
			if !ok {
				return
			}

			s.logger.Info("file change detected",
				"path", event.Path,
				"type", event.Type.String(),
			)

			s.reload(ctx, event)
		}
	}
}

// reload parses the deck again and notifies clients. A failed parse keeps the
// previous slides on screen and reports the error instead.
func (s *LiveReloadService) reload(ctx context.Context, event ports.FileChangeEvent) {
	s.mu.Lock()
	path := s.path
	monitor := s.monitor
	s.mu.Unlock()

	start := time.Now()
	presentation, err := s.presenter.LoadPresentation(ctx, path)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		if monitor != nil {
			monitor.RecordReload(err)
		}
		s.logger.Error("failed to reload presentation",
			"path", path,
			"change_type", event.Type.String(),
			"error", err,
		)
		s.notify(ports.UpdateEvent{
			Type:      ports.EventTypeError,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"file":  path,
				"error": err.Error(),
			},
		})
		return
	}

	if monitor != nil {
		monitor.RecordParse(presentation.SlideCount(), time.Since(start))
		monitor.RecordReload(nil)
	}
	s.server.SetPresentation(presentation)

	eventType := ports.EventTypeReload
	if event.File == ports.RulesFile {
		eventType = ports.EventTypeRules
	}

	s.notify(ports.UpdateEvent{
		Type:      eventType,
		Timestamp: event.Timestamp,
		Data: map[string]interface{}{
			"file":   event.Path,
			"type":   event.Type.String(),
			"slides": presentation.SlideCount(),
		},
	})
}

func (s *LiveReloadService) notify(event ports.UpdateEvent) {
	if err := s.server.NotifyClients(event); err != nil {
		s.logger.Warn("failed to notify clients",
			"event_type", event.Type,
			"error", err,
		)
		return
	}

	s.logger.Debug("clients notified", "event_type", event.Type)
}
