package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fredcamaral/deckflow/internal/domain/entities"
	"github.com/fredcamaral/deckflow/internal/domain/ports"
)

// PresentationService loads decks from disk and runs them through the slide
// pipeline with the configured layout rules
type PresentationService struct {
	parser  ports.SlideParser
	rules   ports.RuleRepository
	watcher ports.FileWatcher
	logger  ports.Logger
}

// NewPresentationService creates a new presentation service.
// A nil rule repository selects the built-in layout heuristics.
func NewPresentationService(
	parser ports.SlideParser,
	rules ports.RuleRepository,
	watcher ports.FileWatcher,
	logger ports.Logger,
) *PresentationService {
	return &PresentationService{
		parser:  parser,
		rules:   rules,
		watcher: watcher,
		logger:  logger,
	}
}

// LoadPresentation reads a deck file and parses it
func (s *PresentationService) LoadPresentation(ctx context.Context, path string) (*entities.ParsedPresentation, error) {
	if path == "" {
		return nil, errors.New("presentation path cannot be empty")
	}

	content, err := os.ReadFile(path) // #nosec G304 - deck path comes from the command line
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("presentation file not found: %s", path)
		}
		return nil, fmt.Errorf("reading presentation: %w", err)
	}

	start := time.Now()
	presentation, err := s.ParsePresentation(ctx, string(content))
	if err != nil {
		return nil, err
	}

	s.logger.Debug("presentation loaded",
		"path", path,
		"slides", presentation.SlideCount(),
		"duration", time.Since(start),
	)

	return presentation, nil
}

// ParsePresentation parses markdown with the configured rules
func (s *PresentationService) ParsePresentation(ctx context.Context, markdown string) (*entities.ParsedPresentation, error) {
	rules, err := s.Rules(ctx)
	if err != nil {
		return nil, err
	}

	return s.ParseWithRules(ctx, markdown, rules)
}

// ParseWithRules parses markdown with an explicit rule set.
// Nil rules select the built-in heuristics.
func (s *PresentationService) ParseWithRules(ctx context.Context, markdown string, rules []entities.LayoutRule) (*entities.ParsedPresentation, error) {
	presentation, err := s.parser.Parse(ctx, markdown, rules)
	if err != nil {
		return nil, fmt.Errorf("parsing presentation: %w", err)
	}

	return presentation, nil
}

// Rules returns the configured rule set, or nil for the built-in heuristics
func (s *PresentationService) Rules(ctx context.Context) ([]entities.LayoutRule, error) {
	if s.rules == nil {
		return nil, nil
	}

	rules, err := s.rules.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading layout rules from %s: %w", s.rules.Source(), err)
	}

	return rules, nil
}

// WatchPresentation watches the deck and, for file-backed rule sets, the
// rule file. Events are tagged with the input they belong to.
func (s *PresentationService) WatchPresentation(ctx context.Context, path string) (<-chan ports.FileChangeEvent, error) {
	if path == "" {
		return nil, errors.New("presentation path cannot be empty")
	}
	if s.watcher == nil {
		return nil, errors.New("file watching is not configured")
	}

	events, err := s.watcher.Watch(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("watching %s: %w", path, err)
	}

	ruleFile := ""
	if s.rules != nil {
		ruleFile = s.rules.File()
	}
	if ruleFile == "" {
		return events, nil
	}

	if _, err := s.watcher.Watch(ctx, ruleFile); err != nil {
		return nil, fmt.Errorf("watching %s: %w", ruleFile, err)
	}
	absRules, err := filepath.Abs(ruleFile)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", ruleFile, err)
	}

	tagged := make(chan ports.FileChangeEvent)
	go func() {
		defer close(tagged)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-events:
				if !ok {
					return
				}
				if event.Path == absRules {
					event.File = ports.RulesFile
				}
				select {
				case tagged <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return tagged, nil
}

// Ensure PresentationService implements ports.PresentationService
var _ ports.PresentationService = (*PresentationService)(nil)
