package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/deckflow/internal/domain/entities"
	"github.com/fredcamaral/deckflow/internal/domain/ports"
)

func sampleRules() []entities.LayoutRule {
	return []entities.LayoutRule{{
		DisplayName: "Hero",
		Priority:    10,
		Enabled:     true,
		Transform: entities.LayoutTransform{
			Type:    entities.TransformWrap,
			Options: entities.TransformOptions{ClassName: "layout-hero"},
		},
	}}
}

func TestPresentationService_LoadPresentation(t *testing.T) {
	ctx := context.Background()

	t.Run("reads and parses the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "deck.md")
		require.NoError(t, os.WriteFile(path, []byte("# One\n---\n# Two"), 0644))

		parser := new(MockSlideParser)
		repo := new(MockRuleRepository)
		expected := &entities.ParsedPresentation{Slides: []entities.ParsedSlide{{Index: 0}, {Index: 1}}}

		repo.On("Load", ctx).Return(sampleRules(), nil)
		parser.On("Parse", ctx, "# One\n---\n# Two", sampleRules()).Return(expected, nil)

		service := NewPresentationService(parser, repo, nil, &recordingLogger{})
		presentation, err := service.LoadPresentation(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, expected, presentation)

		parser.AssertExpectations(t)
		repo.AssertExpectations(t)
	})

	t.Run("empty path", func(t *testing.T) {
		service := NewPresentationService(new(MockSlideParser), nil, nil, &recordingLogger{})
		_, err := service.LoadPresentation(ctx, "")
		assert.EqualError(t, err, "presentation path cannot be empty")
	})

	t.Run("missing file", func(t *testing.T) {
		service := NewPresentationService(new(MockSlideParser), nil, nil, &recordingLogger{})
		_, err := service.LoadPresentation(ctx, filepath.Join(t.TempDir(), "missing.md"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "presentation file not found")
	})
}

func TestPresentationService_ParsePresentation(t *testing.T) {
	ctx := context.Background()

	t.Run("nil repository selects the heuristics", func(t *testing.T) {
		parser := new(MockSlideParser)
		parser.On("Parse", ctx, "# Deck", []entities.LayoutRule(nil)).
			Return(&entities.ParsedPresentation{}, nil)

		service := NewPresentationService(parser, nil, nil, &recordingLogger{})
		_, err := service.ParsePresentation(ctx, "# Deck")
		require.NoError(t, err)
		parser.AssertExpectations(t)
	})

	t.Run("rule loading failure", func(t *testing.T) {
		repo := new(MockRuleRepository)
		repo.On("Load", ctx).Return(nil, errors.New("bad yaml"))
		repo.On("Source").Return("rules.yaml")

		service := NewPresentationService(new(MockSlideParser), repo, nil, &recordingLogger{})
		_, err := service.ParsePresentation(ctx, "# Deck")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "loading layout rules from rules.yaml")
	})

	t.Run("parser failure is wrapped", func(t *testing.T) {
		parser := new(MockSlideParser)
		parser.On("Parse", ctx, "# Deck", mock.Anything).Return(nil, context.Canceled)

		service := NewPresentationService(parser, nil, nil, &recordingLogger{})
		_, err := service.ParsePresentation(ctx, "# Deck")
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestPresentationService_ParseWithRules(t *testing.T) {
	ctx := context.Background()
	parser := new(MockSlideParser)
	repo := new(MockRuleRepository)
	rules := sampleRules()

	parser.On("Parse", ctx, "# Deck", rules).Return(&entities.ParsedPresentation{}, nil)

	service := NewPresentationService(parser, repo, nil, &recordingLogger{})
	_, err := service.ParseWithRules(ctx, "# Deck", rules)
	require.NoError(t, err)

	repo.AssertNotCalled(t, "Load", mock.Anything)
}

func TestPresentationService_WatchPresentation(t *testing.T) {
	ctx := context.Background()

	t.Run("delegates to the watcher", func(t *testing.T) {
		watcher := new(MockFileWatcher)
		events := make(chan ports.FileChangeEvent)
		watcher.On("Watch", ctx, "deck.md").Return((<-chan ports.FileChangeEvent)(events), nil)

		service := NewPresentationService(new(MockSlideParser), nil, watcher, &recordingLogger{})
		ch, err := service.WatchPresentation(ctx, "deck.md")
		require.NoError(t, err)
		assert.NotNil(t, ch)
	})

	t.Run("built-in rules are not watched", func(t *testing.T) {
		watcher := new(MockFileWatcher)
		repo := new(MockRuleRepository)
		repo.On("File").Return("")
		events := make(chan ports.FileChangeEvent)
		watcher.On("Watch", ctx, "deck.md").Return((<-chan ports.FileChangeEvent)(events), nil).Once()

		service := NewPresentationService(new(MockSlideParser), repo, watcher, &recordingLogger{})
		_, err := service.WatchPresentation(ctx, "deck.md")
		require.NoError(t, err)
		watcher.AssertExpectations(t)
	})

	t.Run("rule file changes are tagged", func(t *testing.T) {
		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		rulesPath := filepath.Join(t.TempDir(), "rules.toml")
		deckPath := filepath.Join(filepath.Dir(rulesPath), "deck.md")

		watcher := new(MockFileWatcher)
		repo := new(MockRuleRepository)
		repo.On("File").Return(rulesPath)
		events := make(chan ports.FileChangeEvent, 2)
		watcher.On("Watch", watchCtx, deckPath).Return((<-chan ports.FileChangeEvent)(events), nil)
		watcher.On("Watch", watchCtx, rulesPath).Return((<-chan ports.FileChangeEvent)(events), nil)

		service := NewPresentationService(new(MockSlideParser), repo, watcher, &recordingLogger{})
		ch, err := service.WatchPresentation(watchCtx, deckPath)
		require.NoError(t, err)

		events <- ports.FileChangeEvent{Path: deckPath, Type: ports.Modified}
		events <- ports.FileChangeEvent{Path: rulesPath, Type: ports.Modified}

		assert.Equal(t, ports.DeckFile, (<-ch).File)
		assert.Equal(t, ports.RulesFile, (<-ch).File)
		watcher.AssertExpectations(t)
	})

	t.Run("without watcher", func(t *testing.T) {
		service := NewPresentationService(new(MockSlideParser), nil, nil, &recordingLogger{})
		_, err := service.WatchPresentation(ctx, "deck.md")
		assert.Error(t, err)
	})

	t.Run("watcher failure", func(t *testing.T) {
		watcher := new(MockFileWatcher)
		watcher.On("Watch", ctx, "deck.md").Return(nil, errors.New("no such file"))

		service := NewPresentationService(new(MockSlideParser), nil, watcher, &recordingLogger{})
		_, err := service.WatchPresentation(ctx, "deck.md")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "watching deck.md")
	})
}
