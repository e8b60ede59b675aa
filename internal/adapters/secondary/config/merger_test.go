package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/deckflow/internal/domain/entities"
)

func TestConfigMerger_Merge(t *testing.T) {
	merger := NewConfigMerger()

	t.Run("no configs yields defaults", func(t *testing.T) {
		config := merger.Merge()
		require.NotNil(t, config)
		assert.Equal(t, 3030, config.Server.Port)
	})

	t.Run("later values win", func(t *testing.T) {
		base := GetDefaultConfig()
		override := &entities.Config{
			Server: entities.ServerConfig{Port: 8080},
			Render: entities.RenderConfig{HighlightStyle: "dracula", Workers: 8},
			Layout: entities.LayoutConfig{RulesFile: "deck-rules.json"},
		}

		config := merger.Merge(base, nil, override)

		assert.Equal(t, 8080, config.Server.Port)
		assert.Equal(t, "localhost", config.Server.Host)
		assert.Equal(t, "dracula", config.Render.HighlightStyle)
		assert.Equal(t, 8, config.Render.Workers)
		assert.Equal(t, "deck-rules.json", config.Layout.RulesFile)
		assert.Equal(t, 200, config.Watcher.IntervalMs)
	})

	t.Run("booleans can only be switched on", func(t *testing.T) {
		base := GetDefaultConfig()
		base.Layout.Legacy = true

		on := &entities.Config{Render: entities.RenderConfig{Sanitize: true}}
		off := &entities.Config{}

		config := merger.Merge(base, on, off)
		assert.True(t, config.Layout.Legacy)
		assert.True(t, config.Render.Sanitize)
	})

	t.Run("inputs are not mutated", func(t *testing.T) {
		base := GetDefaultConfig()
		override := &entities.Config{Server: entities.ServerConfig{CORSOrigins: []string{"https://talks.example.com"}}}

		config := merger.Merge(base, override)
		config.Server.CORSOrigins[0] = "https://changed.example.com"

		assert.Equal(t, 3030, base.Server.Port)
		assert.Equal(t, "https://talks.example.com", override.Server.CORSOrigins[0])
	})
}

func TestConfigMerger_ApplyFlags(t *testing.T) {
	merger := NewConfigMerger()
	base := GetDefaultConfig()
	base.Render.Sanitize = true

	config := merger.ApplyFlags(base, map[string]interface{}{
		"port":         4000,
		"host":         "0.0.0.0",
		"rules":        "rules.toml",
		"legacy":       true,
		"workers":      3,
		"style":        "monokai",
		"line-numbers": true,
		"sanitize":     false,
		"log-level":    "debug",
		"unknown":      "ignored",
	})

	assert.Equal(t, 4000, config.Server.Port)
	assert.Equal(t, "0.0.0.0", config.Server.Host)
	assert.Equal(t, "rules.toml", config.Layout.RulesFile)
	assert.True(t, config.Layout.Legacy)
	assert.Equal(t, 3, config.Render.Workers)
	assert.Equal(t, "monokai", config.Render.HighlightStyle)
	assert.True(t, config.Render.LineNumbers)
	assert.False(t, config.Render.Sanitize)
	assert.Equal(t, "debug", config.Logging.Level)

	assert.Equal(t, 3030, base.Server.Port, "base config must not change")

	t.Run("empty and negative values are ignored", func(t *testing.T) {
		config := merger.ApplyFlags(base, map[string]interface{}{"port": -1, "host": "", "workers": -1})
		assert.Equal(t, 3030, config.Server.Port)
		assert.Equal(t, "localhost", config.Server.Host)
		assert.Equal(t, 1, config.Render.Workers)
	})

	t.Run("port zero picks a free port", func(t *testing.T) {
		config := merger.ApplyFlags(base, map[string]interface{}{"port": 0})
		assert.Equal(t, 0, config.Server.Port)
	})
}

func TestConfigMerger_ApplyEnvVars(t *testing.T) {
	merger := NewConfigMerger()
	base := &entities.Config{
		Server: entities.ServerConfig{Host: "localhost", Port: 3030},
		Layout: entities.LayoutConfig{Legacy: true},
	}

	t.Setenv("DECKFLOW_HOST", "example.local")
	t.Setenv("DECKFLOW_PORT", "5050")
	t.Setenv("DECKFLOW_RULES", "team-rules.yaml")
	t.Setenv("DECKFLOW_LEGACY", "false")
	t.Setenv("DECKFLOW_WORKERS", "6")
	t.Setenv("DECKFLOW_LOG_LEVEL", "warn")
	t.Setenv("DECKFLOW_LOG_JSON", "true")
	t.Setenv("DECKFLOW_SANITIZE", "yes")
	t.Setenv("DECKFLOW_WATCH_INTERVAL", "not-a-number")

	config := merger.ApplyEnvVars(base)

	assert.Equal(t, "example.local", config.Server.Host)
	assert.Equal(t, 5050, config.Server.Port)
	assert.Equal(t, "team-rules.yaml", config.Layout.RulesFile)
	assert.False(t, config.Layout.Legacy)
	assert.Equal(t, 6, config.Render.Workers)
	assert.Equal(t, "warn", config.Logging.Level)
	assert.True(t, config.Logging.JSONFormat)
	assert.False(t, config.Render.Sanitize, "unparseable booleans are ignored")
	assert.Zero(t, config.Watcher.IntervalMs)
}

func TestGetDefaultConfig_EnvOverrides(t *testing.T) {
	t.Setenv("DECKFLOW_PORT", "7070")
	t.Setenv("DECKFLOW_CORS_ORIGINS", "https://a.example.com, ,https://b.example.com")

	config := GetDefaultConfig()

	assert.Equal(t, 7070, config.Server.Port)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, config.Server.CORSOrigins)
	require.NoError(t, config.Validate())
}
