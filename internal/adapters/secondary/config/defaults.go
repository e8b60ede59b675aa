package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/fredcamaral/deckflow/internal/domain/entities"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "DECKFLOW_"

// env reads DECKFLOW_* variables, falling back when a value is unset or
// does not parse
type env struct{}

func (env) lookup(name string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(EnvPrefix + name))
	return v, v != ""
}

func (e env) str(name, fallback string) string {
	if v, ok := e.lookup(name); ok {
		return v
	}
	return fallback
}

func (e env) int(name string, fallback int) int {
	if v, ok := e.lookup(name); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func (e env) bool(name string, fallback bool) bool {
	if v, ok := e.lookup(name); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// list splits a comma separated value, dropping blanks
func (e env) list(name string, fallback []string) []string {
	v, ok := e.lookup(name)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

var defaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
	"http://localhost:5173",
	"http://127.0.0.1:5173",
}

// GetDefaultConfig returns the built-in configuration with DECKFLOW_*
// overrides applied
func GetDefaultConfig() *entities.Config {
	var e env

	return &entities.Config{
		Server: entities.ServerConfig{
			Host:            e.str("HOST", "localhost"),
			Port:            e.int("PORT", 3030),
			ReadTimeout:     e.int("READ_TIMEOUT", 30),
			WriteTimeout:    e.int("WRITE_TIMEOUT", 30),
			ShutdownTimeout: e.int("SHUTDOWN_TIMEOUT", 5),
			Environment:     e.str("ENV", "development"),
			CORSOrigins:     e.list("CORS_ORIGINS", append([]string(nil), defaultCORSOrigins...)),
		},
		Watcher: entities.WatcherConfig{
			IntervalMs: e.int("WATCH_INTERVAL", 200),
			DebounceMs: e.int("WATCH_DEBOUNCE", 500),
		},
		Render: entities.RenderConfig{
			HighlightStyle: e.str("HIGHLIGHT_STYLE", "github"),
			LineNumbers:    e.bool("LINE_NUMBERS", false),
			Sanitize:       e.bool("SANITIZE", false),
			Workers:        e.int("WORKERS", 1),
			CacheMB:        e.int("CACHE_MB", 32),
		},
		Layout: entities.LayoutConfig{
			RulesFile: e.str("RULES", ""),
			Legacy:    e.bool("LEGACY", false),
		},
		Logging: entities.LoggingConfig{
			Level:      e.str("LOG_LEVEL", "info"),
			JSONFormat: e.bool("LOG_JSON", false),
		},
	}
}
