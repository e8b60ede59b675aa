package entities

import (
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"strings"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Watcher WatcherConfig `toml:"watcher"`
	Render  RenderConfig  `toml:"render"`
	Layout  LayoutConfig  `toml:"layout"`
	Logging LoggingConfig `toml:"logging"`
}

// validator is implemented by every config section
type validator interface {
	Validate() error
}

// Validate checks every section and names the first that fails
func (c *Config) Validate() error {
	sections := []struct {
		name string
		v    validator
	}{
		{"server", c.Server},
		{"watcher", c.Watcher},
		{"render", c.Render},
		{"layout", c.Layout},
		{"logging", c.Logging},
	}

	for _, section := range sections {
		if err := section.v.Validate(); err != nil {
			return fmt.Errorf("%s config: %w", section.name, err)
		}
	}

	return nil
}

// unit converts a positive setting to a duration, using fallback when unset
func unit(v int, u, fallback time.Duration) time.Duration {
	if v <= 0 {
		return fallback
	}
	return time.Duration(v) * u
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string   `toml:"host"`
	Port            int      `toml:"port"`
	ReadTimeout     int      `toml:"read_timeout"`
	WriteTimeout    int      `toml:"write_timeout"`
	ShutdownTimeout int      `toml:"shutdown_timeout"`
	Environment     string   `toml:"environment"`
	CORSOrigins     []string `toml:"cors_origins"`
}

// Validate checks the port range, host, timeouts and CORS origins
func (s ServerConfig) Validate() error {
	if s.Port < 0 || s.Port > 65535 {
		return errors.New("port must be between 0 and 65535")
	}

	if s.Host != "" && net.ParseIP(s.Host) == nil {
		if strings.ContainsAny(s.Host, " !/") {
			return fmt.Errorf("invalid host: %s", s.Host)
		}
	}

	for name, v := range map[string]int{
		"read timeout":     s.ReadTimeout,
		"write timeout":    s.WriteTimeout,
		"shutdown timeout": s.ShutdownTimeout,
	} {
		if v < 0 {
			return fmt.Errorf("%s must be non-negative", name)
		}
	}

	for _, origin := range s.CORSOrigins {
		if origin == "" {
			return errors.New("CORS origin cannot be empty")
		}
		if origin == "*" {
			continue
		}
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("invalid CORS origin format: %s (must start with http:// or https://)", origin)
		}
	}

	return nil
}

// GetReadTimeout defaults to 30s
func (s ServerConfig) GetReadTimeout() time.Duration {
	return unit(s.ReadTimeout, time.Second, 30*time.Second)
}

// GetWriteTimeout defaults to 30s
func (s ServerConfig) GetWriteTimeout() time.Duration {
	return unit(s.WriteTimeout, time.Second, 30*time.Second)
}

// GetShutdownTimeout defaults to 5s
func (s ServerConfig) GetShutdownTimeout() time.Duration {
	return unit(s.ShutdownTimeout, time.Second, 5*time.Second)
}

// GetCORSOrigins returns CORS origins with defaults if empty
func (s ServerConfig) GetCORSOrigins() []string {
	if len(s.CORSOrigins) == 0 {
		return []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		}
	}
	return s.CORSOrigins
}

// IsDevelopment returns true if the server is running in development mode
func (s ServerConfig) IsDevelopment() bool {
	return s.Environment == "development" || s.Environment == ""
}

// WatcherConfig contains file watcher configuration
type WatcherConfig struct {
	IntervalMs int `toml:"interval_ms"`
	DebounceMs int `toml:"debounce_ms"`
}

// Validate rejects polling faster than 50ms
func (w WatcherConfig) Validate() error {
	if w.IntervalMs != 0 && w.IntervalMs < 50 {
		return errors.New("watcher interval must be at least 50ms")
	}

	if w.DebounceMs < 0 {
		return errors.New("debounce time must be non-negative")
	}

	return nil
}

// GetInterval returns the poll interval, 200ms when unset
func (w WatcherConfig) GetInterval() time.Duration {
	return unit(w.IntervalMs, time.Millisecond, 200*time.Millisecond)
}

// GetDebounce returns the quiet period, 500ms when unset
func (w WatcherConfig) GetDebounce() time.Duration {
	return unit(w.DebounceMs, time.Millisecond, 500*time.Millisecond)
}

// RenderConfig controls markdown rendering
type RenderConfig struct {
	HighlightStyle string `toml:"highlight_style"`
	LineNumbers    bool   `toml:"line_numbers"`
	Sanitize       bool   `toml:"sanitize"`
	Workers        int    `toml:"workers"`
	CacheMB        int    `toml:"cache_mb"` // negative disables the render cache
}

// Validate validates render configuration
func (r RenderConfig) Validate() error {
	if r.Workers < 0 {
		return errors.New("workers must be non-negative")
	}
	return nil
}

// GetHighlightStyle returns the chroma style name with default
func (r RenderConfig) GetHighlightStyle() string {
	if r.HighlightStyle == "" {
		return "github"
	}
	return r.HighlightStyle
}

// GetWorkers returns the number of slide workers with default
func (r RenderConfig) GetWorkers() int {
	if r.Workers <= 0 {
		return 1
	}
	return r.Workers
}

// GetCacheBytes returns the render cache size, 0 when caching is off
func (r RenderConfig) GetCacheBytes() int64 {
	switch {
	case r.CacheMB < 0:
		return 0
	case r.CacheMB == 0:
		return 32 << 20
	default:
		return int64(r.CacheMB) << 20
	}
}

// LayoutConfig selects the layout rule set
type LayoutConfig struct {
	RulesFile string `toml:"rules_file"`
	Legacy    bool   `toml:"legacy"`
}

// Validate validates layout configuration
func (l LayoutConfig) Validate() error {
	if l.RulesFile == "" {
		return nil
	}

	switch strings.ToLower(filepath.Ext(l.RulesFile)) {
	case ".json", ".yaml", ".yml", ".toml":
		return nil
	default:
		return fmt.Errorf("unsupported rules file extension: %s", l.RulesFile)
	}
}

// LogLevel represents logging level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `toml:"level"`       // debug, info, warn, error
	JSONFormat bool   `toml:"json_format"` // Output logs in JSON format
}

// Validate validates logging configuration
func (l LoggingConfig) Validate() error {
	switch LogLevel(l.Level) {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError, "":
		return nil
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", l.Level)
	}
}

// GetLevel returns the log level with default
func (l LoggingConfig) GetLevel() LogLevel {
	if l.Level == "" {
		return LogLevelInfo
	}
	return LogLevel(l.Level)
}
