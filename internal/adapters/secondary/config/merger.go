package config

import (
	"github.com/fredcamaral/deckflow/internal/domain/entities"
	"github.com/fredcamaral/deckflow/internal/domain/ports"
)

// ConfigMerger implements the ConfigMerger interface
type ConfigMerger struct{}

// NewConfigMerger creates a new configuration merger
func NewConfigMerger() *ConfigMerger {
	return &ConfigMerger{}
}

// Merge merges multiple configurations with later configs taking precedence
func (m *ConfigMerger) Merge(configs ...*entities.Config) *entities.Config {
	if len(configs) == 0 {
		return GetDefaultConfig()
	}

	result := deepCopy(configs[0])
	for i := 1; i < len(configs); i++ {
		if configs[i] != nil {
			m.mergeInto(result, configs[i])
		}
	}

	return result
}

// ApplyFlags applies CLI flag overrides to a configuration
func (m *ConfigMerger) ApplyFlags(config *entities.Config, flags map[string]interface{}) *entities.Config {
	result := deepCopy(config)

	// Port 0 binds a free port
	if port, ok := flags["port"].(int); ok && port >= 0 {
		result.Server.Port = port
	}
	if host, ok := flags["host"].(string); ok && host != "" {
		result.Server.Host = host
	}
	if rules, ok := flags["rules"].(string); ok && rules != "" {
		result.Layout.RulesFile = rules
	}
	if legacy, ok := flags["legacy"].(bool); ok {
		result.Layout.Legacy = legacy
	}
	if workers, ok := flags["workers"].(int); ok && workers > 0 {
		result.Render.Workers = workers
	}
	if style, ok := flags["style"].(string); ok && style != "" {
		result.Render.HighlightStyle = style
	}
	if lineNumbers, ok := flags["line-numbers"].(bool); ok {
		result.Render.LineNumbers = lineNumbers
	}
	if sanitize, ok := flags["sanitize"].(bool); ok {
		result.Render.Sanitize = sanitize
	}
	if level, ok := flags["log-level"].(string); ok && level != "" {
		result.Logging.Level = level
	}

	return result
}

// ApplyEnvVars applies DECKFLOW_* overrides. Values that do not parse, and
// out of range numbers, leave the setting unchanged.
func (m *ConfigMerger) ApplyEnvVars(config *entities.Config) *entities.Config {
	result := deepCopy(config)
	var e env

	result.Server.Host = e.str("HOST", result.Server.Host)
	result.Server.Port = atLeast(e.int("PORT", result.Server.Port), 1, result.Server.Port)
	result.Server.Environment = e.str("ENV", result.Server.Environment)

	result.Watcher.IntervalMs = atLeast(e.int("WATCH_INTERVAL", result.Watcher.IntervalMs), 1, result.Watcher.IntervalMs)
	result.Watcher.DebounceMs = atLeast(e.int("WATCH_DEBOUNCE", result.Watcher.DebounceMs), 0, result.Watcher.DebounceMs)

	result.Render.HighlightStyle = e.str("HIGHLIGHT_STYLE", result.Render.HighlightStyle)
	result.Render.Sanitize = e.bool("SANITIZE", result.Render.Sanitize)
	result.Render.Workers = atLeast(e.int("WORKERS", result.Render.Workers), 1, result.Render.Workers)
	result.Render.CacheMB = e.int("CACHE_MB", result.Render.CacheMB)

	result.Layout.RulesFile = e.str("RULES", result.Layout.RulesFile)
	result.Layout.Legacy = e.bool("LEGACY", result.Layout.Legacy)

	result.Logging.Level = e.str("LOG_LEVEL", result.Logging.Level)
	result.Logging.JSONFormat = e.bool("LOG_JSON", result.Logging.JSONFormat)

	return result
}

func atLeast(v, floor, fallback int) int {
	if v < floor {
		return fallback
	}
	return v
}

// mergeInto merges source configuration into target configuration.
// TOML cannot tell an unset boolean from false, so a later file can only
// switch a boolean on; environment and flags can switch it off.
func (m *ConfigMerger) mergeInto(target, source *entities.Config) {
	// Server config
	if source.Server.Port != 0 {
		target.Server.Port = source.Server.Port
	}
	if source.Server.Host != "" {
		target.Server.Host = source.Server.Host
	}
	if source.Server.ReadTimeout != 0 {
		target.Server.ReadTimeout = source.Server.ReadTimeout
	}
	if source.Server.WriteTimeout != 0 {
		target.Server.WriteTimeout = source.Server.WriteTimeout
	}
	if source.Server.ShutdownTimeout != 0 {
		target.Server.ShutdownTimeout = source.Server.ShutdownTimeout
	}
	if source.Server.Environment != "" {
		target.Server.Environment = source.Server.Environment
	}
	if len(source.Server.CORSOrigins) > 0 {
		target.Server.CORSOrigins = append([]string(nil), source.Server.CORSOrigins...)
	}

	// Watcher config
	if source.Watcher.IntervalMs != 0 {
		target.Watcher.IntervalMs = source.Watcher.IntervalMs
	}
	if source.Watcher.DebounceMs != 0 {
		target.Watcher.DebounceMs = source.Watcher.DebounceMs
	}

	// Render config
	if source.Render.HighlightStyle != "" {
		target.Render.HighlightStyle = source.Render.HighlightStyle
	}
	if source.Render.Workers != 0 {
		target.Render.Workers = source.Render.Workers
	}
	if source.Render.CacheMB != 0 {
		target.Render.CacheMB = source.Render.CacheMB
	}
	target.Render.LineNumbers = target.Render.LineNumbers || source.Render.LineNumbers
	target.Render.Sanitize = target.Render.Sanitize || source.Render.Sanitize

	// Layout config
	if source.Layout.RulesFile != "" {
		target.Layout.RulesFile = source.Layout.RulesFile
	}
	target.Layout.Legacy = target.Layout.Legacy || source.Layout.Legacy

	// Logging config
	if source.Logging.Level != "" {
		target.Logging.Level = source.Logging.Level
	}
	target.Logging.JSONFormat = target.Logging.JSONFormat || source.Logging.JSONFormat
}

// deepCopy creates a deep copy of a configuration
func deepCopy(src *entities.Config) *entities.Config {
	if src == nil {
		return nil
	}

	dst := *src
	if src.Server.CORSOrigins != nil {
		dst.Server.CORSOrigins = make([]string, len(src.Server.CORSOrigins))
		copy(dst.Server.CORSOrigins, src.Server.CORSOrigins)
	}

	return &dst
}

// Ensure ConfigMerger implements ports.ConfigMerger
var _ ports.ConfigMerger = (*ConfigMerger)(nil)
