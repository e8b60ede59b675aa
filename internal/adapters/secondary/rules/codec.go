package rules

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/fredcamaral/deckflow/internal/domain/entities"
)

// Format is a rule file encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

var (
	// ErrUnsupportedRuleFormat is returned for unknown rule file encodings
	ErrUnsupportedRuleFormat = errors.New("unsupported rule format")
	// ErrInvalidRule is returned when a rule fails validation
	ErrInvalidRule = errors.New("invalid layout rule")
	// ErrEmptyPath is returned when a rule file path is empty
	ErrEmptyPath = errors.New("rules path cannot be empty")
)

// ruleSet is the wrapped form {"rules": [...]} shared by all formats
type ruleSet struct {
	Rules []entities.LayoutRule `json:"rules" yaml:"rules" toml:"rules"`
}

// FormatFromPath picks the format from a file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedRuleFormat, filepath.Ext(path))
	}
}

// ParseFormat parses a format name
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatJSON, FormatYAML, FormatTOML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedRuleFormat, name)
	}
}

// Decode reads rules in the given format. JSON and YAML accept either a
// bare list or {"rules": [...]}; TOML uses [[rules]] tables.
func Decode(data []byte, format Format) ([]entities.LayoutRule, error) {
	switch format {
	case FormatJSON:
		return decodeJSON(data)
	case FormatYAML:
		return decodeYAML(data)
	case FormatTOML:
		var set ruleSet
		if err := toml.Unmarshal(data, &set); err != nil {
			return nil, fmt.Errorf("parsing TOML rules: %w", err)
		}
		return set.Rules, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedRuleFormat, format)
	}
}

func decodeJSON(data []byte) ([]entities.LayoutRule, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var list []entities.LayoutRule
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("parsing JSON rules: %w", err)
		}
		return list, nil
	}

	var set ruleSet
	if err := json.Unmarshal(trimmed, &set); err != nil {
		return nil, fmt.Errorf("parsing JSON rules: %w", err)
	}
	return set.Rules, nil
}

func decodeYAML(data []byte) ([]entities.LayoutRule, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing YAML rules: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		var list []entities.LayoutRule
		if err := root.Decode(&list); err != nil {
			return nil, fmt.Errorf("decoding YAML rules: %w", err)
		}
		return list, nil
	case yaml.MappingNode:
		var set ruleSet
		if err := root.Decode(&set); err != nil {
			return nil, fmt.Errorf("decoding YAML rules: %w", err)
		}
		return set.Rules, nil
	default:
		return nil, errors.New("YAML rules must be a list or a mapping with a rules key")
	}
}

// Encode writes rules in the given format, wrapped as {"rules": [...]}
// except for JSON which is written as a bare list
func Encode(w io.Writer, rules []entities.LayoutRule, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rules)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(ruleSet{Rules: rules}); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		enc := toml.NewEncoder(w)
		enc.Indent = "  "
		return enc.Encode(ruleSet{Rules: rules})
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedRuleFormat, format)
	}
}
