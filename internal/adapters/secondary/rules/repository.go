// Package rules loads layout rule sets from JSON, YAML or TOML files.
package rules

import (
	"cmp"
	"context"
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/fredcamaral/deckflow/internal/domain/entities"
	"github.com/fredcamaral/deckflow/internal/domain/ports"
)

//go:embed defaults.json
var defaultRules []byte

// ruleNamespace derives stable rule IDs from rule names
var ruleNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/fredcamaral/deckflow/layout-rules"))

// BuiltinSource is reported by repositories serving the default rules
const BuiltinSource = "builtin"

// FileRepository serves the rules of one file, or the built-in rules
// when no path is configured
type FileRepository struct {
	path string
}

// NewFileRepository creates a repository for the rule file at path.
// An empty path serves the built-in rules.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

// Load reads, validates and sorts the rules
func (r *FileRepository) Load(ctx context.Context) ([]entities.LayoutRule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if r.path == "" {
		return Defaults()
	}
	return LoadFile(r.path)
}

// Source returns the rule file path or "builtin"
func (r *FileRepository) Source() string {
	if r.path == "" {
		return BuiltinSource
	}
	return r.path
}

// File returns the rule file path, empty for the built-in rules
func (r *FileRepository) File() string {
	return r.path
}

// LoadFile reads and prepares the rules of a single file
func LoadFile(path string) ([]entities.LayoutRule, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrEmptyPath
	}

	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path) // #nosec G304 - rule file path comes from config or flags
	if err != nil {
		return nil, fmt.Errorf("reading rules %s: %w", path, err)
	}

	rules, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("decoding rules %s: %w", path, err)
	}

	prepared, err := Prepare(rules)
	if err != nil {
		return nil, fmt.Errorf("rules %s: %w", path, err)
	}
	return prepared, nil
}

// Defaults returns the built-in rule set
func Defaults() ([]entities.LayoutRule, error) {
	rules, err := Decode(defaultRules, FormatJSON)
	if err != nil {
		return nil, fmt.Errorf("built-in rules: %w", err)
	}
	return Prepare(rules)
}

// Prepare fills in derived fields, validates every rule and sorts the set
// by ascending priority. Rules with equal priority keep their file order.
func Prepare(rules []entities.LayoutRule) ([]entities.LayoutRule, error) {
	prepared := make([]entities.LayoutRule, len(rules))
	copy(prepared, rules)

	title := cases.Title(language.English)
	for i := range prepared {
		rule := &prepared[i]

		if rule.DisplayName == "" && rule.Name != "" {
			rule.DisplayName = title.String(strings.NewReplacer("-", " ", "_", " ").Replace(rule.Name))
		}
		if rule.Name == "" && rule.DisplayName != "" {
			rule.Name = slug(rule.DisplayName)
		}
		if rule.ID == "" {
			rule.ID = uuid.NewSHA1(ruleNamespace, []byte(rule.Name)).String()
		}

		if err := rule.Validate(); err != nil {
			return nil, fmt.Errorf("%w: rule %d (%s): %w", ErrInvalidRule, i+1, ruleLabel(rule), err)
		}
	}

	slices.SortStableFunc(prepared, func(a, b entities.LayoutRule) int {
		return cmp.Compare(a.Priority, b.Priority)
	})

	return prepared, nil
}

// CSS concatenates the stylesheets of the enabled rules
func CSS(rules []entities.LayoutRule) string {
	var b strings.Builder
	for _, rule := range rules {
		if !rule.Enabled || strings.TrimSpace(rule.CSSContent) == "" {
			continue
		}
		fmt.Fprintf(&b, "/* %s */\n%s\n", rule.DisplayName, strings.TrimSpace(rule.CSSContent))
	}
	return b.String()
}

func ruleLabel(rule *entities.LayoutRule) string {
	if rule.DisplayName != "" {
		return rule.DisplayName
	}
	if rule.Name != "" {
		return rule.Name
	}
	return "unnamed"
}

// slug turns a display name into a rule name: "Text + Image" -> "text-image"
func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// Ensure FileRepository implements ports.RuleRepository
var _ ports.RuleRepository = (*FileRepository)(nil)
