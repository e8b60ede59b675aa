package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/fredcamaral/deckflow/internal/domain/entities"
	"github.com/fredcamaral/deckflow/internal/domain/ports"
)

// LocalConfigName is the per-directory configuration file
const LocalConfigName = "deckflow.toml"

// TOMLLoader reads the global and per-directory TOML files
type TOMLLoader struct {
	globalPath string
	localName  string
}

// NewTOMLLoader creates a loader for the user's config directory.
// DECKFLOW_CONFIG overrides the global configuration path.
func NewTOMLLoader() *TOMLLoader {
	return NewTOMLLoaderWithPaths(globalConfigPath(), LocalConfigName)
}

// NewTOMLLoaderWithPaths creates a loader with explicit file locations
func NewTOMLLoaderWithPaths(globalPath, localName string) *TOMLLoader {
	return &TOMLLoader{globalPath: globalPath, localName: localName}
}

func globalConfigPath() string {
	if path := os.Getenv("DECKFLOW_CONFIG"); path != "" {
		return path
	}
	base, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "deckflow", "config.toml")
}

// LoadGlobal reads the global file, writing the defaults there on first run
func (l *TOMLLoader) LoadGlobal(ctx context.Context) (*entities.Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !exists(l.globalPath) {
		if err := l.CreateDefaults(ctx, l.globalPath); err != nil {
			return nil, fmt.Errorf("creating defaults: %w", err)
		}
	}

	return decodeFile(l.globalPath)
}

// LoadLocal reads dir's deckflow.toml. A missing file yields nil, nil.
func (l *TOMLLoader) LoadLocal(ctx context.Context, dir string) (*entities.Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := l.GetLocalPath(dir)
	if !exists(path) {
		return nil, nil
	}

	return decodeFile(path)
}

// CreateDefaults writes the default configuration to path. The file is
// written next to its destination and renamed into place.
func (l *TOMLLoader) CreateDefaults(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".deckflow-*.toml")
	if err != nil {
		return fmt.Errorf("creating config file %s: %w", path, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	enc := toml.NewEncoder(tmp)
	enc.Indent = "  "
	if err := enc.Encode(GetDefaultConfig()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("encoding config to %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}

	return os.Rename(tmp.Name(), path)
}

// GetGlobalPath returns the global configuration file path
func (l *TOMLLoader) GetGlobalPath() string {
	return l.globalPath
}

// GetLocalPath returns the configuration file path for dir
func (l *TOMLLoader) GetLocalPath(dir string) string {
	return filepath.Join(dir, l.localName)
}

// decodeFile parses path strictly: unknown keys are an error so that
// misspelled settings do not silently fall back to defaults.
func decodeFile(path string) (*entities.Config, error) {
	var cfg entities.Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		var perr *fs.PathError
		if errors.As(err, &perr) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		return nil, fmt.Errorf("parsing TOML from %s: %w", path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown keys in %s: %v", path, undecoded)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config in %s: %w", path, err)
	}

	return &cfg, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

var _ ports.ConfigLoader = (*TOMLLoader)(nil)
