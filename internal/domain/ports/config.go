package ports

import (
	"context"

	"github.com/fredcamaral/deckflow/internal/domain/entities"
)

// ConfigLoader reads the global and per-deck TOML files. A missing local
// file is not an error and yields a nil config.
type ConfigLoader interface {
	LoadGlobal(ctx context.Context) (*entities.Config, error)
	LoadLocal(ctx context.Context, dir string) (*entities.Config, error)
	CreateDefaults(ctx context.Context, path string) error
	GetGlobalPath() string
	GetLocalPath(dir string) string
}

// ConfigMerger layers configs; later values win over earlier ones
type ConfigMerger interface {
	Merge(configs ...*entities.Config) *entities.Config
	ApplyFlags(config *entities.Config, flags map[string]interface{}) *entities.Config
	ApplyEnvVars(config *entities.Config) *entities.Config
}

// ConfigService resolves the configuration a command runs with
type ConfigService interface {
	// LoadConfig merges defaults, the global file, the local file in
	// workingDir, DECKFLOW_* variables and flags, in that order
	LoadConfig(ctx context.Context, workingDir string, flags map[string]interface{}) (*entities.Config, error)

	// Sources lists the config files LoadConfig reads for workingDir
	Sources(workingDir string) []string

	GetDefaultConfig() *entities.Config
	ValidateConfig(config *entities.Config) error
	CreateGlobalConfig(ctx context.Context) error
}
