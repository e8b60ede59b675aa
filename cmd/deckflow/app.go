package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fredcamaral/deckflow/internal/adapters/secondary/cache"
	"github.com/fredcamaral/deckflow/internal/adapters/secondary/config"
	"github.com/fredcamaral/deckflow/internal/adapters/secondary/layout"
	"github.com/fredcamaral/deckflow/internal/adapters/secondary/logger"
	"github.com/fredcamaral/deckflow/internal/adapters/secondary/markdown"
	"github.com/fredcamaral/deckflow/internal/adapters/secondary/monitoring"
	"github.com/fredcamaral/deckflow/internal/adapters/secondary/parser"
	"github.com/fredcamaral/deckflow/internal/adapters/secondary/rules"
	"github.com/fredcamaral/deckflow/internal/domain/entities"
	"github.com/fredcamaral/deckflow/internal/domain/ports"
	"github.com/fredcamaral/deckflow/internal/domain/services"
)

// configFlags lists the command flags that override configuration, keyed
// by the names ConfigMerger.ApplyFlags understands
var configFlags = []string{"port", "host", "rules", "legacy", "workers", "style", "line-numbers", "sanitize"}

// newConfigService returns a config service honoring the --config flag
func newConfigService(cmd *cobra.Command) *services.ConfigService {
	loader := config.NewTOMLLoader()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loader = config.NewTOMLLoaderWithPaths(path, config.LocalConfigName)
	}
	return services.NewConfigService(loader, config.NewConfigMerger())
}

// loadConfig resolves the configuration for a deck. The local config is
// read from the deck's directory; only flags set on the command line
// override it.
func loadConfig(cmd *cobra.Command, deckPath string) (*entities.Config, error) {
	flags := make(map[string]interface{})

	for _, name := range configFlags {
		flag := cmd.Flags().Lookup(name)
		if flag == nil || !flag.Changed {
			continue
		}

		var (
			value interface{}
			err   error
		)
		switch flag.Value.Type() {
		case "int":
			value, err = cmd.Flags().GetInt(name)
		case "bool":
			value, err = cmd.Flags().GetBool(name)
		default:
			value, err = cmd.Flags().GetString(name)
		}
		if err != nil {
			return nil, fmt.Errorf("reading --%s: %w", name, err)
		}
		flags[name] = value
	}

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		flags["log-level"] = string(entities.LogLevelDebug)
	}

	cfg, err := newConfigService(cmd).LoadConfig(cmd.Context(), deckDir(deckPath), flags)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return cfg, nil
}

// deckDir is where the local config of a deck lives
func deckDir(deckPath string) string {
	if deckPath == "" {
		return "."
	}
	return filepath.Dir(deckPath)
}

// newLogger builds the process logger from configuration
func newLogger(cfg *entities.Config) (*logger.Logger, error) {
	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	return log, nil
}

// newRenderer builds the markdown renderer from configuration
func newRenderer(cfg *entities.Config) *markdown.Renderer {
	return markdown.NewRenderer(markdown.Config{
		HighlightStyle: cfg.Render.GetHighlightStyle(),
		LineNumbers:    cfg.Render.LineNumbers,
	})
}

// newSlideCache returns nil when caching is disabled
func newSlideCache(cfg *entities.Config) *cache.SlideCache {
	size := cfg.Render.GetCacheBytes()
	if size == 0 {
		return nil
	}
	return cache.NewSlideCache(size)
}

// newMonitor reports render cache statistics when the cache is enabled
func newMonitor(slides *cache.SlideCache) *monitoring.Monitor {
	if slides == nil {
		return monitoring.NewMonitor(nil)
	}
	return monitoring.NewMonitor(slides)
}

// newPipeline wires the slide pipeline
func newPipeline(cfg *entities.Config, renderer ports.SlideRenderer, slides *cache.SlideCache) *parser.Pipeline {
	opts := []parser.Option{parser.WithWorkers(cfg.Render.GetWorkers())}
	if slides != nil {
		opts = append(opts, parser.WithCache(slides))
	}
	return parser.NewPipeline(renderer, layout.NewEngine(), opts...)
}

// newRuleRepository returns nil when the built-in heuristics are forced
func newRuleRepository(cfg *entities.Config) ports.RuleRepository {
	if cfg.Layout.Legacy {
		return nil
	}
	return rules.NewFileRepository(cfg.Layout.RulesFile)
}

// newPresentationService wires the parse stack. The watcher may be nil
// for one-shot commands.
func newPresentationService(
	cfg *entities.Config,
	renderer ports.SlideRenderer,
	slides *cache.SlideCache,
	watcher ports.FileWatcher,
	log ports.Logger,
) *services.PresentationService {
	return services.NewPresentationService(
		newPipeline(cfg, renderer, slides),
		newRuleRepository(cfg),
		watcher,
		log,
	)
}
