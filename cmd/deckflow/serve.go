package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	httpadapter "github.com/fredcamaral/deckflow/internal/adapters/primary/http"
	"github.com/fredcamaral/deckflow/internal/adapters/secondary/browser"
	"github.com/fredcamaral/deckflow/internal/adapters/secondary/renderer"
	"github.com/fredcamaral/deckflow/internal/adapters/secondary/watcher"
	"github.com/fredcamaral/deckflow/internal/domain/entities"
	"github.com/fredcamaral/deckflow/internal/domain/services"
)

func newServeCmd() *cobra.Command {
	var openBrowser bool

	cmd := &cobra.Command{
		Use:   "serve <file.md>",
		Short: "Preview a deck with live reload",
		Long: `Start a local HTTP server showing the deck. The page reloads when the
markdown file changes; parse errors are reported without dropping the
last good version.

Example:
  deckflow serve talk.md
  deckflow serve talk.md --port 8080 --open`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, args[0], openBrowser)
		},
	}

	addRenderFlags(cmd)
	cmd.Flags().IntP("port", "p", 0, "Port to serve on (overrides config)")
	cmd.Flags().String("host", "", "Host to bind to (overrides config)")
	cmd.Flags().Bool("sanitize", false, "Sanitize slide HTML before serving")
	cmd.Flags().BoolVar(&openBrowser, "open", false, "Open the preview in a browser")

	return cmd
}

func runServe(cmd *cobra.Command, path string, openBrowser bool) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd, path)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	slides := newRenderer(cfg)
	fileWatcher := watcher.NewPollingWatcher(cfg.Watcher.GetInterval(), cfg.Watcher.GetDebounce(), log.Named("watcher"))
	slideCache := newSlideCache(cfg)
	presenter := newPresentationService(cfg, slides, slideCache, fileWatcher, log)

	deck, err := presenter.LoadPresentation(ctx, path)
	if err != nil {
		return err
	}

	page, err := renderer.NewTemplateRenderer(deckTitle(deck, path))
	if err != nil {
		return fmt.Errorf("creating page renderer: %w", err)
	}

	server := httpadapter.NewServer(presenter, page, slides, cfg, log.Named("http"))
	server.SetPresentation(deck)

	monitor := newMonitor(slideCache)
	monitor.Start(ctx)
	defer monitor.Stop()
	server.SetMonitor(monitor)

	if err := server.Start(ctx, cfg.Server.Port, cfg.Server.Host); err != nil {
		return err
	}

	liveReload := services.NewLiveReloadService(server, presenter, log.Named("reload"))
	liveReload.SetMonitor(monitor)
	if err := liveReload.Start(ctx, path); err != nil {
		_ = server.Stop(context.Background())
		return fmt.Errorf("starting live reload: %w", err)
	}

	url := "http://" + server.Addr()
	log.Info("preview ready", "url", url, "file", path, "slides", deck.SlideCount())
	fmt.Fprintf(cmd.OutOrStdout(), "Serving %s at %s\n", path, url)

	if openBrowser {
		if err := browser.NewLauncher(log).Open(url); err != nil {
			log.Warn("could not open browser", "error", err)
		}
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GetShutdownTimeout()+time.Second)
	defer cancel()

	if err := liveReload.Stop(); err != nil {
		log.Warn("stopping live reload", "error", err)
	}
	if err := fileWatcher.Stop(); err != nil {
		log.Warn("stopping watcher", "error", err)
	}
	if err := server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("stopping server: %w", err)
	}

	log.Info("server stopped")
	return nil
}

// deckTitle names the preview page after the first slide
func deckTitle(deck *entities.ParsedPresentation, path string) string {
	if deck.SlideCount() > 0 && deck.Slides[0].Title != "" {
		return deck.Slides[0].Title
	}
	return filepath.Base(path)
}
