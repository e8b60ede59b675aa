package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRenderCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "render <file.md>",
		Short: "Render a deck and print the slides as JSON",
		Long: `Parse a markdown deck and print every slide with its HTML, speaker
notes, source line and applied layout as JSON.

Example:
  deckflow render talk.md
  deckflow render talk.md --rules layouts.yaml --out talk.json
  deckflow render talk.md --legacy --workers 4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args[0], out)
		},
	}

	addRenderFlags(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write JSON to a file instead of stdout")

	return cmd
}

// addRenderFlags registers the flags shared by render and serve
func addRenderFlags(cmd *cobra.Command) {
	cmd.Flags().String("rules", "", "Layout rules file (.json, .yaml, .toml)")
	cmd.Flags().Bool("legacy", false, "Use the built-in layout heuristics instead of rules")
	cmd.Flags().Int("workers", 0, "Slides rendered concurrently")
	cmd.Flags().String("style", "", "Code highlighting style")
	cmd.Flags().Bool("line-numbers", false, "Number lines in code blocks")
}

func runRender(cmd *cobra.Command, path, out string) error {
	cfg, err := loadConfig(cmd, path)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	presentation, err := newPresentationService(cfg, newRenderer(cfg), nil, nil, log).LoadPresentation(cmd.Context(), path)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(presentation, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding slides: %w", err)
	}
	data = append(data, '\n')

	if out == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	if err := os.WriteFile(out, data, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}

	log.Info("slides written", "file", out, "slides", presentation.SlideCount())
	return nil
}
