package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/fredcamaral/deckflow/internal/adapters/secondary/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage deckflow configuration",
	}

	cmd.AddCommand(newConfigInitCmd(), newConfigShowCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var (
		local bool
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the defaults",
		Long: `Write the default configuration to the global config file, or with
--local to deckflow.toml in the current directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := config.NewTOMLLoader()
			if path, _ := cmd.Flags().GetString("config"); path != "" {
				loader = config.NewTOMLLoaderWithPaths(path, config.LocalConfigName)
			}

			path := loader.GetGlobalPath()
			if local {
				path = loader.GetLocalPath(".")
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("checking %s: %w", path, err)
			}

			if err := loader.CreateDefaults(cmd.Context(), path); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&local, "local", false, "Write ./deckflow.toml instead of the global file")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [file.md]",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deck := ""
			if len(args) == 1 {
				deck = args[0]
			}

			cfg, err := loadConfig(cmd, deck)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, source := range newConfigService(cmd).Sources(deckDir(deck)) {
				fmt.Fprintf(out, "# source: %s\n", source)
			}

			encoder := toml.NewEncoder(out)
			encoder.Indent = "  "
			return encoder.Encode(cfg)
		},
	}
}
