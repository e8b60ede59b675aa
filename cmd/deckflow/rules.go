package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fredcamaral/deckflow/internal/adapters/secondary/rules"
	"github.com/fredcamaral/deckflow/internal/domain/entities"
)

func newRulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect and validate layout rule files",
		Long: `Layout rules decide how each slide is arranged. Without a file the
commands use the configured rules file, or the built-in rules.`,
	}

	cmd.AddCommand(newRulesListCmd(), newRulesValidateCmd(), newRulesCSSCmd())
	return cmd
}

func newRulesListCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list [file]",
		Short: "List rules in evaluation order",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ruleSet, err := loadRuleSet(cmd, args)
			if err != nil {
				return err
			}

			if format == "" || format == "table" {
				return printRuleTable(cmd.OutOrStdout(), ruleSet)
			}

			f, err := rules.ParseFormat(format)
			if err != nil {
				return err
			}
			return rules.Encode(cmd.OutOrStdout(), ruleSet, f)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, json, yaml or toml")
	return cmd
}

func newRulesValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check that a rules file loads",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ruleSet, err := rules.LoadFile(args[0])
			if err != nil {
				return err
			}

			enabled := 0
			for _, rule := range ruleSet {
				if rule.Enabled {
					enabled++
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rules, %d enabled\n", args[0], len(ruleSet), enabled)
			return nil
		},
	}
}

func newRulesCSSCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "css [file]",
		Short: "Print the stylesheet of the enabled rules",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ruleSet, err := loadRuleSet(cmd, args)
			if err != nil {
				return err
			}

			_, err = io.WriteString(cmd.OutOrStdout(), rules.CSS(ruleSet))
			return err
		},
	}
}

// loadRuleSet reads the named file, or the configured rules
func loadRuleSet(cmd *cobra.Command, args []string) ([]entities.LayoutRule, error) {
	if len(args) == 1 {
		return rules.LoadFile(args[0])
	}

	cfg, err := loadConfig(cmd, "")
	if err != nil {
		return nil, err
	}
	return rules.NewFileRepository(cfg.Layout.RulesFile).Load(cmd.Context())
}

func printRuleTable(w io.Writer, ruleSet []entities.LayoutRule) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PRIORITY\tNAME\tTRANSFORM\tENABLED")
	for _, rule := range ruleSet {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", rule.Priority, rule.DisplayName, rule.Transform.Type, strconv.FormatBool(rule.Enabled))
	}
	return tw.Flush()
}
