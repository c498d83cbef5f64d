package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rulekit/internal/output"
)

var catalogFormat string

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the trigger catalog",
	Long: `Show the loaded trigger catalog: triggers, rule sets, conflict groups,
and tier chains, including any configured overlay.

Examples:
  rulekit catalog
  rulekit catalog show go.md`,
	Run: runCatalog,
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <rule-set-id>",
	Short: "Show the rules of one rule set",
	Args:  cobra.ExactArgs(1),
	Run:   runCatalogShow,
}

func init() {
	catalogCmd.Flags().StringVar(&catalogFormat, "format", "human", "Output format (json, human)")
	catalogCmd.AddCommand(catalogShowCmd)
	rootCmd.AddCommand(catalogCmd)
}

func runCatalog(cmd *cobra.Command, args []string) {
	root := mustGetProjectRoot()
	logger := newLogger(catalogFormat)
	cfg := mustLoadConfig(root, logger)
	cat := mustLoadCatalog(root, cfg)

	if catalogFormat == "json" {
		if err := output.WriteJSON(os.Stdout, cat); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Println(cat.Summary())
	fmt.Println()
	fmt.Printf("%-24s %-6s %s\n", "TRIGGER", "TIER", "RULE SET")
	for _, t := range cat.Triggers {
		tier := "-"
		if t.Tier > 0 {
			tier = fmt.Sprintf("%d", t.Tier)
		}
		fmt.Printf("%-24s %-6s %s\n", t.Symbol, tier, t.OutputRuleSet)
	}
	if len(cat.ConflictGroups) > 0 {
		fmt.Println("\nConflict groups:")
		for _, g := range cat.ConflictGroups {
			fmt.Printf("  %-16s %v\n", g.Name, g.Members)
		}
	}
	if len(cat.TierChains) > 0 {
		fmt.Println("\nTier chains:")
		for _, ch := range cat.TierChains {
			fmt.Printf("  %-16s %v\n", ch.Family, ch.Ordered)
		}
	}
}

func runCatalogShow(cmd *cobra.Command, args []string) {
	root := mustGetProjectRoot()
	logger := newLogger("human")
	cfg := mustLoadConfig(root, logger)
	cat := mustLoadCatalog(root, cfg)

	rs, ok := cat.RuleSet(args[0])
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: rule set %q not found\n", args[0])
		os.Exit(1)
	}
	fmt.Printf("%s (family: %s, tier: %d)\n", rs.ID, rs.Family, rs.Tier)
	for _, rule := range rs.Rules {
		fmt.Printf("  %-28s %s\n", rule.ID, rule.Text)
	}
}
