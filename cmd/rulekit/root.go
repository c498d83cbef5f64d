package main

import (
	"github.com/spf13/cobra"

	"rulekit/internal/version"
)

var (
	// projectFlag is the CLI --project flag value
	projectFlag string
)

var rootCmd = &cobra.Command{
	Use:   "rulekit",
	Short: "rulekit - project detection and rule-driven review",
	Long: `rulekit inspects a project, detects its languages, frameworks, and tooling
from declarative triggers, resolves the applicable rule sets, and runs a
category-based review whose findings can be auto-fixed with strict outcome
accounting.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("rulekit version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&projectFlag, "project", "",
		"Project root to analyze (default: current directory)")
}
