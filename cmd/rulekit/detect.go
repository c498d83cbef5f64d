package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"rulekit/internal/output"
)

var (
	detectFormat string
	detectAll    bool
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect project stack and resolve rule sets",
	Long: `Detect the project's languages, frameworks, and tooling from collected
signals, then resolve the applicable rule sets.

Competing triggers in the same conflict group (for example two test runners)
are resolved by confidence, with catalog declaration order breaking ties.
Use --all to also list matches that lost conflict resolution.

Examples:
  rulekit detect
  rulekit detect --format=json
  rulekit detect --all`,
	Run: runDetect,
}

func init() {
	detectCmd.Flags().StringVar(&detectFormat, "format", "human", "Output format (json, human)")
	detectCmd.Flags().BoolVar(&detectAll, "all", false, "Include matches that lost conflict resolution")
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) {
	start := time.Now()
	root := mustGetProjectRoot()
	logger := newLogger(detectFormat)
	cfg := mustLoadConfig(root, logger)
	cat := mustLoadCatalog(root, cfg)

	_, matches, resolved, err := resolvePipeline(root, cfg, cat, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	shown := matches
	if !detectAll {
		shown = shown[:0:0]
		for _, m := range matches {
			if m.Resolved {
				shown = append(shown, m)
			}
		}
	}

	if detectFormat == "json" {
		payload := map[string]interface{}{
			"matches":  shown,
			"resolved": resolved,
		}
		if err := output.WriteJSON(os.Stdout, payload); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	output.RenderMatches(os.Stdout, shown)
	fmt.Println()
	output.RenderResolved(os.Stdout, resolved)
	fmt.Printf("\n(Detection took %dms)\n", time.Since(start).Milliseconds())
}
