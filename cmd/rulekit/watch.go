package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"rulekit/internal/output"
	"rulekit/internal/watcher"
)

var watchDebounceMs int

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run detection when project manifests change",
	Long: `Watch the project for manifest changes (package.json, go.mod,
pyproject.toml, lockfiles) and re-run detection after each change, printing
the newly resolved rule sets.

Source edits are ignored: only files that can alter the detected stack
trigger a re-run.

Examples:
  rulekit watch
  rulekit watch --debounce-ms 2000`,
	Run: runWatch,
}

func init() {
	watchCmd.Flags().IntVar(&watchDebounceMs, "debounce-ms", 1000, "Quiet period before re-running detection")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) {
	root := mustGetProjectRoot()
	logger := newLogger("human")

	ctx, cancel := newContext()
	defer cancel()

	rerun := func() {
		cfg := mustLoadConfig(root, logger)
		cat := mustLoadCatalog(root, cfg)
		_, matches, resolved, err := resolvePipeline(root, cfg, cat, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}
		active := matches[:0:0]
		for _, m := range matches {
			if m.Resolved {
				active = append(active, m)
			}
		}
		output.RenderMatches(os.Stdout, active)
		output.RenderResolved(os.Stdout, resolved)
		fmt.Println()
	}

	fmt.Printf("Watching %s (Ctrl+C to stop)\n\n", root)
	rerun()

	w := watcher.New(root, time.Duration(watchDebounceMs)*time.Millisecond, logger)
	err := w.Run(ctx, func(changed []string) {
		fmt.Printf("Change detected in %d file(s), re-running detection...\n", len(changed))
		rerun()
	})
	if err != nil && err != context.Canceled {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
