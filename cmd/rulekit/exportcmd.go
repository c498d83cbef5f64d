package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"rulekit/internal/export"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the full run as a compressed bundle",
	Long: `Run detection and review, then write everything (matches, resolved
rules, report) as a zstd-compressed JSON bundle for archival or comparison.

Examples:
  rulekit export
  rulekit export --out /tmp/project-review.json.zst`,
	Run: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output path (default .rulekit/export-<timestamp>.json.zst)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) {
	root := mustGetProjectRoot()
	logger := newLogger("human")
	cfg := mustLoadConfig(root, logger)
	cat := mustLoadCatalog(root, cfg)

	ctx, cancel := newContext()
	defer cancel()

	set, matches, resolved, err := resolvePipeline(root, cfg, cat, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	report, err := runReviewPipeline(ctx, root, cfg, set, resolved, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	runID, err := recordRun(root, resolved, report, logger)
	if err != nil {
		logger.Warn("Failed to record run", map[string]interface{}{
			"error": err.Error(),
		})
	}

	path := exportOut
	if path == "" {
		name := fmt.Sprintf("export-%s.json.zst", time.Now().UTC().Format("20060102-150405"))
		path = filepath.Join(root, ".rulekit", name)
	}

	exporter := export.NewExporter(root, logger)
	bundle := exporter.NewBundle(runID, matches, resolved, report)
	if err := exporter.Write(path, bundle); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", path)
}
