package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"rulekit/internal/aggregate"
	"rulekit/internal/fix"
	"rulekit/internal/history"
	"rulekit/internal/logging"
	"rulekit/internal/output"
	"rulekit/internal/review"
	"rulekit/internal/rules"
)

var (
	fixFormat  string
	fixDryRun  bool
	fixOnly    []string
	fixExclude []string
	fixWorkers int
)

var fixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Apply automatic fixes for review findings",
	Long: `Run the review and apply every auto-fixable finding.

Each fix verifies the desired state before and after writing, so re-running
is safe: already-applied fixes report as applied without touching the file
again. Excluded findings (--exclude) pass through as deferred and still count
in the batch accounting.

Examples:
  rulekit fix
  rulekit fix --dry-run
  rulekit fix --only readme-missing,gitignore-missing
  rulekit fix --exclude env-file-committed`,
	Run: runFix,
}

func init() {
	fixCmd.Flags().StringVar(&fixFormat, "format", "human", "Output format (json, human)")
	fixCmd.Flags().BoolVar(&fixDryRun, "dry-run", false, "Report what would change without writing")
	fixCmd.Flags().StringSliceVar(&fixOnly, "only", nil, "Fix only these finding ids")
	fixCmd.Flags().StringSliceVar(&fixExclude, "exclude", nil, "Defer these finding ids")
	fixCmd.Flags().IntVar(&fixWorkers, "workers", 0, "Concurrent fix workers (default from config)")
	rootCmd.AddCommand(fixCmd)
}

func runFix(cmd *cobra.Command, args []string) {
	start := time.Now()
	root := mustGetProjectRoot()
	logger := newLogger(fixFormat)
	cfg := mustLoadConfig(root, logger)
	cat := mustLoadCatalog(root, cfg)

	ctx, cancel := newContext()
	defer cancel()

	set, _, resolved, err := resolvePipeline(root, cfg, cat, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	report, err := runReviewPipeline(ctx, root, cfg, set, resolved, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	batch := buildBatch(report.Findings, fixOnly, fixExclude)
	if len(batch) == 0 {
		fmt.Println("Nothing to fix.")
		return
	}

	orchCfg := fix.Config{
		WorkerCount: cfg.Fix.WorkerCount,
		DryRun:      fixDryRun || cfg.Fix.DryRun,
	}
	if fixWorkers > 0 {
		orchCfg.WorkerCount = fixWorkers
	}

	orch := fix.NewOrchestrator(fix.NewRegistry(), nil, logger, orchCfg)
	result, err := orch.Run(ctx, root, batch)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := recordFixOutcomes(root, resolved, report, result, logger); err != nil {
		logger.Warn("Failed to record fix outcomes", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if fixFormat == "json" {
		if err := output.WriteJSON(os.Stdout, result); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}
	output.RenderBatch(os.Stdout, result)
	fmt.Printf("(Fix took %dms)\n", time.Since(start).Milliseconds())
}

// buildBatch selects auto-fixable findings and pre-marks exclusions as
// deferred. Findings outside --only are dropped, not deferred: they were
// never approved into the batch.
func buildBatch(findings []review.Finding, only, exclude []string) []fix.Item {
	onlySet := make(map[string]bool, len(only))
	for _, id := range only {
		onlySet[strings.TrimSpace(id)] = true
	}
	excludeSet := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		excludeSet[strings.TrimSpace(id)] = true
	}

	var batch []fix.Item
	for _, f := range findings {
		if !f.AutoFixable {
			continue
		}
		if len(onlySet) > 0 && !onlySet[f.ID] {
			continue
		}
		if excludeSet[f.ID] {
			batch = append(batch, fix.Item{
				Finding:     f,
				Deferred:    true,
				DeferReason: "excluded at approval",
			})
			continue
		}
		batch = append(batch, fix.Item{Finding: f})
	}
	return batch
}

// recordFixOutcomes stores the run and its fix outcomes together.
func recordFixOutcomes(root string, resolved *rules.ResolvedConfig, report *aggregate.Report, result *fix.BatchResult, logger *logging.Logger) error {
	db, err := history.Open(root, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	runID, err := db.RecordRun(root, resolved.RuleSetIDs(), report)
	if err != nil {
		return err
	}
	return db.RecordOutcomes(runID, result.Outcomes)
}
