package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"rulekit/internal/aggregate"
	"rulekit/internal/config"
	"rulekit/internal/history"
	"rulekit/internal/logging"
	"rulekit/internal/output"
	"rulekit/internal/review"
	"rulekit/internal/rules"
	"rulekit/internal/signal"
)

var (
	reviewFormat    string
	reviewNoHistory bool
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Run category analyzers and report prioritized findings",
	Long: `Run every configured category analyzer over the project and report
findings grouped into remediation tiers.

Analyzers run concurrently over an immutable signal snapshot. A failing
analyzer is reported as a category-level error while the other categories
still produce results. Findings marked with * are auto-fixable via
'rulekit fix'.

Examples:
  rulekit review
  rulekit review --format=json
  rulekit review --no-history`,
	Run: runReview,
}

func init() {
	reviewCmd.Flags().StringVar(&reviewFormat, "format", "human", "Output format (json, human)")
	reviewCmd.Flags().BoolVar(&reviewNoHistory, "no-history", false, "Skip recording the run in the history database")
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) {
	start := time.Now()
	root := mustGetProjectRoot()
	logger := newLogger(reviewFormat)
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

	if !reviewNoHistory {
		if runID, err := recordRun(root, resolved, report, logger); err != nil {
			logger.Warn("Failed to record run", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			logger.Debug("Run recorded", map[string]interface{}{"runId": runID})
		}
	}

	if reviewFormat == "json" {
		if err := output.WriteJSON(os.Stdout, report); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	} else {
		output.RenderReport(os.Stdout, report)
		fmt.Printf("(Review took %dms)\n", time.Since(start).Milliseconds())
	}

	if report.Summary.Critical > 0 || report.Summary.High > 0 {
		os.Exit(1)
	}
}

// runReviewPipeline executes the analyzers and aggregates their results.
// Shared with fix and export so every consumer sees the same report.
func runReviewPipeline(ctx context.Context, root string, cfg *config.Config, set *signal.Set, resolved *rules.ResolvedConfig, logger *logging.Logger) (*aggregate.Report, error) {
	analyzers := selectAnalyzers(cfg.Review.Categories)
	runner, err := review.NewRunner(analyzers, cfg.Review.Parallelism, logger)
	if err != nil {
		return nil, err
	}

	scope := &review.Scope{Root: root, Signals: set, Rules: resolved}
	results, err := runner.RunAll(ctx, scope)
	if err != nil {
		return nil, err
	}

	opts := aggregate.DefaultOptions()
	if cfg.Aggregate.CriticalManualTier == string(aggregate.TierModerate) {
		opts.CriticalManualTier = aggregate.TierModerate
	}
	return aggregate.Aggregate(results, opts)
}

// selectAnalyzers filters the builtin set by configured category ids. An
// empty list means all.
func selectAnalyzers(categories []string) []review.Analyzer {
	all := review.DefaultAnalyzers()
	if len(categories) == 0 {
		return all
	}
	wanted := make(map[string]bool, len(categories))
	for _, c := range categories {
		wanted[c] = true
	}
	var selected []review.Analyzer
	for _, a := range all {
		if wanted[a.Category()] {
			selected = append(selected, a)
		}
	}
	return selected
}

// recordRun stores the run in the history database and returns the run id.
func recordRun(root string, resolved *rules.ResolvedConfig, report *aggregate.Report, logger *logging.Logger) (string, error) {
	db, err := history.Open(root, logger)
	if err != nil {
		return "", err
	}
	defer db.Close()
	return db.RecordRun(root, resolved.RuleSetIDs(), report)
}
