package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"rulekit/internal/history"
	"rulekit/internal/output"
)

var (
	historyFormat string
	historyLimit  int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded review runs",
	Long: `List review runs recorded in the project's history database.

Examples:
  rulekit history
  rulekit history -n 5
  rulekit history show <run-id>
  rulekit history diff <older-run-id> <newer-run-id>`,
	Run: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run's findings",
	Args:  cobra.ExactArgs(1),
	Run:   runHistoryShow,
}

var historyDiffCmd = &cobra.Command{
	Use:   "diff <older-run-id> <newer-run-id>",
	Short: "Compare rule sets and findings between two runs",
	Args:  cobra.ExactArgs(2),
	Run:   runHistoryDiff,
}

func init() {
	historyCmd.Flags().StringVar(&historyFormat, "format", "human", "Output format (json, human)")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum runs to list")
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDiffCmd)
	rootCmd.AddCommand(historyCmd)
}

func openHistory() *history.DB {
	root := mustGetProjectRoot()
	logger := newLogger(historyFormat)
	db, err := history.Open(root, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening history: %v\n", err)
		os.Exit(1)
	}
	return db
}

func runHistory(cmd *cobra.Command, args []string) {
	db := openHistory()
	defer db.Close()

	runs, err := db.ListRuns(historyLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if historyFormat == "json" {
		if err := output.WriteJSON(os.Stdout, runs); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if len(runs) == 0 {
		fmt.Println("No recorded runs. Run 'rulekit review' first.")
		return
	}
	fmt.Printf("%-36s %-20s %-8s %-8s %s\n", "RUN", "WHEN", "FAILED", "PASSED", "RULE SETS")
	for _, run := range runs {
		fmt.Printf("%-36s %-20s %-8d %-8d %d\n",
			run.ID, run.CreatedAt.Local().Format(time.DateTime),
			run.Summary.Failed, run.Summary.Passed, len(run.RuleSetIDs))
	}
}

func runHistoryShow(cmd *cobra.Command, args []string) {
	db := openHistory()
	defer db.Close()

	run, err := db.GetRun(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: run %s not found\n", args[0])
		os.Exit(1)
	}
	findings, err := db.FindingsForRun(run.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if historyFormat == "json" {
		payload := map[string]interface{}{"run": run, "findings": findings}
		if err := output.WriteJSON(os.Stdout, payload); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Printf("Run %s at %s\n", run.ID, run.CreatedAt.Local().Format(time.DateTime))
	fmt.Printf("Rule sets: %v\n", run.RuleSetIDs)
	fmt.Printf("Checks: %d passed, %d failed\n\n", run.Summary.Passed, run.Summary.Failed)
	for _, f := range findings {
		fmt.Printf("  [%-8s] %-12s %s\n", f.Severity, f.Category, f.Title)
	}
}

func runHistoryDiff(cmd *cobra.Command, args []string) {
	db := openHistory()
	defer db.Close()

	diff, err := db.DiffRuns(args[0], args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if historyFormat == "json" {
		if err := output.WriteJSON(os.Stdout, diff); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if len(diff.AddedRuleSets) > 0 {
		fmt.Printf("Rule sets added:   %v\n", diff.AddedRuleSets)
	}
	if len(diff.RemovedRuleSets) > 0 {
		fmt.Printf("Rule sets removed: %v\n", diff.RemovedRuleSets)
	}
	if len(diff.NewFindings) > 0 {
		fmt.Println("New findings:")
		for _, f := range diff.NewFindings {
			fmt.Printf("  + [%-8s] %s\n", f.Severity, f.Key())
		}
	}
	if len(diff.FixedFindings) > 0 {
		fmt.Println("Resolved findings:")
		for _, f := range diff.FixedFindings {
			fmt.Printf("  - [%-8s] %s\n", f.Severity, f.Key())
		}
	}
	if len(diff.AddedRuleSets)+len(diff.RemovedRuleSets)+len(diff.NewFindings)+len(diff.FixedFindings) == 0 {
		fmt.Println("No differences.")
	}
}
