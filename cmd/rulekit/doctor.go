package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"rulekit/internal/catalog"
	"rulekit/internal/config"
	"rulekit/internal/history"
	"rulekit/internal/output"
	"rulekit/internal/signal"
)

var (
	doctorFormat string
	doctorCheck  string
)

// doctorResult is one diagnostic check outcome.
type doctorResult struct {
	Check   string `json:"check"`
	Healthy bool   `json:"healthy"`
	Detail  string `json:"detail"`
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose rulekit configuration and environment issues",
	Long: `Diagnose rulekit setup: config file validity, catalog and overlay
integrity, classifier answers, and the history database.

Use --check to run a single check (config, catalog, classifiers, storage,
project).

Examples:
  rulekit doctor
  rulekit doctor --check catalog`,
	Run: runDoctor,
}

func init() {
	doctorCmd.Flags().StringVar(&doctorFormat, "format", "human", "Output format (json, human)")
	doctorCmd.Flags().StringVar(&doctorCheck, "check", "", "Run specific check (config, catalog, classifiers, storage, project)")
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) {
	start := time.Now()
	root := mustGetProjectRoot()
	logger := newLogger(doctorFormat)

	checks := map[string]func(string) doctorResult{
		"project":     checkProject,
		"config":      checkConfig,
		"catalog":     checkCatalog,
		"classifiers": checkClassifiers,
		"storage":     nil, // filled below, needs the logger
	}
	checks["storage"] = func(root string) doctorResult {
		db, err := history.Open(root, logger)
		if err != nil {
			return doctorResult{Check: "storage", Detail: err.Error()}
		}
		defer db.Close()
		runs, err := db.ListRuns(1)
		if err != nil {
			return doctorResult{Check: "storage", Detail: err.Error()}
		}
		return doctorResult{
			Check:   "storage",
			Healthy: true,
			Detail:  fmt.Sprintf("history database ok (%d recent run(s) visible)", len(runs)),
		}
	}

	order := []string{"project", "config", "catalog", "classifiers", "storage"}
	var results []doctorResult
	for _, name := range order {
		if doctorCheck != "" && doctorCheck != name {
			continue
		}
		results = append(results, checks[name](root))
	}
	if len(results) == 0 {
		fmt.Fprintf(os.Stderr, "Error: unknown check %q\n", doctorCheck)
		os.Exit(1)
	}

	healthy := true
	for _, r := range results {
		if !r.Healthy {
			healthy = false
		}
	}

	if doctorFormat == "json" {
		payload := map[string]interface{}{"healthy": healthy, "checks": results}
		if err := output.WriteJSON(os.Stdout, payload); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	} else {
		for _, r := range results {
			status := "ok"
			if !r.Healthy {
				status = "FAIL"
			}
			fmt.Printf("%-4s %-12s %s\n", status, r.Check, r.Detail)
		}
		fmt.Printf("\n(Diagnostics took %dms)\n", time.Since(start).Milliseconds())
	}

	if !healthy {
		os.Exit(1)
	}
}

func checkProject(root string) doctorResult {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return doctorResult{Check: "project", Detail: fmt.Sprintf("project root %s is not readable", root)}
	}
	return doctorResult{Check: "project", Healthy: true, Detail: root}
}

func checkConfig(root string) doctorResult {
	cfg, err := config.LoadConfig(root)
	if err != nil {
		return doctorResult{Check: "config", Detail: err.Error()}
	}
	if err := cfg.Validate(); err != nil {
		return doctorResult{Check: "config", Detail: err.Error()}
	}
	path := filepath.Join(root, ".rulekit", "config.json")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return doctorResult{Check: "config", Healthy: true, Detail: "no config file, using defaults"}
	}
	return doctorResult{Check: "config", Healthy: true, Detail: path}
}

func checkCatalog(root string) doctorResult {
	cfg, err := config.LoadConfig(root)
	if err != nil {
		return doctorResult{Check: "catalog", Detail: err.Error()}
	}
	overlayPath := cfg.Catalog.OverlayPath
	if overlayPath != "" && !filepath.IsAbs(overlayPath) {
		overlayPath = filepath.Join(root, overlayPath)
	}
	cat, err := catalog.Load(overlayPath)
	if err != nil {
		return doctorResult{Check: "catalog", Detail: err.Error()}
	}
	return doctorResult{Check: "catalog", Healthy: true, Detail: cat.Summary()}
}

func checkClassifiers(root string) doctorResult {
	cfg, err := config.LoadConfig(root)
	if err != nil {
		return doctorResult{Check: "classifiers", Detail: err.Error()}
	}
	choices, err := signal.Classifiers(cfg.Classifiers)
	if err != nil {
		return doctorResult{Check: "classifiers", Detail: err.Error()}
	}
	if len(choices) == 0 {
		return doctorResult{Check: "classifiers", Healthy: true, Detail: "no classifier answers configured"}
	}
	return doctorResult{Check: "classifiers", Healthy: true, Detail: fmt.Sprintf("%d classifier answer(s) valid", len(choices))}
}
