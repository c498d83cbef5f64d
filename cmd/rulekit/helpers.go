package main

import (
	"context"
	"fmt"
	"os"
	ossignal "os/signal"
	"path/filepath"

	"rulekit/internal/catalog"
	"rulekit/internal/config"
	"rulekit/internal/detect"
	"rulekit/internal/logging"
	"rulekit/internal/rules"
	"rulekit/internal/signal"
)

// getProjectRoot returns the project root from the --project flag or the
// working directory.
func getProjectRoot() (string, error) {
	if projectFlag != "" {
		abs, err := filepath.Abs(projectFlag)
		if err != nil {
			return "", err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return "", err
		}
		if !info.IsDir() {
			return "", fmt.Errorf("%s is not a directory", abs)
		}
		return abs, nil
	}
	return os.Getwd()
}

// mustGetProjectRoot returns the project root or exits on error.
func mustGetProjectRoot() string {
	root, err := getProjectRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return root
}

// newContext creates a command context cancelled by Ctrl+C so in-flight
// batches truncate cleanly instead of dying mid-write.
func newContext() (context.Context, context.CancelFunc) {
	return ossignal.NotifyContext(context.Background(), os.Interrupt)
}

// newLogger creates a logger with the specified format.
func newLogger(format string) *logging.Logger {
	logFormat := logging.HumanFormat
	if format == "json" {
		logFormat = logging.JSONFormat
	}
	level := logging.InfoLevel
	if env := os.Getenv("RULEKIT_LOG_LEVEL"); env != "" {
		level = logging.LogLevel(env)
	}
	return logging.NewLogger(logging.Config{
		Format: logFormat,
		Level:  level,
	})
}

// mustLoadConfig loads the project config or exits. A missing config file is
// not an error; invalid content is.
func mustLoadConfig(root string, logger *logging.Logger) *config.Config {
	cfg, err := config.LoadConfig(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// mustLoadCatalog loads the builtin catalog plus any configured overlay.
func mustLoadCatalog(root string, cfg *config.Config) *catalog.Catalog {
	overlayPath := cfg.Catalog.OverlayPath
	if overlayPath != "" && !filepath.IsAbs(overlayPath) {
		overlayPath = filepath.Join(root, overlayPath)
	}
	cat, err := catalog.Load(overlayPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading catalog: %v\n", err)
		os.Exit(1)
	}
	return cat
}

// collectSignals walks the project and appends configured classifier answers.
func collectSignals(root string, cfg *config.Config, logger *logging.Logger) (*signal.Set, error) {
	collector := signal.NewCollector(cfg.Collect, logger)
	set, err := collector.Collect(root)
	if err != nil {
		return nil, err
	}
	choices, err := signal.Classifiers(cfg.Classifiers)
	if err != nil {
		return nil, err
	}
	if len(choices) == 0 {
		return set, nil
	}
	return signal.NewSet(append(set.All(), choices...)), nil
}

// resolvePipeline runs collection, detection, and rule resolution. Every
// command that needs the resolved configuration goes through here so results
// stay consistent across subcommands.
func resolvePipeline(root string, cfg *config.Config, cat *catalog.Catalog, logger *logging.Logger) (*signal.Set, []detect.Match, *rules.ResolvedConfig, error) {
	set, err := collectSignals(root, cfg, logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("signal collection failed: %w", err)
	}
	matches, err := detect.Detect(set, cat)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("detection failed: %w", err)
	}
	resolved, err := rules.ResolveWithGuidelines(matches, cat, set)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("rule resolution failed: %w", err)
	}
	return set, matches, resolved, nil
}
