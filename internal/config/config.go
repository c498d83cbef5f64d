// Package config loads and validates rulekit configuration from
// .rulekit/config.json.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// CurrentVersion is the supported config schema version.
const CurrentVersion = 1

// Config represents the complete rulekit configuration
type Config struct {
	Version  int    `json:"version" mapstructure:"version"`
	RepoRoot string `json:"repoRoot" mapstructure:"repoRoot"`

	Catalog     CatalogConfig     `json:"catalog" mapstructure:"catalog"`
	Collect     CollectConfig     `json:"collect" mapstructure:"collect"`
	Classifiers ClassifiersConfig `json:"classifiers" mapstructure:"classifiers"`
	Review      ReviewConfig      `json:"review" mapstructure:"review"`
	Aggregate   AggregateConfig   `json:"aggregate" mapstructure:"aggregate"`
	Fix         FixConfig         `json:"fix" mapstructure:"fix"`
	Logging     LoggingConfig     `json:"logging" mapstructure:"logging"`
}

// CatalogConfig controls trigger catalog loading
type CatalogConfig struct {
	// OverlayPath points to an optional YAML catalog overlay merged over the
	// builtin catalog. Relative paths are resolved against RepoRoot.
	OverlayPath string `json:"overlayPath" mapstructure:"overlayPath"`
}

// CollectConfig controls signal collection
type CollectConfig struct {
	MaxDepth      int      `json:"maxDepth" mapstructure:"maxDepth"`
	MaxFiles      int      `json:"maxFiles" mapstructure:"maxFiles"`
	ExcludedPaths []string `json:"excludedPaths" mapstructure:"excludedPaths"`
}

// ClassifiersConfig holds default answers for user-choice classifiers.
// Values are closed enumerations; empty means unanswered.
type ClassifiersConfig struct {
	TeamSize        string   `json:"teamSize" mapstructure:"teamSize"`               // solo, small, medium, large
	DataSensitivity string   `json:"dataSensitivity" mapstructure:"dataSensitivity"` // public, internal, confidential, regulated
	Scale           string   `json:"scale" mapstructure:"scale"`                     // small, medium, large
	Compliance      []string `json:"compliance" mapstructure:"compliance"`           // gdpr, hipaa, soc2, pci
	Maturity        string   `json:"maturity" mapstructure:"maturity"`               // prototype, growth, stable
	Breaking        string   `json:"breaking" mapstructure:"breaking"`               // allowed, minimize, forbidden
	Priority        string   `json:"priority" mapstructure:"priority"`               // speed, balanced, quality
}

// ReviewConfig controls the category analyzer run
type ReviewConfig struct {
	Categories  []string `json:"categories" mapstructure:"categories"` // empty = all
	Parallelism int      `json:"parallelism" mapstructure:"parallelism"`
}

// AggregateConfig controls finding aggregation
type AggregateConfig struct {
	// CriticalManualTier decides where CRITICAL non-auto-fixable findings land:
	// "quickwin" folds them into the QuickWin tier for reporting, "moderate"
	// groups them with other manual work. The four-tier partition leaves this
	// cell undeclared, so it is a configuration decision rather than a guess.
	CriticalManualTier string `json:"criticalManualTier" mapstructure:"criticalManualTier"`
}

// FixConfig controls the fix orchestrator
type FixConfig struct {
	// WorkerCount bounds concurrent fix attempts
	WorkerCount int  `json:"workerCount" mapstructure:"workerCount"`
	DryRun      bool `json:"dryRun" mapstructure:"dryRun"`
}

// LoggingConfig controls log output
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:  CurrentVersion,
		RepoRoot: ".",
		Catalog:  CatalogConfig{},
		Collect: CollectConfig{
			MaxDepth: 8,
			MaxFiles: 20000,
			// Hard-skipped during the walk. Deliberately does not include
			// vendor/, test/, or node_modules/: the detector needs to see
			// signals there to down-weight them.
			ExcludedPaths: []string{".git", ".hg", "dist", "build", "target"},
		},
		Review: ReviewConfig{
			Parallelism: 4,
		},
		Aggregate: AggregateConfig{
			CriticalManualTier: "quickwin",
		},
		Fix: FixConfig{
			WorkerCount: 4,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from .rulekit/config.json under repoRoot.
// A missing config file yields the defaults, not an error.
func LoadConfig(repoRoot string) (*Config, error) {
	v := viper.New()

	v.SetDefault("version", CurrentVersion)
	v.SetDefault("repoRoot", ".")

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(repoRoot, ".rulekit"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to .rulekit/config.json
func (c *Config) Save(repoRoot string) error {
	dir := filepath.Join(repoRoot, ".rulekit")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	switch c.Aggregate.CriticalManualTier {
	case "", "quickwin", "moderate":
	default:
		return &ConfigError{Field: "aggregate.criticalManualTier", Message: "must be 'quickwin' or 'moderate'"}
	}
	if c.Fix.WorkerCount < 0 {
		return &ConfigError{Field: "fix.workerCount", Message: "must be non-negative"}
	}
	if c.Review.Parallelism < 0 {
		return &ConfigError{Field: "review.parallelism", Message: "must be non-negative"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
