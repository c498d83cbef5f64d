// Package catalog defines the trigger and rule-set catalog: the declarative
// data that maps observed project signals to rule sets. The catalog is loaded
// once per run and treated as read-only; Detector and Resolver receive it by
// injection rather than through ambient state.
package catalog

// PatternKind classifies how a detection pattern is evaluated against signals.
type PatternKind string

const (
	// FileGlob matches file-presence signals by glob (path.Match on the
	// basename, or on the full relative path when the glob contains a slash).
	FileGlob PatternKind = "file-glob"
	// ManifestKey matches the exact relative path of a recognized manifest.
	ManifestKey PatternKind = "manifest-key"
	// Dependency matches a dependency name parsed from a manifest.
	Dependency PatternKind = "dependency"
	// UserChoice matches an enumerated classifier answer, e.g. "scale=large".
	UserChoice PatternKind = "user-choice"
)

// Pattern is one concrete detection pattern inside a trigger.
type Pattern struct {
	Kind  PatternKind `json:"kind" yaml:"kind"`
	Value string      `json:"value" yaml:"value"`
	// Lockfile marks patterns whose match raises confidence: lockfiles are
	// stronger evidence than a bare manifest entry.
	Lockfile bool `json:"lockfile,omitempty" yaml:"lockfile,omitempty"`
}

// Trigger identifies one detectable project characteristic.
type Trigger struct {
	// Symbol is the stable, namespaced identifier, e.g. "lang:python".
	// Unique across the catalog.
	Symbol string `json:"symbol" yaml:"symbol"`
	// Patterns are the detection patterns. A trigger matches when ANY pattern
	// matches, unless Compound is set, which requires ALL patterns.
	Patterns []Pattern `json:"patterns" yaml:"patterns"`
	// OutputRuleSet is the rule-set this trigger activates.
	OutputRuleSet string `json:"outputRuleSet" yaml:"outputRuleSet"`
	// Tier is the ordinal for tiered families (0 = standalone).
	Tier int `json:"tier,omitempty" yaml:"tier,omitempty"`
	// Compound requires all patterns to match (logical AND).
	Compound bool `json:"compound,omitempty" yaml:"compound,omitempty"`
}

// Rule is a single rule entry inside a rule set.
type Rule struct {
	ID   string `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`
}

// RuleSet is a named, ordered list of rule entries, optionally tiered.
type RuleSet struct {
	ID     string `json:"id" yaml:"id"`
	Family string `json:"family,omitempty" yaml:"family,omitempty"`
	Tier   int    `json:"tier,omitempty" yaml:"tier,omitempty"`
	Rules  []Rule `json:"rules" yaml:"rules"`
}

// ConflictGroup declares mutually exclusive triggers, e.g. competing test
// runners. At most one member resolves per run.
type ConflictGroup struct {
	Name    string   `json:"name" yaml:"name"`
	Members []string `json:"members" yaml:"members"`
}

// TierChain declares an ordered, cumulative family of tiered triggers.
// Resolving a higher member includes every lower member's rule set.
type TierChain struct {
	Family  string   `json:"family" yaml:"family"`
	Ordered []string `json:"ordered" yaml:"ordered"`
}
