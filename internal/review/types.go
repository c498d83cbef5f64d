// Package review runs category analyzers over an immutable project snapshot
// and produces typed findings with per-category accounting.
package review

import (
	"rulekit/internal/rules"
	"rulekit/internal/signal"
)

// Severity of a finding.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// severityRank orders severities, highest first.
var severityRank = map[Severity]int{
	SeverityCritical: 0,
	SeverityHigh:     1,
	SeverityMedium:   2,
	SeverityLow:      3,
}

// Rank returns the sort rank of a severity; lower ranks sort first. Unknown
// severities sort last.
func (s Severity) Rank() int {
	if r, ok := severityRank[s]; ok {
		return r
	}
	return len(severityRank)
}

// AtMost clamps a severity to a ceiling. Used by style-only categories that
// must never emit above MEDIUM.
func (s Severity) AtMost(ceiling Severity) Severity {
	if s.Rank() < ceiling.Rank() {
		return ceiling
	}
	return s
}

// Finding is one reported issue. Created by exactly one category analyzer and
// immutable afterwards.
type Finding struct {
	Category    string   `json:"category"`
	ID          string   `json:"id"` // stable within category
	Severity    Severity `json:"severity"`
	Title       string   `json:"title"`
	File        string   `json:"file,omitempty"`
	Line        int      `json:"line,omitempty"`
	AutoFixable bool     `json:"autoFixable"`
	Detail      string   `json:"detail,omitempty"`
}

// Key returns the (category, id) identity of the finding.
func (f Finding) Key() string {
	return f.Category + ":" + f.ID
}

// CategoryResult is the output of one category analyzer.
type CategoryResult struct {
	Category string    `json:"category"`
	Passed   int       `json:"passed"`
	Failed   int       `json:"failed"`
	Findings []Finding `json:"findings"`
	// Err marks a category that failed to run. Its findings are absent and
	// the gap is surfaced explicitly rather than silently omitted.
	Err string `json:"error,omitempty"`
}

// Scope is the immutable snapshot an analyzer reads from. Analyzers share no
// mutable state, so the runner may execute them concurrently.
type Scope struct {
	Root    string
	Signals *signal.Set
	Rules   *rules.ResolvedConfig
}

// HasFile reports whether a file-presence signal exists for the exact
// relative path.
func (s *Scope) HasFile(rel string) bool {
	for _, sig := range s.Signals.Files() {
		if sig.Value == rel {
			return true
		}
	}
	return false
}
