// Package output formats detection, review, and fix results for terminals
// and for machine consumers.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"rulekit/internal/aggregate"
	"rulekit/internal/detect"
	"rulekit/internal/fix"
	"rulekit/internal/review"
	"rulekit/internal/rules"
)

// WriteJSON writes indented JSON with a trailing newline.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// RenderMatches prints trigger matches in a fixed-width table. Unresolved
// matches are flagged so conflict-group losers stay visible.
func RenderMatches(w io.Writer, matches []detect.Match) {
	if len(matches) == 0 {
		fmt.Fprintln(w, "No triggers matched.")
		return
	}
	fmt.Fprintf(w, "%-24s %-10s %-10s %s\n", "TRIGGER", "CONFIDENCE", "RESOLVED", "RULE SET")
	for _, m := range matches {
		resolved := "yes"
		if !m.Resolved {
			resolved = "no"
		}
		fmt.Fprintf(w, "%-24s %-10.2f %-10s %s\n",
			m.Trigger.Symbol, m.Confidence, resolved, m.Trigger.OutputRuleSet)
	}
}

// RenderResolved prints the rule sets and rule count of a resolved
// configuration.
func RenderResolved(w io.Writer, cfg *rules.ResolvedConfig) {
	fmt.Fprintf(w, "Resolved %d rule sets, %d active rules\n",
		len(cfg.RuleSets), len(cfg.ActiveRules))
	for _, rs := range cfg.RuleSets {
		fmt.Fprintf(w, "  %-24s %d rules\n", rs.ID, len(rs.Rules))
	}
	if len(cfg.Guidelines) > 0 {
		fmt.Fprintln(w, "Guidelines:")
		keys := make([]string, 0, len(cfg.Guidelines))
		for k := range cfg.Guidelines {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "  %s = %s\n", k, cfg.Guidelines[k])
		}
	}
}

// RenderReport prints a review report grouped by remediation tier.
func RenderReport(w io.Writer, report *aggregate.Report) {
	fmt.Fprintf(w, "Checks: %d passed, %d failed\n",
		report.Summary.Passed, report.Summary.Failed)
	fmt.Fprintf(w, "Findings: %d critical, %d high, %d medium, %d low\n\n",
		report.Summary.Critical, report.Summary.High,
		report.Summary.Medium, report.Summary.Low)

	tiers := map[string][]review.Finding{
		"quickwin": report.QuickWin,
		"moderate": report.Moderate,
		"complex":  report.Complex,
		"major":    report.Major,
	}
	for _, tier := range TierOrder {
		findings := tiers[tier]
		if len(findings) == 0 {
			continue
		}
		sorted := append([]review.Finding(nil), findings...)
		sort.SliceStable(sorted, func(i, j int) bool {
			return GetSeverityPriority(string(sorted[i].Severity)) <
				GetSeverityPriority(string(sorted[j].Severity))
		})
		fmt.Fprintf(w, "%s (%d)\n", GetTierLabel(tier), len(sorted))
		for _, f := range sorted {
			renderFinding(w, f)
		}
		fmt.Fprintln(w)
	}

	for _, failed := range report.Failed {
		fmt.Fprintf(w, "WARNING: category %s did not run: %s\n", failed.Category, failed.Error)
	}
}

func renderFinding(w io.Writer, f review.Finding) {
	location := ""
	if f.File != "" {
		location = "  " + f.File
		if f.Line > 0 {
			location = fmt.Sprintf("%s:%d", location, f.Line)
		}
	}
	marker := " "
	if f.AutoFixable {
		marker = "*"
	}
	fmt.Fprintf(w, "  %s [%-8s] %-12s %s%s\n", marker, f.Severity, f.Category, f.Title, location)
}

// RenderBatch prints the accounting summary of a fix run.
func RenderBatch(w io.Writer, result *fix.BatchResult) {
	fmt.Fprintf(w, "Applied %d, failed %d, deferred %d (attempted %d)\n",
		result.Applied, result.Failed, result.Deferred, result.Attempted)
	if result.Truncated {
		fmt.Fprintln(w, "Run was cancelled before the full batch was attempted.")
	}
	for _, o := range result.Outcomes {
		switch o.State {
		case fix.StateApplied:
			note := "applied"
			if !o.Changed {
				note = "already in place"
			}
			fmt.Fprintf(w, "  ok   %-40s %s\n", o.Finding.Key(), note)
		case fix.StateFailed:
			fmt.Fprintf(w, "  FAIL %-40s %s\n", o.Finding.Key(), o.Reason)
		case fix.StateDeferred:
			fmt.Fprintf(w, "  skip %-40s %s\n", o.Finding.Key(), o.Reason)
		}
	}
}
