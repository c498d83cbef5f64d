// Package aggregate merges per-category analyzer results into one prioritized
// report. Findings are partitioned into four remediation tiers with a total,
// reproducible ordering inside each tier.
package aggregate

import (
	"sort"

	"rulekit/internal/errors"
	"rulekit/internal/review"
)

// Tier names the four remediation priority buckets.
type Tier string

const (
	TierQuickWin Tier = "quickwin" // auto-fixable, CRITICAL or HIGH
	TierModerate Tier = "moderate" // manual, HIGH
	TierComplex  Tier = "complex"  // MEDIUM
	TierMajor    Tier = "major"    // LOW
)

// Options controls partition decisions that the tier rules leave open.
type Options struct {
	// CriticalManualTier decides where a CRITICAL finding that cannot be
	// auto-fixed lands. The tier rules only place auto-fixable CRITICAL
	// findings (QuickWin) and manual HIGH findings (Moderate), so the
	// manual-CRITICAL cell needs an explicit home. Valid values are
	// "quickwin" (default, keeps the most severe work at the top of the
	// report) and "moderate".
	CriticalManualTier Tier
}

// DefaultOptions matches the config default.
func DefaultOptions() Options {
	return Options{CriticalManualTier: TierQuickWin}
}

// Summary counts findings per severity across all categories.
type Summary struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
	Passed   int `json:"checksPassed"`
	Failed   int `json:"checksFailed"`
}

// FailedCategory marks a category whose analyzer did not complete. Its
// findings are absent from the report and the gap is recorded instead of
// silently dropped.
type FailedCategory struct {
	Category string `json:"category"`
	Error    string `json:"error"`
}

// Report is the merged, prioritized output of one review run.
type Report struct {
	Findings []review.Finding `json:"findings"`
	QuickWin []review.Finding `json:"quickWin"`
	Moderate []review.Finding `json:"moderate"`
	Complex  []review.Finding `json:"complex"`
	Major    []review.Finding `json:"major"`
	Summary  Summary          `json:"summary"`
	Failed   []FailedCategory `json:"failedCategories,omitempty"`
}

// TierOf classifies a single finding. The partition is exhaustive over the
// four severities crossed with the auto-fixable flag.
func TierOf(f review.Finding, opts Options) Tier {
	switch f.Severity {
	case review.SeverityCritical:
		if f.AutoFixable {
			return TierQuickWin
		}
		if opts.CriticalManualTier == TierModerate {
			return TierModerate
		}
		return TierQuickWin
	case review.SeverityHigh:
		if f.AutoFixable {
			return TierQuickWin
		}
		return TierModerate
	case review.SeverityMedium:
		return TierComplex
	default:
		return TierMajor
	}
}

// Aggregate merges category results into a report. A duplicate (category, id)
// pair is a defect in an analyzer, not user input, and fails the whole run
// rather than being deduplicated.
func Aggregate(results []review.CategoryResult, opts Options) (*Report, error) {
	report := &Report{
		Findings: make([]review.Finding, 0),
		QuickWin: make([]review.Finding, 0),
		Moderate: make([]review.Finding, 0),
		Complex:  make([]review.Finding, 0),
		Major:    make([]review.Finding, 0),
	}

	seen := make(map[string]bool)
	for _, res := range results {
		if res.Err != "" {
			report.Failed = append(report.Failed, FailedCategory{
				Category: res.Category,
				Error:    res.Err,
			})
			continue
		}
		report.Summary.Passed += res.Passed
		report.Summary.Failed += res.Failed
		for _, f := range res.Findings {
			if seen[f.Key()] {
				return nil, errors.Newf(errors.InvariantViolation,
					"duplicate finding %s: analyzers own disjoint id spaces", f.Key())
			}
			seen[f.Key()] = true
			report.Findings = append(report.Findings, f)
		}
	}

	sortFindings(report.Findings)
	for _, f := range report.Findings {
		switch f.Severity {
		case review.SeverityCritical:
			report.Summary.Critical++
		case review.SeverityHigh:
			report.Summary.High++
		case review.SeverityMedium:
			report.Summary.Medium++
		case review.SeverityLow:
			report.Summary.Low++
		}

		switch TierOf(f, opts) {
		case TierQuickWin:
			report.QuickWin = append(report.QuickWin, f)
		case TierModerate:
			report.Moderate = append(report.Moderate, f)
		case TierComplex:
			report.Complex = append(report.Complex, f)
		case TierMajor:
			report.Major = append(report.Major, f)
		}
	}

	total := len(report.QuickWin) + len(report.Moderate) + len(report.Complex) + len(report.Major)
	if total != len(report.Findings) {
		return nil, errors.Newf(errors.InvariantViolation,
			"tier partition lost findings: %d tiered != %d total", total, len(report.Findings))
	}

	sort.Slice(report.Failed, func(i, j int) bool {
		return report.Failed[i].Category < report.Failed[j].Category
	})
	return report, nil
}

// sortFindings orders by severity descending, then category, then id. Tiers
// inherit this order because the partition preserves it.
func sortFindings(findings []review.Finding) {
	sort.Slice(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() < b.Severity.Rank()
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.ID < b.ID
	})
}
