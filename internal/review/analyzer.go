package review

import (
	"context"

	"rulekit/internal/errors"
)

// Analyzer inspects one bounded scope and emits findings plus pass/fail
// counts. Implementations own disjoint category ids and must be pure with
// respect to the snapshot: identical inputs yield identical findings.
type Analyzer interface {
	// Category is the stable category id. No two analyzers may share one.
	Category() string
	// TotalChecks is the declared number of checks this analyzer runs.
	// Passed+Failed of every result must equal it.
	TotalChecks() int
	// Analyze runs the checks against the snapshot.
	Analyze(ctx context.Context, scope *Scope) (*CategoryResult, error)
}

// check is one named verification inside an analyzer. run returns nil when
// the check passes, or the finding describing the failure.
type check struct {
	id  string
	run func(scope *Scope) *Finding
}

// runChecks executes an analyzer's check list and builds the accounted
// result. The per-category accounting invariant (passed+failed == total) is
// asserted here, before the result is returned anywhere.
func runChecks(ctx context.Context, category string, checks []check, scope *Scope) (*CategoryResult, error) {
	result := &CategoryResult{Category: category}

	for _, c := range checks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if f := c.run(scope); f != nil {
			f.Category = category
			if f.ID == "" {
				f.ID = c.id
			}
			result.Failed++
			result.Findings = append(result.Findings, *f)
		} else {
			result.Passed++
		}
	}

	if result.Passed+result.Failed != len(checks) {
		return nil, errors.Newf(errors.InvariantViolation,
			"category %s accounting: passed %d + failed %d != total %d",
			category, result.Passed, result.Failed, len(checks))
	}
	return result, nil
}

// DualPath reports whether two independent checks over the same input concur.
// Used to confirm CRITICAL findings: both reasoning paths must agree.
func DualPath(primary, secondary func() bool) bool {
	return primary() == secondary()
}

// ConfirmCritical returns CRITICAL only when both independent checks agree
// the condition holds; on disagreement the severity is downgraded to HIGH.
func ConfirmCritical(primary, secondary func() bool) Severity {
	if primary() && secondary() {
		return SeverityCritical
	}
	return SeverityHigh
}
