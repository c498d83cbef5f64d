package aggregate

import (
	"testing"

	"rulekit/internal/errors"
	"rulekit/internal/review"
)

func finding(category, id string, sev review.Severity, fixable bool) review.Finding {
	return review.Finding{
		Category:    category,
		ID:          id,
		Severity:    sev,
		Title:       id,
		AutoFixable: fixable,
	}
}

func result(category string, findings ...review.Finding) review.CategoryResult {
	return review.CategoryResult{
		Category: category,
		Passed:   1,
		Failed:   len(findings),
		Findings: findings,
	}
}

func TestAggregateEmpty(t *testing.T) {
	report, err := Aggregate(nil, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Findings) != 0 {
		t.Errorf("empty input yields empty report, got %d findings", len(report.Findings))
	}
}

func TestTierPartition(t *testing.T) {
	tests := []struct {
		name    string
		sev     review.Severity
		fixable bool
		want    Tier
	}{
		{"critical fixable", review.SeverityCritical, true, TierQuickWin},
		{"high fixable", review.SeverityHigh, true, TierQuickWin},
		{"high manual", review.SeverityHigh, false, TierModerate},
		{"medium fixable", review.SeverityMedium, true, TierComplex},
		{"medium manual", review.SeverityMedium, false, TierComplex},
		{"low fixable", review.SeverityLow, true, TierMajor},
		{"low manual", review.SeverityLow, false, TierMajor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := finding("structure", "x", tt.sev, tt.fixable)
			if got := TierOf(f, DefaultOptions()); got != tt.want {
				t.Errorf("TierOf(%s, fixable=%v) = %s, want %s", tt.sev, tt.fixable, got, tt.want)
			}
		})
	}
}

func TestCriticalManualTierDecision(t *testing.T) {
	f := finding("secrets", "key-material-committed", review.SeverityCritical, false)

	if got := TierOf(f, DefaultOptions()); got != TierQuickWin {
		t.Errorf("default places manual CRITICAL in quickwin, got %s", got)
	}
	if got := TierOf(f, Options{CriticalManualTier: TierModerate}); got != TierModerate {
		t.Errorf("configured moderate placement ignored, got %s", got)
	}
}

func TestPartitionExhaustive(t *testing.T) {
	// Ten CRITICAL findings, five auto-fixable.
	var findings []review.Finding
	for i := 0; i < 10; i++ {
		id := string(rune('a' + i))
		findings = append(findings, finding("secrets", id, review.SeverityCritical, i < 5))
	}
	report, err := Aggregate([]review.CategoryResult{result("secrets", findings...)}, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	total := len(report.QuickWin) + len(report.Moderate) + len(report.Complex) + len(report.Major)
	if total != len(report.Findings) {
		t.Errorf("tier sizes sum to %d, want %d", total, len(report.Findings))
	}
	// Default decision folds manual CRITICAL into quickwin, so all ten land there.
	if len(report.QuickWin) != 10 {
		t.Errorf("quickwin = %d, want 10", len(report.QuickWin))
	}

	report, err = Aggregate([]review.CategoryResult{result("secrets", findings...)},
		Options{CriticalManualTier: TierModerate})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.QuickWin) != 5 || len(report.Moderate) != 5 {
		t.Errorf("moderate placement: quickwin=%d moderate=%d, want 5/5",
			len(report.QuickWin), len(report.Moderate))
	}
}

func TestDuplicateFindingFailsLoudly(t *testing.T) {
	results := []review.CategoryResult{
		result("docs", finding("docs", "readme-too-thin", review.SeverityLow, false)),
		result("docs", finding("docs", "readme-too-thin", review.SeverityLow, false)),
	}
	_, err := Aggregate(results, DefaultOptions())
	if err == nil {
		t.Fatal("duplicate (category, id) must fail, not dedupe")
	}
	if errors.CodeOf(err) != errors.InvariantViolation {
		t.Errorf("code = %s, want INVARIANT_VIOLATION", errors.CodeOf(err))
	}
}

func TestFindingOrdering(t *testing.T) {
	results := []review.CategoryResult{
		result("structure",
			finding("structure", "readme-missing", review.SeverityHigh, true),
			finding("structure", "gitignore-missing", review.SeverityLow, true),
		),
		result("manifest",
			finding("manifest", "lockfile-missing", review.SeverityHigh, false),
		),
		result("secrets",
			finding("secrets", "env-file-committed", review.SeverityCritical, true),
		),
	}
	report, err := Aggregate(results, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	wantOrder := []string{
		"secrets:env-file-committed",  // CRITICAL
		"manifest:lockfile-missing",   // HIGH, manifest < structure
		"structure:readme-missing",    // HIGH
		"structure:gitignore-missing", // LOW
	}
	if len(report.Findings) != len(wantOrder) {
		t.Fatalf("got %d findings, want %d", len(report.Findings), len(wantOrder))
	}
	for i, want := range wantOrder {
		if got := report.Findings[i].Key(); got != want {
			t.Errorf("findings[%d] = %s, want %s", i, got, want)
		}
	}
}

func TestFailedCategoriesCarried(t *testing.T) {
	results := []review.CategoryResult{
		result("docs", finding("docs", "readme-too-thin", review.SeverityLow, false)),
		{Category: "hygiene", Err: "analyzer failed to run: scan blew up"},
	}
	report, err := Aggregate(results, DefaultOptions())
	if err != nil {
		t.Fatalf("a failed category must not fail aggregation: %v", err)
	}
	if len(report.Failed) != 1 || report.Failed[0].Category != "hygiene" {
		t.Errorf("failed categories = %+v, want hygiene marker", report.Failed)
	}
	if len(report.Findings) != 1 {
		t.Errorf("healthy categories still aggregate, got %d findings", len(report.Findings))
	}
}

func TestSummaryCounts(t *testing.T) {
	results := []review.CategoryResult{
		{
			Category: "structure",
			Passed:   4,
			Failed:   2,
			Findings: []review.Finding{
				finding("structure", "readme-missing", review.SeverityHigh, true),
				finding("structure", "license-missing", review.SeverityMedium, false),
			},
		},
	}
	report, err := Aggregate(results, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if report.Summary.High != 1 || report.Summary.Medium != 1 {
		t.Errorf("severity counts = %+v", report.Summary)
	}
	if report.Summary.Passed != 4 || report.Summary.Failed != 2 {
		t.Errorf("check counts = %+v", report.Summary)
	}
}
