package review

import (
	"context"
	"path"
	"strings"
)

// styleCeiling is the hard severity ceiling for this category: hygiene
// findings are style-only and must never reach HIGH or CRITICAL.
const styleCeiling = SeverityMedium

// HygieneAnalyzer checks file-level style hygiene. Every finding is clamped
// to the style ceiling before it is emitted.
type HygieneAnalyzer struct{}

// NewHygieneAnalyzer creates the hygiene analyzer.
func NewHygieneAnalyzer() *HygieneAnalyzer {
	return &HygieneAnalyzer{}
}

func (a *HygieneAnalyzer) Category() string { return "hygiene" }

func (a *HygieneAnalyzer) TotalChecks() int { return len(a.checks()) }

func (a *HygieneAnalyzer) Analyze(ctx context.Context, scope *Scope) (*CategoryResult, error) {
	result, err := runChecks(ctx, a.Category(), a.checks(), scope)
	if err != nil {
		return nil, err
	}
	// Ceiling is enforced here regardless of what a check asked for.
	for i := range result.Findings {
		result.Findings[i].Severity = result.Findings[i].Severity.AtMost(styleCeiling)
	}
	return result, nil
}

func (a *HygieneAnalyzer) checks() []check {
	return []check{
		{
			id: "editorconfig-missing",
			run: func(scope *Scope) *Finding {
				if scope.HasFile(".editorconfig") {
					return nil
				}
				return &Finding{
					Severity:    SeverityLow,
					Title:       "No .editorconfig",
					AutoFixable: true,
					Detail:      "Shared editor settings keep diffs free of whitespace noise",
				}
			},
		},
		{
			id: "nonstandard-markdown-extension",
			run: func(scope *Scope) *Finding {
				for _, sig := range scope.Signals.Files() {
					ext := path.Ext(sig.Value)
					if ext == ".markdown" || ext == ".mdown" {
						return &Finding{
							Severity: SeverityLow,
							Title:    "Nonstandard markdown extension",
							File:     sig.Value,
							Detail:   "Use .md",
						}
					}
				}
				return nil
			},
		},
		{
			id: "spaces-in-filenames",
			run: func(scope *Scope) *Finding {
				for _, sig := range scope.Signals.Files() {
					if strings.Contains(path.Base(sig.Value), " ") {
						return &Finding{
							Severity: SeverityLow,
							Title:    "Filename contains spaces",
							File:     sig.Value,
							Detail:   "Spaces in paths break scripts and build tools",
						}
					}
				}
				return nil
			},
		},
		{
			id: "uppercase-source-extension",
			run: func(scope *Scope) *Finding {
				for _, sig := range scope.Signals.Files() {
					ext := path.Ext(sig.Value)
					lower := strings.ToLower(ext)
					if ext != lower {
						switch lower {
						case ".go", ".py", ".js", ".ts", ".rs", ".java", ".md":
							return &Finding{
								Severity: SeverityLow,
								Title:    "Uppercase file extension",
								File:     sig.Value,
								Detail:   "Use lowercase extensions; case-sensitive filesystems disagree otherwise",
							}
						}
					}
				}
				return nil
			},
		},
	}
}
