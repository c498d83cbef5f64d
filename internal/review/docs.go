package review

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// DocsAnalyzer checks documentation freshness and completeness. When the
// project has no README the checks pass vacuously; the missing README itself
// is the structure category's finding.
type DocsAnalyzer struct{}

// NewDocsAnalyzer creates the docs analyzer.
func NewDocsAnalyzer() *DocsAnalyzer {
	return &DocsAnalyzer{}
}

func (a *DocsAnalyzer) Category() string { return "docs" }

func (a *DocsAnalyzer) TotalChecks() int { return len(a.checks()) }

func (a *DocsAnalyzer) Analyze(ctx context.Context, scope *Scope) (*CategoryResult, error) {
	return runChecks(ctx, a.Category(), a.checks(), scope)
}

func readme(scope *Scope) (string, bool) {
	for _, name := range []string{"README.md", "README", "README.rst"} {
		if !scope.HasFile(name) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(scope.Root, name))
		if err != nil {
			return "", false
		}
		return strings.ToLower(string(data)), true
	}
	return "", false
}

func (a *DocsAnalyzer) checks() []check {
	return []check{
		{
			id: "readme-too-thin",
			run: func(scope *Scope) *Finding {
				content, ok := readme(scope)
				if !ok {
					return nil
				}
				if len(content) >= 200 {
					return nil
				}
				return &Finding{
					Severity: SeverityLow,
					Title:    "README is too thin to orient a new reader",
					File:     "README.md",
					Detail:   "A few sentences on purpose, setup, and usage go a long way",
				}
			},
		},
		{
			id: "no-test-instructions",
			run: func(scope *Scope) *Finding {
				content, ok := readme(scope)
				if !ok {
					return nil
				}
				if strings.Contains(content, "test") {
					return nil
				}
				return &Finding{
					Severity: SeverityLow,
					Title:    "README does not say how to run the tests",
					File:     "README.md",
				}
			},
		},
		{
			id: "no-setup-instructions",
			run: func(scope *Scope) *Finding {
				content, ok := readme(scope)
				if !ok {
					return nil
				}
				for _, word := range []string{"install", "setup", "getting started", "usage", "run"} {
					if strings.Contains(content, word) {
						return nil
					}
				}
				return &Finding{
					Severity: SeverityLow,
					Title:    "README has no setup or usage instructions",
					File:     "README.md",
				}
			},
		},
	}
}
