package review

import (
	"context"
	"path"
	"strings"
)

// StructureAnalyzer checks repository structure and inventory: the files a
// maintained project is expected to carry, and the ones it should not.
type StructureAnalyzer struct{}

// NewStructureAnalyzer creates the structure analyzer.
func NewStructureAnalyzer() *StructureAnalyzer {
	return &StructureAnalyzer{}
}

func (a *StructureAnalyzer) Category() string { return "structure" }

func (a *StructureAnalyzer) TotalChecks() int { return len(a.checks()) }

func (a *StructureAnalyzer) Analyze(ctx context.Context, scope *Scope) (*CategoryResult, error) {
	return runChecks(ctx, a.Category(), a.checks(), scope)
}

// manifestFiles are the manifests that mark a project root.
var manifestFiles = []string{
	"go.mod", "package.json", "pyproject.toml", "requirements.txt",
	"setup.py", "Cargo.toml", "pom.xml", "build.gradle",
}

// artifactGlobs are build outputs that should not be committed.
var artifactGlobs = []string{"*.pyc", "*.o", "*.class", ".DS_Store"}

func (a *StructureAnalyzer) checks() []check {
	return []check{
		{
			id: "readme-missing",
			run: func(scope *Scope) *Finding {
				if scope.HasFile("README.md") || scope.HasFile("README") || scope.HasFile("README.rst") {
					return nil
				}
				return &Finding{
					Severity:    SeverityHigh,
					Title:       "No README at the repository root",
					AutoFixable: true,
					Detail:      "Add a README.md describing what the project is and how to run it",
				}
			},
		},
		{
			id: "license-missing",
			run: func(scope *Scope) *Finding {
				if scope.HasFile("LICENSE") || scope.HasFile("LICENSE.md") || scope.HasFile("COPYING") {
					return nil
				}
				return &Finding{
					Severity: SeverityMedium,
					Title:    "No license file",
					Detail:   "Add a LICENSE so the terms of use are explicit",
				}
			},
		},
		{
			id: "gitignore-missing",
			run: func(scope *Scope) *Finding {
				if scope.HasFile(".gitignore") {
					return nil
				}
				return &Finding{
					Severity:    SeverityLow,
					Title:       "No .gitignore",
					AutoFixable: true,
					Detail:      "Add a .gitignore to keep build outputs out of version control",
				}
			},
		},
		{
			id: "manifest-missing",
			run: func(scope *Scope) *Finding {
				for _, m := range manifestFiles {
					if scope.HasFile(m) {
						return nil
					}
				}
				return &Finding{
					Severity: SeverityHigh,
					Title:    "No recognized project manifest",
					Detail:   "No go.mod, package.json, pyproject.toml, Cargo.toml or similar at the root",
				}
			},
		},
		{
			id: "build-artifacts-committed",
			run: func(scope *Scope) *Finding {
				for _, sig := range scope.Signals.Files() {
					base := path.Base(sig.Value)
					for _, glob := range artifactGlobs {
						if ok, _ := path.Match(glob, base); ok {
							return &Finding{
								Severity: SeverityLow,
								Title:    "Build artifact committed",
								File:     sig.Value,
								Detail:   "Generated files belong in .gitignore, not version control",
							}
						}
					}
				}
				return nil
			},
		},
		{
			id: "flat-source-layout",
			run: func(scope *Scope) *Finding {
				rootSources := 0
				for _, sig := range scope.Signals.Files() {
					if strings.Contains(sig.Value, "/") {
						continue
					}
					switch path.Ext(sig.Value) {
					case ".go", ".py", ".ts", ".js", ".rs", ".java":
						rootSources++
					}
				}
				// A handful of root files is normal; a pile of them is not.
				if rootSources <= 10 {
					return nil
				}
				return &Finding{
					Severity: SeverityLow,
					Title:    "Source files piled at the repository root",
					Detail:   "Move sources into a package or src directory",
				}
			},
		},
	}
}
