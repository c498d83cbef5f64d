package review

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ManifestAnalyzer checks manifest hygiene: lockfiles, version pinning, and
// toolchain declarations. Checks for ecosystems the project does not use pass
// vacuously.
type ManifestAnalyzer struct{}

// NewManifestAnalyzer creates the manifest analyzer.
func NewManifestAnalyzer() *ManifestAnalyzer {
	return &ManifestAnalyzer{}
}

func (a *ManifestAnalyzer) Category() string { return "manifest" }

func (a *ManifestAnalyzer) TotalChecks() int { return len(a.checks()) }

func (a *ManifestAnalyzer) Analyze(ctx context.Context, scope *Scope) (*CategoryResult, error) {
	return runChecks(ctx, a.Category(), a.checks(), scope)
}

// manifestOrder fixes the lockfile check order so identical input always
// yields the same finding regardless of how many manifests are present.
var manifestOrder = []string{"package.json", "go.mod", "Cargo.toml", "pyproject.toml"}

// lockfileFor maps a manifest to its expected lockfiles.
var lockfileFor = map[string][]string{
	"package.json":   {"package-lock.json", "pnpm-lock.yaml", "yarn.lock", "bun.lockb"},
	"go.mod":         {"go.sum"},
	"Cargo.toml":     {"Cargo.lock"},
	"pyproject.toml": {"poetry.lock", "uv.lock", "pdm.lock"},
}

func (a *ManifestAnalyzer) checks() []check {
	return []check{
		{
			id: "lockfile-missing",
			run: func(scope *Scope) *Finding {
				for _, manifest := range manifestOrder {
					if !scope.HasFile(manifest) {
						continue
					}
					found := false
					for _, lock := range lockfileFor[manifest] {
						if scope.HasFile(lock) {
							found = true
							break
						}
					}
					if !found {
						return &Finding{
							Severity: SeverityHigh,
							Title:    "Manifest without a committed lockfile",
							File:     manifest,
							Detail:   "Commit the lockfile so builds are reproducible",
						}
					}
				}
				return nil
			},
		},
		{
			id: "floating-versions",
			run: func(scope *Scope) *Finding {
				if !scope.HasFile("package.json") {
					return nil
				}
				data, err := os.ReadFile(filepath.Join(scope.Root, "package.json"))
				if err != nil {
					return nil // unreadable manifest is the structure category's problem
				}
				var manifest struct {
					Dependencies map[string]string `json:"dependencies"`
				}
				if err := json.Unmarshal(data, &manifest); err != nil {
					return nil
				}
				names := make([]string, 0, len(manifest.Dependencies))
				for name := range manifest.Dependencies {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					version := manifest.Dependencies[name]
					if version == "*" || version == "latest" {
						return &Finding{
							Severity: SeverityMedium,
							Title:    "Floating dependency version",
							File:     "package.json",
							Detail:   name + " is pinned to " + version + "; use a bounded range",
						}
					}
				}
				return nil
			},
		},
		{
			id: "go-directive-missing",
			run: func(scope *Scope) *Finding {
				if !scope.HasFile("go.mod") {
					return nil
				}
				data, err := os.ReadFile(filepath.Join(scope.Root, "go.mod"))
				if err != nil {
					return nil
				}
				for _, line := range strings.Split(string(data), "\n") {
					if strings.HasPrefix(strings.TrimSpace(line), "go ") {
						return nil
					}
				}
				return &Finding{
					Severity: SeverityLow,
					Title:    "go.mod has no go directive",
					File:     "go.mod",
					Detail:   "Declare the minimum Go version",
				}
			},
		},
		{
			id: "unpinned-requirements",
			run: func(scope *Scope) *Finding {
				if !scope.HasFile("requirements.txt") {
					return nil
				}
				f, err := os.Open(filepath.Join(scope.Root, "requirements.txt"))
				if err != nil {
					return nil
				}
				defer f.Close()

				line := 0
				scanner := bufio.NewScanner(f)
				for scanner.Scan() {
					line++
					text := strings.TrimSpace(scanner.Text())
					if text == "" || strings.HasPrefix(text, "#") || strings.HasPrefix(text, "-") {
						continue
					}
					if !strings.ContainsAny(text, "=<>~") {
						return &Finding{
							Severity: SeverityMedium,
							Title:    "Unpinned requirement",
							File:     "requirements.txt",
							Line:     line,
							Detail:   text + " has no version specifier",
						}
					}
				}
				return nil
			},
		},
	}
}
