package fix

import (
	"os"
	"path/filepath"
	"strings"

	"rulekit/internal/review"
)

// Fixer remediates one class of finding. Verify is a pure read of the current
// artifact state; Apply must leave the artifact in a state Verify accepts.
// Calling Apply when Verify already passes must be unnecessary, which is what
// makes repeated runs safe.
type Fixer interface {
	// Target returns the artifact path the fix writes, relative to root.
	// Items sharing a target are serialized by the orchestrator.
	Target(f review.Finding) string
	// Verify reports whether the desired state already holds.
	Verify(root string, f review.Finding) (bool, error)
	// Apply performs the remediation through the writer.
	Apply(root string, f review.Finding, w ArtifactWriter) error
}

// Registry maps finding ids to fixers. Analyzer categories own disjoint id
// spaces, so ids alone are unambiguous here.
type Registry struct {
	fixers map[string]Fixer
}

// NewRegistry returns the builtin fixer set covering every auto-fixable
// finding the builtin analyzers emit.
func NewRegistry() *Registry {
	return &Registry{fixers: map[string]Fixer{
		"readme-missing":         readmeFixer{},
		"gitignore-missing":      gitignoreFixer{},
		"editorconfig-missing":   editorconfigFixer{},
		"env-file-committed":     ignoreEntryFixer{},
		"key-material-committed": ignoreEntryFixer{},
	}}
}

// For returns the fixer for a finding id.
func (r *Registry) For(id string) (Fixer, bool) {
	f, ok := r.fixers[id]
	return f, ok
}

// readmeFixer writes a minimal README stub naming the project directory.
type readmeFixer struct{}

func (readmeFixer) Target(f review.Finding) string { return "README.md" }

func (readmeFixer) Verify(root string, f review.Finding) (bool, error) {
	info, err := os.Stat(filepath.Join(root, "README.md"))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.Size() > 0, nil
}

func (readmeFixer) Apply(root string, f review.Finding, w ArtifactWriter) error {
	name := filepath.Base(root)
	content := "# " + name + "\n\n" +
		"## Setup\n\nDescribe how to install dependencies and configure the project.\n\n" +
		"## Usage\n\nDescribe how to run the project.\n\n" +
		"## Testing\n\nDescribe how to run the test suite.\n"
	return w.Write(filepath.Join(root, "README.md"), []byte(content))
}

// gitignoreFixer writes a starter .gitignore.
type gitignoreFixer struct{}

var defaultIgnores = []string{
	"dist/",
	"build/",
	"node_modules/",
	"*.log",
	".env",
}

func (gitignoreFixer) Target(f review.Finding) string { return ".gitignore" }

func (gitignoreFixer) Verify(root string, f review.Finding) (bool, error) {
	_, err := os.Stat(filepath.Join(root, ".gitignore"))
	if os.IsNotExist(err) {
		return false, nil
	}
	return err == nil, err
}

func (gitignoreFixer) Apply(root string, f review.Finding, w ArtifactWriter) error {
	content := strings.Join(defaultIgnores, "\n") + "\n"
	return w.Write(filepath.Join(root, ".gitignore"), []byte(content))
}

// editorconfigFixer writes a minimal .editorconfig.
type editorconfigFixer struct{}

func (editorconfigFixer) Target(f review.Finding) string { return ".editorconfig" }

func (editorconfigFixer) Verify(root string, f review.Finding) (bool, error) {
	_, err := os.Stat(filepath.Join(root, ".editorconfig"))
	if os.IsNotExist(err) {
		return false, nil
	}
	return err == nil, err
}

func (editorconfigFixer) Apply(root string, f review.Finding, w ArtifactWriter) error {
	content := "root = true\n\n[*]\ncharset = utf-8\nend_of_line = lf\ninsert_final_newline = true\ntrim_trailing_whitespace = true\n"
	return w.Write(filepath.Join(root, ".editorconfig"), []byte(content))
}

// ignoreEntryFixer appends the offending file to .gitignore so it stops being
// tracked going forward. It does not delete the committed file; that is the
// user's call.
type ignoreEntryFixer struct{}

func (ignoreEntryFixer) Target(f review.Finding) string { return ".gitignore" }

func (ignoreEntryFixer) Verify(root string, f review.Finding) (bool, error) {
	if f.File == "" {
		return false, nil
	}
	data, err := os.ReadFile(filepath.Join(root, ".gitignore"))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == f.File {
			return true, nil
		}
	}
	return false, nil
}

func (ignoreEntryFixer) Apply(root string, f review.Finding, w ArtifactWriter) error {
	if f.File == "" {
		return os.ErrNotExist
	}
	path := filepath.Join(root, ".gitignore")
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	content := string(data)
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += f.File + "\n"
	return w.Write(path, []byte(content))
}
