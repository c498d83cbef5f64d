package review

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// SecretsAnalyzer checks for credential material committed to the tree.
// A CRITICAL verdict requires two independent checks to concur: the filename
// pattern and the file content must both look like credentials. When they
// disagree the finding is downgraded, never suppressed.
type SecretsAnalyzer struct{}

// NewSecretsAnalyzer creates the secrets analyzer.
func NewSecretsAnalyzer() *SecretsAnalyzer {
	return &SecretsAnalyzer{}
}

func (a *SecretsAnalyzer) Category() string { return "secrets" }

func (a *SecretsAnalyzer) TotalChecks() int { return len(a.checks()) }

func (a *SecretsAnalyzer) Analyze(ctx context.Context, scope *Scope) (*CategoryResult, error) {
	return runChecks(ctx, a.Category(), a.checks(), scope)
}

// secretFilenames are names that should never be committed.
var secretFilenames = []string{".env", ".env.local", ".env.production", "credentials.json", ".npmrc"}

// secretGlobs match key material by extension.
var secretGlobs = []string{"*.pem", "*.p12", "*.pfx", "id_rsa", "id_ed25519"}

// contentKeywords mark a file body as credential-bearing.
var contentKeywords = []string{
	"secret", "password", "api_key", "apikey", "private key",
	"access_token", "aws_secret", "begin rsa", "begin openssh",
}

func (a *SecretsAnalyzer) checks() []check {
	return []check{
		{
			id: "env-file-committed",
			run: func(scope *Scope) *Finding {
				for _, sig := range scope.Signals.Files() {
					base := path.Base(sig.Value)
					if !matchesSecretName(base) {
						continue
					}
					file := sig.Value
					// Dual-path confirmation: the name says credentials and
					// the content must agree before this goes out CRITICAL.
					severity := ConfirmCritical(
						func() bool { return matchesSecretName(base) },
						func() bool { return contentLooksSecret(filepath.Join(scope.Root, file)) },
					)
					return &Finding{
						Severity:    severity,
						Title:       "Credential file committed to the repository",
						File:        file,
						AutoFixable: true,
						Detail:      "Remove it from version control and add the name to .gitignore",
					}
				}
				return nil
			},
		},
		{
			id: "key-material-committed",
			run: func(scope *Scope) *Finding {
				for _, sig := range scope.Signals.Files() {
					base := path.Base(sig.Value)
					for _, glob := range secretGlobs {
						ok, _ := path.Match(glob, base)
						if !ok {
							continue
						}
						file := sig.Value
						severity := ConfirmCritical(
							func() bool { return true },
							func() bool { return contentLooksSecret(filepath.Join(scope.Root, file)) },
						)
						return &Finding{
							Severity:    severity,
							Title:       "Private key material committed to the repository",
							File:        file,
							AutoFixable: true,
							Detail:      "Rotate the key and purge it from history; ignoring it stops further commits",
						}
					}
				}
				return nil
			},
		},
	}
}

func matchesSecretName(base string) bool {
	for _, name := range secretFilenames {
		if base == name {
			return true
		}
	}
	return false
}

// contentLooksSecret is the independent second path: it reads the file and
// looks for credential-shaped content. Unreadable files do not confirm.
func contentLooksSecret(fullPath string) bool {
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return false
	}
	body := strings.ToLower(string(data))
	for _, kw := range contentKeywords {
		if strings.Contains(body, kw) {
			return true
		}
	}
	// KEY=value lines are the .env shape even without telltale names
	lines := strings.Split(body, "\n")
	assignments := 0
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if idx := strings.Index(line, "="); idx > 0 && !strings.ContainsAny(line[:idx], " \t") {
			assignments++
		}
	}
	return assignments >= 2
}
