package catalog

// Builtin returns the catalog shipped with rulekit. Returned value is freshly
// built so callers can overlay onto it without aliasing package state.
func Builtin() (*Catalog, error) {
	return New(builtinTriggers(), builtinRuleSets(), builtinConflictGroups(), builtinTierChains())
}

func builtinTriggers() []Trigger {
	return []Trigger{
		// Languages
		{
			Symbol: "lang:go",
			Patterns: []Pattern{
				{Kind: ManifestKey, Value: "go.mod"},
				{Kind: FileGlob, Value: "*.go"},
				{Kind: FileGlob, Value: "go.sum", Lockfile: true},
			},
			OutputRuleSet: "lang-go",
		},
		{
			Symbol: "lang:python",
			Patterns: []Pattern{
				{Kind: ManifestKey, Value: "pyproject.toml"},
				{Kind: ManifestKey, Value: "requirements.txt"},
				{Kind: FileGlob, Value: "setup.py"},
				{Kind: FileGlob, Value: "*.py"},
				{Kind: FileGlob, Value: "poetry.lock", Lockfile: true},
				{Kind: FileGlob, Value: "uv.lock", Lockfile: true},
			},
			OutputRuleSet: "lang-python",
		},
		{
			Symbol: "lang:typescript",
			Patterns: []Pattern{
				{Kind: FileGlob, Value: "tsconfig.json"},
				{Kind: FileGlob, Value: "*.ts"},
			},
			OutputRuleSet: "lang-typescript",
		},
		{
			Symbol: "lang:javascript",
			Patterns: []Pattern{
				{Kind: ManifestKey, Value: "package.json"},
				{Kind: FileGlob, Value: "*.js"},
				{Kind: FileGlob, Value: "package-lock.json", Lockfile: true},
				{Kind: FileGlob, Value: "pnpm-lock.yaml", Lockfile: true},
				{Kind: FileGlob, Value: "yarn.lock", Lockfile: true},
			},
			OutputRuleSet: "lang-javascript",
		},
		{
			Symbol: "lang:rust",
			Patterns: []Pattern{
				{Kind: ManifestKey, Value: "Cargo.toml"},
				{Kind: FileGlob, Value: "*.rs"},
				{Kind: FileGlob, Value: "Cargo.lock", Lockfile: true},
			},
			OutputRuleSet: "lang-rust",
		},

		// Test runners (mutually exclusive)
		{
			Symbol:        "test:jest",
			Patterns:      []Pattern{{Kind: Dependency, Value: "jest"}},
			OutputRuleSet: "test-jest",
		},
		{
			Symbol:        "test:vitest",
			Patterns:      []Pattern{{Kind: Dependency, Value: "vitest"}},
			OutputRuleSet: "test-vitest",
		},
		{
			Symbol:        "test:pytest",
			Patterns:      []Pattern{{Kind: Dependency, Value: "pytest"}},
			OutputRuleSet: "test-pytest",
		},

		// Linters (mutually exclusive)
		{
			Symbol: "lint:eslint",
			Patterns: []Pattern{
				{Kind: Dependency, Value: "eslint"},
				{Kind: FileGlob, Value: ".eslintrc*"},
			},
			OutputRuleSet: "lint-eslint",
		},
		{
			Symbol: "lint:biome",
			Patterns: []Pattern{
				{Kind: Dependency, Value: "@biomejs/biome"},
				{Kind: FileGlob, Value: "biome.json"},
			},
			OutputRuleSet: "lint-biome",
		},
		{
			Symbol:        "lint:oxlint",
			Patterns:      []Pattern{{Kind: Dependency, Value: "oxlint"}},
			OutputRuleSet: "lint-oxlint",
		},

		// Dependency families
		{
			Symbol: "dep:http",
			Patterns: []Pattern{
				{Kind: Dependency, Value: "requests"},
				{Kind: Dependency, Value: "httpx"},
				{Kind: Dependency, Value: "axios"},
				{Kind: Dependency, Value: "got"},
			},
			OutputRuleSet: "dep-http",
		},
		{
			Symbol: "dep:db",
			Patterns: []Pattern{
				{Kind: Dependency, Value: "pg"},
				{Kind: Dependency, Value: "sqlalchemy"},
				{Kind: Dependency, Value: "prisma"},
				{Kind: Dependency, Value: "mongoose"},
				{Kind: Dependency, Value: "gorm.io/gorm"},
			},
			OutputRuleSet: "dep-db",
		},
		{
			Symbol:        "framework:react",
			Patterns:      []Pattern{{Kind: Dependency, Value: "react"}},
			OutputRuleSet: "framework-react",
		},

		// Infrastructure
		{
			Symbol: "infra:docker",
			Patterns: []Pattern{
				{Kind: FileGlob, Value: "Dockerfile"},
				{Kind: FileGlob, Value: "docker-compose.yml"},
			},
			OutputRuleSet: "infra-docker",
		},
		{
			Symbol: "infra:ci",
			Patterns: []Pattern{
				{Kind: FileGlob, Value: ".github/workflows/*.yml"},
				{Kind: FileGlob, Value: ".github/workflows/*.yaml"},
				{Kind: FileGlob, Value: ".gitlab-ci.yml"},
			},
			OutputRuleSet: "infra-ci",
		},
		// Edge runtime needs both the platform config and the framework
		// dependency; either alone is too weak a signal.
		{
			Symbol: "infra:edge",
			Patterns: []Pattern{
				{Kind: ManifestKey, Value: "wrangler.toml"},
				{Kind: Dependency, Value: "hono"},
			},
			OutputRuleSet: "infra-edge",
			Compound:      true,
		},

		// Scale classifier (tiered: large includes medium includes small)
		{
			Symbol:        "scale:small",
			Patterns:      []Pattern{{Kind: UserChoice, Value: "scale=small"}},
			OutputRuleSet: "scale-small",
			Tier:          1,
		},
		{
			Symbol:        "scale:medium",
			Patterns:      []Pattern{{Kind: UserChoice, Value: "scale=medium"}},
			OutputRuleSet: "scale-medium",
			Tier:          2,
		},
		{
			Symbol:        "scale:large",
			Patterns:      []Pattern{{Kind: UserChoice, Value: "scale=large"}},
			OutputRuleSet: "scale-large",
			Tier:          3,
		},

		// Team size classifier (tiered)
		{
			Symbol:        "team:small",
			Patterns:      []Pattern{{Kind: UserChoice, Value: "teamSize=small"}},
			OutputRuleSet: "team-small",
			Tier:          1,
		},
		{
			Symbol:        "team:medium",
			Patterns:      []Pattern{{Kind: UserChoice, Value: "teamSize=medium"}},
			OutputRuleSet: "team-medium",
			Tier:          2,
		},
		{
			Symbol:        "team:large",
			Patterns:      []Pattern{{Kind: UserChoice, Value: "teamSize=large"}},
			OutputRuleSet: "team-large",
			Tier:          3,
		},

		// Data sensitivity classifier (tiered)
		{
			Symbol:        "data:internal",
			Patterns:      []Pattern{{Kind: UserChoice, Value: "dataSensitivity=internal"}},
			OutputRuleSet: "data-internal",
			Tier:          1,
		},
		{
			Symbol:        "data:confidential",
			Patterns:      []Pattern{{Kind: UserChoice, Value: "dataSensitivity=confidential"}},
			OutputRuleSet: "data-confidential",
			Tier:          2,
		},
		{
			Symbol:        "data:regulated",
			Patterns:      []Pattern{{Kind: UserChoice, Value: "dataSensitivity=regulated"}},
			OutputRuleSet: "data-regulated",
			Tier:          3,
		},

		// Compliance classifier (multi-select: selected values union, no
		// inheritance between them)
		{
			Symbol:        "compliance:gdpr",
			Patterns:      []Pattern{{Kind: UserChoice, Value: "compliance=gdpr"}},
			OutputRuleSet: "compliance-gdpr",
		},
		{
			Symbol:        "compliance:hipaa",
			Patterns:      []Pattern{{Kind: UserChoice, Value: "compliance=hipaa"}},
			OutputRuleSet: "compliance-hipaa",
		},
		{
			Symbol:        "compliance:soc2",
			Patterns:      []Pattern{{Kind: UserChoice, Value: "compliance=soc2"}},
			OutputRuleSet: "compliance-soc2",
		},
		{
			Symbol:        "compliance:pci",
			Patterns:      []Pattern{{Kind: UserChoice, Value: "compliance=pci"}},
			OutputRuleSet: "compliance-pci",
		},
	}
}

func builtinRuleSets() []RuleSet {
	return []RuleSet{
		{
			ID: "lang-go",
			Rules: []Rule{
				{ID: "go-error-wrap", Text: "Wrap errors with %w and context at package boundaries"},
				{ID: "go-context-first", Text: "Pass context.Context as the first parameter on blocking operations"},
				{ID: "go-table-tests", Text: "Prefer table-driven tests with subtests"},
			},
		},
		{
			ID: "lang-python",
			Rules: []Rule{
				{ID: "py-typed-api", Text: "Type-annotate public function signatures"},
				{ID: "py-venv", Text: "Pin the interpreter and dependencies in pyproject.toml"},
				{ID: "py-no-bare-except", Text: "Never use bare except clauses"},
			},
		},
		{
			ID: "lang-typescript",
			Rules: []Rule{
				{ID: "ts-strict", Text: "Enable strict mode in tsconfig.json"},
				{ID: "ts-no-any", Text: "Avoid explicit any outside migration shims"},
			},
		},
		{
			ID: "lang-javascript",
			Rules: []Rule{
				{ID: "js-esm", Text: "Use ES modules over CommonJS in new code"},
				{ID: "js-lockfile", Text: "Commit the package lockfile"},
			},
		},
		{
			ID: "lang-rust",
			Rules: []Rule{
				{ID: "rs-clippy", Text: "Keep the build clean under cargo clippy"},
				{ID: "rs-unwrap", Text: "No unwrap/expect outside tests and main"},
			},
		},
		{
			ID: "test-jest",
			Rules: []Rule{
				{ID: "jest-config", Text: "Keep jest config in jest.config.js, not package.json"},
				{ID: "jest-coverage", Text: "Enforce a coverage floor in CI"},
			},
		},
		{
			ID: "test-vitest",
			Rules: []Rule{
				{ID: "vitest-config", Text: "Share vite and vitest config from a single file"},
				{ID: "vitest-coverage", Text: "Enforce a coverage floor in CI"},
			},
		},
		{
			ID: "test-pytest",
			Rules: []Rule{
				{ID: "pytest-fixtures", Text: "Prefer fixtures over setUp-style state"},
				{ID: "pytest-markers", Text: "Register custom markers in pyproject.toml"},
			},
		},
		{
			ID: "lint-eslint",
			Rules: []Rule{
				{ID: "eslint-flat", Text: "Use the flat config format"},
				{ID: "eslint-ci", Text: "Fail CI on lint errors, not warnings"},
			},
		},
		{
			ID: "lint-biome",
			Rules: []Rule{
				{ID: "biome-single-tool", Text: "Disable overlapping formatters when Biome is active"},
			},
		},
		{
			ID: "lint-oxlint",
			Rules: []Rule{
				{ID: "oxlint-baseline", Text: "Track the suppression baseline in version control"},
			},
		},
		{
			ID: "dep-http",
			Rules: []Rule{
				{ID: "http-timeouts", Text: "Set explicit timeouts on every outbound HTTP call"},
				{ID: "http-retry", Text: "Retry idempotent requests with backoff and a retry budget"},
			},
		},
		{
			ID: "dep-db",
			Rules: []Rule{
				{ID: "db-migrations", Text: "Version schema changes as migrations"},
				{ID: "db-pool", Text: "Configure connection pool limits explicitly"},
				{ID: "db-no-string-sql", Text: "Never build SQL by string concatenation"},
			},
		},
		{
			ID: "framework-react",
			Rules: []Rule{
				{ID: "react-keys", Text: "Stable keys on list rendering"},
				{ID: "react-effects", Text: "Keep side effects out of render paths"},
			},
		},
		{
			ID: "infra-docker",
			Rules: []Rule{
				{ID: "docker-pin", Text: "Pin base image digests"},
				{ID: "docker-nonroot", Text: "Run containers as a non-root user"},
			},
		},
		{
			ID: "infra-ci",
			Rules: []Rule{
				{ID: "ci-cache", Text: "Cache dependency downloads between runs"},
				{ID: "ci-required", Text: "Make tests a required check before merge"},
			},
		},
		{
			ID: "infra-edge",
			Rules: []Rule{
				{ID: "edge-cold-start", Text: "Keep bundle size small; edge cold starts are user-visible"},
				{ID: "edge-io", Text: "No filesystem access in edge handlers"},
			},
		},
		{
			ID:     "scale-small",
			Family: "scale",
			Tier:   1,
			Rules: []Rule{
				{ID: "scale-observability", Text: "Log errors with enough context to debug without a debugger"},
			},
		},
		{
			ID:     "scale-medium",
			Family: "scale",
			Tier:   2,
			Rules: []Rule{
				{ID: "scale-slo", Text: "Define availability targets for user-facing paths"},
				{ID: "scale-load", Text: "Load-test before traffic doubles"},
			},
		},
		{
			ID:     "scale-large",
			Family: "scale",
			Tier:   3,
			Rules: []Rule{
				{ID: "scale-shed", Text: "Shed load before saturation; queue depth is a signal, not a buffer"},
				{ID: "scale-regions", Text: "Design for at least one region failure"},
			},
		},
		{
			ID:     "team-small",
			Family: "team",
			Tier:   1,
			Rules: []Rule{
				{ID: "team-review", Text: "Every change gets one review"},
			},
		},
		{
			ID:     "team-medium",
			Family: "team",
			Tier:   2,
			Rules: []Rule{
				{ID: "team-owners", Text: "Declare code ownership per directory"},
			},
		},
		{
			ID:     "team-large",
			Family: "team",
			Tier:   3,
			Rules: []Rule{
				{ID: "team-rfc", Text: "Cross-team interface changes go through a written proposal"},
			},
		},
		{
			ID:     "data-internal",
			Family: "data",
			Tier:   1,
			Rules: []Rule{
				{ID: "data-no-log-pii", Text: "Never log personal data"},
			},
		},
		{
			ID:     "data-confidential",
			Family: "data",
			Tier:   2,
			Rules: []Rule{
				{ID: "data-encrypt-rest", Text: "Encrypt confidential data at rest"},
				{ID: "data-access-audit", Text: "Audit access to confidential stores"},
			},
		},
		{
			ID:     "data-regulated",
			Family: "data",
			Tier:   3,
			Rules: []Rule{
				{ID: "data-retention", Text: "Enforce retention and deletion schedules"},
				{ID: "data-residency", Text: "Pin regulated data to approved regions"},
			},
		},
		{
			ID: "compliance-gdpr",
			Rules: []Rule{
				{ID: "gdpr-erasure", Text: "Support erasure requests end to end"},
				{ID: "gdpr-consent", Text: "Record the lawful basis for each processing purpose"},
			},
		},
		{
			ID: "compliance-hipaa",
			Rules: []Rule{
				{ID: "hipaa-phi", Text: "Segregate PHI storage and access paths"},
			},
		},
		{
			ID: "compliance-soc2",
			Rules: []Rule{
				{ID: "soc2-change", Text: "Keep change management evidence for every production deploy"},
			},
		},
		{
			ID: "compliance-pci",
			Rules: []Rule{
				{ID: "pci-cardholder", Text: "Keep cardholder data out of logs, caches, and analytics"},
			},
		},
	}
}

func builtinConflictGroups() []ConflictGroup {
	return []ConflictGroup{
		{Name: "test-runner", Members: []string{"test:jest", "test:vitest", "test:pytest"}},
		{Name: "linter", Members: []string{"lint:eslint", "lint:biome", "lint:oxlint"}},
	}
}

func builtinTierChains() []TierChain {
	return []TierChain{
		{Family: "scale", Ordered: []string{"scale:small", "scale:medium", "scale:large"}},
		{Family: "team", Ordered: []string{"team:small", "team:medium", "team:large"}},
		{Family: "data", Ordered: []string{"data:internal", "data:confidential", "data:regulated"}},
	}
}
