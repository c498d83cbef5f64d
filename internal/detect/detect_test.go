package detect

import (
	"encoding/json"
	"reflect"
	"testing"

	"rulekit/internal/catalog"
	"rulekit/internal/signal"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Builtin()
	if err != nil {
		t.Fatal(err)
	}
	return cat
}

func sigs(signals ...signal.Signal) *signal.Set {
	return signal.NewSet(signals)
}

func file(rel string) signal.Signal {
	return signal.Signal{Kind: signal.FilePresence, Value: rel, Path: rel}
}

func dep(name, manifest string) signal.Signal {
	return signal.Signal{Kind: signal.ManifestDependency, Value: name, Path: manifest}
}

func choice(v string) signal.Signal {
	return signal.Signal{Kind: signal.UserChoice, Value: v}
}

func findMatch(matches []Match, symbol string) (Match, bool) {
	for _, m := range matches {
		if m.Trigger.Symbol == symbol {
			return m, true
		}
	}
	return Match{}, false
}

func TestEmptyInputsYieldEmptyMatches(t *testing.T) {
	cat := testCatalog(t)

	matches, err := Detect(sigs(), cat)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("empty signals should yield no matches, got %d", len(matches))
	}

	empty, err := catalog.New(nil, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	matches, err = Detect(sigs(file("go.mod")), empty)
	if err != nil {
		t.Fatalf("Detect with empty catalog: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("empty catalog should yield no matches, got %d", len(matches))
	}
}

func TestPythonProjectScenario(t *testing.T) {
	// pyproject.toml present + requests dependency
	cat := testCatalog(t)
	set := sigs(
		file("pyproject.toml"),
		dep("requests", "pyproject.toml"),
	)

	matches, err := Detect(set, cat)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}

	if m, ok := findMatch(matches, "lang:python"); !ok || !m.Resolved {
		t.Error("lang:python should match and resolve")
	}
	if m, ok := findMatch(matches, "dep:http"); !ok || !m.Resolved {
		t.Error("dep:http should match and resolve")
	}
}

func TestLockfileRaisesConfidence(t *testing.T) {
	cat := testCatalog(t)

	without, err := Detect(sigs(file("main.go")), cat)
	if err != nil {
		t.Fatal(err)
	}
	with, err := Detect(sigs(file("main.go"), file("go.sum")), cat)
	if err != nil {
		t.Fatal(err)
	}

	base, _ := findMatch(without, "lang:go")
	boosted, _ := findMatch(with, "lang:go")
	if boosted.Confidence <= base.Confidence {
		t.Errorf("lockfile should raise confidence: %v <= %v", boosted.Confidence, base.Confidence)
	}
	if boosted.Confidence != BaseConfidence+LockfileBonus {
		t.Errorf("confidence = %v, want %v", boosted.Confidence, BaseConfidence+LockfileBonus)
	}
}

func TestExcludedPathOnlyEvidenceDropsMatch(t *testing.T) {
	cat := testCatalog(t)

	// Rust sources only under vendor/: penalty drops below threshold
	matches, err := Detect(sigs(file("vendor/lib.rs")), cat)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := findMatch(matches, "lang:rust"); ok {
		t.Error("vendor-only evidence should fall below the activation threshold")
	}

	// Same file plus a real source file: match survives at full confidence
	matches, err = Detect(sigs(file("vendor/lib.rs"), file("src/main.rs")), cat)
	if err != nil {
		t.Fatal(err)
	}
	m, ok := findMatch(matches, "lang:rust")
	if !ok {
		t.Fatal("mixed evidence should still match")
	}
	if m.Confidence != BaseConfidence {
		t.Errorf("confidence = %v, want %v", m.Confidence, BaseConfidence)
	}
}

func TestCompoundTriggerRequiresAllPatterns(t *testing.T) {
	cat := testCatalog(t)

	// Only the config file: no infra:edge
	matches, err := Detect(sigs(file("wrangler.toml")), cat)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := findMatch(matches, "infra:edge"); ok {
		t.Error("compound trigger must not match on config alone")
	}

	// Config + framework dependency: matches
	matches, err = Detect(sigs(file("wrangler.toml"), dep("hono", "package.json")), cat)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := findMatch(matches, "infra:edge"); !ok {
		t.Error("compound trigger should match when all patterns hit")
	}
}

func TestConflictHigherConfidenceWins(t *testing.T) {
	// Synthetic two-member group where one member carries lockfile evidence:
	// confidences 1.25 vs 1.0, and the later-declared trigger wins on score.
	triggers := []catalog.Trigger{
		{
			Symbol:        "tool:first",
			Patterns:      []catalog.Pattern{{Kind: catalog.Dependency, Value: "first"}},
			OutputRuleSet: "rs-first",
		},
		{
			Symbol: "tool:second",
			Patterns: []catalog.Pattern{
				{Kind: catalog.Dependency, Value: "second"},
				{Kind: catalog.FileGlob, Value: "second.lock", Lockfile: true},
			},
			OutputRuleSet: "rs-second",
		},
	}
	ruleSets := []catalog.RuleSet{
		{ID: "rs-first", Rules: []catalog.Rule{{ID: "f1", Text: "f"}}},
		{ID: "rs-second", Rules: []catalog.Rule{{ID: "s1", Text: "s"}}},
	}
	groups := []catalog.ConflictGroup{{Name: "tool", Members: []string{"tool:first", "tool:second"}}}

	cat, err := catalog.New(triggers, ruleSets, groups, nil)
	if err != nil {
		t.Fatal(err)
	}

	set := sigs(
		dep("first", "package.json"),
		dep("second", "package.json"),
		file("second.lock"),
	)
	matches, err := Detect(set, cat)
	if err != nil {
		t.Fatal(err)
	}

	second, ok := findMatch(matches, "tool:second")
	if !ok || !second.Resolved {
		t.Error("higher-confidence match should resolve")
	}
	if second.Confidence != BaseConfidence+LockfileBonus {
		t.Errorf("confidence = %v, want %v", second.Confidence, BaseConfidence+LockfileBonus)
	}
	first, ok := findMatch(matches, "tool:first")
	if !ok {
		t.Fatal("losing match should remain present")
	}
	if first.Resolved {
		t.Error("lower-confidence match should be demoted")
	}
}

func TestExcludedPathDependencyDropped(t *testing.T) {
	cat := testCatalog(t)

	// jest dependency appears only in an examples manifest
	matches, err := Detect(sigs(dep("jest", "examples/demo/package.json")), cat)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := findMatch(matches, "test:jest"); ok {
		t.Error("example-only dependency evidence should fall below the threshold")
	}
}

func TestConflictTieBrokenByDeclarationOrder(t *testing.T) {
	cat := testCatalog(t)

	// Both at base confidence: jest declared first, jest wins
	set := sigs(
		dep("jest", "package.json"),
		dep("vitest", "package.json"),
	)
	matches, err := Detect(set, cat)
	if err != nil {
		t.Fatal(err)
	}

	jest, ok := findMatch(matches, "test:jest")
	if !ok || !jest.Resolved {
		t.Error("jest (declared first) should win the tie")
	}
	vitest, ok := findMatch(matches, "test:vitest")
	if !ok {
		t.Fatal("losing match should remain present for auditability")
	}
	if vitest.Resolved {
		t.Error("vitest should be demoted to resolved=false")
	}
}

func TestLinterConflictGroup(t *testing.T) {
	cat := testCatalog(t)

	set := sigs(
		dep("eslint", "package.json"),
		dep("@biomejs/biome", "package.json"),
		dep("oxlint", "package.json"),
	)
	matches, err := Detect(set, cat)
	if err != nil {
		t.Fatal(err)
	}

	resolved := 0
	for _, sym := range []string{"lint:eslint", "lint:biome", "lint:oxlint"} {
		m, ok := findMatch(matches, sym)
		if !ok {
			t.Fatalf("%s should match", sym)
		}
		if m.Resolved {
			resolved++
		}
	}
	if resolved != 1 {
		t.Errorf("exactly one linter should resolve, got %d", resolved)
	}
}

func TestUserChoiceMatching(t *testing.T) {
	cat := testCatalog(t)

	matches, err := Detect(sigs(choice("scale=large"), choice("compliance=gdpr")), cat)
	if err != nil {
		t.Fatal(err)
	}
	if m, ok := findMatch(matches, "scale:large"); !ok || !m.Resolved {
		t.Error("scale:large should match from the classifier answer")
	}
	if _, ok := findMatch(matches, "scale:small"); ok {
		t.Error("scale:small should not match scale=large")
	}
	if m, ok := findMatch(matches, "compliance:gdpr"); !ok || !m.Resolved {
		t.Error("compliance:gdpr should match")
	}
}

func TestDetectDeterministic(t *testing.T) {
	cat := testCatalog(t)
	set := sigs(
		file("go.mod"), file("go.sum"), file("main.go"),
		file("Dockerfile"), file(".github/workflows/ci.yml"),
		dep("github.com/spf13/cobra", "go.mod"),
		choice("scale=medium"), choice("teamSize=large"),
	)

	first, err := Detect(set, cat)
	if err != nil {
		t.Fatal(err)
	}
	firstJSON, _ := json.Marshal(first)

	for i := 0; i < 10; i++ {
		again, err := Detect(set, cat)
		if err != nil {
			t.Fatal(err)
		}
		againJSON, _ := json.Marshal(again)
		if !reflect.DeepEqual(firstJSON, againJSON) {
			t.Fatal("Detect output is not byte-identical across runs")
		}
	}
}
