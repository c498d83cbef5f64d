package rules

import (
	"encoding/json"
	"testing"

	"rulekit/internal/catalog"
	"rulekit/internal/detect"
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

func matchFor(t *testing.T, cat *catalog.Catalog, symbol string) detect.Match {
	t.Helper()
	trig, ok := cat.Trigger(symbol)
	if !ok {
		t.Fatalf("unknown trigger %s", symbol)
	}
	return detect.Match{Trigger: *trig, Confidence: 1.0, Resolved: true}
}

func TestResolveStandaloneTrigger(t *testing.T) {
	cat := testCatalog(t)

	cfg, err := Resolve([]detect.Match{matchFor(t, cat, "lang:python")}, cat)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.RuleSets) != 1 || cfg.RuleSets[0].ID != "lang-python" {
		t.Errorf("rule sets = %v, want [lang-python]", cfg.RuleSetIDs())
	}
	if !cfg.HasRule("py-typed-api") {
		t.Error("python rules should be active")
	}
}

func TestResolvePythonHTTPScenario(t *testing.T) {
	// python + http dep, no duplicates
	cat := testCatalog(t)
	matches := []detect.Match{
		matchFor(t, cat, "lang:python"),
		matchFor(t, cat, "dep:http"),
	}

	cfg, err := Resolve(matches, cat)
	if err != nil {
		t.Fatal(err)
	}
	ids := cfg.RuleSetIDs()
	if len(ids) != 2 || ids[0] != "lang-python" || ids[1] != "dep-http" {
		t.Errorf("rule sets = %v, want [lang-python dep-http]", ids)
	}

	seen := map[string]bool{}
	for _, r := range cfg.ActiveRules {
		if seen[r.ID] {
			t.Errorf("duplicate rule %s in active rules", r.ID)
		}
		seen[r.ID] = true
	}
}

func TestTierInheritance(t *testing.T) {
	cat := testCatalog(t)

	small, _ := Resolve([]detect.Match{matchFor(t, cat, "scale:small")}, cat)
	medium, _ := Resolve([]detect.Match{matchFor(t, cat, "scale:medium")}, cat)
	large, _ := Resolve([]detect.Match{matchFor(t, cat, "scale:large")}, cat)

	// Supersets: large ⊇ medium ⊇ small
	assertSuperset(t, medium, small)
	assertSuperset(t, large, medium)

	// Large expands to all three tiers, ascending
	ids := large.RuleSetIDs()
	want := []string{"scale-small", "scale-medium", "scale-large"}
	if len(ids) != len(want) {
		t.Fatalf("rule sets = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("rule sets = %v, want %v (ascending tier order)", ids, want)
			break
		}
	}

	// No duplicated rule entries in the union
	seen := map[string]bool{}
	for _, r := range large.ActiveRules {
		if seen[r.ID] {
			t.Errorf("rule %s duplicated in tier union", r.ID)
		}
		seen[r.ID] = true
	}
}

func assertSuperset(t *testing.T, big, small *ResolvedConfig) {
	t.Helper()
	for _, r := range small.ActiveRules {
		if !big.HasRule(r.ID) {
			t.Errorf("higher tier missing inherited rule %s", r.ID)
		}
	}
}

func TestMultiSelectComplianceUnions(t *testing.T) {
	cat := testCatalog(t)
	matches := []detect.Match{
		matchFor(t, cat, "compliance:gdpr"),
		matchFor(t, cat, "compliance:soc2"),
	}

	cfg, err := Resolve(matches, cat)
	if err != nil {
		t.Fatal(err)
	}
	ids := cfg.RuleSetIDs()
	if len(ids) != 2 {
		t.Fatalf("rule sets = %v, want two compliance sets, no inheritance", ids)
	}
	if !cfg.HasRule("gdpr-erasure") || !cfg.HasRule("soc2-change") {
		t.Error("both selected compliance rule sets should contribute")
	}
	// hipaa was not selected and must not appear
	if cfg.HasRule("hipaa-phi") {
		t.Error("unselected compliance set leaked into the union")
	}
}

func TestUnresolvedMatchesExcluded(t *testing.T) {
	cat := testCatalog(t)
	jest := matchFor(t, cat, "test:jest")
	vitest := matchFor(t, cat, "test:vitest")
	vitest.Resolved = false

	cfg, err := Resolve([]detect.Match{jest, vitest}, cat)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.HasRule("jest-config") {
		t.Error("resolved jest rules should be active")
	}
	if cfg.HasRule("vitest-config") {
		t.Error("demoted vitest rules must not be active")
	}
}

func TestResolveDeterministic(t *testing.T) {
	cat := testCatalog(t)
	matches := []detect.Match{
		matchFor(t, cat, "lang:go"),
		matchFor(t, cat, "scale:large"),
		matchFor(t, cat, "infra:docker"),
		matchFor(t, cat, "compliance:pci"),
	}

	first, err := Resolve(matches, cat)
	if err != nil {
		t.Fatal(err)
	}
	firstJSON, _ := json.Marshal(first)

	for i := 0; i < 10; i++ {
		again, _ := Resolve(matches, cat)
		againJSON, _ := json.Marshal(again)
		if string(firstJSON) != string(againJSON) {
			t.Fatal("Resolve output is not byte-identical across runs")
		}
	}
}

func TestExtractGuidelines(t *testing.T) {
	set := signal.NewSet([]signal.Signal{
		{Kind: signal.UserChoice, Value: "maturity=stable"},
		{Kind: signal.UserChoice, Value: "priority=quality"},
		{Kind: signal.UserChoice, Value: "scale=large"},
		{Kind: signal.FilePresence, Value: "maturity=fake", Path: "maturity=fake"},
	})

	g := ExtractGuidelines(set)
	if g["maturity"] != "stable" || g["priority"] != "quality" {
		t.Errorf("guidelines = %v", g)
	}
	if _, ok := g["scale"]; ok {
		t.Error("scale is a tiered classifier, not a guideline")
	}
	if len(g) != 2 {
		t.Errorf("guidelines = %v, want exactly 2 entries", g)
	}
}

func TestGuidelinesNeverActivateRuleSets(t *testing.T) {
	cat := testCatalog(t)
	set := signal.NewSet([]signal.Signal{
		{Kind: signal.UserChoice, Value: "maturity=prototype"},
	})

	cfg, err := ResolveWithGuidelines(nil, cat, set)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.RuleSets) != 0 {
		t.Errorf("guideline-only input activated rule sets: %v", cfg.RuleSetIDs())
	}
	if cfg.Guidelines["maturity"] != "prototype" {
		t.Error("guideline scalar should be recorded")
	}
}
