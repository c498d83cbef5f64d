package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rulekit/internal/errors"
)

func validRuleSets() []RuleSet {
	return []RuleSet{
		{ID: "rs-a", Rules: []Rule{{ID: "a1", Text: "rule a1"}}},
		{ID: "rs-b", Rules: []Rule{{ID: "b1", Text: "rule b1"}}},
	}
}

func TestBuiltinIsValid(t *testing.T) {
	c, err := Builtin()
	if err != nil {
		t.Fatalf("builtin catalog must validate: %v", err)
	}
	if len(c.Triggers) == 0 || len(c.RuleSets) == 0 {
		t.Fatal("builtin catalog should not be empty")
	}

	// Every trigger's output rule set must resolve
	for _, trig := range c.Triggers {
		if _, ok := c.RuleSet(trig.OutputRuleSet); !ok {
			t.Errorf("trigger %s references missing rule set %s", trig.Symbol, trig.OutputRuleSet)
		}
	}
}

func TestDuplicateSymbolRejected(t *testing.T) {
	triggers := []Trigger{
		{Symbol: "x", Patterns: []Pattern{{Kind: FileGlob, Value: "a"}}, OutputRuleSet: "rs-a"},
		{Symbol: "x", Patterns: []Pattern{{Kind: FileGlob, Value: "b"}}, OutputRuleSet: "rs-b"},
	}
	_, err := New(triggers, validRuleSets(), nil, nil)
	if err == nil {
		t.Fatal("duplicate symbol should be rejected")
	}
	if errors.CodeOf(err) != errors.ConfigurationError {
		t.Errorf("code = %s, want CONFIGURATION_ERROR", errors.CodeOf(err))
	}
}

func TestTriggerWithoutPatternsRejected(t *testing.T) {
	triggers := []Trigger{{Symbol: "x", OutputRuleSet: "rs-a"}}
	if _, err := New(triggers, validRuleSets(), nil, nil); err == nil {
		t.Fatal("trigger without patterns should be rejected")
	}
}

func TestUnknownRuleSetRejected(t *testing.T) {
	triggers := []Trigger{
		{Symbol: "x", Patterns: []Pattern{{Kind: FileGlob, Value: "a"}}, OutputRuleSet: "missing"},
	}
	if _, err := New(triggers, validRuleSets(), nil, nil); err == nil {
		t.Fatal("unknown rule set reference should be rejected")
	}
}

func TestBrokenTierChainRejected(t *testing.T) {
	triggers := []Trigger{
		{Symbol: "f:low", Patterns: []Pattern{{Kind: UserChoice, Value: "f=low"}}, OutputRuleSet: "rs-a", Tier: 2},
		{Symbol: "f:high", Patterns: []Pattern{{Kind: UserChoice, Value: "f=high"}}, OutputRuleSet: "rs-b", Tier: 2},
	}
	chains := []TierChain{{Family: "f", Ordered: []string{"f:low", "f:high"}}}

	_, err := New(triggers, validRuleSets(), nil, chains)
	if err == nil {
		t.Fatal("non-increasing tier chain should be rejected")
	}
	if !strings.Contains(err.Error(), "strictly increasing") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestConflictGroupMemberMustExist(t *testing.T) {
	triggers := []Trigger{
		{Symbol: "a", Patterns: []Pattern{{Kind: Dependency, Value: "a"}}, OutputRuleSet: "rs-a"},
	}
	groups := []ConflictGroup{{Name: "g", Members: []string{"a", "ghost"}}}

	if _, err := New(triggers, validRuleSets(), groups, nil); err == nil {
		t.Fatal("conflict group with unknown member should be rejected")
	}
}

func TestTriggerInTwoConflictGroupsRejected(t *testing.T) {
	triggers := []Trigger{
		{Symbol: "a", Patterns: []Pattern{{Kind: Dependency, Value: "a"}}, OutputRuleSet: "rs-a"},
		{Symbol: "b", Patterns: []Pattern{{Kind: Dependency, Value: "b"}}, OutputRuleSet: "rs-a"},
		{Symbol: "c", Patterns: []Pattern{{Kind: Dependency, Value: "c"}}, OutputRuleSet: "rs-b"},
	}
	groups := []ConflictGroup{
		{Name: "g1", Members: []string{"a", "b"}},
		{Name: "g2", Members: []string{"b", "c"}},
	}

	if _, err := New(triggers, validRuleSets(), groups, nil); err == nil {
		t.Fatal("overlapping conflict groups should be rejected")
	}
}

func TestChainContaining(t *testing.T) {
	c, err := Builtin()
	if err != nil {
		t.Fatal(err)
	}

	chain, ok := c.ChainContaining("scale:medium")
	if !ok {
		t.Fatal("scale:medium should be in a tier chain")
	}
	if chain.Family != "scale" {
		t.Errorf("family = %s, want scale", chain.Family)
	}

	if _, ok := c.ChainContaining("lang:go"); ok {
		t.Error("lang:go is standalone, not in a chain")
	}
}

func TestDeclarationIndexOrder(t *testing.T) {
	c, err := Builtin()
	if err != nil {
		t.Fatal(err)
	}

	// Jest is declared before Vitest; declaration order is the conflict
	// tie-break, so this ordering is load-bearing.
	if c.DeclarationIndex("test:jest") >= c.DeclarationIndex("test:vitest") {
		t.Error("test:jest must precede test:vitest in declaration order")
	}
	if c.DeclarationIndex("ghost") != -1 {
		t.Error("unknown symbol should have index -1")
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	doc := `
triggers:
  - symbol: "org:internal-sdk"
    patterns:
      - kind: dependency
        value: "@acme/sdk"
    outputRuleSet: "org-sdk"
ruleSets:
  - id: "org-sdk"
    rules:
      - id: "sdk-version"
        text: "Stay within one minor version of the SDK"
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := c.Trigger("org:internal-sdk"); !ok {
		t.Error("overlay trigger not loaded")
	}
	if _, ok := c.RuleSet("org-sdk"); !ok {
		t.Error("overlay rule set not loaded")
	}

	// Builtin content still present
	if _, ok := c.Trigger("lang:go"); !ok {
		t.Error("builtin trigger lost after overlay")
	}
}

func TestLoadOverlayDuplicateSymbolFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	doc := `
triggers:
  - symbol: "lang:go"
    patterns:
      - kind: file-glob
        value: "*.go"
    outputRuleSet: "lang-go"
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("overlay duplicating a builtin symbol should fail validation")
	}
}

func TestLoadMissingOverlayUsesBuiltin(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing overlay should not be fatal: %v", err)
	}
	if _, ok := c.Trigger("lang:python"); !ok {
		t.Error("builtin catalog expected")
	}
}
