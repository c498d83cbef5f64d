// Package rules expands resolved matches into the active rule configuration:
// an inheritance-aware, deduplicated set of rule sets and the rule entries
// they contain.
package rules

import (
	"strings"

	"rulekit/internal/catalog"
	"rulekit/internal/detect"
	"rulekit/internal/signal"
)

// ResolvedConfig is the active rule configuration for a run. Ordering is
// stable for a given match list, so two runs over the same project can be
// diffed textually.
type ResolvedConfig struct {
	// RuleSets in activation order, tier-expanded and deduplicated.
	RuleSets []catalog.RuleSet `json:"ruleSets"`
	// ActiveRules is the flattened, deduplicated rule list in first-seen order.
	ActiveRules []catalog.Rule `json:"activeRules"`
	// Guidelines are scalar classifier values (maturity, breaking, priority)
	// that inform analyzers but never activate rule sets.
	Guidelines map[string]string `json:"guidelines,omitempty"`
}

// guidelineQuestions are classifier questions that never produce a rule set.
var guidelineQuestions = []string{"maturity", "breaking", "priority"}

// Resolve expands resolved matches into the active rule configuration.
//
// Tiered families expand to the cumulative union of all tiers at or below the
// matched tier (large includes medium includes small), folded in ascending
// tier order. Multi-select classifiers are plain unions with no inheritance.
// Duplicate rule entries are dropped keeping first-seen order.
func Resolve(matches []detect.Match, cat *catalog.Catalog) (*ResolvedConfig, error) {
	cfg := &ResolvedConfig{Guidelines: map[string]string{}}

	seenRuleSet := map[string]bool{}
	seenRule := map[string]bool{}

	addRuleSet := func(id string) {
		if seenRuleSet[id] {
			return
		}
		rs, ok := cat.RuleSet(id)
		if !ok {
			// Catalog validation guarantees the reference; a miss here means
			// the catalog was mutated after load. Skip rather than panic:
			// detectors only hand us catalog-backed matches.
			return
		}
		seenRuleSet[id] = true
		cfg.RuleSets = append(cfg.RuleSets, *rs)
		for _, rule := range rs.Rules {
			if seenRule[rule.ID] {
				continue
			}
			seenRule[rule.ID] = true
			cfg.ActiveRules = append(cfg.ActiveRules, rule)
		}
	}

	for _, m := range matches {
		if !m.Resolved {
			continue
		}

		chain, tiered := cat.ChainContaining(m.Trigger.Symbol)
		if !tiered {
			addRuleSet(m.Trigger.OutputRuleSet)
			continue
		}

		// Cumulative expansion: every chain member at or below the matched
		// tier, ascending, so lower-tier rules come first.
		for _, symbol := range chain.Ordered {
			member, ok := cat.Trigger(symbol)
			if !ok {
				continue
			}
			if member.Tier > m.Trigger.Tier {
				break
			}
			addRuleSet(member.OutputRuleSet)
		}
	}

	return cfg, nil
}

// ExtractGuidelines pulls guideline-only classifier answers out of the signal
// set. They are recorded on the resolved config as informational scalars.
func ExtractGuidelines(set *signal.Set) map[string]string {
	guidelines := map[string]string{}
	for _, sig := range set.All() {
		if sig.Kind != signal.UserChoice {
			continue
		}
		for _, q := range guidelineQuestions {
			prefix := q + "="
			if strings.HasPrefix(sig.Value, prefix) {
				guidelines[q] = strings.TrimPrefix(sig.Value, prefix)
			}
		}
	}
	return guidelines
}

// ResolveWithGuidelines is Resolve plus guideline extraction in one call.
func ResolveWithGuidelines(matches []detect.Match, cat *catalog.Catalog, set *signal.Set) (*ResolvedConfig, error) {
	cfg, err := Resolve(matches, cat)
	if err != nil {
		return nil, err
	}
	cfg.Guidelines = ExtractGuidelines(set)
	return cfg, nil
}

// RuleSetIDs returns the active rule-set ids in activation order.
func (rc *ResolvedConfig) RuleSetIDs() []string {
	ids := make([]string, 0, len(rc.RuleSets))
	for _, rs := range rc.RuleSets {
		ids = append(ids, rs.ID)
	}
	return ids
}

// HasRule reports whether a rule id is active.
func (rc *ResolvedConfig) HasRule(id string) bool {
	for _, r := range rc.ActiveRules {
		if r.ID == id {
			return true
		}
	}
	return false
}
