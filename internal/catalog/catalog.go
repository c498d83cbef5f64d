package catalog

import (
	"fmt"

	"rulekit/internal/errors"
)

// Catalog is the full trigger/rule-set registry for a run. Build it with New
// (or Builtin + overlay) and treat it as immutable afterwards; it is safe to
// share across concurrent analyzers.
type Catalog struct {
	Triggers       []Trigger
	RuleSets       []RuleSet
	ConflictGroups []ConflictGroup
	TierChains     []TierChain

	triggerBySymbol map[string]*Trigger
	ruleSetByID     map[string]*RuleSet
	groupBySymbol   map[string]*ConflictGroup
	chainByFamily   map[string]*TierChain
}

// New builds a catalog from its parts and validates it. Validation failures
// are ConfigurationError: a malformed catalog aborts the run before any
// analysis starts.
func New(triggers []Trigger, ruleSets []RuleSet, groups []ConflictGroup, chains []TierChain) (*Catalog, error) {
	c := &Catalog{
		Triggers:       triggers,
		RuleSets:       ruleSets,
		ConflictGroups: groups,
		TierChains:     chains,
	}
	if err := c.buildIndexes(); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) buildIndexes() error {
	c.triggerBySymbol = make(map[string]*Trigger, len(c.Triggers))
	for i := range c.Triggers {
		t := &c.Triggers[i]
		if _, dup := c.triggerBySymbol[t.Symbol]; dup {
			return errors.Newf(errors.ConfigurationError,
				"duplicate trigger symbol %q", t.Symbol)
		}
		c.triggerBySymbol[t.Symbol] = t
	}

	c.ruleSetByID = make(map[string]*RuleSet, len(c.RuleSets))
	for i := range c.RuleSets {
		rs := &c.RuleSets[i]
		if _, dup := c.ruleSetByID[rs.ID]; dup {
			return errors.Newf(errors.ConfigurationError,
				"duplicate rule set id %q", rs.ID)
		}
		c.ruleSetByID[rs.ID] = rs
	}

	c.groupBySymbol = make(map[string]*ConflictGroup)
	for i := range c.ConflictGroups {
		g := &c.ConflictGroups[i]
		for _, member := range g.Members {
			if prev, dup := c.groupBySymbol[member]; dup {
				return errors.Newf(errors.ConfigurationError,
					"trigger %q belongs to conflict groups %q and %q", member, prev.Name, g.Name)
			}
			c.groupBySymbol[member] = g
		}
	}

	c.chainByFamily = make(map[string]*TierChain, len(c.TierChains))
	for i := range c.TierChains {
		ch := &c.TierChains[i]
		if _, dup := c.chainByFamily[ch.Family]; dup {
			return errors.Newf(errors.ConfigurationError,
				"duplicate tier chain family %q", ch.Family)
		}
		c.chainByFamily[ch.Family] = ch
	}

	return nil
}

func (c *Catalog) validate() error {
	for i := range c.Triggers {
		t := &c.Triggers[i]
		if len(t.Patterns) == 0 {
			return errors.Newf(errors.ConfigurationError,
				"trigger %q has no detection patterns", t.Symbol)
		}
		if t.OutputRuleSet == "" {
			return errors.Newf(errors.ConfigurationError,
				"trigger %q has no output rule set", t.Symbol)
		}
		if _, ok := c.ruleSetByID[t.OutputRuleSet]; !ok {
			return errors.Newf(errors.ConfigurationError,
				"trigger %q references unknown rule set %q", t.Symbol, t.OutputRuleSet)
		}
	}

	for _, g := range c.ConflictGroups {
		if len(g.Members) < 2 {
			return errors.Newf(errors.ConfigurationError,
				"conflict group %q needs at least two members", g.Name)
		}
		for _, member := range g.Members {
			if _, ok := c.triggerBySymbol[member]; !ok {
				return errors.Newf(errors.ConfigurationError,
					"conflict group %q references unknown trigger %q", g.Name, member)
			}
		}
	}

	for _, ch := range c.TierChains {
		prevTier := 0
		for _, symbol := range ch.Ordered {
			t, ok := c.triggerBySymbol[symbol]
			if !ok {
				return errors.Newf(errors.ConfigurationError,
					"tier chain %q references unknown trigger %q", ch.Family, symbol)
			}
			if t.Tier <= prevTier {
				return errors.Newf(errors.ConfigurationError,
					"tier chain %q is not strictly increasing at %q (tier %d after %d)",
					ch.Family, symbol, t.Tier, prevTier)
			}
			prevTier = t.Tier
		}
	}

	return nil
}

// Trigger returns the trigger with the given symbol, if present.
func (c *Catalog) Trigger(symbol string) (*Trigger, bool) {
	t, ok := c.triggerBySymbol[symbol]
	return t, ok
}

// RuleSet returns the rule set with the given id, if present.
func (c *Catalog) RuleSet(id string) (*RuleSet, bool) {
	rs, ok := c.ruleSetByID[id]
	return rs, ok
}

// GroupOf returns the conflict group a trigger belongs to, if any.
func (c *Catalog) GroupOf(symbol string) (*ConflictGroup, bool) {
	g, ok := c.groupBySymbol[symbol]
	return g, ok
}

// ChainOf returns the tier chain for a family, if declared.
func (c *Catalog) ChainOf(family string) (*TierChain, bool) {
	ch, ok := c.chainByFamily[family]
	return ch, ok
}

// ChainContaining returns the tier chain that lists the given trigger symbol.
func (c *Catalog) ChainContaining(symbol string) (*TierChain, bool) {
	for i := range c.TierChains {
		for _, member := range c.TierChains[i].Ordered {
			if member == symbol {
				return &c.TierChains[i], true
			}
		}
	}
	return nil, false
}

// DeclarationIndex returns the position of a trigger in catalog declaration
// order. Used as the deterministic tie-break in conflict resolution.
func (c *Catalog) DeclarationIndex(symbol string) int {
	for i := range c.Triggers {
		if c.Triggers[i].Symbol == symbol {
			return i
		}
	}
	return -1
}

// Summary returns a one-line description of catalog size, for logs.
func (c *Catalog) Summary() string {
	return fmt.Sprintf("%d triggers, %d rule sets, %d conflict groups, %d tier chains",
		len(c.Triggers), len(c.RuleSets), len(c.ConflictGroups), len(c.TierChains))
}
