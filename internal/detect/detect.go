// Package detect evaluates the trigger catalog against a signal snapshot and
// produces matches with confidence scores, resolving conflicts between
// mutually exclusive triggers.
package detect

import (
	"path"
	"strings"

	"rulekit/internal/catalog"
	"rulekit/internal/errors"
	"rulekit/internal/signal"
)

// Confidence constants. The direction is fixed by the scoring model: lockfile
// evidence strengthens a match, evidence found only under excluded paths
// weakens it below the activation threshold when nothing else supports it.
const (
	// BaseConfidence is the starting score for any matched trigger.
	BaseConfidence = 1.0
	// LockfileBonus is added when lockfile evidence supports the match.
	LockfileBonus = 0.25
	// ExcludedPathPenalty is subtracted when every piece of path-bearing
	// evidence sits under an excluded prefix.
	ExcludedPathPenalty = 0.5
	// ActivationThreshold drops matches whose score falls below it.
	ActivationThreshold = 0.6
)

// excludedPrefixes are path prefixes whose evidence is considered weak:
// code under these trees describes fixtures or third parties, not the project.
var excludedPrefixes = []string{
	"test/", "tests/", "__tests__/", "example/", "examples/",
	"vendor/", "node_modules/", "testdata/", "fixtures/",
}

// Match is the result of evaluating one trigger against the signal set.
type Match struct {
	Trigger    catalog.Trigger `json:"trigger"`
	Confidence float64         `json:"confidence"`
	// Resolved is false when this match lost to a competing trigger in its
	// conflict group. Losing matches are kept for auditability but excluded
	// from rule resolution.
	Resolved bool            `json:"resolved"`
	Evidence []signal.Signal `json:"evidence,omitempty"`
}

// Detect evaluates every catalog trigger against the signal set. Output is
// deterministic for a given (signals, catalog) pair: triggers are evaluated
// in catalog declaration order and conflict ties break toward the earlier
// declaration. An empty catalog or signal set yields an empty match list.
func Detect(set *signal.Set, cat *catalog.Catalog) ([]Match, error) {
	var matches []Match

	for _, trig := range cat.Triggers {
		m, ok := evaluate(trig, set)
		if !ok {
			continue
		}
		if m.Confidence < ActivationThreshold {
			continue
		}
		matches = append(matches, m)
	}

	matches = resolveConflicts(matches, cat)

	if err := verifyResolution(matches, cat); err != nil {
		return nil, err
	}
	return matches, nil
}

// evaluate tests one trigger: OR across patterns, or AND when compound.
func evaluate(trig catalog.Trigger, set *signal.Set) (Match, bool) {
	var evidence []signal.Signal
	lockfileHit := false
	patternsHit := 0

	for _, pat := range trig.Patterns {
		hits := matchPattern(pat, set)
		if len(hits) == 0 {
			continue
		}
		patternsHit++
		evidence = append(evidence, hits...)
		if pat.Lockfile {
			lockfileHit = true
		}
	}

	if trig.Compound {
		if patternsHit < len(trig.Patterns) {
			return Match{}, false
		}
	} else if patternsHit == 0 {
		return Match{}, false
	}

	confidence := BaseConfidence
	if lockfileHit {
		confidence += LockfileBonus
	}
	if onlyExcludedEvidence(evidence) {
		confidence -= ExcludedPathPenalty
	}

	return Match{
		Trigger:    trig,
		Confidence: confidence,
		Resolved:   true,
		Evidence:   evidence,
	}, true
}

func matchPattern(pat catalog.Pattern, set *signal.Set) []signal.Signal {
	var hits []signal.Signal
	for _, sig := range set.All() {
		if patternMatches(pat, sig) {
			hits = append(hits, sig)
		}
	}
	return hits
}

func patternMatches(pat catalog.Pattern, sig signal.Signal) bool {
	switch pat.Kind {
	case catalog.FileGlob:
		if sig.Kind != signal.FilePresence {
			return false
		}
		if strings.Contains(pat.Value, "/") {
			ok, err := path.Match(pat.Value, sig.Value)
			return err == nil && ok
		}
		ok, err := path.Match(pat.Value, path.Base(sig.Value))
		return err == nil && ok
	case catalog.ManifestKey:
		// Basename match so nested manifests (packages/app/package.json)
		// still count as evidence.
		return sig.Kind == signal.FilePresence && path.Base(sig.Value) == pat.Value
	case catalog.Dependency:
		return sig.Kind == signal.ManifestDependency && sig.Value == pat.Value
	case catalog.UserChoice:
		return sig.Kind == signal.UserChoice && sig.Value == pat.Value
	}
	return false
}

// onlyExcludedEvidence reports whether every path-bearing signal sits under
// an excluded prefix. User choices carry no path and do not count either way.
func onlyExcludedEvidence(evidence []signal.Signal) bool {
	pathBearing := 0
	for _, sig := range evidence {
		if sig.Path == "" {
			continue
		}
		pathBearing++
		if !underExcludedPrefix(sig.Path) {
			return false
		}
	}
	return pathBearing > 0
}

func underExcludedPrefix(rel string) bool {
	for _, prefix := range excludedPrefixes {
		if strings.HasPrefix(rel, prefix) || strings.Contains(rel, "/"+prefix) {
			return true
		}
	}
	return false
}

// resolveConflicts demotes all but the strongest match in each conflict
// group. Ties break toward the trigger declared earlier in the catalog.
func resolveConflicts(matches []Match, cat *catalog.Catalog) []Match {
	winners := map[string]int{} // group name -> index into matches

	for i := range matches {
		group, ok := cat.GroupOf(matches[i].Trigger.Symbol)
		if !ok {
			continue
		}
		prev, seen := winners[group.Name]
		if !seen {
			winners[group.Name] = i
			continue
		}
		if beats(matches[i], matches[prev], cat) {
			matches[prev].Resolved = false
			winners[group.Name] = i
		} else {
			matches[i].Resolved = false
		}
	}

	return matches
}

// beats reports whether a should win over b within a conflict group.
func beats(a, b Match, cat *catalog.Catalog) bool {
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	return cat.DeclarationIndex(a.Trigger.Symbol) < cat.DeclarationIndex(b.Trigger.Symbol)
}

// verifyResolution asserts the conflict-group invariant: at most one resolved
// match per group. A violation is a defect in rulekit, not in the input.
func verifyResolution(matches []Match, cat *catalog.Catalog) error {
	resolvedPerGroup := map[string]int{}
	for _, m := range matches {
		if !m.Resolved {
			continue
		}
		if group, ok := cat.GroupOf(m.Trigger.Symbol); ok {
			resolvedPerGroup[group.Name]++
		}
	}
	for name, count := range resolvedPerGroup {
		if count > 1 {
			return errors.Newf(errors.InvariantViolation,
				"conflict group %q resolved %d matches, want at most 1", name, count)
		}
	}
	return nil
}
