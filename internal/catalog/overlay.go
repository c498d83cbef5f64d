package catalog

import (
	"os"

	"gopkg.in/yaml.v3"

	"rulekit/internal/errors"
)

// Overlay is the YAML document format for extending the builtin catalog.
// Overlay entries are appended after builtin ones, so builtin declaration
// order (and therefore conflict tie-breaks) is preserved.
type Overlay struct {
	Triggers       []Trigger       `yaml:"triggers"`
	RuleSets       []RuleSet       `yaml:"ruleSets"`
	ConflictGroups []ConflictGroup `yaml:"conflictGroups"`
	TierChains     []TierChain     `yaml:"tierChains"`
}

// LoadOverlay reads an overlay file. A missing path yields an empty overlay.
func LoadOverlay(path string) (*Overlay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Overlay{}, nil
		}
		return nil, errors.New(errors.ConfigurationError, "cannot read catalog overlay", err)
	}

	var overlay Overlay
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, errors.New(errors.ConfigurationError, "malformed catalog overlay", err)
	}
	return &overlay, nil
}

// Load builds the effective catalog: builtin plus the overlay at overlayPath
// (if any). The combined catalog is validated as a whole, so an overlay that
// duplicates a builtin symbol or breaks a tier chain fails the run up front.
func Load(overlayPath string) (*Catalog, error) {
	base, err := Builtin()
	if err != nil {
		return nil, err
	}
	if overlayPath == "" {
		return base, nil
	}

	overlay, err := LoadOverlay(overlayPath)
	if err != nil {
		return nil, err
	}

	return New(
		append(base.Triggers, overlay.Triggers...),
		append(base.RuleSets, overlay.RuleSets...),
		append(base.ConflictGroups, overlay.ConflictGroups...),
		append(base.TierChains, overlay.TierChains...),
	)
}
