// Package signal collects raw evidence about a project: present files,
// dependency names parsed from manifests, and enumerated classifier answers.
// Signals are built fresh per run, never mutated, and consumed by the
// detector.
package signal

// Kind classifies a unit of evidence.
type Kind string

const (
	// FilePresence records that a file exists, Value is the relative path.
	FilePresence Kind = "file-presence"
	// ManifestDependency records a dependency name from a parsed manifest.
	ManifestDependency Kind = "manifest-dependency"
	// UserChoice records an enumerated classifier answer as "question=value".
	UserChoice Kind = "user-choice"
)

// Signal is one unit of evidence collected from the project.
type Signal struct {
	Kind  Kind   `json:"kind"`
	Value string `json:"value"`
	// Path is the relative path the signal was observed at: the file itself
	// for FilePresence, the manifest for ManifestDependency, empty for
	// UserChoice.
	Path string `json:"path,omitempty"`
}

// Set is an immutable snapshot of all signals for one run.
type Set struct {
	signals []Signal
}

// NewSet copies signals into a snapshot.
func NewSet(signals []Signal) *Set {
	cp := make([]Signal, len(signals))
	copy(cp, signals)
	return &Set{signals: cp}
}

// All returns the signals in collection order.
func (s *Set) All() []Signal {
	return s.signals
}

// Len returns the number of signals.
func (s *Set) Len() int {
	return len(s.signals)
}

// Files returns all file-presence signals.
func (s *Set) Files() []Signal {
	var out []Signal
	for _, sig := range s.signals {
		if sig.Kind == FilePresence {
			out = append(out, sig)
		}
	}
	return out
}

// Dependencies returns all manifest-dependency signals.
func (s *Set) Dependencies() []Signal {
	var out []Signal
	for _, sig := range s.signals {
		if sig.Kind == ManifestDependency {
			out = append(out, sig)
		}
	}
	return out
}

// HasChoice reports whether a "question=value" classifier answer is present.
func (s *Set) HasChoice(choice string) bool {
	for _, sig := range s.signals {
		if sig.Kind == UserChoice && sig.Value == choice {
			return true
		}
	}
	return false
}
