// Package fix applies approved remediations through a small state machine
// with strict outcome accounting.
package fix

import (
	"rulekit/internal/review"
)

// State of one batch item. Pending and Attempting are transient; the other
// three are terminal.
type State string

const (
	StatePending    State = "pending"
	StateAttempting State = "attempting"
	StateApplied    State = "applied"
	StateFailed     State = "failed"
	StateDeferred   State = "deferred"
)

// FailReason is the closed set of acceptable failure causes. A fixer that
// cannot proceed for any other reason has a bug, not a failure.
type FailReason string

const (
	ReasonNotFound         FailReason = "resource not found"
	ReasonParseError       FailReason = "parse error"
	ReasonPermissionDenied FailReason = "permission denied"
)

// Item is one approved finding queued for remediation. Deferred items were
// excluded by the user at approval time and pass through the state machine
// without being attempted.
type Item struct {
	Finding     review.Finding
	Deferred    bool
	DeferReason string
}

// Outcome records the terminal state of one item.
type Outcome struct {
	Finding review.Finding `json:"finding"`
	State   State          `json:"state"`
	Reason  string         `json:"reason,omitempty"`
	Changed bool           `json:"changed"` // false when verification found the fix already in place
}

// BatchResult is the accounting summary of one orchestrator run. Attempted
// may be lower than the submitted batch size after cancellation; the
// accounting invariant always holds against Attempted.
type BatchResult struct {
	Applied   int       `json:"applied"`
	Failed    int       `json:"failed"`
	Deferred  int       `json:"deferred"`
	Attempted int       `json:"attempted"`
	Truncated bool      `json:"truncated,omitempty"`
	Outcomes  []Outcome `json:"outcomes"`
}
