// Package errors defines stable error codes and the error type used across
// rulekit. Codes distinguish bad input projects from bad catalogs from bugs in
// rulekit itself, so callers can decide what to surface and what to log.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// ConfigurationError indicates a malformed catalog or config: duplicate
	// trigger symbol, broken tier chain, unknown rule-set reference. Fatal
	// before any analysis starts.
	ConfigurationError ErrorCode = "CONFIGURATION_ERROR"
	// AnalyzerError indicates one category analyzer could not complete its
	// scope. Recovered at the aggregation boundary.
	AnalyzerError ErrorCode = "ANALYZER_ERROR"
	// ResourceNotFound indicates a fix target does not exist
	ResourceNotFound ErrorCode = "RESOURCE_NOT_FOUND"
	// ParseError indicates a fix target could not be parsed
	ParseError ErrorCode = "PARSE_ERROR"
	// PermissionDenied indicates a fix target could not be written
	PermissionDenied ErrorCode = "PERMISSION_DENIED"
	// InvariantViolation indicates rulekit itself is wrong: accounting
	// mismatch, duplicate finding ids, more than one resolved match in a
	// conflict group. Programmer-facing, never swallowed.
	InvariantViolation ErrorCode = "INVARIANT_VIOLATION"
	// InternalError indicates an unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of suggested remediation for an error
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// OpenDocs suggests opening documentation
	OpenDocs FixActionType = "open-docs"
)

// FixAction represents a suggested remediation for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Safe        bool          `json:"safe,omitempty"`
	Description string        `json:"description,omitempty"`
	URL         string        `json:"url,omitempty"`
}

// Error is a rulekit error with a stable code and optional suggestions.
type Error struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// New creates a new Error
func New(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// Newf creates a new Error with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *Error) WithDetails(details interface{}) *Error {
	e.Details = details
	return e
}

// CodeOf returns the ErrorCode of err, or InternalError for foreign errors.
func CodeOf(err error) ErrorCode {
	var re *Error
	if errors.As(err, &re) {
		return re.Code
	}
	return InternalError
}

// IsResourceError reports whether err is one of the restricted per-finding
// failure reasons the fix orchestrator may record as Failed.
func IsResourceError(err error) bool {
	switch CodeOf(err) {
	case ResourceNotFound, ParseError, PermissionDenied:
		return true
	}
	return false
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	ConfigurationError: {
		{
			Type:        RunCommand,
			Command:     "rulekit catalog validate",
			Safe:        true,
			Description: "Validate the trigger catalog and report the malformed entry",
		},
	},
	AnalyzerError: {
		{
			Type:        RunCommand,
			Command:     "rulekit review --format json",
			Safe:        true,
			Description: "Re-run the review; other categories still produce results",
		},
	},
	PermissionDenied: {
		{
			Type:        RunCommand,
			Command:     "rulekit doctor",
			Safe:        true,
			Description: "Check filesystem permissions for the workspace",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
