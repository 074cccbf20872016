package model

import "strings"

// Severity represents the severity level of an accessibility issue.
// The three levels mirror the taxonomy used by pa11y and the underlying
// HTML_CodeSniffer runner: notices, warnings, and errors.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and sorting. The String() method provides
// human-readable output, and ParseSeverity converts the checker's wire
// format back to the typed value.
type Severity int

const (
	// SeverityNotice indicates informational guidance with no conformance
	// failure. Example: "Check that the title element describes the document."
	SeverityNotice Severity = iota

	// SeverityWarning indicates a potential issue that requires manual
	// review. Example: possible insufficient contrast on an image of text.
	SeverityWarning

	// SeverityError indicates a definite conformance failure against the
	// selected accessibility standard. Example: an img element without an
	// alt attribute.
	SeverityError
)

// String returns the lower-case wire representation of the severity.
// This matches the "type" field emitted by pa11y's JSON reporter, so the
// same value is used for display and for the exported CSV.
func (s Severity) String() string {
	switch s {
	case SeverityNotice:
		return "notice"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseSeverity converts a severity string from the checker's output into
// a Severity value. The second return value reports whether the string was
// recognized. Unrecognized strings map to SeverityNotice so that malformed
// rows are kept rather than dropped.
func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return SeverityError, true
	case "warning":
		return SeverityWarning, true
	case "notice":
		return SeverityNotice, true
	default:
		return SeverityNotice, false
	}
}
