package checker

import "errors"

// Checker errors.
var (
	// ErrCheckerNotFound is returned when the pa11y executable cannot be
	// located on the command search path. This is fatal at startup: the
	// audit pipeline refuses to run without the external tool, instead of
	// failing every URL individually.
	ErrCheckerNotFound = errors.New("pa11y not found in PATH: install it with \"npm install -g pa11y\"")

	// ErrUnparsableOutput is returned when the checker exits without
	// producing parsable JSON. Callers downgrade this to a failed result
	// for the URL in question.
	ErrUnparsableOutput = errors.New("checker produced no parsable output")
)
