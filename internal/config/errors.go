package config

import "errors"

// Configuration validation errors.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoChecker is returned when the checker command is empty.
	ErrNoChecker = errors.New("no checker command configured")

	// ErrInvalidTimeout is returned when the per-URL timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidConcurrency is returned when the worker count is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidLaunchInterval is returned when the launch spacing is negative.
	// Use 0 to launch checker processes without spacing.
	ErrInvalidLaunchInterval = errors.New("invalid launch interval: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidStandard is returned for an unknown accessibility standard.
	ErrInvalidStandard = errors.New("invalid standard: use WCAG2A, WCAG2AA, or WCAG2AAA")
)
