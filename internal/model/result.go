package model

import "time"

// Issue is a single accessibility problem reported for a page.
// The fields correspond one-to-one to pa11y's JSON reporter output.
type Issue struct {
	// Code is the machine-readable rule identifier, e.g.
	// "WCAG2AA.Principle1.Guideline1_1.1_1_1.H37".
	Code string `json:"code"`

	// Severity is the issue level (error, warning, or notice).
	Severity Severity `json:"-"`

	// Type is the string form of Severity, kept for JSON serialization.
	Type string `json:"type"`

	// Message is the human-readable description of the problem.
	Message string `json:"message"`

	// Context is the HTML fragment the issue was reported against.
	Context string `json:"context,omitempty"`

	// Selector is the CSS selector locating the offending element.
	Selector string `json:"selector,omitempty"`
}

// CheckResult holds the outcome of checking a single URL.
// Exactly one CheckResult exists per URL per run; it is created by the
// pipeline and never modified after the run completes.
//
// Design decision: Failures are recorded as data (Failed + FailureReason)
// rather than returned as errors. One unreachable URL must never abort the
// batch, so the pipeline downgrades invocation errors into flagged results.
type CheckResult struct {
	// URL is the page that was checked.
	URL string `json:"url"`

	// Title is the page title, populated only when title fetching is
	// enabled. Best effort; empty on any failure.
	Title string `json:"title,omitempty"`

	// Issues contains all issues reported by the checker, in the order
	// the checker emitted them.
	Issues []Issue `json:"issues"`

	// Failed is true if the checker could not produce results for this
	// URL (timeout, crash, unreachable page, unparsable output).
	Failed bool `json:"failed"`

	// FailureReason describes why the check failed. Empty when Failed is false.
	FailureReason string `json:"failure_reason,omitempty"`

	// CheckedAt is when the check started.
	CheckedAt time.Time `json:"checked_at"`

	// Duration is how long the checker invocation took.
	Duration time.Duration `json:"duration"`
}

// NewCheckResult creates an empty result for the given URL.
func NewCheckResult(url string) *CheckResult {
	return &CheckResult{
		URL:       url,
		Issues:    make([]Issue, 0),
		CheckedAt: time.Now(),
	}
}

// IssueCount returns the total number of issues for this URL.
func (r *CheckResult) IssueCount() int {
	return len(r.Issues)
}

// CountBySeverity returns the number of issues at the given severity.
func (r *CheckResult) CountBySeverity(s Severity) int {
	count := 0
	for _, issue := range r.Issues {
		if issue.Severity == s {
			count++
		}
	}
	return count
}

// Fail marks the result as failed with the given reason and clears any
// partially collected issues so failed rows always export with an empty
// issue list.
func (r *CheckResult) Fail(reason string) {
	r.Failed = true
	r.FailureReason = reason
	r.Issues = r.Issues[:0]
}
