package model

// Canonical column names of the exported results table. The analysis app
// re-ingests files written with these columns, so the names are part of
// the contract between the two apps and must stay stable.
const (
	ColURL           = "url"
	ColTitle         = "title"
	ColIssueCount    = "issue_count"
	ColIssueCode     = "issue_code"
	ColIssueType     = "issue_type"
	ColIssueMessage  = "issue_message"
	ColIssueContext  = "issue_context"
	ColIssueSelector = "issue_selector"
	ColFailed        = "failed"
	ColFailureReason = "failure_reason"
)

// ResultsHeader returns the canonical results CSV header in export order.
func ResultsHeader() []string {
	return []string{
		ColURL,
		ColTitle,
		ColIssueCount,
		ColIssueCode,
		ColIssueType,
		ColIssueMessage,
		ColIssueContext,
		ColIssueSelector,
		ColFailed,
		ColFailureReason,
	}
}
