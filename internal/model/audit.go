package model

import "time"

// AuditReport is the complete outcome of one audit run: the ordered
// per-URL results plus run-level metadata. Results appear in the same
// order as the ingested URL list regardless of how the batch was
// parallelized, so repeated runs on identical input produce identical
// output ordering.
type AuditReport struct {
	// RunID uniquely identifies this run. Used as the primary key when
	// the run is persisted to the history database.
	RunID string `json:"run_id"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Duration is the wall-clock time of the whole batch.
	Duration time.Duration `json:"duration"`

	// Results holds one CheckResult per ingested URL, in ingestion order.
	Results []*CheckResult `json:"results"`
}

// NewAuditReport creates an empty report with the given run ID.
func NewAuditReport(runID string) *AuditReport {
	return &AuditReport{
		RunID:     runID,
		StartedAt: time.Now(),
		Results:   make([]*CheckResult, 0),
	}
}

// AuditSummary aggregates run-level statistics for display:
// total issues, pages with issues, and failed pages.
type AuditSummary struct {
	// URLCount is the number of URLs processed.
	URLCount int `json:"url_count"`

	// TotalIssues is the sum of issue counts across all successful checks.
	TotalIssues int `json:"total_issues"`

	// ErrorCount, WarningCount, and NoticeCount break TotalIssues down
	// by severity.
	ErrorCount   int `json:"error_count"`
	WarningCount int `json:"warning_count"`
	NoticeCount  int `json:"notice_count"`

	// URLsWithIssues is the number of URLs with at least one issue.
	URLsWithIssues int `json:"urls_with_issues"`

	// FailedURLs is the number of URLs the checker could not process.
	FailedURLs int `json:"failed_urls"`

	// AvgIssuesPerURL is TotalIssues divided by the number of URLs that
	// were checked successfully. Zero when nothing succeeded.
	AvgIssuesPerURL float64 `json:"avg_issues_per_url"`
}

// Summary computes the run-level statistics from the results.
func (a *AuditReport) Summary() AuditSummary {
	s := AuditSummary{URLCount: len(a.Results)}

	succeeded := 0
	for _, r := range a.Results {
		if r.Failed {
			s.FailedURLs++
			continue
		}
		succeeded++
		if r.IssueCount() > 0 {
			s.URLsWithIssues++
		}
		s.TotalIssues += r.IssueCount()
		s.ErrorCount += r.CountBySeverity(SeverityError)
		s.WarningCount += r.CountBySeverity(SeverityWarning)
		s.NoticeCount += r.CountBySeverity(SeverityNotice)
	}

	if succeeded > 0 {
		s.AvgIssuesPerURL = float64(s.TotalIssues) / float64(succeeded)
	}
	return s
}
