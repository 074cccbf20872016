package model

import "testing"

// TestBuildResultsTable tests flattening of check results into export rows.
func TestBuildResultsTable(t *testing.T) {
	t.Parallel()

	t.Run("one row per issue in input order", func(t *testing.T) {
		t.Parallel()

		first := NewCheckResult("https://a.edu/1")
		first.Issues = append(first.Issues,
			Issue{Code: "H37", Severity: SeverityError, Message: "missing alt"},
			Issue{Code: "G18", Severity: SeverityWarning, Message: "contrast"},
		)
		second := NewCheckResult("https://a.edu/2")

		table := BuildResultsTable([]*CheckResult{first, second})

		if len(table.Rows) != 3 {
			t.Fatalf("expected 3 rows, got %d", len(table.Rows))
		}
		if table.Rows[0].URL != "https://a.edu/1" || table.Rows[0].IssueCode != "H37" {
			t.Errorf("unexpected first row: %+v", table.Rows[0])
		}
		if table.Rows[1].IssueType != "warning" {
			t.Errorf("expected warning type, got %q", table.Rows[1].IssueType)
		}
		if table.Rows[0].IssueCount != 2 || table.Rows[1].IssueCount != 2 {
			t.Error("expected IssueCount repeated on every issue row")
		}
	})

	t.Run("clean URL yields single empty row", func(t *testing.T) {
		t.Parallel()

		table := BuildResultsTable([]*CheckResult{NewCheckResult("https://clean.example")})

		if len(table.Rows) != 1 {
			t.Fatalf("expected 1 row, got %d", len(table.Rows))
		}
		row := table.Rows[0]
		if row.HasIssue() {
			t.Error("clean row should not report an issue")
		}
		if row.IssueCount != 0 || row.Failed {
			t.Errorf("unexpected clean row: %+v", row)
		}
	})

	t.Run("failed URL yields single flagged row", func(t *testing.T) {
		t.Parallel()

		r := NewCheckResult("https://down.example")
		r.Fail("timed out after 30s")

		table := BuildResultsTable([]*CheckResult{r})

		if len(table.Rows) != 1 {
			t.Fatalf("expected 1 row, got %d", len(table.Rows))
		}
		row := table.Rows[0]
		if !row.Failed || row.FailureReason != "timed out after 30s" {
			t.Errorf("unexpected failed row: %+v", row)
		}
		if row.HasIssue() {
			t.Error("failed row should not count as an issue row")
		}
	})

	t.Run("TotalIssueRows counts only issue rows", func(t *testing.T) {
		t.Parallel()

		withIssues := NewCheckResult("https://a.edu/1")
		withIssues.Issues = append(withIssues.Issues,
			Issue{Code: "H37", Severity: SeverityError, Message: "missing alt"})
		failed := NewCheckResult("https://a.edu/2")
		failed.Fail("crash")

		table := BuildResultsTable([]*CheckResult{withIssues, failed, NewCheckResult("https://a.edu/3")})

		if got := table.TotalIssueRows(); got != 1 {
			t.Errorf("expected 1 issue row, got %d", got)
		}
	})
}

// TestAuditReportSummary tests run-level statistics.
func TestAuditReportSummary(t *testing.T) {
	t.Parallel()

	report := NewAuditReport("run-1")

	withIssues := NewCheckResult("https://a.edu/1")
	withIssues.Issues = append(withIssues.Issues,
		Issue{Severity: SeverityError, Message: "e1"},
		Issue{Severity: SeverityError, Message: "e2"},
		Issue{Severity: SeverityNotice, Message: "n1"},
	)
	clean := NewCheckResult("https://a.edu/2")
	failed := NewCheckResult("https://a.edu/3")
	failed.Fail("unreachable")

	report.Results = []*CheckResult{withIssues, clean, failed}

	s := report.Summary()
	if s.URLCount != 3 {
		t.Errorf("expected 3 URLs, got %d", s.URLCount)
	}
	if s.TotalIssues != 3 || s.ErrorCount != 2 || s.NoticeCount != 1 {
		t.Errorf("unexpected issue counts: %+v", s)
	}
	if s.URLsWithIssues != 1 || s.FailedURLs != 1 {
		t.Errorf("unexpected URL counts: %+v", s)
	}
	if s.AvgIssuesPerURL != 1.5 {
		t.Errorf("expected avg 1.5 over 2 successful URLs, got %v", s.AvgIssuesPerURL)
	}
}
