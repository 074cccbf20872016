package model

// ResultRow is one exported row of the results table. The table uses
// one-row-per-issue granularity: a URL with N issues produces N rows, and
// a clean or failed URL produces exactly one row with empty issue fields.
// IssueCount repeats the URL's total on every row so consumers can read
// per-URL totals without re-aggregating.
type ResultRow struct {
	// URL is the checked page.
	URL string

	// Title is the page title when title fetching was enabled.
	Title string

	// IssueCount is the total number of issues for this URL.
	IssueCount int

	// IssueCode is the rule identifier for this row's issue, empty for
	// clean or failed URLs.
	IssueCode string

	// IssueType is the severity string (error|warning|notice), empty for
	// clean or failed URLs.
	IssueType string

	// IssueMessage is the issue description, empty for clean or failed URLs.
	IssueMessage string

	// IssueContext is the HTML fragment the issue points at.
	IssueContext string

	// IssueSelector is the CSS selector of the offending element.
	IssueSelector string

	// Failed marks URLs the checker could not process.
	Failed bool

	// FailureReason explains the failure; empty when Failed is false.
	FailureReason string
}

// ResultsTable is the flattened, exportable form of an audit run.
// It is the handoff format between the audit app and the analysis app:
// the audit app writes it as CSV and the analysis app re-ingests it.
type ResultsTable struct {
	// Rows holds the flattened rows in ingestion order.
	Rows []ResultRow
}

// BuildResultsTable flattens ordered check results into the export table.
// Row order follows the order of results, which the pipeline guarantees
// matches ingestion order, so the exported table is reproducible across
// repeated runs on identical checker output.
func BuildResultsTable(results []*CheckResult) *ResultsTable {
	table := &ResultsTable{Rows: make([]ResultRow, 0, len(results))}

	for _, r := range results {
		base := ResultRow{
			URL:           r.URL,
			Title:         r.Title,
			IssueCount:    r.IssueCount(),
			Failed:        r.Failed,
			FailureReason: r.FailureReason,
		}

		if len(r.Issues) == 0 {
			table.Rows = append(table.Rows, base)
			continue
		}

		for _, issue := range r.Issues {
			row := base
			row.IssueCode = issue.Code
			row.IssueType = issue.Severity.String()
			row.IssueMessage = issue.Message
			row.IssueContext = issue.Context
			row.IssueSelector = issue.Selector
			table.Rows = append(table.Rows, row)
		}
	}
	return table
}

// HasIssue reports whether this row carries a single issue, as opposed to
// being the summary row of a clean or failed URL.
func (r ResultRow) HasIssue() bool {
	return !r.Failed && (r.IssueMessage != "" || r.IssueCode != "" || r.IssueType != "")
}

// TotalIssueRows returns the number of rows that carry an issue.
// For a well-formed table this equals the sum of distinct per-URL
// issue counts, a property the analyzer relies on.
func (t *ResultsTable) TotalIssueRows() int {
	count := 0
	for _, row := range t.Rows {
		if row.HasIssue() {
			count++
		}
	}
	return count
}
