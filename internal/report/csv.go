package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/a11yctl/a11yctl/internal/model"
)

// CSVWriter outputs the exportable table forms of reports.
// The results CSV it writes is the handoff artifact between the audit
// and analysis apps, so its columns follow the canonical header in the
// model package exactly.
//
// Design decision: We use standard encoding/csv rather than a third-party
// CSV library because:
// 1. It's part of the standard library (no extra dependencies)
// 2. RFC 4180 quoting is all the format needs
// 3. It provides consistent behavior across Go versions
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{baseWriter: newBaseWriter(output)}
}

// WriteAudit outputs the run's results table as CSV.
func (w *CSVWriter) WriteAudit(report *model.AuditReport) (int, error) {
	cw := &countingWriter{w: w.output}
	err := WriteResultsCSV(cw, model.BuildResultsTable(report.Results))
	return cw.n, err
}

// WriteAnalysis outputs the pattern view as CSV. The priority view has
// its own export via WritePrioritiesCSV; the two views have different
// columns and a combined file would force consumers to re-split them.
func (w *CSVWriter) WriteAnalysis(report *model.AnalysisReport) (int, error) {
	cw := &countingWriter{w: w.output}
	err := WritePatternsCSV(cw, report)
	return cw.n, err
}

// WriteResultsCSV writes the canonical results table CSV: one row per
// issue, one row for each clean or failed URL, in table order.
func WriteResultsCSV(output io.Writer, table *model.ResultsTable) error {
	cw := csv.NewWriter(output)

	if err := cw.Write(model.ResultsHeader()); err != nil {
		return err
	}
	for _, row := range table.Rows {
		record := []string{
			row.URL,
			row.Title,
			strconv.Itoa(row.IssueCount),
			row.IssueCode,
			row.IssueType,
			row.IssueMessage,
			row.IssueContext,
			row.IssueSelector,
			strconv.FormatBool(row.Failed),
			row.FailureReason,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WritePatternsCSV writes the "most common problems" view: normalized
// issue key, total occurrences, and the number of distinct affected URLs,
// in the report's ranked order.
func WritePatternsCSV(output io.Writer, report *model.AnalysisReport) error {
	cw := csv.NewWriter(output)

	if err := cw.Write([]string{"issue_key", "occurrence_count", "affected_url_count"}); err != nil {
		return err
	}
	for _, p := range report.Patterns {
		record := []string{
			p.Key,
			strconv.Itoa(p.Occurrences),
			strconv.Itoa(p.AffectedURLs),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WritePrioritiesCSV writes the "most problematic pages" view: URL and
// total issue count, in the report's ranked order.
func WritePrioritiesCSV(output io.Writer, report *model.AnalysisReport) error {
	cw := csv.NewWriter(output)

	if err := cw.Write([]string{"url", "total_issue_count"}); err != nil {
		return err
	}
	for _, p := range report.Priorities {
		record := []string{p.URL, strconv.Itoa(p.TotalIssues)}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// countingWriter tracks bytes written so CSV output can satisfy the
// Writer interface's byte count contract.
type countingWriter struct {
	w io.Writer
	n int
}

// Write forwards to the wrapped writer and accumulates the count.
func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
