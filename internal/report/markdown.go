package report

import (
	"io"
	"sort"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/a11yctl/a11yctl/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// WriteAudit outputs the audit run in Markdown format.
func (w *MarkdownWriter) WriteAudit(report *model.AuditReport) (int, error) {
	md := markdown.NewMarkdown(w.output)
	summary := report.Summary()

	w.writeAuditHeader(md, report, summary)
	w.writeAuditSummary(md, summary)
	w.writeResultsTable(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeAuditHeader writes the report header with run information.
func (w *MarkdownWriter) writeAuditHeader(md *markdown.Markdown, report *model.AuditReport, summary model.AuditSummary) {
	md.H1("Accessibility Audit Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run ID", "`" + report.RunID + "`"},
			{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", report.Duration.Round(timeRounding).String()},
			{"URLs Checked", strconv.Itoa(summary.URLCount)},
		},
	})
	md.PlainText("")
}

// writeAuditSummary writes the issue summary with a severity chart.
func (w *MarkdownWriter) writeAuditSummary(md *markdown.Markdown, summary model.AuditSummary) {
	md.H2("Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Count"},
		Rows: [][]string{
			{"🔴 Errors", strconv.Itoa(summary.ErrorCount)},
			{"🟡 Warnings", strconv.Itoa(summary.WarningCount)},
			{"🔵 Notices", strconv.Itoa(summary.NoticeCount)},
			{"**Total**", "**" + strconv.Itoa(summary.TotalIssues) + "**"},
		},
	})
	md.PlainText("")

	if summary.TotalIssues > 0 {
		w.writeSeverityChart(md, summary)
	}
	w.writeAlert(md, summary)
}

// writeSeverityChart writes a mermaid pie chart for severity distribution.
func (w *MarkdownWriter) writeSeverityChart(md *markdown.Markdown, summary model.AuditSummary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Issue Severity Distribution"),
		piechart.WithShowData(true),
	)

	if summary.ErrorCount > 0 {
		chart.LabelAndIntValue("Errors", uint64(summary.ErrorCount))
	}
	if summary.WarningCount > 0 {
		chart.LabelAndIntValue("Warnings", uint64(summary.WarningCount))
	}
	if summary.NoticeCount > 0 {
		chart.LabelAndIntValue("Notices", uint64(summary.NoticeCount))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on the summary.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary model.AuditSummary) {
	switch {
	case summary.FailedURLs > 0:
		md.Warningf(
			"%d URL(s) could not be checked; their rows are flagged in the results table.",
			summary.FailedURLs,
		)
	case summary.ErrorCount > 0:
		md.Cautionf(
			"Accessibility errors detected. %d error(s) need to be fixed for WCAG conformance.",
			summary.ErrorCount,
		)
	case summary.TotalIssues > 0:
		md.Note("Only warnings and notices detected.")
	default:
		md.Tip("No accessibility issues detected.")
	}
	md.PlainText("")
}

// writeResultsTable writes the per-URL results section.
func (w *MarkdownWriter) writeResultsTable(md *markdown.Markdown, report *model.AuditReport) {
	md.H2("Results")
	md.PlainText("")

	if len(report.Results) == 0 {
		md.PlainText("No URLs were checked.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(report.Results))
	for _, r := range report.Results {
		status := "✅"
		detail := "-"
		if r.Failed {
			status = "❌"
			detail = truncateString(r.FailureReason, 60)
		} else if r.IssueCount() > 0 {
			status = "⚠️"
		}

		rows = append(rows, []string{
			truncateString(r.URL, 60),
			truncateString(r.Title, 40),
			strconv.Itoa(r.IssueCount()),
			status,
			detail,
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Title", "Issues", "Status", "Detail"},
		Rows:   rows,
	})
	md.PlainText("")
}

// WriteAnalysis outputs the analysis views in Markdown format.
func (w *MarkdownWriter) WriteAnalysis(report *model.AnalysisReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Accessibility Analysis Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"URLs Analyzed", strconv.Itoa(report.URLCount)},
			{"Total Issues", strconv.Itoa(report.TotalIssues)},
			{"Distinct Patterns", strconv.Itoa(len(report.Patterns))},
		},
	})
	md.PlainText("")

	w.writePatterns(md, report)
	w.writePriorities(md, report)
	w.writeCategories(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writePatterns writes the "most common problems" view.
func (w *MarkdownWriter) writePatterns(md *markdown.Markdown, report *model.AnalysisReport) {
	md.H2("Most Common Problems")
	md.PlainText("")

	if len(report.Patterns) == 0 {
		md.Tip("No issues found in the analyzed table.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(report.Patterns))
	for _, p := range report.Patterns {
		rec := p.Recommendation
		if rec == "" {
			rec = "-"
		}
		rows = append(rows, []string{
			truncateString(p.Key, 60),
			strconv.Itoa(p.Occurrences),
			strconv.Itoa(p.AffectedURLs),
			strconv.Itoa(p.ImpactScore),
			truncateString(rec, 80),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Issue", "Occurrences", "URLs Affected", "Impact", "Recommendation"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writePriorities writes the "most problematic pages" view.
func (w *MarkdownWriter) writePriorities(md *markdown.Markdown, report *model.AnalysisReport) {
	md.H2("Most Problematic Pages")
	md.PlainText("")

	if len(report.Priorities) == 0 {
		md.PlainText("No pages with issues.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(report.Priorities))
	for _, p := range report.Priorities {
		rows = append(rows, []string{
			truncateString(p.URL, 80),
			strconv.Itoa(p.TotalIssues),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Issues"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeCategories writes the WCAG category distribution as a pie chart.
func (w *MarkdownWriter) writeCategories(md *markdown.Markdown, report *model.AnalysisReport) {
	if len(report.CategoryCounts) == 0 {
		return
	}

	md.H2("WCAG Category Distribution")

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Issues by WCAG Principle"),
		piechart.WithShowData(true),
	)
	for _, category := range categoryOrder(report.CategoryCounts) {
		chart.LabelAndIntValue(category, uint64(report.CategoryCounts[category]))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [a11yctl](https://github.com/a11yctl/a11yctl)*")
}

// categoryOrder returns the category names sorted by descending count
// with the name as tie-breaker, keeping chart output deterministic.
func categoryOrder(counts map[string]int) []string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
