package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/a11yctl/a11yctl/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showClean controls whether URLs with zero issues are listed.
	showClean bool

	// verbose enables per-issue detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowClean configures the writer to list URLs with no issues.
func WithShowClean(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showClean = show
	}
}

// WithVerbose enables verbose output with per-issue details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showClean:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// WriteAudit outputs the audit run in human-readable format.
func (w *SimpleWriter) WriteAudit(report *model.AuditReport) (int, error) {
	var sb strings.Builder

	w.writeAuditHeader(&sb, report)
	w.writeAuditSummary(&sb, report.Summary())
	w.writeResults(&sb, report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeAuditHeader writes the report header with run information.
func (w *SimpleWriter) writeAuditHeader(sb *strings.Builder, report *model.AuditReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                     ACCESSIBILITY AUDIT REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Run ID:      %s\n", report.RunID))
	sb.WriteString(fmt.Sprintf("Started:     %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Duration:    %s\n", report.Duration.Round(timeRounding)))
	sb.WriteString(fmt.Sprintf("URLs:        %d\n", len(report.Results)))
	sb.WriteString("\n")
}

// writeAuditSummary writes the issue summary section.
func (w *SimpleWriter) writeAuditSummary(sb *strings.Builder, s model.AuditSummary) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  ERRORS:   %d\n", s.ErrorCount))
	sb.WriteString(fmt.Sprintf("  WARNINGS: %d\n", s.WarningCount))
	sb.WriteString(fmt.Sprintf("  NOTICES:  %d\n", s.NoticeCount))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  TOTAL:    %d issues on %d of %d URLs\n", s.TotalIssues, s.URLsWithIssues, s.URLCount))
	if s.FailedURLs > 0 {
		sb.WriteString(fmt.Sprintf("  FAILED:   %d URLs could not be checked\n", s.FailedURLs))
	}
	if s.AvgIssuesPerURL > 0 {
		sb.WriteString(fmt.Sprintf("  AVERAGE:  %.1f issues per URL\n", s.AvgIssuesPerURL))
	}
	sb.WriteString("\n")
}

// writeResults writes the per-URL results in run order.
func (w *SimpleWriter) writeResults(sb *strings.Builder, report *model.AuditReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("RESULTS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, r := range report.Results {
		switch {
		case r.Failed:
			sb.WriteString(fmt.Sprintf("  [x] %s\n", r.URL))
			sb.WriteString(fmt.Sprintf("      FAILED: %s\n", r.FailureReason))
		case r.IssueCount() == 0:
			if !w.showClean {
				continue
			}
			sb.WriteString(fmt.Sprintf("  [ ] %s\n", r.URL))
			sb.WriteString("      No issues\n")
		default:
			sb.WriteString(fmt.Sprintf("  [!] %s\n", r.URL))
			sb.WriteString(fmt.Sprintf("      %d issues (%d errors, %d warnings, %d notices)\n",
				r.IssueCount(),
				r.CountBySeverity(model.SeverityError),
				r.CountBySeverity(model.SeverityWarning),
				r.CountBySeverity(model.SeverityNotice),
			))
			if w.verbose {
				for _, issue := range r.Issues {
					sb.WriteString(fmt.Sprintf("      - [%s] %s\n", issue.Severity.String(), issue.Message))
					if issue.Selector != "" {
						sb.WriteString(fmt.Sprintf("        at %s\n", issue.Selector))
					}
				}
			}
		}
	}
	sb.WriteString("\n")
}

// WriteAnalysis outputs the analysis views in human-readable format.
func (w *SimpleWriter) WriteAnalysis(report *model.AnalysisReport) (int, error) {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                   ACCESSIBILITY ANALYSIS REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("URLs analyzed: %d\n", report.URLCount))
	sb.WriteString(fmt.Sprintf("Total issues:  %d\n", report.TotalIssues))
	sb.WriteString("\n")

	w.writePatterns(&sb, report)
	w.writePriorities(&sb, report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writePatterns writes the "most common problems" view.
func (w *SimpleWriter) writePatterns(sb *strings.Builder, report *model.AnalysisReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("MOST COMMON PROBLEMS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(report.Patterns) == 0 {
		sb.WriteString("  No issues found\n\n")
		return
	}

	for _, p := range report.Patterns {
		sb.WriteString(fmt.Sprintf("  %4d x %s (%d URLs affected)\n", p.Occurrences, p.Key, p.AffectedURLs))
		if w.verbose && p.Recommendation != "" {
			sb.WriteString(fmt.Sprintf("         Fix: %s\n", p.Recommendation))
		}
	}
	sb.WriteString("\n")
}

// writePriorities writes the "most problematic pages" view.
func (w *SimpleWriter) writePriorities(sb *strings.Builder, report *model.AnalysisReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("MOST PROBLEMATIC PAGES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(report.Priorities) == 0 {
		sb.WriteString("  No pages with issues\n\n")
		return
	}

	for _, p := range report.Priorities {
		sb.WriteString(fmt.Sprintf("  %4d  %s\n", p.TotalIssues, p.URL))
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by a11yctl\n")
	sb.WriteString("https://github.com/a11yctl/a11yctl\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
