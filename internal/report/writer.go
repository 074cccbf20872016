package report

import (
	"io"
	"time"

	"github.com/a11yctl/a11yctl/internal/model"
)

// timeRounding is the precision durations are rounded to for display.
const timeRounding = 10 * time.Millisecond

// Writer defines the interface for report output.
// Implementations write audit and analysis results in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or HTTP
// responses with the same API.
type Writer interface {
	// WriteAudit outputs an audit run report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	WriteAudit(report *model.AuditReport) (int, error)

	// WriteAnalysis outputs a pattern/priority analysis report.
	WriteAnalysis(report *model.AnalysisReport) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write reports, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WriteAudit outputs the audit report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) WriteAudit(report *model.AuditReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteAudit(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteAnalysis outputs the analysis report to all configured Writers.
func (m *MultiWriter) WriteAnalysis(report *model.AnalysisReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteAnalysis(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
