package analyze

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/a11yctl/a11yctl/internal/model"
)

// ErrMissingColumns is returned when the uploaded table lacks the columns
// the analyzer depends on (a URL column plus issue data).
var ErrMissingColumns = errors.New("results table is missing required columns")

// legacy column names produced by the first-generation audit script,
// which joined all messages of a URL with " | " in a single cell.
const (
	legacyErrorsCol  = "all_errors"
	legacyCountCol   = "pa11y_errors"
	legacySeparator  = "|"
	legacyFailedMark = "FAILED"
)

// ReadResultsTable parses an exported results CSV back into a table.
//
// Two shapes are accepted: the canonical one-row-per-issue format written
// by this tool, and the legacy format with pipe-joined messages per URL.
// Anything else fails with ErrMissingColumns before any analysis begins.
func ReadResultsTable(r io.Reader) (*model.ResultsTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("%w: file is empty", ErrMissingColumns)
	}

	cols := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	data := records[1:]

	urlIdx, hasURL := cols[model.ColURL]
	if !hasURL {
		return nil, fmt.Errorf("%w: no %q column", ErrMissingColumns, model.ColURL)
	}

	if _, ok := cols[model.ColIssueMessage]; ok {
		return readCanonical(cols, urlIdx, data), nil
	}
	if _, ok := cols[legacyErrorsCol]; ok {
		return readLegacy(cols, urlIdx, data), nil
	}
	return nil, fmt.Errorf("%w: need %q or %q", ErrMissingColumns, model.ColIssueMessage, legacyErrorsCol)
}

// readCanonical parses the one-row-per-issue format.
func readCanonical(cols map[string]int, urlIdx int, data [][]string) *model.ResultsTable {
	field := func(row []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	table := &model.ResultsTable{Rows: make([]model.ResultRow, 0, len(data))}
	for _, row := range data {
		if urlIdx >= len(row) || strings.TrimSpace(row[urlIdx]) == "" {
			continue
		}

		count, _ := strconv.Atoi(field(row, model.ColIssueCount))
		table.Rows = append(table.Rows, model.ResultRow{
			URL:           strings.TrimSpace(row[urlIdx]),
			Title:         field(row, model.ColTitle),
			IssueCount:    count,
			IssueCode:     field(row, model.ColIssueCode),
			IssueType:     field(row, model.ColIssueType),
			IssueMessage:  field(row, model.ColIssueMessage),
			IssueContext:  field(row, model.ColIssueContext),
			IssueSelector: field(row, model.ColIssueSelector),
			Failed:        parseBool(field(row, model.ColFailed)),
			FailureReason: field(row, model.ColFailureReason),
		})
	}
	return table
}

// readLegacy parses the pipe-joined format: one row per URL with all
// messages in a single cell and a count column that holds either a number
// or a failure marker (FAILED, TIMEOUT, ERROR).
func readLegacy(cols map[string]int, urlIdx int, data [][]string) *model.ResultsTable {
	errorsIdx := cols[legacyErrorsCol]
	countIdx, hasCount := cols[legacyCountCol]

	table := &model.ResultsTable{}
	for _, row := range data {
		if urlIdx >= len(row) || strings.TrimSpace(row[urlIdx]) == "" {
			continue
		}
		url := strings.TrimSpace(row[urlIdx])

		countCell := ""
		if hasCount && countIdx < len(row) {
			countCell = strings.TrimSpace(row[countIdx])
		}
		if count, err := strconv.Atoi(countCell); err != nil && countCell != "" {
			// Non-numeric count marks a failed fetch.
			table.Rows = append(table.Rows, model.ResultRow{
				URL:           url,
				Failed:        true,
				FailureReason: legacyFailureReason(countCell, row, errorsIdx),
			})
			continue
		} else if err == nil && count == 0 {
			table.Rows = append(table.Rows, model.ResultRow{URL: url})
			continue
		}

		messages := splitLegacyMessages(row, errorsIdx)
		if len(messages) == 0 {
			table.Rows = append(table.Rows, model.ResultRow{URL: url})
			continue
		}
		for _, msg := range messages {
			table.Rows = append(table.Rows, model.ResultRow{
				URL:          url,
				IssueCount:   len(messages),
				IssueType:    model.SeverityError.String(),
				IssueMessage: msg,
			})
		}
	}
	return table
}

// splitLegacyMessages splits the pipe-joined message cell.
func splitLegacyMessages(row []string, errorsIdx int) []string {
	if errorsIdx >= len(row) {
		return nil
	}
	var messages []string
	for _, part := range strings.Split(row[errorsIdx], legacySeparator) {
		if msg := strings.TrimSpace(part); msg != "" {
			messages = append(messages, msg)
		}
	}
	return messages
}

// legacyFailureReason builds a failure description from the legacy marker
// and message cells.
func legacyFailureReason(marker string, row []string, errorsIdx int) string {
	reason := marker
	if errorsIdx < len(row) {
		if detail := strings.TrimSpace(row[errorsIdx]); detail != "" {
			reason = marker + ": " + detail
		}
	}
	if reason == legacyFailedMark {
		reason = "URL unreachable or checker error"
	}
	return reason
}

// parseBool accepts the spellings a results CSV may use for the failed flag.
func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}
