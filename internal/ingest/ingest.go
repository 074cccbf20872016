package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
)

// knownHeaders are header names recognized as URL columns, compared
// case-insensitively after trimming.
var knownHeaders = []string{"url", "urls", "link", "links", "address", "website", "page"}

// headerSampleSize is the number of data rows inspected per column when
// falling back to heuristic column detection.
const headerSampleSize = 25

// Reader extracts URLs from delimited tabular input.
type Reader struct {
	// column is an explicit URL column name. When set, detection is
	// skipped entirely and a missing column is an error.
	column string

	// logger for structured logging.
	logger *slog.Logger
}

// Option configures a Reader.
type Option func(*Reader)

// WithColumn sets an explicit URL column name, bypassing detection.
// This mirrors the original tool's column picker: when the user names the
// column, we never second-guess them.
func WithColumn(name string) Option {
	return func(r *Reader) {
		r.column = strings.TrimSpace(name)
	}
}

// WithLogger sets a custom logger for the reader.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reader) {
		r.logger = logger
	}
}

// NewReader creates a Reader with the given options.
func NewReader(opts ...Option) *Reader {
	r := &Reader{}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// URLs reads CSV input and returns the ordered, deduplicated URL list.
//
// Column resolution is a two-stage strategy: exact header match against
// known names first, then a heuristic that samples data rows and picks the
// column whose values look like URLs. If neither stage resolves a column,
// ErrNoURLColumn is returned; we never guess silently.
func (rd *Reader) URLs(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // Ragged rows are tolerated; columns are addressed by index.
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyInput
	}

	header := records[0]
	hasHeader := !rowLooksLikeData(header)
	data := records
	if hasHeader {
		data = records[1:]
	}

	col, err := rd.resolveColumn(header, data, hasHeader)
	if err != nil {
		return nil, err
	}
	rd.logger.Debug("resolved URL column", "index", col, "has_header", hasHeader)

	seen := make(map[string]struct{})
	urls := make([]string, 0, len(data))
	for _, row := range data {
		if col >= len(row) {
			continue
		}
		value := strings.TrimSpace(row[col])
		if value == "" {
			continue
		}
		if !looksLikeURL(value) {
			rd.logger.Debug("skipping non-URL value", "value", value)
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		urls = append(urls, value)
	}

	if len(urls) == 0 {
		return nil, ErrNoURLs
	}
	return urls, nil
}

// resolveColumn finds the index of the URL column.
func (rd *Reader) resolveColumn(header []string, data [][]string, hasHeader bool) (int, error) {
	// Stage 0: explicit column requested by the user.
	if rd.column != "" {
		if !hasHeader {
			return 0, fmt.Errorf("%w: %q (file has no header row)", ErrColumnNotFound, rd.column)
		}
		for i, name := range header {
			if strings.EqualFold(strings.TrimSpace(name), rd.column) {
				return i, nil
			}
		}
		return 0, fmt.Errorf("%w: %q", ErrColumnNotFound, rd.column)
	}

	// Stage 1: exact header name match.
	if hasHeader {
		for i, name := range header {
			trimmed := strings.ToLower(strings.TrimSpace(name))
			for _, known := range knownHeaders {
				if trimmed == known {
					return i, nil
				}
			}
		}
	}

	// Stage 2: heuristic over sampled values. The column with the most
	// URL-looking values wins; at least half of its non-empty samples
	// must qualify. Earlier columns win ties for determinism.
	width := 0
	for _, row := range data {
		if len(row) > width {
			width = len(row)
		}
	}

	bestCol, bestHits := -1, 0
	for col := 0; col < width; col++ {
		hits, nonEmpty := 0, 0
		for i, row := range data {
			if i >= headerSampleSize {
				break
			}
			if col >= len(row) {
				continue
			}
			value := strings.TrimSpace(row[col])
			if value == "" {
				continue
			}
			nonEmpty++
			if looksLikeURL(value) {
				hits++
			}
		}
		if hits > bestHits && hits*2 >= nonEmpty {
			bestCol, bestHits = col, hits
		}
	}

	if bestCol < 0 {
		return 0, ErrNoURLColumn
	}
	return bestCol, nil
}

// rowLooksLikeData reports whether a row appears to contain URL values
// rather than header names. Used to support headerless files.
func rowLooksLikeData(row []string) bool {
	for _, cell := range row {
		if looksLikeURL(strings.TrimSpace(cell)) {
			return true
		}
	}
	return false
}

// looksLikeURL reports whether the value is plausibly a checkable URL.
// Absolute http/https URLs qualify, as do bare hostnames with a dot
// (the checker resolves those itself).
func looksLikeURL(value string) bool {
	if value == "" || strings.ContainsAny(value, " \t") {
		return false
	}
	if strings.Contains(value, "://") {
		u, err := url.Parse(value)
		if err != nil {
			return false
		}
		return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
	}
	// Bare hostname or hostname/path: require a dot and a letter-ish start.
	if !strings.Contains(value, ".") {
		return false
	}
	first := value[0]
	return (first >= 'a' && first <= 'z') || (first >= 'A' && first <= 'Z') ||
		(first >= '0' && first <= '9')
}
