package ingest

import "errors"

// Ingestion errors.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances at the failure site. This allows callers
// to use errors.Is() for programmatic handling (e.g., the web app maps
// these to user-facing messages) while still providing readable text.
var (
	// ErrEmptyInput is returned when the uploaded file contains no rows.
	ErrEmptyInput = errors.New("input file is empty")

	// ErrNoURLColumn is returned when no column can be identified as
	// containing URLs, either by header name or by value heuristic.
	ErrNoURLColumn = errors.New("no URL column found: name a column \"url\" or pass an explicit column")

	// ErrColumnNotFound is returned when an explicitly requested column
	// does not exist in the header row.
	ErrColumnNotFound = errors.New("requested column not found in header")

	// ErrNoURLs is returned when zero valid URLs remain after
	// validation and deduplication.
	ErrNoURLs = errors.New("no usable URLs in input")
)
