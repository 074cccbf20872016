// Package ingest reads uploaded CSV files and extracts the ordered,
// deduplicated list of URLs to audit. The URL column is resolved by exact
// header match first, then by a heuristic over sampled values; resolution
// never guesses silently, and failure to resolve is an explicit error.
package ingest
