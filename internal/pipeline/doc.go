// Package pipeline orchestrates the per-URL audit work: a small step
// pipeline executed once per URL (checker invocation, optional title
// fetch) and a batch processor that runs many URLs concurrently while
// preserving the ingestion order of results.
package pipeline
