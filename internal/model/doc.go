// Package model defines the core data types shared across the audit
// pipeline: issues and severities reported by the accessibility checker,
// per-URL check results, the flattened results table used for CSV export,
// and the derived pattern/priority types produced by analysis.
package model
