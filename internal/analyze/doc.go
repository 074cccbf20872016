// Package analyze turns an exported results table into remediation
// guidance: it normalizes issue messages into recurring patterns, counts
// occurrences and affected URLs per pattern, buckets patterns by WCAG
// principle, and ranks pages by total issue count.
package analyze
