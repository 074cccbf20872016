package model

// UnclassifiedKey is the pattern bucket for issue rows whose message and
// code fields are missing or malformed. Such rows are grouped here rather
// than dropped so that totals remain conserved.
const UnclassifiedKey = "unclassified"

// IssuePattern is a recurring issue type across the analyzed table,
// identified by a normalized form of its message.
type IssuePattern struct {
	// Key is the normalized issue identifier, e.g.
	// "Insufficient color contrast".
	Key string `json:"issue_key"`

	// Occurrences is the total number of issue rows grouped under Key.
	Occurrences int `json:"occurrence_count"`

	// AffectedURLs is the number of distinct URLs with at least one
	// occurrence of this pattern.
	AffectedURLs int `json:"affected_url_count"`

	// URLs lists the affected URLs in sorted order.
	URLs []string `json:"urls,omitempty"`

	// Category is the WCAG principle bucket for this pattern.
	Category string `json:"category,omitempty"`

	// ImpactScore is Occurrences multiplied by AffectedURLs. It is a
	// display aid only; sorting uses Occurrences with Key as tie-breaker
	// to stay deterministic.
	ImpactScore int `json:"impact_score"`

	// Recommendation holds remediation guidance for known patterns.
	Recommendation string `json:"recommendation,omitempty"`
}

// PriorityItem ranks a URL by its total issue count, guiding which pages
// to remediate first.
type PriorityItem struct {
	// URL is the page.
	URL string `json:"url"`

	// TotalIssues is the number of issue rows for this URL.
	TotalIssues int `json:"total_issue_count"`
}

// AnalysisReport is the output of analyzing one results table.
// Created fresh each analysis run and never persisted.
type AnalysisReport struct {
	// Patterns is the "most common problems" view, sorted by descending
	// occurrence count with the normalized key as tie-breaker.
	Patterns []IssuePattern `json:"patterns"`

	// Priorities is the "most problematic pages" view, sorted by
	// descending issue count with the URL as tie-breaker.
	Priorities []PriorityItem `json:"priorities"`

	// CategoryCounts maps WCAG principle buckets to occurrence counts.
	CategoryCounts map[string]int `json:"category_counts,omitempty"`

	// TotalIssues is the number of issue rows in the analyzed table.
	// It always equals both the sum of pattern occurrences and the sum
	// of priority counts.
	TotalIssues int `json:"total_issues"`

	// URLCount is the number of distinct URLs in the analyzed table.
	URLCount int `json:"url_count"`
}
