package analyze

import "strings"

// WCAG principle buckets used for category distribution.
const (
	CategoryContrast = "Perceivable (Colors/Contrast)"
	CategoryForms    = "Operable (Navigation/Forms)"
	CategoryMarkup   = "Robust (Code Quality)"
	CategoryMedia    = "Perceivable (Images/Media)"
	CategoryOther    = "Other"
)

// categoryKeywords maps message keywords to WCAG principle buckets.
// Checked in order; the first bucket with a keyword hit wins.
var categoryKeywords = []struct {
	category string
	words    []string
}{
	{CategoryContrast, []string{"contrast", "color"}},
	{CategoryForms, []string{"button", "input", "form", "label", "name", "title"}},
	{CategoryMarkup, []string{"markup", "html5", "obsolete"}},
	{CategoryMedia, []string{"alt", "image", "img"}},
}

// Category assigns an issue message to a WCAG principle bucket based on
// keywords. This is a coarse heuristic for the distribution view, not a
// conformance mapping.
func Category(message string) string {
	lower := strings.ToLower(message)
	for _, ck := range categoryKeywords {
		for _, word := range ck.words {
			if strings.Contains(lower, word) {
				return ck.category
			}
		}
	}
	return CategoryOther
}

// recommendations holds remediation guidance for well-known patterns.
// Keys match the labels produced by Normalize.
var recommendations = map[string]string{
	"Button missing accessible name":    "Add aria-label, aria-labelledby, or visible text to buttons; use descriptive button text instead of icons alone.",
	"Text input missing accessible name": "Associate inputs with label elements, or use aria-label / aria-labelledby attributes.",
	"Insufficient color contrast":       "Use darker colors for text and verify a 4.5:1 ratio for normal text, 3:1 for large text.",
	"Form field missing label":          "Use label elements with a for attribute, add aria-label attributes, and group related fields with fieldset/legend.",
	"Duplicate ID attribute":            "Ensure all IDs are unique on the page; prefer classes for styling and validate HTML for duplicates.",
	"Image missing alt text":            "Add meaningful alt attributes to informative images and empty alt attributes to decorative ones.",
	"Iframe missing title attribute":    "Give every iframe a non-empty title attribute describing its content.",
}

// Recommendation returns remediation guidance for a normalized pattern
// key, or empty string when none is known.
func Recommendation(key string) string {
	return recommendations[key]
}
