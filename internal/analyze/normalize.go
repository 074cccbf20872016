package analyze

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// fallbackKeyLength bounds the normalized key when no pattern matches.
// Checker messages embed page-specific values (ratios, colors, IDs), so
// truncation keeps near-identical messages from fragmenting into
// one-member groups.
const fallbackKeyLength = 80

// normalizePatterns maps raw checker messages to stable pattern labels.
// Messages for the same rule differ per page (contrast ratios, element
// IDs), so each entry collapses a message family into one key. Order
// matters: the first match wins.
var normalizePatterns = []struct {
	re    *regexp.Regexp
	label string
}{
	{regexp.MustCompile(`(?i)this button element does not have a name available`), "Button missing accessible name"},
	{regexp.MustCompile(`(?i)this textinput element does not have a name available`), "Text input missing accessible name"},
	{regexp.MustCompile(`(?i)this form field should be labelled in some way`), "Form field missing label"},
	{regexp.MustCompile(`(?i)insufficient contrast`), "Insufficient color contrast"},
	{regexp.MustCompile(`(?i)duplicate id attribute value`), "Duplicate ID attribute"},
	{regexp.MustCompile(`(?i)iframe element requires a non-empty title attribute`), "Iframe missing title attribute"},
	{regexp.MustCompile(`(?i)presentational markup used that has become obsolete`), "Obsolete HTML5 markup"},
	{regexp.MustCompile(`(?i)img element.*missing (an )?alt`), "Image missing alt text"},
	{regexp.MustCompile(`(?i)link.*missing.*text`), "Link missing descriptive text"},
}

// Normalize collapses a raw issue message into a stable grouping key.
// The message is NFC-normalized and trimmed first so byte-level encoding
// differences between exports don't split groups. Returns the empty
// string for empty input; callers bucket that as unclassified.
func Normalize(message string) string {
	msg := strings.TrimSpace(norm.NFC.String(message))
	if msg == "" {
		return ""
	}

	for _, p := range normalizePatterns {
		if p.re.MatchString(msg) {
			return p.label
		}
	}

	if len(msg) > fallbackKeyLength {
		return msg[:fallbackKeyLength] + "..."
	}
	return msg
}
