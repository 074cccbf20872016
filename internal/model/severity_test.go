package model

import "testing"

// TestSeverityString tests the String method of Severity.
func TestSeverityString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		severity Severity
		expected string
	}{
		{SeverityNotice, "notice"},
		{SeverityWarning, "warning"},
		{SeverityError, "error"},
		{Severity(999), "unknown"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.expected, func(t *testing.T) {
			t.Parallel()
			if tc.severity.String() != tc.expected {
				t.Errorf("got %q, expected %q", tc.severity.String(), tc.expected)
			}
		})
	}
}

// TestParseSeverity tests conversion from the checker's wire format.
func TestParseSeverity(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected Severity
		ok       bool
	}{
		{"error", "error", SeverityError, true},
		{"warning", "warning", SeverityWarning, true},
		{"notice", "notice", SeverityNotice, true},
		{"mixed case", "Error", SeverityError, true},
		{"padded", "  warning ", SeverityWarning, true},
		{"unknown maps to notice", "fatal", SeverityNotice, false},
		{"empty", "", SeverityNotice, false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseSeverity(tc.input)
			if got != tc.expected || ok != tc.ok {
				t.Errorf("ParseSeverity(%q) = (%v, %v), expected (%v, %v)",
					tc.input, got, ok, tc.expected, tc.ok)
			}
		})
	}
}
