// Package checker invokes the external pa11y accessibility checker as a
// subprocess and parses its JSON reporter output into typed issues. The
// Runner interface decouples the pipeline from the real binary so the rest
// of the system is testable with a fake that returns canned output.
package checker
