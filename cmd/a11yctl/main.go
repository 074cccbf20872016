// Package main provides the entry point for the a11yctl CLI.
//
// a11yctl audits web pages for accessibility issues by driving the pa11y
// checker over a CSV of URLs, and analyzes exported results tables for
// recurring problems and priority pages.
//
// Usage:
//
//	a11yctl audit urls.csv
//	a11yctl analyze results.csv
//
// See --help for all available options.
package main

// main is the entry point for a11yctl.
func main() {
	Execute()
}
