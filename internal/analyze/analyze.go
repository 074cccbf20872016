package analyze

import (
	"log/slog"
	"sort"

	"github.com/a11yctl/a11yctl/internal/model"
)

// Analyzer computes pattern and priority views from a results table.
type Analyzer struct {
	// logger for structured logging.
	logger *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets a custom logger for the analyzer.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// New creates an Analyzer with the given options.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a
}

// patternAccumulator collects per-pattern counts during the single pass
// over the table.
type patternAccumulator struct {
	occurrences int
	urls        map[string]struct{}
}

// Analyze computes the analysis report from a results table.
//
// Determinism: patterns sort by descending occurrence count with the
// normalized key as tie-breaker; priorities sort by descending issue
// count with the URL as tie-breaker. The same table therefore always
// yields byte-identical output.
//
// A table with zero issues (all URLs clean) produces empty pattern and
// priority lists, not an error. Issue rows whose message is missing or
// malformed are grouped under the unclassified bucket rather than
// dropped, so the pattern occurrence total always equals the table's
// issue row count.
func (a *Analyzer) Analyze(table *model.ResultsTable) *model.AnalysisReport {
	patterns := make(map[string]*patternAccumulator)
	priorities := make(map[string]int)
	categories := make(map[string]int)
	allURLs := make(map[string]struct{})

	totalIssues := 0
	for _, row := range table.Rows {
		allURLs[row.URL] = struct{}{}
		if !row.HasIssue() {
			continue
		}
		totalIssues++

		key := Normalize(row.IssueMessage)
		if key == "" {
			key = model.UnclassifiedKey
		}

		acc, ok := patterns[key]
		if !ok {
			acc = &patternAccumulator{urls: make(map[string]struct{})}
			patterns[key] = acc
		}
		acc.occurrences++
		acc.urls[row.URL] = struct{}{}

		priorities[row.URL]++
		categories[Category(row.IssueMessage)]++
	}

	report := &model.AnalysisReport{
		Patterns:       make([]model.IssuePattern, 0, len(patterns)),
		Priorities:     make([]model.PriorityItem, 0, len(priorities)),
		CategoryCounts: categories,
		TotalIssues:    totalIssues,
		URLCount:       len(allURLs),
	}

	for key, acc := range patterns {
		urls := make([]string, 0, len(acc.urls))
		for u := range acc.urls {
			urls = append(urls, u)
		}
		sort.Strings(urls)

		report.Patterns = append(report.Patterns, model.IssuePattern{
			Key:            key,
			Occurrences:    acc.occurrences,
			AffectedURLs:   len(urls),
			URLs:           urls,
			Category:       Category(key),
			ImpactScore:    acc.occurrences * len(urls),
			Recommendation: Recommendation(key),
		})
	}
	sort.Slice(report.Patterns, func(i, j int) bool {
		if report.Patterns[i].Occurrences != report.Patterns[j].Occurrences {
			return report.Patterns[i].Occurrences > report.Patterns[j].Occurrences
		}
		return report.Patterns[i].Key < report.Patterns[j].Key
	})

	for u, count := range priorities {
		report.Priorities = append(report.Priorities, model.PriorityItem{
			URL:         u,
			TotalIssues: count,
		})
	}
	sort.Slice(report.Priorities, func(i, j int) bool {
		if report.Priorities[i].TotalIssues != report.Priorities[j].TotalIssues {
			return report.Priorities[i].TotalIssues > report.Priorities[j].TotalIssues
		}
		return report.Priorities[i].URL < report.Priorities[j].URL
	})

	a.logger.Info("analysis complete",
		"issue_rows", totalIssues,
		"patterns", len(report.Patterns),
		"urls", report.URLCount,
	)

	return report
}
