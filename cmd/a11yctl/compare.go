package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/a11yctl/a11yctl/internal/config"
	"github.com/a11yctl/a11yctl/internal/database"
	"github.com/a11yctl/a11yctl/internal/model"
)

// NewCompareCmd creates the compare command.
// This command compares audit runs stored in the history database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [run-id] [run-id]",
		Short: "Compare audit runs from the history database",
		Long: `Compare shows how accessibility issues changed between two audit runs.

With no arguments, the two most recent runs are compared. With two run
IDs, those runs are compared (the older baseline first). The comparison
shows per-URL issue count changes, URLs that appeared or disappeared
between runs, and the overall issue totals.

Runs are recorded with 'a11yctl audit --save'.

Examples:
  # Compare the two most recent runs
  a11yctl compare

  # Compare two specific runs
  a11yctl compare 2f8a31... 9cd210...

  # List stored runs
  a11yctl compare --list

  # JSON output for tooling
  a11yctl compare --json`,
		Args: cobra.MaximumNArgs(2),
		RunE: runCompareCmd,
	}

	cmd.Flags().BoolP("list", "l", false,
		"List stored runs instead of comparing")
	cmd.Flags().BoolP("json", "j", false,
		"Output the comparison in JSON format")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	list, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	ctx := context.Background()

	if list {
		return listRuns(ctx, cmd, db)
	}

	baseline, current, err := resolveRuns(ctx, db, args)
	if err != nil {
		return err
	}

	diff := compareRuns(baseline, current)
	if jsonOutput {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(diff)
	}
	printComparison(cmd, diff)
	return nil
}

// listRuns prints the stored run history.
func listRuns(ctx context.Context, cmd *cobra.Command, db *database.AuditDB) error {
	runs, err := db.ListRuns(ctx)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No stored runs found.")
		fmt.Fprintln(out, "\nUse 'a11yctl audit --save <urls.csv>' to record a run.")
		return nil
	}

	fmt.Fprintf(out, "Stored runs (%d):\n\n", len(runs))
	fmt.Fprintf(out, "  %-36s  %-20s  %6s  %6s  %6s\n", "Run ID", "Started", "URLs", "Issues", "Failed")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 82))
	for _, meta := range runs {
		fmt.Fprintf(out, "  %-36s  %-20s  %6d  %6d  %6d\n",
			meta.RunID,
			meta.StartedAt.Format("2006-01-02 15:04:05"),
			meta.URLCount,
			meta.TotalIssues,
			meta.FailedURLs,
		)
	}
	return nil
}

// resolveRuns loads the two runs to compare: the two given IDs, or the
// two most recent runs when no IDs are given. The older run becomes the
// baseline.
func resolveRuns(ctx context.Context, db *database.AuditDB, args []string) (baseline, current *model.AuditReport, err error) {
	switch len(args) {
	case 2:
		baseline, err = mustGetRun(ctx, db, args[0])
		if err != nil {
			return nil, nil, err
		}
		current, err = mustGetRun(ctx, db, args[1])
		if err != nil {
			return nil, nil, err
		}
	case 0:
		runs, err := db.ListRuns(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to list runs: %w", err)
		}
		if len(runs) < 2 {
			return nil, nil, errors.New("need at least two stored runs to compare (use 'a11yctl audit --save')")
		}
		// ListRuns returns newest first.
		current, err = mustGetRun(ctx, db, runs[0].RunID)
		if err != nil {
			return nil, nil, err
		}
		baseline, err = mustGetRun(ctx, db, runs[1].RunID)
		if err != nil {
			return nil, nil, err
		}
	default:
		return nil, nil, errors.New("pass zero run IDs (latest two) or exactly two")
	}

	if baseline.StartedAt.After(current.StartedAt) {
		baseline, current = current, baseline
	}
	return baseline, current, nil
}

// mustGetRun loads a run or fails with a helpful message.
func mustGetRun(ctx context.Context, db *database.AuditDB, runID string) (*model.AuditReport, error) {
	run, err := db.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, fmt.Errorf("run not found: %s (use 'a11yctl compare --list')", runID)
	}
	return run, nil
}

// URLChange is a per-URL issue count difference between two runs.
type URLChange struct {
	// URL is the page.
	URL string `json:"url"`

	// Before and After are the issue counts in each run. -1 marks a URL
	// absent from that run.
	Before int `json:"before"`
	After  int `json:"after"`
}

// RunComparison is the difference between two audit runs.
type RunComparison struct {
	// BaselineID and CurrentID identify the compared runs.
	BaselineID string `json:"baseline_id"`
	CurrentID  string `json:"current_id"`

	// BaselineStarted and CurrentStarted are the run start times.
	BaselineStarted time.Time `json:"baseline_started"`
	CurrentStarted  time.Time `json:"current_started"`

	// TotalBefore and TotalAfter are the overall issue totals.
	TotalBefore int `json:"total_before"`
	TotalAfter  int `json:"total_after"`

	// Improved lists URLs whose issue count dropped, Regressed those
	// where it rose. Added and Removed list URLs present in only one run.
	Improved  []URLChange `json:"improved"`
	Regressed []URLChange `json:"regressed"`
	Added     []URLChange `json:"added"`
	Removed   []URLChange `json:"removed"`
}

// compareRuns computes the per-URL differences between two runs.
// Failed URLs are skipped on both sides: a failed check says nothing
// about the page's issues.
func compareRuns(baseline, current *model.AuditReport) *RunComparison {
	diff := &RunComparison{
		BaselineID:      baseline.RunID,
		CurrentID:       current.RunID,
		BaselineStarted: baseline.StartedAt,
		CurrentStarted:  current.StartedAt,
		TotalBefore:     baseline.Summary().TotalIssues,
		TotalAfter:      current.Summary().TotalIssues,
	}

	before := issueCountsByURL(baseline)
	after := issueCountsByURL(current)

	for url, b := range before {
		a, ok := after[url]
		switch {
		case !ok:
			diff.Removed = append(diff.Removed, URLChange{URL: url, Before: b, After: -1})
		case a < b:
			diff.Improved = append(diff.Improved, URLChange{URL: url, Before: b, After: a})
		case a > b:
			diff.Regressed = append(diff.Regressed, URLChange{URL: url, Before: b, After: a})
		}
	}
	for url, a := range after {
		if _, ok := before[url]; !ok {
			diff.Added = append(diff.Added, URLChange{URL: url, Before: -1, After: a})
		}
	}

	for _, list := range [][]URLChange{diff.Improved, diff.Regressed, diff.Added, diff.Removed} {
		sort.Slice(list, func(i, j int) bool { return list[i].URL < list[j].URL })
	}

	return diff
}

// issueCountsByURL maps each successfully checked URL to its issue count.
func issueCountsByURL(rep *model.AuditReport) map[string]int {
	counts := make(map[string]int, len(rep.Results))
	for _, r := range rep.Results {
		if r.Failed {
			continue
		}
		counts[r.URL] = r.IssueCount()
	}
	return counts
}

// printComparison writes the human-readable comparison.
func printComparison(cmd *cobra.Command, diff *RunComparison) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Comparing runs:\n")
	fmt.Fprintf(out, "  baseline: %s (%s)\n", diff.BaselineID, diff.BaselineStarted.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "  current:  %s (%s)\n\n", diff.CurrentID, diff.CurrentStarted.Format("2006-01-02 15:04:05"))

	delta := diff.TotalAfter - diff.TotalBefore
	switch {
	case delta < 0:
		fmt.Fprintf(out, "Total issues: %d -> %d (improved by %d)\n\n", diff.TotalBefore, diff.TotalAfter, -delta)
	case delta > 0:
		fmt.Fprintf(out, "Total issues: %d -> %d (regressed by %d)\n\n", diff.TotalBefore, diff.TotalAfter, delta)
	default:
		fmt.Fprintf(out, "Total issues: %d (unchanged)\n\n", diff.TotalAfter)
	}

	printChanges(out, "Improved URLs", diff.Improved)
	printChanges(out, "Regressed URLs", diff.Regressed)
	printChanges(out, "New URLs", diff.Added)
	printChanges(out, "Removed URLs", diff.Removed)
}

// printChanges writes one change section, skipping empty ones.
func printChanges(out interface{ Write([]byte) (int, error) }, header string, changes []URLChange) {
	if len(changes) == 0 {
		return
	}

	fmt.Fprintf(out, "%s (%d):\n", header, len(changes))
	for _, c := range changes {
		switch {
		case c.Before < 0:
			fmt.Fprintf(out, "  + %s: %d issues\n", c.URL, c.After)
		case c.After < 0:
			fmt.Fprintf(out, "  - %s (was %d issues)\n", c.URL, c.Before)
		default:
			fmt.Fprintf(out, "  * %s: %d -> %d\n", c.URL, c.Before, c.After)
		}
	}
	fmt.Fprintln(out)
}
