package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/a11yctl/a11yctl/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *AuditDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// sampleRun builds a report with the given run ID and start time.
func sampleRun(runID string, startedAt time.Time) *model.AuditReport {
	report := model.NewAuditReport(runID)
	report.StartedAt = startedAt
	report.Duration = 3 * time.Second

	withIssues := model.NewCheckResult("https://a.example/")
	withIssues.Issues = []model.Issue{
		{Code: "WCAG2AA.1", Severity: model.SeverityError, Type: "error", Message: "contrast"},
	}
	failed := model.NewCheckResult("https://b.example/")
	failed.Fail("checker timed out")

	report.Results = []*model.CheckResult{withIssues, failed}
	return report
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, DBFileName)); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		opts := Options{
			CreateIfNotExists: false,
			EnableWAL:         true,
		}

		if _, err := Open(filepath.Join(t.TempDir(), "missing"), opts); err == nil {
			t.Error("expected error for missing database")
		}
	})
}

// TestSaveAndGetRun tests the save/retrieve round-trip.
func TestSaveAndGetRun(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	original := sampleRun("run-0001", time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))
	if err := db.SaveRun(ctx, original); err != nil {
		t.Fatalf("failed to save run: %v", err)
	}

	stored, err := db.GetRun(ctx, "run-0001")
	if err != nil {
		t.Fatalf("failed to get run: %v", err)
	}
	if stored == nil {
		t.Fatal("expected stored run, got nil")
	}

	if stored.RunID != original.RunID {
		t.Errorf("run ID changed: %q vs %q", stored.RunID, original.RunID)
	}
	if len(stored.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(stored.Results))
	}
	if stored.Results[0].URL != "https://a.example/" || stored.Results[0].IssueCount() != 1 {
		t.Errorf("unexpected first result: %+v", stored.Results[0])
	}
	if !stored.Results[1].Failed || stored.Results[1].FailureReason != "checker timed out" {
		t.Errorf("failure flag lost: %+v", stored.Results[1])
	}
}

// TestGetRunNotFound tests retrieval of a missing run.
func TestGetRunNotFound(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)

	stored, err := db.GetRun(context.Background(), "no-such-run")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored != nil {
		t.Errorf("expected nil for missing run, got %+v", stored)
	}
}

// TestSaveRunReplacesExisting tests the upsert behavior.
func TestSaveRunReplacesExisting(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	first := sampleRun("run-0001", time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))
	if err := db.SaveRun(ctx, first); err != nil {
		t.Fatalf("failed to save run: %v", err)
	}

	second := sampleRun("run-0001", time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	second.Results = second.Results[:1]
	if err := db.SaveRun(ctx, second); err != nil {
		t.Fatalf("failed to re-save run: %v", err)
	}

	stored, err := db.GetRun(ctx, "run-0001")
	if err != nil {
		t.Fatalf("failed to get run: %v", err)
	}
	if len(stored.Results) != 1 {
		t.Errorf("expected replaced run with 1 result, got %d", len(stored.Results))
	}

	runs, err := db.ListRuns(ctx)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 stored run after replace, got %d", len(runs))
	}
}

// TestListRuns tests the history listing.
func TestListRuns(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	older := sampleRun("run-0001", time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))
	newer := sampleRun("run-0002", time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC))
	for _, run := range []*model.AuditReport{older, newer} {
		if err := db.SaveRun(ctx, run); err != nil {
			t.Fatalf("failed to save run: %v", err)
		}
	}

	runs, err := db.ListRuns(ctx)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].RunID != "run-0002" || runs[1].RunID != "run-0001" {
		t.Errorf("runs not newest-first: %v, %v", runs[0].RunID, runs[1].RunID)
	}
	if runs[0].TotalIssues != 1 || runs[0].FailedURLs != 1 {
		t.Errorf("summary columns wrong: %+v", runs[0])
	}
	if runs[0].Duration != 3*time.Second {
		t.Errorf("duration lost: %v", runs[0].Duration)
	}
}

// TestLatestRun tests retrieval of the most recent run.
func TestLatestRun(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	latest, err := db.LatestRun(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if latest != nil {
		t.Errorf("expected nil on empty database, got %+v", latest)
	}

	for _, run := range []*model.AuditReport{
		sampleRun("run-0001", time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)),
		sampleRun("run-0002", time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)),
	} {
		if err := db.SaveRun(ctx, run); err != nil {
			t.Fatalf("failed to save run: %v", err)
		}
	}

	latest, err = db.LatestRun(ctx)
	if err != nil {
		t.Fatalf("failed to get latest run: %v", err)
	}
	if latest == nil || latest.RunID != "run-0002" {
		t.Errorf("expected run-0002 as latest, got %+v", latest)
	}
}

// TestDeleteRun tests run removal.
func TestDeleteRun(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.SaveRun(ctx, sampleRun("run-0001", time.Now().UTC())); err != nil {
		t.Fatalf("failed to save run: %v", err)
	}
	if err := db.DeleteRun(ctx, "run-0001"); err != nil {
		t.Fatalf("failed to delete run: %v", err)
	}

	stored, err := db.GetRun(ctx, "run-0001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored != nil {
		t.Error("run still present after delete")
	}

	// Deleting again is a no-op.
	if err := db.DeleteRun(ctx, "run-0001"); err != nil {
		t.Errorf("deleting missing run should not error: %v", err)
	}
}
