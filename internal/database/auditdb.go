package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/a11yctl/a11yctl/internal/model"
)

// DBFileName is the name of the SQLite database file inside the data
// directory.
const DBFileName = "a11yctl.db"

// AuditDB provides SQLite-based storage for audit run history.
// It manages connection pooling and provides methods for saving and
// retrieving runs.
//
// Design decision: We store the full report as JSON alongside extracted
// summary columns. The summary columns let history listings avoid
// deserializing whole reports, while the JSON keeps the schema stable as
// the report shape evolves.
type AuditDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures AuditDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates an AuditDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*AuditDB, error) {
	dbPath := filepath.Join(dbDir, DBFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	adb := &AuditDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := adb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return adb, nil
}

// Close closes the database connection.
func (adb *AuditDB) Close() error {
	return adb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (adb *AuditDB) createTables() error {
	schema := `
	-- Audit runs store one record per completed batch, with summary
	-- columns extracted for cheap history listings and the full report
	-- as JSON for retrieval and comparison.
	CREATE TABLE IF NOT EXISTS audit_runs (
		run_id TEXT PRIMARY KEY,
		started_at DATETIME NOT NULL,
		duration_ms INTEGER NOT NULL,
		url_count INTEGER NOT NULL,
		total_issues INTEGER NOT NULL,
		error_count INTEGER NOT NULL,
		warning_count INTEGER NOT NULL,
		notice_count INTEGER NOT NULL,
		failed_urls INTEGER NOT NULL,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON audit_runs(started_at);
	`

	_, err := adb.db.ExecContext(context.Background(), schema)
	return err
}

// RunMetadata contains summary information about a stored run.
// This is used for displaying run history without loading full reports.
type RunMetadata struct {
	// RunID is the unique identifier of the run.
	RunID string

	// StartedAt is when the run began.
	StartedAt time.Time

	// Duration is the wall-clock time of the whole batch.
	Duration time.Duration

	// URLCount is the number of URLs processed.
	URLCount int

	// TotalIssues is the total issue count across the run.
	TotalIssues int

	// ErrorCount, WarningCount, and NoticeCount break TotalIssues down
	// by severity.
	ErrorCount   int
	WarningCount int
	NoticeCount  int

	// FailedURLs is the number of URLs the checker could not process.
	FailedURLs int
}

// SaveRun persists a completed audit run.
// Saving the same run ID twice replaces the stored report, which lets a
// re-export after a partial save recover cleanly.
func (adb *AuditDB) SaveRun(ctx context.Context, report *model.AuditReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	summary := report.Summary()
	query := `
	INSERT INTO audit_runs (run_id, started_at, duration_ms, url_count, total_issues,
		error_count, warning_count, notice_count, failed_urls, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(run_id) DO UPDATE SET
		started_at = excluded.started_at,
		duration_ms = excluded.duration_ms,
		url_count = excluded.url_count,
		total_issues = excluded.total_issues,
		error_count = excluded.error_count,
		warning_count = excluded.warning_count,
		notice_count = excluded.notice_count,
		failed_urls = excluded.failed_urls,
		report_json = excluded.report_json
	`

	_, err = adb.db.ExecContext(ctx, query,
		report.RunID,
		report.StartedAt.UTC().Format(timestampFormat),
		report.Duration.Milliseconds(),
		summary.URLCount,
		summary.TotalIssues,
		summary.ErrorCount,
		summary.WarningCount,
		summary.NoticeCount,
		summary.FailedURLs,
		string(reportJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	return nil
}

// GetRun retrieves a stored run by ID.
// Returns nil without error when no run with that ID exists.
func (adb *AuditDB) GetRun(ctx context.Context, runID string) (*model.AuditReport, error) {
	query := `SELECT report_json FROM audit_runs WHERE run_id = ?`

	var reportJSON string
	err := adb.db.QueryRowContext(ctx, query, runID).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var report model.AuditReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse run report: %w", err)
	}

	return &report, nil
}

// LatestRun retrieves the most recently started run.
// Returns nil without error when the database is empty.
func (adb *AuditDB) LatestRun(ctx context.Context) (*model.AuditReport, error) {
	query := `
	SELECT report_json FROM audit_runs
	ORDER BY started_at DESC
	LIMIT 1
	`

	var reportJSON string
	err := adb.db.QueryRowContext(ctx, query).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}

	var report model.AuditReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse run report: %w", err)
	}

	return &report, nil
}

// ListRuns returns metadata for all stored runs, newest first.
// This is more efficient than loading full reports when only the
// history listing is needed.
func (adb *AuditDB) ListRuns(ctx context.Context) ([]RunMetadata, error) {
	query := `
	SELECT run_id, started_at, duration_ms, url_count, total_issues,
		error_count, warning_count, notice_count, failed_urls
	FROM audit_runs
	ORDER BY started_at DESC
	`

	rows, err := adb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var meta RunMetadata
		var startedAt string
		var durationMS int64

		err := rows.Scan(
			&meta.RunID,
			&startedAt,
			&durationMS,
			&meta.URLCount,
			&meta.TotalIssues,
			&meta.ErrorCount,
			&meta.WarningCount,
			&meta.NoticeCount,
			&meta.FailedURLs,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run metadata: %w", err)
		}

		meta.StartedAt = parseTimestamp(startedAt)
		meta.Duration = time.Duration(durationMS) * time.Millisecond
		results = append(results, meta)
	}

	return results, rows.Err()
}

// DeleteRun removes a stored run.
// Deleting a run that does not exist is not an error.
func (adb *AuditDB) DeleteRun(ctx context.Context, runID string) error {
	if _, err := adb.db.ExecContext(ctx, `DELETE FROM audit_runs WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return nil
}

// timestampFormat is the format runs are stored with. It matches SQLite's
// default datetime format so ORDER BY on the column sorts chronologically.
const timestampFormat = "2006-01-02 15:04:05"

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	timestampFormat,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999",
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
