package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// The per-URL timeout matches the original pa11y wrapper's 30-second
// budget; the other values are chosen for a polite local batch tool.
const (
	// DefaultCheckerCommand is the external checker executable name.
	DefaultCheckerCommand = "pa11y"

	// DefaultTimeout is the per-URL budget for one checker invocation.
	// 30 seconds covers a headless browser launch plus a slow page load;
	// URLs that exceed it are recorded as failed rather than retried.
	DefaultTimeout = 30 * time.Second

	// DefaultConcurrency is the number of checker processes run at once.
	// Each invocation launches a headless browser, so this is kept small
	// to bound memory use. Adjustable via the --concurrency flag.
	DefaultConcurrency = 4

	// DefaultLaunchInterval is the minimum spacing between checker
	// process launches. It smooths the load spike of starting several
	// headless browsers at the same instant.
	DefaultLaunchInterval = 250 * time.Millisecond

	// DefaultStandard is the accessibility standard checked against.
	DefaultStandard = "WCAG2AA"

	// DefaultAuditAddr is the listen address of the audit web app.
	DefaultAuditAddr = ":8080"

	// DefaultAnalyzeAddr is the listen address of the analysis web app.
	DefaultAnalyzeAddr = ":8081"

	// DefaultMaxUploadSize limits uploaded CSV size. 10MB is far beyond
	// any realistic URL list while keeping memory bounded.
	DefaultMaxUploadSize = 10 * 1024 * 1024

	// DefaultCacheTTL is how long the audit web app reuses a per-URL
	// result before re-checking on a subsequent upload.
	DefaultCacheTTL = 15 * time.Minute

	// AppName is the application name used for XDG directory paths.
	AppName = "a11yctl"
)

// Config holds all configuration options for a11yctl.
// It is populated from CLI flags and passed through the application via
// dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// because the number of options is manageable, and nesting would add
// complexity without significant benefit.
type Config struct {
	// CheckerCommand is the executable name (or path) of the external
	// accessibility checker.
	CheckerCommand string

	// Timeout is the per-URL budget for one checker invocation.
	Timeout time.Duration

	// Concurrency is the number of URLs checked simultaneously.
	Concurrency int

	// LaunchInterval is the minimum spacing between process launches.
	LaunchInterval time.Duration

	// Standard is the accessibility standard to test against
	// (WCAG2A, WCAG2AA, WCAG2AAA).
	Standard string

	// IncludeWarnings requests warning-level issues from the checker.
	IncludeWarnings bool

	// IncludeNotices requests notice-level issues from the checker.
	IncludeNotices bool

	// FetchTitles enables the best-effort page title fetch per URL.
	FetchTitles bool

	// Column is an explicit URL column name for ingestion. Empty means
	// resolve the column by header match or heuristic.
	Column string

	// InputFile is the CSV file to read (audit: URL list, analyze:
	// results table).
	InputFile string

	// OutputFile is the destination path. Empty writes to stdout.
	OutputFile string

	// JSONReport selects JSON output instead of the default CSV.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output instead of the default CSV.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// Verbose enables slog.LevelDebug logging.
	Verbose bool

	// ConfigFilePath is the path of the .a11yctl file. Empty triggers a
	// search of the working directory and the home directory.
	ConfigFilePath string

	// SiteConfigs holds per-site checker overrides loaded from the
	// config file.
	SiteConfigs *File

	// DBDir is the directory of the SQLite history database. Defaults to
	// the XDG data directory when saving is requested.
	DBDir string

	// SaveToDB persists the audit run to the history database.
	SaveToDB bool

	// Addr is the listen address for the serve command.
	Addr string
}

// NewConfig creates a Config with default values.
//
// Design decision: We use a constructor instead of relying on zero values
// because most defaults are non-zero. It also documents what the defaults
// are in one place.
func NewConfig() *Config {
	return &Config{
		CheckerCommand: DefaultCheckerCommand,
		Timeout:        DefaultTimeout,
		Concurrency:    DefaultConcurrency,
		LaunchInterval: DefaultLaunchInterval,
		Standard:       DefaultStandard,
	}
}

// XDGDataDir returns the XDG data directory for a11yctl.
// On Linux: ~/.local/share/a11yctl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for a11yctl.
// On Linux: ~/.config/a11yctl
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It is called once after CLI parsing, before any work begins, and
// returns the first problem found as a sentinel error.
func (c *Config) Validate() error {
	if c.CheckerCommand == "" {
		return ErrNoChecker
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.LaunchInterval < 0 {
		return ErrInvalidLaunchInterval
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	switch c.Standard {
	case "", "WCAG2A", "WCAG2AA", "WCAG2AAA":
	default:
		return ErrInvalidStandard
	}
	return nil
}
