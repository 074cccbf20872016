package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/a11yctl/a11yctl/internal/checker"
	"github.com/a11yctl/a11yctl/internal/config"
	"github.com/a11yctl/a11yctl/internal/database"
	"github.com/a11yctl/a11yctl/internal/ingest"
	applog "github.com/a11yctl/a11yctl/internal/log"
	"github.com/a11yctl/a11yctl/internal/model"
	"github.com/a11yctl/a11yctl/internal/pipeline"
	"github.com/a11yctl/a11yctl/internal/report"
)

// NewAuditCmd creates the audit command.
func NewAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit <urls.csv>",
		Short: "Run the accessibility checker over a CSV of URLs",
		Long: `Audit reads a CSV containing URLs, runs the pa11y checker against each
one, and exports a results table.

The URL column is detected automatically: an exact header match (url,
link, address, ...) wins, otherwise the column whose values look like
URLs is used. Pass --column to name it explicitly. Duplicate URLs are
removed; the first occurrence keeps its position.

URLs the checker cannot process are recorded as failed rows in the
results table. They never abort the batch.

Examples:
  # Audit a URL list and write results.csv
  a11yctl audit urls.csv -o results.csv

  # Higher concurrency, warnings included
  a11yctl audit urls.csv --concurrency 8 --include-warnings

  # JSON report instead of the CSV table
  a11yctl audit urls.csv --json

  # Save the run to the history database for later comparison
  a11yctl audit urls.csv --save

Configuration file (.a11yctl) example:
  sites:
    example.com:
      standard: WCAG2AAA
      timeout_seconds: 60
      ignore:
        - WCAG2AA.Principle1.Guideline1_4.1_4_3.G18.Fail`,
		Args: cobra.ExactArgs(1),
		RunE: runAuditCmd,
	}

	// Checker behavior flags
	cmd.Flags().StringP("checker", "C", config.DefaultCheckerCommand,
		"External checker executable name or path")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Per-URL budget for one checker invocation")
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Number of URLs checked simultaneously")
	cmd.Flags().Duration("launch-interval", config.DefaultLaunchInterval,
		"Minimum spacing between checker process launches")
	cmd.Flags().StringP("standard", "s", config.DefaultStandard,
		"Accessibility standard (WCAG2A, WCAG2AA, WCAG2AAA)")
	cmd.Flags().Bool("include-warnings", false,
		"Also report warning-level issues")
	cmd.Flags().Bool("include-notices", false,
		"Also report notice-level issues")
	cmd.Flags().Bool("titles", false,
		"Fetch page titles for friendlier report rows (one extra request per URL)")

	// Input flags
	cmd.Flags().String("column", "",
		"Name of the URL column (default: auto-detect)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .a11yctl in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write the report to the specified file path (default: stdout)")

	// History flags
	cmd.Flags().Bool("save", false,
		"Save the run to the history database")

	return cmd
}

// runAuditCmd executes the audit command.
func runAuditCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildAuditConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(getVerboseFlag(cmd))
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runAudit(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}

// buildAuditConfig creates a Config from cobra command flags.
func buildAuditConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.InputFile = args[0]

	var err error

	cfg.CheckerCommand, err = cmd.Flags().GetString("checker")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	cfg.LaunchInterval, err = cmd.Flags().GetDuration("launch-interval")
	if err != nil {
		return nil, err
	}

	cfg.Standard, err = cmd.Flags().GetString("standard")
	if err != nil {
		return nil, err
	}

	cfg.IncludeWarnings, err = cmd.Flags().GetBool("include-warnings")
	if err != nil {
		return nil, err
	}

	cfg.IncludeNotices, err = cmd.Flags().GetBool("include-notices")
	if err != nil {
		return nil, err
	}

	cfg.FetchTitles, err = cmd.Flags().GetBool("titles")
	if err != nil {
		return nil, err
	}

	cfg.Column, err = cmd.Flags().GetString("column")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if err := loadSiteConfigs(cfg); err != nil {
		return nil, err
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.OutputFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.SaveToDB, err = cmd.Flags().GetBool("save")
	if err != nil {
		return nil, err
	}
	cfg.DBDir = config.XDGDataDir()

	return cfg, nil
}

// loadSiteConfigs resolves and loads the .a11yctl config file.
// An explicitly specified path must exist; otherwise a missing file just
// means no per-site overrides.
func loadSiteConfigs(cfg *config.Config) error {
	explicit := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		sites, err := config.LoadConfigFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.SiteConfigs = sites
		return nil
	}
	if explicit {
		return fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}
	cfg.SiteConfigs = &config.File{
		Sites: make(map[string]config.SiteConfig),
	}
	return nil
}

// setupLogger creates a structured logger based on verbosity setting.
// The handler is wrapped so secrets in URLs and attribute values never
// reach the log output.
func setupLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(applog.NewRedactHandler(handler))
}

// runAudit executes the audit.
func runAudit(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// Fail before any work if the checker is not installed.
	checkerPath, err := checker.Locate(cfg.CheckerCommand)
	if err != nil {
		return err
	}

	urls, err := readURLs(cfg, logger)
	if err != nil {
		return err
	}

	logger.Info("starting audit",
		"input", cfg.InputFile,
		"urls", len(urls),
		"concurrency", cfg.Concurrency,
		"standard", cfg.Standard,
	)
	fmt.Fprintf(os.Stderr, "Checking %d URLs (concurrency %d)...\n", len(urls), cfg.Concurrency)

	runner := checker.NewPa11y(checkerPath, checker.WithLogger(logger))
	processor := pipeline.NewBatchProcessor(
		auditPipelineFactory(cfg, runner, logger),
		pipeline.WithConcurrency(cfg.Concurrency),
		pipeline.WithLaunchInterval(cfg.LaunchInterval),
		pipeline.WithBatchLogger(logger),
	)

	rep := model.NewAuditReport(uuid.NewString())
	results, procErr := processor.Process(ctx, urls)
	rep.Results = results
	rep.Duration = time.Since(rep.StartedAt)

	summary := rep.Summary()
	fmt.Fprintf(os.Stderr, "Done in %s: %d issues on %d of %d URLs (%d failed)\n",
		rep.Duration.Round(time.Millisecond),
		summary.TotalIssues, summary.URLsWithIssues, summary.URLCount, summary.FailedURLs)

	if err := outputAuditReport(cfg, rep); err != nil {
		return err
	}

	if cfg.SaveToDB {
		if err := saveAuditRun(ctx, cfg, rep, logger); err != nil {
			logger.Error("failed to save run", "run_id", rep.RunID, "error", err)
		}
	}

	// Cancellation surfaces after the partial results are written.
	if procErr != nil && errors.Is(procErr, context.Canceled) {
		return fmt.Errorf("audit cancelled; partial results written")
	}
	return procErr
}

// readURLs ingests the URL list from the input file.
func readURLs(cfg *config.Config, logger *slog.Logger) ([]string, error) {
	f, err := os.Open(cfg.InputFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = f.Close() }()

	reader := ingest.NewReader(ingest.WithColumn(cfg.Column), ingest.WithLogger(logger))
	return reader.URLs(f)
}

// auditPipelineFactory builds the per-URL pipeline factory.
func auditPipelineFactory(cfg *config.Config, runner checker.Runner, logger *slog.Logger) func() *pipeline.Pipeline {
	checkStep := pipeline.NewCheckStep(
		runner,
		checker.Options{
			Standard:        cfg.Standard,
			Timeout:         cfg.Timeout,
			IncludeWarnings: cfg.IncludeWarnings,
			IncludeNotices:  cfg.IncludeNotices,
		},
		cfg.Timeout,
		pipeline.WithSiteConfigs(cfg.SiteConfigs),
		pipeline.WithCheckLogger(logger),
	)

	steps := []pipeline.Step{checkStep}
	if cfg.FetchTitles {
		steps = append(steps, pipeline.NewTitleStep(nil, pipeline.WithTitleLogger(logger)))
	}

	return func() *pipeline.Pipeline {
		p := pipeline.New(pipeline.WithLogger(logger))
		p.AddSteps(steps...)
		return p
	}
}

// outputAuditReport writes the report in the requested format.
// Default is the canonical results CSV; --json and --markdown switch the
// format.
func outputAuditReport(cfg *config.Config, rep *model.AuditReport) error {
	output, closeFn, err := openOutput(cfg.OutputFile)
	if err != nil {
		return err
	}
	defer closeFn()

	switch {
	case cfg.JSONReport:
		_, err = report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint()).WriteAudit(rep)
	case cfg.MarkdownReport:
		_, err = report.NewMarkdownWriter(output).WriteAudit(rep)
	default:
		err = report.WriteResultsCSV(output, model.BuildResultsTable(rep.Results))
	}
	return err
}

// openOutput opens the destination file, creating parent directories,
// or returns stdout when no path is given.
func openOutput(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// saveAuditRun persists the run to the history database.
func saveAuditRun(ctx context.Context, cfg *config.Config, rep *model.AuditReport, logger *slog.Logger) error {
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.SaveRun(ctx, rep); err != nil {
		return err
	}

	logger.Info("run saved", "run_id", rep.RunID, "dir", cfg.DBDir)
	fmt.Fprintf(os.Stderr, "Saved run %s\n", rep.RunID)
	return nil
}
