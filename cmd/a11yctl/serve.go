package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/a11yctl/a11yctl/internal/checker"
	"github.com/a11yctl/a11yctl/internal/config"
	"github.com/a11yctl/a11yctl/internal/webapp"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve <audit|analyze>",
		Short: "Serve the upload-a-CSV web apps",
		Long: `Serve starts one of the two web apps.

The audit app accepts a CSV of URLs, runs the checker against each one,
and shows a per-URL results page with CSV and JSON downloads. The
analyze app accepts an exported results table and shows the most common
problems and the most problematic pages.

Results live in an in-memory cache and expire after a while. Nothing is
persisted: restart the server and the uploaded runs are gone.

Examples:
  # Audit app on the default port
  a11yctl serve audit

  # Analysis app on a custom address
  a11yctl serve analyze --addr :9000`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"audit", "analyze"},
		RunE:      runServeCmd,
	}

	cmd.Flags().String("addr", "",
		"Listen address (default: :8080 for audit, :8081 for analyze)")

	// Checker flags, used by the audit app only.
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
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .a11yctl in current or home directory)")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, args []string) error {
	logger := setupLogger(getVerboseFlag(cmd))
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return err
	}

	switch args[0] {
	case "audit":
		cfg, err := buildServeConfig(cmd)
		if err != nil {
			return err
		}
		if addr == "" {
			addr = config.DefaultAuditAddr
		}
		cfg.Addr = addr

		// Fail at startup if the checker is not installed, not on the
		// first upload.
		checkerPath, err := checker.Locate(cfg.CheckerCommand)
		if err != nil {
			return err
		}
		runner := checker.NewPa11y(checkerPath, checker.WithLogger(logger))

		app := webapp.NewAuditApp(cfg, runner, webapp.WithAuditLogger(logger))
		logger.Info("starting audit web app", "addr", addr)
		return webapp.Serve(ctx, addr, app.Router(), logger)

	case "analyze":
		if addr == "" {
			addr = config.DefaultAnalyzeAddr
		}

		app := webapp.NewAnalyzeApp(webapp.WithAnalyzeLogger(logger))
		logger.Info("starting analysis web app", "addr", addr)
		return webapp.Serve(ctx, addr, app.Router(), logger)

	default:
		return fmt.Errorf("unknown app %q (expected audit or analyze)", args[0])
	}
}

// buildServeConfig creates the audit app configuration from flags.
func buildServeConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

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

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if err := loadSiteConfigs(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}
