package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for a11yctl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "a11yctl",
		Short: "Accessibility audit toolkit built around the pa11y checker",
		Long: `a11yctl runs the pa11y accessibility checker over batches of URLs and
analyzes the results for recurring problems.

The audit command reads a CSV of URLs, checks each one, and exports a
results table. The analyze command re-ingests an exported table and
reports the most common problems and the most problematic pages.

pa11y must be installed and on PATH: npm install -g pa11y`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewAuditCmd())
	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
