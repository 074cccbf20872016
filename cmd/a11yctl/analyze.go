package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/a11yctl/a11yctl/internal/analyze"
	"github.com/a11yctl/a11yctl/internal/config"
	"github.com/a11yctl/a11yctl/internal/model"
	"github.com/a11yctl/a11yctl/internal/report"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <results.csv>",
		Short: "Analyze an exported results table for recurring problems",
		Long: `Analyze re-ingests a results CSV exported by the audit command and
computes two views:

  - the most common problems: issues grouped by a normalized message,
    ranked by total occurrences
  - the most problematic pages: URLs ranked by their issue count

Messages are normalized before grouping so page-specific values
(contrast ratios, element IDs) don't fragment one rule violation into
many single-member groups.

Examples:
  # Human-readable analysis on the terminal
  a11yctl analyze results.csv

  # Markdown report for sharing
  a11yctl analyze results.csv --markdown -o analysis.md

  # Export the ranked views as CSV
  a11yctl analyze results.csv --patterns-csv patterns.csv --priorities-csv priorities.csv`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyzeCmd,
	}

	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write the report to the specified file path (default: stdout)")
	cmd.Flags().String("patterns-csv", "",
		"Also write the pattern view as CSV to this path")
	cmd.Flags().String("priorities-csv", "",
		"Also write the priority view as CSV to this path")

	return cmd
}

// runAnalyzeCmd executes the analyze command.
func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	cfg := config.NewConfig()
	cfg.InputFile = args[0]

	var err error
	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	cfg.OutputFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	patternsCSV, err := cmd.Flags().GetString("patterns-csv")
	if err != nil {
		return err
	}
	prioritiesCSV, err := cmd.Flags().GetString("priorities-csv")
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(getVerboseFlag(cmd))
	slog.SetDefault(logger)

	rep, err := analyzeResultsFile(cfg.InputFile, logger)
	if err != nil {
		return err
	}

	if err := outputAnalysisReport(cfg, rep); err != nil {
		return err
	}
	if patternsCSV != "" {
		if err := writeViewCSV(patternsCSV, rep, report.WritePatternsCSV); err != nil {
			return err
		}
	}
	if prioritiesCSV != "" {
		if err := writeViewCSV(prioritiesCSV, rep, report.WritePrioritiesCSV); err != nil {
			return err
		}
	}
	return nil
}

// analyzeResultsFile parses and analyzes the results table.
func analyzeResultsFile(path string, logger *slog.Logger) (*model.AnalysisReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = f.Close() }()

	table, err := analyze.ReadResultsTable(f)
	if err != nil {
		return nil, err
	}

	return analyze.New(analyze.WithLogger(logger)).Analyze(table), nil
}

// outputAnalysisReport writes the analysis in the requested format.
// Default is the human-readable text report.
func outputAnalysisReport(cfg *config.Config, rep *model.AnalysisReport) error {
	output, closeFn, err := openOutput(cfg.OutputFile)
	if err != nil {
		return err
	}
	defer closeFn()

	switch {
	case cfg.JSONReport:
		_, err = report.NewJSONWriter(output, report.WithPrettyPrint()).WriteAnalysis(rep)
	case cfg.MarkdownReport:
		_, err = report.NewMarkdownWriter(output).WriteAnalysis(rep)
	default:
		_, err = report.NewSimpleWriter(output, report.WithVerbose(true)).WriteAnalysis(rep)
	}
	return err
}

// writeViewCSV writes one analysis view to its own CSV file.
func writeViewCSV(path string, rep *model.AnalysisReport, write func(output io.Writer, rep *model.AnalysisReport) error) error {
	f, closeFn, err := openOutput(path)
	if err != nil {
		return err
	}
	defer closeFn()
	return write(f, rep)
}
