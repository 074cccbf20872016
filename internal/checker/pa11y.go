package checker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/a11yctl/a11yctl/internal/model"
)

// DefaultCommand is the executable name of the external checker.
const DefaultCommand = "pa11y"

// Options controls a single checker invocation.
type Options struct {
	// Standard is the accessibility standard to test against
	// (WCAG2A, WCAG2AA, WCAG2AAA). Empty uses the checker's default.
	Standard string

	// Timeout is the page-load budget passed to the checker itself.
	// The caller enforces its own deadline via context; this value keeps
	// the checker from outliving that deadline inside a hung page load.
	Timeout time.Duration

	// IncludeWarnings requests warning-level issues in addition to errors.
	IncludeWarnings bool

	// IncludeNotices requests notice-level issues in addition to errors.
	IncludeNotices bool

	// IgnoreCodes lists rule codes to suppress.
	IgnoreCodes []string

	// HideElements is a CSS selector for page regions to exclude.
	HideElements string
}

// Runner checks a single URL and returns the issues found.
//
// Design decision: The pipeline depends on this interface rather than on
// the pa11y binary directly. Tests inject a fake Runner with canned
// output, so pipeline ordering and failure-isolation behavior is testable
// on machines without pa11y installed.
type Runner interface {
	// Check runs the checker against the URL. A non-nil error means the
	// check could not produce results (timeout, crash, unparsable
	// output); callers record it as a failed result, never as a fatal
	// condition for the batch.
	Check(ctx context.Context, url string, opts Options) ([]model.Issue, error)
}

// Locate resolves the checker executable on the command search path.
// Returns ErrCheckerNotFound if it is missing, which callers treat as a
// startup-time fatal condition.
func Locate(name string) (string, error) {
	if name == "" {
		name = DefaultCommand
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w (looked for %q)", ErrCheckerNotFound, name)
	}
	return path, nil
}

// Pa11y is the production Runner backed by the pa11y CLI.
type Pa11y struct {
	// path is the resolved executable path.
	path string

	// logger for structured logging.
	logger *slog.Logger
}

// Pa11yOption configures a Pa11y runner.
type Pa11yOption func(*Pa11y)

// WithLogger sets a custom logger for the runner.
func WithLogger(logger *slog.Logger) Pa11yOption {
	return func(p *Pa11y) {
		p.logger = logger
	}
}

// NewPa11y creates a Runner that executes the binary at path.
// The path should come from Locate so absence of the tool is caught once
// at startup rather than once per URL.
func NewPa11y(path string, opts ...Pa11yOption) *Pa11y {
	p := &Pa11y{path: path}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Check runs pa11y against the URL with the JSON reporter and parses the
// result. pa11y exits non-zero when issues are found, so the exit code is
// ignored whenever stdout contains parsable JSON; only an empty or
// malformed stdout is treated as a failed invocation.
func (p *Pa11y) Check(ctx context.Context, url string, opts Options) ([]model.Issue, error) {
	args := buildArgs(url, opts)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.path, args...) //nolint:gosec // Path comes from Locate, args are built here.
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	p.logger.Debug("invoking checker", "url", url, "args", strings.Join(args, " "))
	runErr := cmd.Run()

	issues, parseErr := parseIssues(stdout.Bytes())
	if parseErr == nil {
		if runErr != nil {
			// Expected for pages with errors: pa11y signals issue
			// presence through the exit code.
			p.logger.Debug("checker exited non-zero with parsable output",
				"url", url, "exit_error", runErr)
		}
		return issues, nil
	}

	if ctx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("checker timed out: %w", ctx.Err())
	}
	if runErr != nil {
		return nil, fmt.Errorf("checker failed: %w (%s)", runErr, firstLine(stderr.String()))
	}
	return nil, fmt.Errorf("%w: %s", ErrUnparsableOutput, firstLine(stdout.String()))
}

// buildArgs assembles the pa11y command line for one URL.
func buildArgs(url string, opts Options) []string {
	args := []string{"--reporter", "json"}

	if opts.Standard != "" {
		args = append(args, "--standard", opts.Standard)
	}
	if opts.Timeout > 0 {
		args = append(args, "--timeout", strconv.FormatInt(opts.Timeout.Milliseconds(), 10))
	}
	if opts.IncludeWarnings {
		args = append(args, "--include-warnings")
	}
	if opts.IncludeNotices {
		args = append(args, "--include-notices")
	}
	if len(opts.IgnoreCodes) > 0 {
		args = append(args, "--ignore", strings.Join(opts.IgnoreCodes, ";"))
	}
	if opts.HideElements != "" {
		args = append(args, "--hide-elements", opts.HideElements)
	}

	return append(args, url)
}

// pa11yIssue mirrors one element of pa11y's JSON reporter output.
type pa11yIssue struct {
	Code     string `json:"code"`
	Type     string `json:"type"`
	Message  string `json:"message"`
	Context  string `json:"context"`
	Selector string `json:"selector"`
}

// parseIssues decodes the JSON reporter output into typed issues.
func parseIssues(output []byte) ([]model.Issue, error) {
	trimmed := bytes.TrimSpace(output)
	if len(trimmed) == 0 {
		return nil, ErrUnparsableOutput
	}

	var raw []pa11yIssue
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparsableOutput, err)
	}

	issues := make([]model.Issue, 0, len(raw))
	for _, ri := range raw {
		severity, _ := model.ParseSeverity(ri.Type)
		issues = append(issues, model.Issue{
			Code:     ri.Code,
			Severity: severity,
			Type:     severity.String(),
			Message:  ri.Message,
			Context:  ri.Context,
			Selector: ri.Selector,
		})
	}
	return issues, nil
}

// firstLine returns the first non-empty line of s, for compact error text.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return "no output"
}
