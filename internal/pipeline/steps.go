package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/a11yctl/a11yctl/internal/checker"
	"github.com/a11yctl/a11yctl/internal/config"
	"github.com/a11yctl/a11yctl/internal/model"
)

// CheckStep runs the external accessibility checker against the URL.
// This is the dominant-cost step: one subprocess launch plus a headless
// page load per URL.
type CheckStep struct {
	// runner invokes the checker.
	runner checker.Runner

	// defaults are the base checker options for every URL.
	defaults checker.Options

	// timeout bounds one invocation. The checker process is killed when
	// it expires and the result is marked failed.
	timeout time.Duration

	// sites holds per-host option overrides, may be nil.
	sites *config.File

	// logger for structured logging.
	logger *slog.Logger
}

// CheckStepOption configures a CheckStep.
type CheckStepOption func(*CheckStep)

// WithSiteConfigs sets per-host checker overrides.
func WithSiteConfigs(sites *config.File) CheckStepOption {
	return func(s *CheckStep) {
		s.sites = sites
	}
}

// WithCheckLogger sets a custom logger for the check step.
func WithCheckLogger(logger *slog.Logger) CheckStepOption {
	return func(s *CheckStep) {
		s.logger = logger
	}
}

// NewCheckStep creates the checker invocation step.
func NewCheckStep(runner checker.Runner, defaults checker.Options, timeout time.Duration, opts ...CheckStepOption) *CheckStep {
	s := &CheckStep{
		runner:   runner,
		defaults: defaults,
		timeout:  timeout,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s
}

// Name returns the step name.
func (s *CheckStep) Name() string {
	return "check"
}

// Do invokes the checker for the URL. Invocation failures are downgraded
// to a failed result and never returned as errors: one unreachable URL
// must not abort the batch.
func (s *CheckStep) Do(ctx context.Context, result *model.CheckResult) error {
	opts, timeout := s.optionsFor(result.URL)

	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	issues, err := s.runner.Check(checkCtx, result.URL, opts)
	result.Duration = time.Since(start)

	if err != nil {
		s.logger.Warn("check failed", "url", result.URL, "error", err)
		result.Fail(err.Error())
		return nil
	}

	result.Issues = issues
	s.logger.Info("check completed",
		"url", result.URL,
		"issues", len(issues),
		"duration", result.Duration,
	)
	return nil
}

// optionsFor merges per-host overrides into the default checker options.
func (s *CheckStep) optionsFor(rawURL string) (checker.Options, time.Duration) {
	opts, timeout := s.defaults, s.timeout
	if s.sites == nil {
		return opts, timeout
	}

	host := hostOf(rawURL)
	if host == "" {
		return opts, timeout
	}

	site := s.sites.GetSiteConfig(host)
	if site.Standard != "" {
		opts.Standard = site.Standard
	}
	if len(site.IgnoreCodes) > 0 {
		opts.IgnoreCodes = site.IgnoreCodes
	}
	if site.HideElements != "" {
		opts.HideElements = site.HideElements
	}
	if site.TimeoutSeconds > 0 {
		timeout = time.Duration(site.TimeoutSeconds) * time.Second
		opts.Timeout = timeout
	}
	return opts, timeout
}

// hostOf extracts the hostname from a URL that may lack a scheme.
func hostOf(rawURL string) string {
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// titleMaxBodySize limits how much of a page the title fetch reads.
// Titles live in the document head, so 256KB is generous.
const titleMaxBodySize = 256 * 1024

// TitleStep fetches the page title for friendlier report rows.
// Strictly best effort: every failure is silent and the step never
// touches the issue data.
type TitleStep struct {
	// client is the HTTP client used for the fetch.
	client *http.Client

	// logger for structured logging.
	logger *slog.Logger
}

// TitleStepOption configures a TitleStep.
type TitleStepOption func(*TitleStep)

// WithTitleLogger sets a custom logger for the title step.
func WithTitleLogger(logger *slog.Logger) TitleStepOption {
	return func(s *TitleStep) {
		s.logger = logger
	}
}

// NewTitleStep creates the page title step.
// If client is nil, http.DefaultClient is used.
func NewTitleStep(client *http.Client, opts ...TitleStepOption) *TitleStep {
	s := &TitleStep{client: client}

	for _, opt := range opts {
		opt(s)
	}

	if s.client == nil {
		s.client = http.DefaultClient
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s
}

// Name returns the step name.
func (s *TitleStep) Name() string {
	return "title"
}

// Do fetches the page and extracts its <title>. Always returns nil.
func (s *TitleStep) Do(ctx context.Context, result *model.CheckResult) error {
	target := result.URL
	if !strings.Contains(target, "://") {
		target = "https://" + target
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		s.logger.Debug("title fetch skipped", "url", result.URL, "error", err)
		return nil
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Debug("title fetch failed", "url", result.URL, "error", err)
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	title, err := extractTitle(io.LimitReader(resp.Body, titleMaxBodySize))
	if err != nil {
		s.logger.Debug("title parse failed", "url", result.URL, "error", err)
		return nil
	}

	result.Title = title
	return nil
}

// extractTitle streams HTML tokens until the first <title> text node.
//
// Design decision: We use the x/net/html tokenizer rather than a full
// document parse because the title appears early in the document and
// tokenizing lets us stop reading as soon as we have it.
func extractTitle(r io.Reader) (string, error) {
	z := html.NewTokenizer(r)
	inTitle := false

	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return "", nil
			}
			return "", fmt.Errorf("tokenize: %w", z.Err())
		case html.StartTagToken:
			name, _ := z.TagName()
			if string(name) == "title" {
				inTitle = true
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if string(name) == "title" {
				inTitle = false
			}
		case html.TextToken:
			if inTitle {
				return strings.TrimSpace(string(z.Text())), nil
			}
		}
	}
}
