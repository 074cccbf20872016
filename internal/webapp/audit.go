package webapp

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/a11yctl/a11yctl/internal/checker"
	"github.com/a11yctl/a11yctl/internal/config"
	"github.com/a11yctl/a11yctl/internal/ingest"
	"github.com/a11yctl/a11yctl/internal/model"
	"github.com/a11yctl/a11yctl/internal/pipeline"
	"github.com/a11yctl/a11yctl/internal/report"
)

// cacheCleanupInterval is how often expired cache entries are purged.
const cacheCleanupInterval = 5 * time.Minute

// AuditApp is the upload-and-audit web UI.
// It accepts a URL list CSV, runs the checker batch, and serves the
// results for browsing and download.
type AuditApp struct {
	// cfg holds checker and batch settings.
	cfg *config.Config

	// runner invokes the external checker.
	runner checker.Runner

	// logger for structured logging.
	logger *slog.Logger

	// runs caches completed audit reports by run ID.
	runs *cache.Cache

	// urlResults caches per-URL check results so a re-upload within the
	// TTL reuses them instead of launching the checker again.
	urlResults *cache.Cache

	// maxUploadSize bounds the uploaded CSV.
	maxUploadSize int64
}

// AuditAppOption configures an AuditApp.
type AuditAppOption func(*AuditApp)

// WithAuditLogger sets a custom logger for the audit app.
func WithAuditLogger(logger *slog.Logger) AuditAppOption {
	return func(a *AuditApp) {
		a.logger = logger
	}
}

// WithResultTTL overrides how long runs and per-URL results are kept.
func WithResultTTL(ttl time.Duration) AuditAppOption {
	return func(a *AuditApp) {
		a.runs = cache.New(ttl, cacheCleanupInterval)
		a.urlResults = cache.New(ttl, cacheCleanupInterval)
	}
}

// WithMaxUploadSize overrides the upload size limit.
func WithMaxUploadSize(n int64) AuditAppOption {
	return func(a *AuditApp) {
		if n > 0 {
			a.maxUploadSize = n
		}
	}
}

// NewAuditApp creates the audit web app.
func NewAuditApp(cfg *config.Config, runner checker.Runner, opts ...AuditAppOption) *AuditApp {
	a := &AuditApp{
		cfg:           cfg,
		runner:        runner,
		runs:          cache.New(config.DefaultCacheTTL, cacheCleanupInterval),
		urlResults:    cache.New(config.DefaultCacheTTL, cacheCleanupInterval),
		maxUploadSize: config.DefaultMaxUploadSize,
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.logger == nil {
		a.logger = slog.Default()
	}

	return a
}

// Router builds the HTTP routes for the audit app.
func (a *AuditApp) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/", a.handleIndex)
	r.Post("/audit", a.handleAudit)
	r.Get("/runs/{id}", a.handleRun)
	r.Get("/runs/{id}/results.csv", a.handleResultsCSV)
	r.Get("/runs/{id}/report.json", a.handleReportJSON)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	return r
}

// handleIndex serves the upload form.
func (a *AuditApp) handleIndex(w http.ResponseWriter, _ *http.Request) {
	renderPage(w, a.logger, "audit_index", map[string]string{})
}

// handleAudit ingests the uploaded CSV, runs the batch, and redirects to
// the results page. Input problems render the form again with a message;
// per-URL failures never fail the request.
func (a *AuditApp) handleAudit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.maxUploadSize)

	file, _, err := r.FormFile("file")
	if err != nil {
		a.renderIndexError(w, http.StatusBadRequest, "Could not read the uploaded file.")
		return
	}
	defer func() { _ = file.Close() }()

	reader := ingest.NewReader(ingest.WithColumn(a.cfg.Column), ingest.WithLogger(a.logger))
	urls, err := reader.URLs(file)
	if err != nil {
		a.renderIndexError(w, statusForIngestError(err), ingestErrorMessage(err))
		return
	}

	results, err := a.checkURLs(r, urls)
	if err != nil {
		// Only cancellation reaches here; the client is gone.
		a.logger.Warn("audit aborted", "error", err)
		return
	}

	rep := model.NewAuditReport(uuid.NewString())
	rep.Results = results
	rep.Duration = time.Since(rep.StartedAt)
	a.runs.Set(rep.RunID, rep, cache.DefaultExpiration)

	http.Redirect(w, r, "/runs/"+rep.RunID, http.StatusSeeOther)
}

// checkURLs runs the batch, reusing cached per-URL results and checking
// only the URLs without a fresh cached result.
func (a *AuditApp) checkURLs(r *http.Request, urls []string) ([]*model.CheckResult, error) {
	results := make([]*model.CheckResult, len(urls))

	misses := make([]string, 0, len(urls))
	missIdx := make([]int, 0, len(urls))
	for i, u := range urls {
		if cached, ok := a.urlResults.Get(u); ok {
			results[i] = cached.(*model.CheckResult)
			continue
		}
		misses = append(misses, u)
		missIdx = append(missIdx, i)
	}
	if len(misses) < len(urls) {
		a.logger.Info("reusing cached results", "cached", len(urls)-len(misses), "total", len(urls))
	}

	if len(misses) > 0 {
		processor := pipeline.NewBatchProcessor(
			a.pipelineFactory(),
			pipeline.WithConcurrency(a.cfg.Concurrency),
			pipeline.WithLaunchInterval(a.cfg.LaunchInterval),
			pipeline.WithBatchLogger(a.logger),
		)

		fresh, err := processor.Process(r.Context(), misses)
		if err != nil {
			return nil, err
		}
		for j, result := range fresh {
			results[missIdx[j]] = result
			if !result.Failed {
				a.urlResults.Set(result.URL, result, cache.DefaultExpiration)
			}
		}
	}

	return results, nil
}

// pipelineFactory builds the per-URL pipeline factory from the app config.
func (a *AuditApp) pipelineFactory() func() *pipeline.Pipeline {
	checkStep := pipeline.NewCheckStep(
		a.runner,
		checker.Options{
			Standard:        a.cfg.Standard,
			Timeout:         a.cfg.Timeout,
			IncludeWarnings: a.cfg.IncludeWarnings,
			IncludeNotices:  a.cfg.IncludeNotices,
		},
		a.cfg.Timeout,
		pipeline.WithSiteConfigs(a.cfg.SiteConfigs),
		pipeline.WithCheckLogger(a.logger),
	)

	steps := []pipeline.Step{checkStep}
	if a.cfg.FetchTitles {
		steps = append(steps, pipeline.NewTitleStep(nil, pipeline.WithTitleLogger(a.logger)))
	}

	return func() *pipeline.Pipeline {
		p := pipeline.New(pipeline.WithLogger(a.logger))
		p.AddSteps(steps...)
		return p
	}
}

// auditRow is the per-URL display row for the results page.
type auditRow struct {
	URL           string
	Title         string
	Issues        int
	Errors        int
	Warnings      int
	Notices       int
	Failed        bool
	FailureReason string
}

// handleRun serves the results page for a completed run.
func (a *AuditApp) handleRun(w http.ResponseWriter, r *http.Request) {
	rep, ok := a.getRun(r)
	if !ok {
		http.Error(w, "run not found or expired", http.StatusNotFound)
		return
	}

	rows := make([]auditRow, 0, len(rep.Results))
	for _, res := range rep.Results {
		rows = append(rows, auditRow{
			URL:           res.URL,
			Title:         res.Title,
			Issues:        res.IssueCount(),
			Errors:        res.CountBySeverity(model.SeverityError),
			Warnings:      res.CountBySeverity(model.SeverityWarning),
			Notices:       res.CountBySeverity(model.SeverityNotice),
			Failed:        res.Failed,
			FailureReason: res.FailureReason,
		})
	}

	renderPage(w, a.logger, "audit_results", map[string]any{
		"Report":  rep,
		"Summary": rep.Summary(),
		"Rows":    rows,
	})
}

// handleResultsCSV serves the canonical results table download.
func (a *AuditApp) handleResultsCSV(w http.ResponseWriter, r *http.Request) {
	rep, ok := a.getRun(r)
	if !ok {
		http.Error(w, "run not found or expired", http.StatusNotFound)
		return
	}

	attachCSV(w, "a11y-results-"+rep.RunID+".csv")
	if err := report.WriteResultsCSV(w, model.BuildResultsTable(rep.Results)); err != nil {
		a.logger.Error("csv export failed", "run_id", rep.RunID, "error", err)
	}
}

// handleReportJSON serves the full run report as JSON.
func (a *AuditApp) handleReportJSON(w http.ResponseWriter, r *http.Request) {
	rep, ok := a.getRun(r)
	if !ok {
		http.Error(w, "run not found or expired", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := report.NewJSONWriter(w, report.WithPrettyPrint()).WriteAudit(rep); err != nil {
		a.logger.Error("json export failed", "run_id", rep.RunID, "error", err)
	}
}

// getRun looks up the run addressed by the request.
func (a *AuditApp) getRun(r *http.Request) (*model.AuditReport, bool) {
	cached, ok := a.runs.Get(chi.URLParam(r, "id"))
	if !ok {
		return nil, false
	}
	return cached.(*model.AuditReport), true
}

// renderIndexError re-renders the upload form with an error message.
func (a *AuditApp) renderIndexError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	renderPage(w, a.logger, "audit_index", map[string]string{"Error": msg})
}

// statusForIngestError maps ingestion errors to HTTP status codes.
func statusForIngestError(err error) int {
	switch {
	case errors.Is(err, ingest.ErrEmptyInput), errors.Is(err, ingest.ErrNoURLs):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

// ingestErrorMessage maps ingestion errors to user-facing messages.
func ingestErrorMessage(err error) string {
	switch {
	case errors.Is(err, ingest.ErrEmptyInput):
		return "The uploaded file is empty."
	case errors.Is(err, ingest.ErrNoURLs):
		return "No URLs were found in the uploaded file."
	case errors.Is(err, ingest.ErrColumnNotFound):
		return "The configured URL column does not exist in the uploaded file."
	case errors.Is(err, ingest.ErrNoURLColumn):
		return "Could not find a URL column in the uploaded file."
	default:
		return "The uploaded file could not be parsed as CSV."
	}
}
