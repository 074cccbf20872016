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

	"github.com/a11yctl/a11yctl/internal/analyze"
	"github.com/a11yctl/a11yctl/internal/config"
	"github.com/a11yctl/a11yctl/internal/model"
	"github.com/a11yctl/a11yctl/internal/report"
)

// AnalyzeApp is the results analysis web UI.
// It re-ingests an exported results table and serves the pattern and
// priority views.
type AnalyzeApp struct {
	// analyzer computes the views.
	analyzer *analyze.Analyzer

	// logger for structured logging.
	logger *slog.Logger

	// analyses caches completed analysis reports by ID.
	analyses *cache.Cache

	// maxUploadSize bounds the uploaded CSV.
	maxUploadSize int64
}

// AnalyzeAppOption configures an AnalyzeApp.
type AnalyzeAppOption func(*AnalyzeApp)

// WithAnalyzeLogger sets a custom logger for the analysis app.
func WithAnalyzeLogger(logger *slog.Logger) AnalyzeAppOption {
	return func(a *AnalyzeApp) {
		a.logger = logger
	}
}

// WithAnalysisTTL overrides how long analyses are kept.
func WithAnalysisTTL(ttl time.Duration) AnalyzeAppOption {
	return func(a *AnalyzeApp) {
		a.analyses = cache.New(ttl, cacheCleanupInterval)
	}
}

// WithAnalyzeMaxUploadSize overrides the upload size limit.
func WithAnalyzeMaxUploadSize(n int64) AnalyzeAppOption {
	return func(a *AnalyzeApp) {
		if n > 0 {
			a.maxUploadSize = n
		}
	}
}

// NewAnalyzeApp creates the analysis web app.
func NewAnalyzeApp(opts ...AnalyzeAppOption) *AnalyzeApp {
	a := &AnalyzeApp{
		analyses:      cache.New(config.DefaultCacheTTL, cacheCleanupInterval),
		maxUploadSize: config.DefaultMaxUploadSize,
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.logger == nil {
		a.logger = slog.Default()
	}
	a.analyzer = analyze.New(analyze.WithLogger(a.logger))

	return a
}

// Router builds the HTTP routes for the analysis app.
func (a *AnalyzeApp) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/", a.handleIndex)
	r.Post("/analyze", a.handleAnalyze)
	r.Get("/analyses/{id}", a.handleAnalysis)
	r.Get("/analyses/{id}/patterns.csv", a.handlePatternsCSV)
	r.Get("/analyses/{id}/priorities.csv", a.handlePrioritiesCSV)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	return r
}

// handleIndex serves the upload form.
func (a *AnalyzeApp) handleIndex(w http.ResponseWriter, _ *http.Request) {
	renderPage(w, a.logger, "analyze_index", map[string]string{})
}

// handleAnalyze parses the uploaded results table, computes the views,
// and redirects to the analysis page.
func (a *AnalyzeApp) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.maxUploadSize)

	file, _, err := r.FormFile("file")
	if err != nil {
		a.renderIndexError(w, http.StatusBadRequest, "Could not read the uploaded file.")
		return
	}
	defer func() { _ = file.Close() }()

	table, err := analyze.ReadResultsTable(file)
	if err != nil {
		if errors.Is(err, analyze.ErrMissingColumns) {
			a.renderIndexError(w, http.StatusUnprocessableEntity,
				"The uploaded file does not look like an exported results table.")
			return
		}
		a.renderIndexError(w, http.StatusBadRequest, "The uploaded file could not be parsed as CSV.")
		return
	}

	rep := a.analyzer.Analyze(table)
	id := uuid.NewString()
	a.analyses.Set(id, rep, cache.DefaultExpiration)

	http.Redirect(w, r, "/analyses/"+id, http.StatusSeeOther)
}

// handleAnalysis serves the analysis page.
func (a *AnalyzeApp) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rep, ok := a.getAnalysis(id)
	if !ok {
		http.Error(w, "analysis not found or expired", http.StatusNotFound)
		return
	}

	renderPage(w, a.logger, "analyze_results", map[string]any{
		"ID":     id,
		"Report": rep,
	})
}

// handlePatternsCSV serves the pattern view download.
func (a *AnalyzeApp) handlePatternsCSV(w http.ResponseWriter, r *http.Request) {
	rep, ok := a.getAnalysis(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "analysis not found or expired", http.StatusNotFound)
		return
	}

	attachCSV(w, "a11y-patterns.csv")
	if err := report.WritePatternsCSV(w, rep); err != nil {
		a.logger.Error("patterns export failed", "error", err)
	}
}

// handlePrioritiesCSV serves the priority view download.
func (a *AnalyzeApp) handlePrioritiesCSV(w http.ResponseWriter, r *http.Request) {
	rep, ok := a.getAnalysis(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "analysis not found or expired", http.StatusNotFound)
		return
	}

	attachCSV(w, "a11y-priorities.csv")
	if err := report.WritePrioritiesCSV(w, rep); err != nil {
		a.logger.Error("priorities export failed", "error", err)
	}
}

// getAnalysis looks up a cached analysis by ID.
func (a *AnalyzeApp) getAnalysis(id string) (*model.AnalysisReport, bool) {
	cached, ok := a.analyses.Get(id)
	if !ok {
		return nil, false
	}
	return cached.(*model.AnalysisReport), true
}

// renderIndexError re-renders the upload form with an error message.
func (a *AnalyzeApp) renderIndexError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	renderPage(w, a.logger, "analyze_index", map[string]string{"Error": msg})
}
