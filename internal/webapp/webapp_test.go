package webapp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/a11yctl/a11yctl/internal/checker"
	"github.com/a11yctl/a11yctl/internal/config"
	"github.com/a11yctl/a11yctl/internal/model"
)

// fakeRunner returns canned issues per URL and counts invocations.
type fakeRunner struct {
	mu     sync.Mutex
	calls  map[string]int
	issues map[string][]model.Issue
	errs   map[string]error
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		calls:  make(map[string]int),
		issues: make(map[string][]model.Issue),
		errs:   make(map[string]error),
	}
}

func (f *fakeRunner) Check(_ context.Context, url string, _ checker.Options) ([]model.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[url]++
	if err := f.errs[url]; err != nil {
		return nil, err
	}
	return f.issues[url], nil
}

func (f *fakeRunner) callCount(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

// uploadCSV builds a multipart request body with one CSV file field.
func uploadCSV(t *testing.T, content string) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "input.csv")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := io.WriteString(fw, content); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}
	return &body, mw.FormDataContentType()
}

// newTestAuditApp builds an audit app with a single-worker config so the
// fake runner sees deterministic behavior.
func newTestAuditApp(runner checker.Runner) *AuditApp {
	cfg := config.NewConfig()
	cfg.Concurrency = 1
	cfg.LaunchInterval = 0
	return NewAuditApp(cfg, runner)
}

// postUpload posts the CSV to the handler and returns the response.
func postUpload(t *testing.T, handler http.Handler, path, csvContent string) *httptest.ResponseRecorder {
	t.Helper()

	body, contentType := uploadCSV(t, csvContent)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// TestAuditAppFlow tests the upload, results page, and download flow.
func TestAuditAppFlow(t *testing.T) {
	t.Parallel()

	runner := newFakeRunner()
	runner.issues["https://a.example/"] = []model.Issue{
		{Code: "WCAG2AA.1", Severity: model.SeverityError, Type: "error", Message: "contrast"},
	}
	runner.errs["https://b.example/"] = fmt.Errorf("connection refused")

	handler := newTestAuditApp(runner).Router()

	rec := postUpload(t, handler, "/audit", "url\nhttps://a.example/\nhttps://b.example/\n")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d: %s", rec.Code, rec.Body.String())
	}
	runPath := rec.Header().Get("Location")
	if !strings.HasPrefix(runPath, "/runs/") {
		t.Fatalf("unexpected redirect target %q", runPath)
	}

	// Results page shows both URLs; the failed one stays in the table.
	pageReq := httptest.NewRequest(http.MethodGet, runPath, nil)
	pageRec := httptest.NewRecorder()
	handler.ServeHTTP(pageRec, pageReq)
	if pageRec.Code != http.StatusOK {
		t.Fatalf("results page returned %d", pageRec.Code)
	}
	page := pageRec.Body.String()
	if !strings.Contains(page, "https://a.example/") || !strings.Contains(page, "https://b.example/") {
		t.Error("expected both URLs on the results page")
	}
	if !strings.Contains(page, "connection refused") {
		t.Error("expected failure reason on the results page")
	}

	// CSV download round-trips the canonical columns.
	csvReq := httptest.NewRequest(http.MethodGet, runPath+"/results.csv", nil)
	csvRec := httptest.NewRecorder()
	handler.ServeHTTP(csvRec, csvReq)
	if csvRec.Code != http.StatusOK {
		t.Fatalf("csv download returned %d", csvRec.Code)
	}
	if !strings.Contains(csvRec.Header().Get("Content-Disposition"), "attachment") {
		t.Error("expected attachment disposition")
	}
	csvBody := csvRec.Body.String()
	if !strings.HasPrefix(csvBody, strings.Join(model.ResultsHeader(), ",")) {
		t.Errorf("unexpected CSV header: %q", firstLine(csvBody))
	}
	if !strings.Contains(csvBody, "contrast") {
		t.Error("expected issue row in CSV")
	}

	// JSON download parses.
	jsonReq := httptest.NewRequest(http.MethodGet, runPath+"/report.json", nil)
	jsonRec := httptest.NewRecorder()
	handler.ServeHTTP(jsonRec, jsonReq)
	if jsonRec.Code != http.StatusOK {
		t.Fatalf("json download returned %d", jsonRec.Code)
	}
	if jsonRec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("unexpected content type %q", jsonRec.Header().Get("Content-Type"))
	}
}

// TestAuditAppInputErrors tests the upload validation paths.
func TestAuditAppInputErrors(t *testing.T) {
	t.Parallel()

	handler := newTestAuditApp(newFakeRunner()).Router()

	t.Run("empty file", func(t *testing.T) {
		t.Parallel()

		rec := postUpload(t, handler, "/audit", "")
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("expected 422, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "empty") {
			t.Error("expected empty-file message on the form")
		}
	})

	t.Run("no usable URLs", func(t *testing.T) {
		t.Parallel()

		rec := postUpload(t, handler, "/audit", "name,age\nalice,30\n")
		if rec.Code != http.StatusUnprocessableEntity && rec.Code != http.StatusBadRequest {
			t.Errorf("expected input error status, got %d", rec.Code)
		}
	})

	t.Run("unknown run is 404", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/runs/no-such-run", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})
}

// TestAuditAppReusesCachedResults tests that a re-upload within the TTL
// does not invoke the checker again for the same URL.
func TestAuditAppReusesCachedResults(t *testing.T) {
	t.Parallel()

	runner := newFakeRunner()
	app := newTestAuditApp(runner)
	handler := app.Router()

	input := "url\nhttps://a.example/\n"
	for i := 0; i < 2; i++ {
		rec := postUpload(t, handler, "/audit", input)
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("upload %d returned %d", i+1, rec.Code)
		}
	}

	if got := runner.callCount("https://a.example/"); got != 1 {
		t.Errorf("expected 1 checker invocation, got %d", got)
	}
}

// TestAnalyzeAppFlow tests the upload, analysis page, and download flow.
func TestAnalyzeAppFlow(t *testing.T) {
	t.Parallel()

	handler := NewAnalyzeApp().Router()

	input := strings.Join([]string{
		"url,issue_count,issue_type,issue_message",
		"https://a.example/,2,error,contrast",
		"https://a.example/,2,error,contrast",
		"https://b.example/,1,warning,alt-text",
	}, "\n")

	rec := postUpload(t, handler, "/analyze", input)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d: %s", rec.Code, rec.Body.String())
	}
	analysisPath := rec.Header().Get("Location")

	pageReq := httptest.NewRequest(http.MethodGet, analysisPath, nil)
	pageRec := httptest.NewRecorder()
	handler.ServeHTTP(pageRec, pageReq)
	if pageRec.Code != http.StatusOK {
		t.Fatalf("analysis page returned %d", pageRec.Code)
	}
	page := pageRec.Body.String()
	if !strings.Contains(page, "contrast") || !strings.Contains(page, "alt-text") {
		t.Error("expected both patterns on the analysis page")
	}

	csvReq := httptest.NewRequest(http.MethodGet, analysisPath+"/patterns.csv", nil)
	csvRec := httptest.NewRecorder()
	handler.ServeHTTP(csvRec, csvReq)
	if csvRec.Code != http.StatusOK {
		t.Fatalf("patterns download returned %d", csvRec.Code)
	}
	lines := strings.Split(strings.TrimSpace(csvRec.Body.String()), "\n")
	if lines[0] != "issue_key,occurrence_count,affected_url_count" {
		t.Errorf("unexpected patterns header: %q", lines[0])
	}
	if len(lines) != 3 || !strings.HasPrefix(lines[1], "contrast,2,1") {
		t.Errorf("unexpected patterns body: %v", lines)
	}

	prioReq := httptest.NewRequest(http.MethodGet, analysisPath+"/priorities.csv", nil)
	prioRec := httptest.NewRecorder()
	handler.ServeHTTP(prioRec, prioReq)
	if prioRec.Code != http.StatusOK {
		t.Fatalf("priorities download returned %d", prioRec.Code)
	}
	if !strings.Contains(prioRec.Body.String(), "https://a.example/,2") {
		t.Errorf("unexpected priorities body: %q", prioRec.Body.String())
	}
}

// TestAnalyzeAppRejectsWrongShape tests the missing-columns path.
func TestAnalyzeAppRejectsWrongShape(t *testing.T) {
	t.Parallel()

	handler := NewAnalyzeApp().Router()

	rec := postUpload(t, handler, "/analyze", "name,age\nalice,30\n")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "results table") {
		t.Error("expected shape error message on the form")
	}
}

// firstLine returns the first line of s.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
