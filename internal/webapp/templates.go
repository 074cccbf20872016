package webapp

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

// templates holds the parsed page templates, one named template per page.
var templates = template.Must(template.ParseFS(templateFS, "templates/*.gohtml"))

// renderPage executes the named page template.
// Template execution failures after the header is written cannot be
// reported to the client, so they are only logged.
func renderPage(w http.ResponseWriter, logger *slog.Logger, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		logger.Error("template execution failed", "template", name, "error", err)
	}
}

// attachCSV sets the headers for a CSV file download.
func attachCSV(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}
