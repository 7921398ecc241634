// Package handler contains HTTP request handlers for the schedule arranger.
//
// HANDLER RESPONSIBILITIES:
// 1. Parse the incoming HTTP request (URL params, form fields, cookies)
// 2. Call business logic in the service layer
// 3. Write the HTTP response (a rendered page, JSON, or a redirect)
//
// Handlers contain no business logic — they are the glue between HTTP and
// the services.
package handler

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
)

// Renderer holds the parsed page templates and renders them on demand.
//
// TEMPLATE COMPOSITION:
// base.html defines the page skeleton with a {{template "content" .}}
// placeholder; each page file fills it with {{define "content"}}...{{end}}.
// Because every page redefines the same "content" block, each page must be
// parsed into its OWN template set paired with base.html — parsing them all
// together would leave only the last "content" definition standing.
//
// Parsing happens once at startup (expensive), rendering per request (cheap).
// A typo in any template fails server boot, not a user's first visit.
type Renderer struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

// pageNames are the content templates under the template directory, one
// .html file each, rendered inside base.html.
var pageNames = []string{"home", "login", "new", "schedule", "edit"}

// NewRenderer parses base.html plus every page template from templateDir.
func NewRenderer(templateDir string, logger *slog.Logger) (*Renderer, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.ParseFiles(
			filepath.Join(templateDir, "base.html"),
			filepath.Join(templateDir, name+".html"),
		)
		if err != nil {
			return nil, fmt.Errorf("parsing template %q: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &Renderer{pages: pages, logger: logger}, nil
}

// Render executes the named page template into the response.
//
// html/template escapes all interpolated values by default, so schedule
// names, memos and comments render as text even when someone submits
// "<script>" as a candidate name.
func (t *Renderer) Render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := t.pages[name]
	if !ok {
		t.logger.Error("unknown template", slog.String("name", name))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		t.logger.Error("failed to render template",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
