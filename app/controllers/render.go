package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"portfolio/app/middleware"
	"portfolio/app/views"
)

// Renderer writes HTML pages and JSON responses with consistent error handling.
type Renderer struct {
	templates *views.Templates
	site      views.Site
	logger    *zap.Logger
}

// NewRenderer creates a Renderer.
func NewRenderer(templates *views.Templates, site views.Site, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{templates: templates, site: site, logger: logger}
}

// Site returns the site metadata pages are rendered with.
func (rn *Renderer) Site() views.Site { return rn.site }

// Page builds the layout data for a request.
func (rn *Renderer) Page(r *http.Request, title string, data any) *views.Page {
	return &views.Page{
		Site:    rn.site,
		Title:   title,
		Path:    r.URL.Path,
		Preview: middleware.IsPreview(r.Context()),
		Data:    data,
	}
}

// HTML renders the named page with status.
func (rn *Renderer) HTML(w http.ResponseWriter, r *http.Request, status int, name string, page *views.Page) {
	var buf bytes.Buffer
	if err := rn.templates.Render(&buf, name, page); err != nil {
		rn.logger.Error("template render failed", zap.String("page", name), zap.Error(err))
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (rn *Renderer) JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		rn.logger.Warn("json encode failed", zap.Error(err))
	}
}

// Error responds with {"error": message} for API requests. HTML clients get
// the not found page for 404 and a plain text body otherwise.
func (rn *Renderer) Error(w http.ResponseWriter, r *http.Request, message string, status int) {
	switch {
	case wantsJSON(r):
		rn.JSON(w, status, map[string]string{"error": message})
	case status == http.StatusNotFound:
		rn.HTML(w, r, status, views.PageNotFound, rn.Page(r, "404", nil))
	default:
		http.Error(w, message, status)
	}
}

func wantsJSON(r *http.Request) bool {
	return middleware.IsAPIPath(r.URL.Path) || strings.Contains(r.Header.Get("Accept"), "application/json")
}
