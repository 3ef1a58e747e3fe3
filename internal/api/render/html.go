package render

import (
	"fmt"
	"html/template"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/townboard/server/web"
)

// Renderer executes the embedded page templates. Templates are parsed once
// at construction.
type Renderer struct {
	templates *template.Template
}

func New() (*Renderer, error) {
	templates, err := template.ParseFS(web.Templates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{templates: templates}, nil
}

// Page renders one template as a full HTML response. Template failures
// surface as a 500; by then headers may already be written, so the body is
// best-effort.
func (r *Renderer) Page(w http.ResponseWriter, req *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := r.templates.ExecuteTemplate(w, name, data); err != nil {
		zerolog.Ctx(req.Context()).Error().Err(err).Str("template", name).Msg("template error")
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}
