package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
)

//go:embed views/*.html
var viewsFS embed.FS

func parseViews() (*template.Template, error) {
	return template.ParseFS(viewsFS, "views/*.html")
}

// page is embedded in every view's data.
type page struct {
	Title   string
	Flashes []string
}

// render executes the named view into a buffer first so that a template
// error still yields a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf bytes.Buffer
	if err := s.views.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error(r.Context(), "render failed", "view", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
