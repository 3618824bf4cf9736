package api

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/manview/internal/render"
	"github.com/dgallion1/manview/internal/view"
)

//go:embed templates/page.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/page.html"))

type pageData struct {
	view.Snapshot
	Content template.HTML
}

// handlePage opens a view and serves the full reader page for it.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	theme, err := render.ParseTheme(r.URL.Query().Get("theme"), s.theme)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	v, err := s.views.Open(r.Context(), chi.URLParam(r, "id"), theme)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	if q := r.URL.Query().Get("q"); q != "" {
		if v, err = s.views.Search(r.Context(), v.ID, q); err != nil {
			s.writeErr(w, r, err)
			return
		}
	}

	snap := v.Snapshot()
	var buf bytes.Buffer
	// Rendered markdown is trusted: it comes from the local cache.
	if err := pageTemplate.Execute(&buf, pageData{Snapshot: snap, Content: template.HTML(snap.HTML)}); err != nil {
		s.writeErr(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
