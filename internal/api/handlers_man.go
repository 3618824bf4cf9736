package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/manview/internal/document"
	"github.com/dgallion1/manview/internal/render"
)

// handleMan returns the raw markdown for ?id=.
func (s *Server) handleMan(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		jsonError(w, "Missing 'id' parameter", http.StatusBadRequest)
		return
	}
	doc, err := s.pages.Load(r.Context(), id)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"content": doc.Text()})
}

func (s *Server) handleListPages(w http.ResponseWriter, r *http.Request) {
	ids, err := s.pages.List(r.URL.Query().Get("match"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pages": ids})
}

type outlineEntry struct {
	document.HeadingOccurrence
	Indent   int  `json:"indent"`
	Linkable bool `json:"linkable"`
}

func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := s.pages.Load(r.Context(), id)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	outline := s.views.Outline(doc)
	entries := make([]outlineEntry, len(outline))
	for i, h := range outline {
		entries[i] = outlineEntry{HeadingOccurrence: h, Indent: h.Indent(), Linkable: h.Linkable()}
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "outline": entries})
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := s.pages.Load(r.Context(), id)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	term := r.URL.Query().Get("q")
	writeJSON(w, http.StatusOK, map[string]any{
		"id":    id,
		"term":  term,
		"lines": document.FilterByTerm(doc, term).Lines(),
	})
}

// handleRender returns the rendered HTML fragment for the (optionally
// filtered) page.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	theme, err := render.ParseTheme(r.URL.Query().Get("theme"), s.theme)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	doc, err := s.pages.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	page, err := s.renderer.Render(r.Context(), document.FilterByTerm(doc, r.URL.Query().Get("q")), theme)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(page.HTML))
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	if s.fetcher == nil {
		jsonError(w, "fetch unavailable", http.StatusServiceUnavailable)
		return
	}
	id := chi.URLParam(r, "id")
	res, err := s.fetcher.Fetch(r.Context(), id)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.pages.Invalidate(id)
	writeJSON(w, http.StatusCreated, res)
}
