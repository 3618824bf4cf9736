package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/manview/internal/render"
	"github.com/dgallion1/manview/internal/tracker"
)

// maxEventBytes caps view request bodies.
const maxEventBytes = 1 << 20

type createViewRequest struct {
	ID    string `json:"id"`
	Theme string `json:"theme"`
	Term  string `json:"term"`
}

// Seq orders events within one stream; zero means unsequenced.
type searchRequest struct {
	Term string `json:"term"`
	Seq  uint64 `json:"seq"`
}

type scrollRequest struct {
	ScrollY  float64            `json:"scroll_y"`
	Headings []tracker.Position `json:"headings"`
	Seq      uint64             `json:"seq"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxEventBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Server) handleCreateView(w http.ResponseWriter, r *http.Request) {
	var req createViewRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ID == "" {
		jsonError(w, "id is required", http.StatusBadRequest)
		return
	}
	theme, err := render.ParseTheme(req.Theme, s.theme)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	v, err := s.views.Open(r.Context(), req.ID, theme)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	if req.Term != "" {
		if v, err = s.views.Search(r.Context(), v.ID, req.Term); err != nil {
			s.writeErr(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusCreated, v.Snapshot())
}

func (s *Server) handleGetView(w http.ResponseWriter, r *http.Request) {
	v, err := s.views.Get(chi.URLParam(r, "viewID"))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v.Snapshot())
}

func (s *Server) handleSearchView(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	v, err := s.views.SearchSeq(r.Context(), chi.URLParam(r, "viewID"), req.Term, req.Seq)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v.Snapshot())
}

func (s *Server) handleScrollView(w http.ResponseWriter, r *http.Request) {
	var req scrollRequest
	if !decodeBody(w, r, &req) {
		return
	}
	active, err := s.views.ScrollSeq(chi.URLParam(r, "viewID"), req.Headings, req.ScrollY, req.Seq)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"active": active, "seq": req.Seq})
}

func (s *Server) handleDeleteView(w http.ResponseWriter, r *http.Request) {
	if err := s.views.Close(chi.URLParam(r, "viewID")); err != nil {
		s.writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
