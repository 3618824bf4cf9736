package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dgallion1/manview/internal/fetch"
	"github.com/dgallion1/manview/internal/manstore"
	"github.com/dgallion1/manview/internal/parser"
	"github.com/dgallion1/manview/internal/view"
)

// statusFor maps package sentinel errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, manstore.ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, manstore.ErrNotFound),
		errors.Is(err, view.ErrNotFound),
		errors.Is(err, fetch.ErrNoPage):
		return http.StatusNotFound
	case errors.Is(err, manstore.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, parser.ErrUnsupported):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, fetch.ErrManMissing):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeErr logs server-side failures and writes the JSON error body.
func (s *Server) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code >= 500 {
		s.log.Error("request failed", "path", r.URL.Path, "error", err)
	}
	jsonError(w, err.Error(), code)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
