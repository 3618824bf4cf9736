package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/manview/internal/config"
	"github.com/dgallion1/manview/internal/document"
	"github.com/dgallion1/manview/internal/fetch"
	"github.com/dgallion1/manview/internal/render"
	"github.com/dgallion1/manview/internal/view"
)

// PageStore loads and lists cached pages.
type PageStore interface {
	Load(ctx context.Context, id string) (*document.Document, error)
	List(pattern string) ([]string, error)
	Invalidate(id string)
}

// Fetcher writes a man page into the cache.
type Fetcher interface {
	Fetch(ctx context.Context, topic string) (fetch.Result, error)
}

// Server is the HTTP API server for manview.
type Server struct {
	router   chi.Router
	pages    PageStore
	views    *view.Manager
	renderer view.Renderer
	fetcher  Fetcher
	stats    *render.Stats
	theme    render.Theme
	log      *slog.Logger
	cfg      config.Config
}

// NewServer creates and configures the HTTP server. fetcher and stats may
// be nil.
func NewServer(pages PageStore, views *view.Manager, renderer view.Renderer, fetcher Fetcher, stats *render.Stats, log *slog.Logger, cfg config.Config) *Server {
	theme, err := render.ParseTheme(cfg.Theme, render.ThemeLight)
	if err != nil {
		theme = render.ThemeLight
	}
	s := &Server{
		pages:    pages,
		views:    views,
		renderer: renderer,
		fetcher:  fetcher,
		stats:    stats,
		theme:    theme,
		log:      log,
		cfg:      cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)

	r.Get("/man/{id}", s.handlePage)

	r.Route("/api", func(r chi.Router) {
		r.Get("/man", s.handleMan)
		r.Get("/pages", s.handleListPages)
		r.Get("/man/{id}/outline", s.handleOutline)
		r.Get("/man/{id}/filter", s.handleFilter)
		r.Get("/man/{id}/render", s.handleRender)
		r.Get("/stats/render", s.handleRenderStats)

		r.Post("/views", s.handleCreateView)
		r.Get("/views/{viewID}", s.handleGetView)
		r.Put("/views/{viewID}/search", s.handleSearchView)
		r.Post("/views/{viewID}/scroll", s.handleScrollView)
		r.Delete("/views/{viewID}", s.handleDeleteView)

		// Authenticated endpoints.
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
			r.Post("/man/{id}/fetch", s.handleFetch)
		})
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
