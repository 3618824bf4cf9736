package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/manview/internal/api"
	"github.com/dgallion1/manview/internal/fetch"
	"github.com/dgallion1/manview/internal/manstore"
	"github.com/dgallion1/manview/internal/render"
	"github.com/dgallion1/manview/internal/view"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the manview HTTP server",
	Long: `Start the manview HTTP server.

Endpoints:
  /man/{id}           reader page with outline and active-section tracking
  /api/man?id=        raw markdown
  /api/man/{id}/...   outline, filter, render, fetch
  /api/views/...      per-page search and scroll state

Examples:
  manview serve
  manview serve --port 3000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

		cfg, err := loadConfig()
		if err != nil {
			log.Error("invalid configuration", "error", err)
			return err
		}
		if servePort != "" {
			cfg.Port = servePort
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		stats := render.NewStats(cfg.StatsWindow)
		renderer, err := render.New(render.Options{
			LightStyle:   cfg.LightStyle,
			DarkStyle:    cfg.DarkStyle,
			Disambiguate: cfg.DisambiguateAnchors,
			Stats:        stats,
		})
		if err != nil {
			return err
		}

		store := manstore.New(cfg.CacheDir, cfg.MaxDocumentBytes, log)
		if cfg.WatchCache {
			go func() {
				if err := store.Watch(ctx); err != nil {
					log.Warn("cache watcher stopped", "dir", cfg.CacheDir, "error", err)
				}
			}()
		}

		views := view.NewManager(store, renderer, log, view.Options{
			TTL:          cfg.ViewTTL,
			ScrollOffset: cfg.ScrollOffset,
			Disambiguate: cfg.DisambiguateAnchors,
		})
		views.Start(ctx)

		srv := api.NewServer(store, views, renderer, fetch.New(cfg.CacheDir, log), stats, log, cfg)

		httpServer := &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      srv,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		// Graceful shutdown.
		go func() {
			<-ctx.Done()
			log.Info("shutting down...")

			views.Stop()

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			httpServer.Shutdown(shutdownCtx)
		}()

		log.Info("starting manview", "port", cfg.Port, "cache_dir", cfg.CacheDir, "theme", cfg.Theme)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "port to listen on (default: $PORT or 8090)")
}
