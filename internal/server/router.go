package server

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/velora-hq/onboardai/internal/api"
	"github.com/velora-hq/onboardai/internal/api/handlers"
	"github.com/velora-hq/onboardai/internal/api/middleware"
)

// Pinger reports database connectivity for the health endpoint.
// Satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type RouterConfig struct {
	DB           Pinger
	AskHandler   *handlers.AskHandler
	BriefHandler *handlers.BriefHandler
	SyncHandler  *handlers.SyncHandler
	IntelHandler *handlers.IntelHandler
	UsageHandler *handlers.UsageHandler

	// WebDist is the built frontend directory; the SPA is served from it
	// when it exists.
	WebDist string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		database := "disconnected"
		if cfg.DB != nil && cfg.DB.Ping(req.Context()) == nil {
			database = "connected"
		}
		api.Success(w, http.StatusOK, map[string]string{
			"status":   "ok",
			"database": database,
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/ask", cfg.AskHandler.Ask)

		r.Get("/brief", cfg.BriefHandler.Generate)
		r.Post("/brief", cfg.BriefHandler.Generate)
		r.Get("/brief/archive", cfg.BriefHandler.Archive)

		r.Get("/sync/status", cfg.SyncHandler.Status)
		r.Post("/sync/trigger", cfg.SyncHandler.Trigger)

		r.Get("/intel/feed", cfg.IntelHandler.Feed)
		r.Get("/intel/search", cfg.IntelHandler.Search)
		r.Post("/intel/refresh", cfg.IntelHandler.Refresh)

		r.Get("/usage", cfg.UsageHandler.Usage)
	})

	if cfg.WebDist != "" {
		if _, err := os.Stat(cfg.WebDist); err == nil {
			r.NotFound(spaHandler(cfg.WebDist))
		}
	}

	return r
}

// spaHandler serves the built frontend, falling back to index.html for
// client-side routes.
func spaHandler(dist string) http.HandlerFunc {
	fileServer := http.FileServer(http.Dir(dist))
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			api.Error(w, http.StatusNotFound, "not found")
			return
		}

		path := filepath.Join(dist, filepath.Clean("/"+r.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			fileServer.ServeHTTP(w, r)
			return
		}

		http.ServeFile(w, r, filepath.Join(dist, "index.html"))
	}
}
