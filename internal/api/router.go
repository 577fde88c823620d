// Package api wires the HTTP routes of the dashboard service.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/dvloznov/pharmacy-sales/internal/api/handlers"
	"github.com/dvloznov/pharmacy-sales/internal/api/middleware"
	"github.com/dvloznov/pharmacy-sales/internal/pipeline"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	MaxUploadBytes int64
	RequestTimeout time.Duration
}

// NewRouter creates the chi router with all API routes mounted.
func NewRouter(svc pipeline.Summarizer, opts RouterOptions, log zerolog.Logger) http.Handler {
	dashboards := handlers.NewDashboardsHandler(svc, opts.MaxUploadBytes)
	runsHandler := handlers.NewRunsHandler(svc)

	r := chi.NewRouter()

	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS)
	if opts.RequestTimeout > 0 {
		r.Use(chimw.Timeout(opts.RequestTimeout))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/dashboards", dashboards.Create)
		r.Post("/dashboards/gcs", dashboards.CreateFromGCS)

		r.Get("/runs", runsHandler.ListRuns)
		r.Get("/runs/{id}", runsHandler.GetRun)
		r.Get("/runs/{id}/dashboard", runsHandler.GetRunDashboard)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusNotFound, "Not found")
	})

	return r
}
