package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterOptions bounds request handling
type RouterOptions struct {
	MaxConcurrent  int
	RequestTimeout time.Duration
}

// NewRouter mounts the API routes
func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	if opts.MaxConcurrent < 1 {
		opts.MaxConcurrent = 1
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Health)

	r.Route("/v1", func(v1 chi.Router) {
		v1.Use(middleware.Timeout(opts.RequestTimeout))
		v1.Get("/features", h.Features)
		v1.Get("/artifacts", h.Artifacts)
		v1.With(middleware.Throttle(opts.MaxConcurrent)).Post("/predictions", h.Predict)
	})
	return r
}
