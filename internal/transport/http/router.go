package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"macrocycle/internal/analysis"
	"macrocycle/internal/config"
	apperrors "macrocycle/internal/errors"
	"macrocycle/internal/infrastructure"
	customMiddleware "macrocycle/internal/middleware"
)

// RouterDeps are the collaborators of the API router.
type RouterDeps struct {
	Logger    *slog.Logger
	Telemetry *infrastructure.Telemetry
	Service   AnalysisService
	Options   analysis.Options
	Server    config.ServerConfig
	Version   string
}

// NewRouter wires the middleware chain and routes.
// Ordering: RequestID → RealIP → OTel → Logger → Recoverer → security → rate limit.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	// scrapes stay outside the instrumented group
	if deps.Telemetry != nil {
		r.Handle("/metrics", deps.Telemetry.Handler())
	}

	r.Group(func(r chi.Router) {
		if deps.Telemetry != nil {
			r.Use(customMiddleware.NewOTelMiddleware(deps.Telemetry).Handler)
		}
		r.Use(customMiddleware.StructuredLogger(deps.Logger))
		r.Use(customMiddleware.Recoverer(deps.Logger))
		r.Use(customMiddleware.SecurityHeaders)

		health := NewHealthHandler(deps.Version, deps.Logger)
		r.Get("/healthz", health.HealthCheck)

		r.Route("/api/v1", func(r chi.Router) {
			r.Use(render.SetContentType(render.ContentTypeJSON))
			if deps.Server.RateLimit.Enabled {
				r.Use(customMiddleware.NewRateLimiter(
					deps.Server.RateLimit.RPS,
					deps.Server.RateLimit.Burst,
					deps.Logger,
				).Handler)
			}
			r.Use(customMiddleware.MaxBodySize(deps.Server.MaxUploadBytes))

			analyze := NewAnalyzeHandler(deps.Service, deps.Options, deps.Server.MaxUploadBytes, deps.Logger)
			r.Mount("/", analyze.Routes())
		})

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			apperrors.WriteError(w, apperrors.ErrNotFound)
		})
	})

	return r
}
