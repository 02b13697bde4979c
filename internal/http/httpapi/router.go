package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"texd/internal/http/handlers"
	"texd/internal/infra"
	"texd/internal/middleware"
)

// NewRouter wires the service routes and middleware chain.
func NewRouter(app *handlers.App, cfg *infra.Config, logger infra.Logger) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	if len(cfg.CORSOrigins) > 0 {
		r.Use(middleware.CORS(cfg.CORSOrigins))
	}
	if cfg.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute))
	}

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/environments", app.Environments)

	r.Route("/v1/render", func(r chi.Router) {
		r.Post("/", app.Render)
		r.Delete("/{key}", app.Cancel)
	})

	r.Get("/v1/bitmaps/{digest}", app.Bitmap)
	r.Get("/v1/stats/render-24h", app.RenderStats24h)

	return r
}
