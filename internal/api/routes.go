package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/guaraci/paylink/internal/metrics"
	"github.com/guaraci/paylink/internal/ratelimit"
)

// RouterOptions holds the cross-cutting pieces of the router.
type RouterOptions struct {
	// AllowedOrigins for CORS; empty allows any origin.
	AllowedOrigins []string
	// Limiter is applied to every route when set.
	Limiter ratelimit.Limiter
	Metrics *metrics.Metrics
}

// SetupRoutes configures all routes.
func SetupRoutes(h *Handlers, hc *HealthChecker, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	if opts.Limiter != nil {
		r.Use(ratelimit.Middleware(opts.Limiter, ratelimit.KeyByIP,
			ratelimit.OnReject(func(*http.Request) { opts.Metrics.RateLimited() }),
		))
	}

	r.Get("/", hc.HandleHealth)
	r.Get("/health", hc.HandleHealth)
	r.Get("/health/ready", hc.HandleReadiness)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/generate-link", h.GenerateLink)
		r.Post("/submit-payment", h.SubmitPayment)
	})

	return r
}
