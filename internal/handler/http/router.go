package http

import (
	"net/http"
	"sort"

	"parts-catalog/internal/metrics"
	middleware_http "parts-catalog/internal/middleware/http"
	"parts-catalog/internal/version"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	AppName  string
	Products *ProductHandler
	Health   *HealthHandler
}

// NewRouter mounts the product routes at /products and /api/products,
// plus the banner, health and metrics endpoints.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization", middleware_http.RequestIDHeader, "traceparent"},
		ExposedHeaders: []string{middleware_http.RequestIDHeader, "X-Trace-ID"},
		MaxAge:         300,
	}))
	r.Use(middleware.RealIP)
	r.Use(metrics.Middleware())
	r.Use(middleware_http.TraceMiddleware())
	r.Use(middleware.Recoverer)

	r.Get("/", banner(cfg.AppName, r))
	r.Get("/healthz", cfg.Health.Check)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/products", cfg.Products.Routes)
	r.Route("/api/products", cfg.Products.Routes)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

func banner(appName string, routes chi.Routes) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var list []string
		_ = chi.Walk(routes, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
			list = append(list, method+" "+route)
			return nil
		})
		sort.Strings(list)

		writeJSON(w, http.StatusOK, map[string]any{
			"name":    appName,
			"version": version.Version,
			"commit":  version.Commit,
			"routes":  list,
		})
	}
}
