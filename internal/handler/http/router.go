package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mgolovanova35-netizen/wishlist-backend/pkg/health"
	"github.com/mgolovanova35-netizen/wishlist-backend/pkg/middleware"
)

// NewRouter creates a chi router with all wishlist routes registered.
func NewRouter(
	wishlistHandler *WishlistHandler,
	healthHandler *health.Handler,
	logger *slog.Logger,
	corsConfig middleware.CORSConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(corsConfig))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing("wishlist"))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics("wishlist"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// All API operations are POST: the session payload travels in the body.
	r.Route("/api", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/items", wishlistHandler.ListItems)
		r.Post("/items/add", wishlistHandler.AddItem)
		r.Post("/items/delete", wishlistHandler.DeleteItem)
		r.Post("/parse", wishlistHandler.ParseLink)
		r.Post("/reserve", wishlistHandler.ReserveItem)
	})

	return r
}

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost {
			ct := r.Header.Get("Content-Type")
			if !strings.HasPrefix(ct, "application/json") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnsupportedMediaType)
				_, _ = w.Write([]byte(`{"success":false,"error":"Content-Type must be application/json"}`))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
