package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Deko-Hussein/Hami-mini-market-week-3/internal/service"
	"github.com/Deko-Hussein/Hami-mini-market-week-3/internal/session"
	"github.com/Deko-Hussein/Hami-mini-market-week-3/pkg/health"
	"github.com/Deko-Hussein/Hami-mini-market-week-3/pkg/middleware"
)

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(
	sessions *session.Manager,
	svc *service.StorefrontService,
	healthHandler *health.Handler,
	sessionTTL time.Duration,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.Tracing("storefront"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Static assets
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS()))))

	cartHandler := NewCartHandler(sessions, svc, logger)
	catalogHandler := NewCatalogHandler(svc, logger)
	pageHandler := NewPageHandler(sessions, svc, logger)

	// Storefront pages
	r.Group(func(r chi.Router) {
		r.Use(Session(sessionTTL))

		r.Get("/", pageHandler.Storefront)
		r.Get("/order", pageHandler.Order)
	})

	// API endpoints
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.CORS)
		r.Use(Session(sessionTTL))

		r.Get("/catalog", catalogHandler.List)

		r.Route("/cart", func(r chi.Router) {
			r.Use(ContentTypeJSON)

			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)

			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{productID}", cartHandler.UpdateItemQuantity)
			r.Delete("/items/{productID}", cartHandler.RemoveItem)

			r.Post("/checkout", cartHandler.Checkout)
		})
	})

	return r
}
