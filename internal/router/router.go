package router

import (
	"context"
	"net/http"
	"time"

	"sleek-shop/internal/handler"
	"sleek-shop/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Options configures the router.
type Options struct {
	// CORSOrigin is the allowed browser origin; empty allows any.
	CORSOrigin string

	// Health reports whether dependencies are reachable. Nil means always healthy.
	Health func(ctx context.Context) error
}

// New creates a new HTTP router with all routes and middleware configured.
func New(
	productHandler *handler.ProductHandler,
	orderHandler *handler.OrderHandler,
	dashboardHandler *handler.DashboardHandler,
	auth *middleware.Authenticator,
	opts Options,
	logger zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Apply middleware in order: RequestID -> Recovery -> Logging -> Metrics -> CORS
	r.Use(chimw.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS(opts.CORSOrigin))

	// Health check endpoint (no authentication required)
	r.Get("/health", healthHandler(opts.Health, logger))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.GetAll)
			r.Get("/{id}", productHandler.GetByID)
		})

		r.Route("/orders", func(r chi.Router) {
			// Checkout is open to guests; a bad token is treated as anonymous
			r.With(auth.OptionalAuth).Post("/", orderHandler.Create)

			r.Group(func(r chi.Router) {
				r.Use(auth.Authenticate, middleware.RequireAuth)
				r.Get("/user", orderHandler.ListMine)
				r.Get("/user/{id}", orderHandler.GetMine)
			})

			r.Group(func(r chi.Router) {
				r.Use(auth.Authenticate, middleware.RequireAdmin)
				r.Get("/", orderHandler.List)
				r.Get("/stats", orderHandler.Stats)
				r.Get("/{id}", orderHandler.Get)
				r.Patch("/{id}/status", orderHandler.UpdateStatus)
				r.Patch("/{id}/payment-status", orderHandler.UpdatePaymentStatus)
			})
		})

		r.Route("/admin/dashboard", func(r chi.Router) {
			r.Use(auth.Authenticate, middleware.RequireAdmin)
			r.Get("/summary", dashboardHandler.Summary)
			r.Get("/revenue", dashboardHandler.Revenue)
			r.Get("/category-sales", dashboardHandler.CategorySales)
			r.Get("/top-products", dashboardHandler.TopProducts)
			r.Get("/recent-orders", dashboardHandler.RecentOrders)
		})
	})

	return r
}

func healthHandler(check func(ctx context.Context) error, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			if err := check(ctx); err != nil {
				logger.Warn().Err(err).Msg("health check failed")
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status": "unhealthy"}`))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	}
}
