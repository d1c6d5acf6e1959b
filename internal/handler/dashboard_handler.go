package handler

import (
	"context"
	"net/http"

	"sleek-shop/internal/service"

	"github.com/rs/zerolog"
)

// DashboardHandler handles the admin dashboard report requests.
type DashboardHandler struct {
	service service.DashboardService
	logger  zerolog.Logger
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(service service.DashboardService, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  logger.With().Str("handler", "dashboard").Logger(),
	}
}

// Summary handles GET /admin/dashboard/summary.
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	report(w, r, h.logger, h.service.Summary)
}

// Revenue handles GET /admin/dashboard/revenue.
func (h *DashboardHandler) Revenue(w http.ResponseWriter, r *http.Request) {
	report(w, r, h.logger, h.service.WeeklyRevenue)
}

// CategorySales handles GET /admin/dashboard/category-sales.
func (h *DashboardHandler) CategorySales(w http.ResponseWriter, r *http.Request) {
	report(w, r, h.logger, h.service.CategorySales)
}

// TopProducts handles GET /admin/dashboard/top-products.
func (h *DashboardHandler) TopProducts(w http.ResponseWriter, r *http.Request) {
	report(w, r, h.logger, h.service.TopProducts)
}

// RecentOrders handles GET /admin/dashboard/recent-orders.
func (h *DashboardHandler) RecentOrders(w http.ResponseWriter, r *http.Request) {
	report(w, r, h.logger, h.service.RecentOrders)
}

func report[T any](w http.ResponseWriter, r *http.Request, logger zerolog.Logger, fetch func(context.Context) (T, error)) {
	data, err := fetch(r.Context())
	if err != nil {
		writeError(w, r, err, logger)
		return
	}

	writeSuccess(w, http.StatusOK, data)
}
