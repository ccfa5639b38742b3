package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Deko-Hussein/Hami-mini-market-week-3/internal/service"
	"github.com/Deko-Hussein/Hami-mini-market-week-3/pkg/httputil"
)

// CatalogHandler handles HTTP requests for catalog endpoints.
type CatalogHandler struct {
	service *service.StorefrontService
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(svc *service.StorefrontService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: svc,
		logger:  logger,
	}
}

// List handles GET /api/v1/catalog with optional search, category, and
// max_price query parameters.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := q.Get("search")
	category := q.Get("category")

	var maxPrice float64
	if raw := q.Get("max_price"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{
					Code:    "INVALID_PARAMETER",
					Message: "max_price must be a non-negative number",
				},
			})
			return
		}
		maxPrice = parsed
	}

	products := h.service.FilterCatalog(search, category, maxPrice)

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{
		"products":   products,
		"categories": h.service.Categories(),
	}})
}
