package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Deko-Hussein/Hami-mini-market-week-3/internal/domain"
	"github.com/Deko-Hussein/Hami-mini-market-week-3/internal/service"
	"github.com/Deko-Hussein/Hami-mini-market-week-3/internal/session"
	"github.com/Deko-Hussein/Hami-mini-market-week-3/pkg/httputil"
	"github.com/Deko-Hussein/Hami-mini-market-week-3/pkg/validator"
)

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	sessions *session.Manager
	service  *service.StorefrontService
	logger   *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(sessions *session.Manager, svc *service.StorefrontService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		sessions: sessions,
		service:  svc,
		logger:   logger,
	}
}

// --- Request DTOs ---

// AddItemRequest is the JSON request body for adding an item to the cart.
// Price, name, and image travel with the request so the cart keeps the values
// the shopper saw, even if the catalog changes afterwards.
type AddItemRequest struct {
	ID       int64   `json:"id" validate:"required"`
	Name     string  `json:"name" validate:"required,min=1,max=500"`
	Price    float64 `json:"price" validate:"gte=0"`
	Image    string  `json:"image"`
	Quantity int     `json:"quantity" validate:"required,gte=1"`
}

// UpdateQuantityRequest is the JSON request body for updating an item's quantity.
// Zero removes the item.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

// --- Handlers ---

func (h *CartHandler) currentSession(r *http.Request) (*session.Session, bool) {
	sid, ok := sessionIDFromContext(r.Context())
	if !ok {
		return nil, false
	}
	return h.sessions.Get(r.Context(), sid), true
}

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.currentSession(r)
	if !ok {
		h.noSession(w)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: sess.Cart.Snapshot()})
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.currentSession(r)
	if !ok {
		h.noSession(w)
		return
	}

	var req AddItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	product := domain.Product{
		ID:    req.ID,
		Name:  req.Name,
		Price: req.Price,
		Image: req.Image,
	}
	sess.Cart.AddItem(r.Context(), product, req.Quantity)

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: sess.Cart.Snapshot()})
}

// UpdateItemQuantity handles PUT /api/v1/cart/items/{productID}
func (h *CartHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.currentSession(r)
	if !ok {
		h.noSession(w)
		return
	}

	id, ok := httputil.ParseID(w, chi.URLParam(r, "productID"))
	if !ok {
		return
	}

	var req UpdateQuantityRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	// An unknown product ID leaves the cart untouched; the snapshot tells
	// the client either way.
	sess.Cart.UpdateQuantity(r.Context(), id, req.Quantity)

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: sess.Cart.Snapshot()})
}

// RemoveItem handles DELETE /api/v1/cart/items/{productID}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.currentSession(r)
	if !ok {
		h.noSession(w)
		return
	}

	id, ok := httputil.ParseID(w, chi.URLParam(r, "productID"))
	if !ok {
		return
	}

	sess.Cart.RemoveItem(r.Context(), id)

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: sess.Cart.Snapshot()})
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.currentSession(r)
	if !ok {
		h.noSession(w)
		return
	}

	sess.Cart.Clear(r.Context())

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "cleared"}})
}

// Checkout handles POST /api/v1/cart/checkout
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.currentSession(r)
	if !ok {
		h.noSession(w)
		return
	}

	order, err := h.service.Checkout(r.Context(), sess)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{
		"status": "confirmed",
		"order":  order,
	}})
}

func (h *CartHandler) noSession(w http.ResponseWriter) {
	httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
		Error: &httputil.ErrorResponse{Code: "NO_SESSION", Message: "shopper session is required"},
	})
}
