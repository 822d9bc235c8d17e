package transport

import (
	"net/http"

	"warung-menu/internal/middleware"
	"warung-menu/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CheckoutRequest represents the checkout form payload
type CheckoutRequest struct {
	CustomerName string `json:"customer_name" validate:"required"`
	CustomerNote string `json:"customer_note"`
}

// CheckoutHandler turns the session cart into a persisted order
type CheckoutHandler struct {
	checkout service.CheckoutService
	carts    *CartHandler
	logger   *zap.Logger
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkout service.CheckoutService, carts *CartHandler, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		carts:    carts,
		logger:   logger,
	}
}

// RegisterRoutes registers the checkout route; rateLimit guards against
// rapid resubmission
func (h *CheckoutHandler) RegisterRoutes(r chi.Router, rateLimit func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		if rateLimit != nil {
			r.Use(rateLimit)
		}
		r.Post("/api/checkout", h.Submit)
	})
}

// Submit validates the form, persists the order with its item
// snapshots, and returns the best-effort WhatsApp hand-off link. On a
// validation or persistence failure the cart is untouched so the
// shopper can retry without re-entering anything.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	store, ok := h.carts.store(w, r)
	if !ok {
		return
	}

	result, err := h.checkout.Submit(r.Context(), store, req.CustomerName, req.CustomerNote)
	if err != nil {
		switch err {
		case service.ErrEmptyCart, service.ErrNameRequired:
			middleware.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
		case service.ErrCheckoutInFlight:
			middleware.RespondWithError(w, http.StatusConflict, err.Error())
		default:
			h.logger.Error("Checkout failed", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to place order")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, result)
}
