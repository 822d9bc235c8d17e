package transport

import (
	"net/http"

	"warung-menu/internal/cart"
	"warung-menu/internal/middleware"
	"warung-menu/internal/repository"
	"warung-menu/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	cartSessionName = "warung_cart"
	cartIDKey       = "cart_id"
)

// AddItemRequest represents the add-to-cart payload
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
}

// SetQuantityRequest represents the absolute quantity update payload.
// Zero or negative removes the line.
type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CartResponse is the cart snapshot returned after every operation
type CartResponse struct {
	Lines      []cart.Line `json:"lines"`
	TotalItems int         `json:"total_items"`
	TotalPrice float64     `json:"total_price"`
}

// CartHandler exposes the session-scoped cart. The shopper is identified
// by a cookie; the cart itself lives in process memory and is never
// persisted while shopping.
type CartHandler struct {
	carts    *cart.Manager
	catalog  service.CatalogService
	sessions *sessions.CookieStore
	logger   *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(carts *cart.Manager, catalog service.CatalogService, sessionStore *sessions.CookieStore, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		carts:    carts,
		catalog:  catalog,
		sessions: sessionStore,
		logger:   logger,
	}
}

// RegisterRoutes registers the cart routes
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Post("/items", h.AddItem)
		r.Put("/items/{productID}", h.SetQuantity)
		r.Delete("/items/{productID}", h.RemoveItem)
		r.Delete("/", h.ClearCart)
	})
}

// GetCart returns the current cart snapshot
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	h.respondWithCart(w, store)
}

// AddItem adds one unit of a product, snapshotting it at add time
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), productID)
	if err != nil {
		if err == repository.ErrProductNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to load product for cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to add item")
		return
	}

	if !product.Active {
		middleware.RespondWithError(w, http.StatusConflict, "product is not available")
		return
	}

	store, ok := h.store(w, r)
	if !ok {
		return
	}

	// Snapshot without the joined category; the cart only needs the
	// product's own fields
	snapshot := *product
	snapshot.Category = nil
	store.AddItem(snapshot)

	h.respondWithCart(w, store)
}

// SetQuantity sets a line's quantity to an absolute value
func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	var req SetQuantityRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	store, ok := h.store(w, r)
	if !ok {
		return
	}

	store.SetQuantity(productID, req.Quantity)
	h.respondWithCart(w, store)
}

// RemoveItem removes a line; removing an absent product is not an error
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	store, ok := h.store(w, r)
	if !ok {
		return
	}

	store.RemoveItem(productID)
	h.respondWithCart(w, store)
}

// ClearCart empties the cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}

	store.Clear()
	h.respondWithCart(w, store)
}

// store resolves the shopper's cart from the session cookie, assigning a
// cart ID on first contact
func (h *CartHandler) store(w http.ResponseWriter, r *http.Request) (*cart.Store, bool) {
	session, err := h.sessions.Get(r, cartSessionName)
	if err != nil {
		// A tampered or stale cookie just gets a fresh session
		session, _ = h.sessions.New(r, cartSessionName)
	}

	cartID, ok := session.Values[cartIDKey].(string)
	if !ok || cartID == "" {
		cartID = uuid.New().String()
		session.Values[cartIDKey] = cartID
		if err := session.Save(r, w); err != nil {
			h.logger.Error("Failed to save cart session", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to establish cart session")
			return nil, false
		}
	}

	return h.carts.Get(cartID), true
}

func (h *CartHandler) respondWithCart(w http.ResponseWriter, store *cart.Store) {
	lines := store.Lines()
	middleware.RespondWithJSON(w, http.StatusOK, CartResponse{
		Lines:      lines,
		TotalItems: store.TotalItems(),
		TotalPrice: store.TotalPrice(),
	})
}
