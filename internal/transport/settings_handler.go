package transport

import (
	"context"
	"net/http"
	"time"

	"warung-menu/internal/domain"
	"warung-menu/internal/middleware"
	"warung-menu/internal/repository"
	"warung-menu/internal/settings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SettingsRequest represents the site settings upsert payload
type SettingsRequest struct {
	SiteName       string `json:"site_name" validate:"required"`
	LogoURL        string `json:"logo_url"`
	Slogan         string `json:"slogan"`
	WhatsAppNumber string `json:"whatsapp_number"`
}

// SettingsHandler serves branding to the storefront and lets the admin
// update it. Reads come from the cache; a background refresh keeps it
// fresh without blocking first paint.
type SettingsHandler struct {
	cache  *settings.Cache
	repo   repository.SettingsRepository
	logger *zap.Logger
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(cache *settings.Cache, repo repository.SettingsRepository, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{
		cache:  cache,
		repo:   repo,
		logger: logger,
	}
}

// RegisterRoutes registers the public read route and the admin upsert
func (h *SettingsHandler) RegisterRoutes(r chi.Router, adminOnly func(http.Handler) http.Handler) {
	r.Get("/api/settings", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(adminOnly)
		r.Put("/api/admin/settings", h.Update)
	})
}

// Get serves the cached settings immediately and refreshes in the
// background so the next reader observes fresh branding
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	current := h.cache.Current()

	// The request context dies with this response; the refresh gets its
	// own deadline
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		// A failed refresh keeps the cached value; nothing to surface
		if _, err := h.cache.Refresh(ctx); err != nil {
			h.logger.Debug("Background settings refresh failed", zap.Error(err))
		}
	}()

	middleware.RespondWithJSON(w, http.StatusOK, current)
}

// Update upserts the singleton settings row and broadcasts the new
// value through the cache
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated := &domain.SiteSettings{
		SiteName:       req.SiteName,
		LogoURL:        req.LogoURL,
		Slogan:         req.Slogan,
		WhatsAppNumber: req.WhatsAppNumber,
	}

	if err := h.repo.Upsert(r.Context(), updated); err != nil {
		h.logger.Error("Failed to upsert site settings", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}

	h.cache.Put(*updated)

	h.logger.Info("Site settings updated", zap.String("site_name", updated.SiteName))
	middleware.RespondWithJSON(w, http.StatusOK, updated)
}
