package transport

import (
	"errors"
	"io"
	"net/http"

	"warung-menu/internal/imaging"
	"warung-menu/internal/middleware"
	"warung-menu/internal/service"
	"warung-menu/internal/storage"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Incoming files larger than this are rejected before compression even
// starts; the compressor's output budget is separate
const maxUploadBytes = 20 << 20 // 20 MiB

// DeleteImageRequest represents the delete-by-URL payload
type DeleteImageRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// UploadHandler handles admin image uploads
type UploadHandler struct {
	uploads service.UploadService
	logger  *zap.Logger
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(uploads service.UploadService, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		uploads: uploads,
		logger:  logger,
	}
}

// RegisterRoutes registers the admin upload routes
func (h *UploadHandler) RegisterRoutes(r chi.Router, adminOnly func(http.Handler) http.Handler) {
	r.Route("/api/admin/uploads", func(r chi.Router) {
		r.Use(adminOnly)
		r.Post("/", h.Upload)
		r.Delete("/", h.Delete)
	})
}

// Upload accepts a multipart image, compresses it to the size budget,
// and stores it. The folder form field selects products or site assets.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		middleware.RespondWithError(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	folder := r.FormValue("folder")
	if folder == "" {
		folder = storage.FolderProducts
	}

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "failed to read file")
		return
	}
	if len(data) > maxUploadBytes {
		middleware.RespondWithError(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	url, err := h.uploads.UploadImage(r.Context(), data, folder, header.Filename)
	if err != nil {
		switch {
		case errors.Is(err, imaging.ErrDecodeFailed):
			middleware.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, service.ErrUnknownUploadFolder):
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("Upload failed", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to upload image")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, map[string]string{"url": url})
}

// Delete removes a stored image by its public URL
func (h *UploadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req DeleteImageRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.uploads.DeleteImage(r.Context(), req.URL); err != nil {
		if errors.Is(err, service.ErrNotABlobURL) {
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Failed to delete image", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete image")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "image deleted"})
}
