package transport

import (
	"net/http"
	"strconv"

	"warung-menu/internal/domain"
	"warung-menu/internal/middleware"
	"warung-menu/internal/repository"
	"warung-menu/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CategoryRequest represents the category create/update payload
type CategoryRequest struct {
	Name   string `json:"name" validate:"required"`
	Active *bool  `json:"active"`
}

// ProductRequest represents the product create/update payload
type ProductRequest struct {
	Name        string  `json:"name" validate:"required"`
	CategoryID  string  `json:"category_id" validate:"required,uuid"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"gte=0"`
	ImageURL    string  `json:"image_url"`
	Active      *bool   `json:"active"`
}

// ListResponse wraps a paginated product listing
type ListResponse struct {
	Products []*domain.Product `json:"products"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// CatalogHandler handles HTTP requests for the menu and the admin
// catalog CRUD
type CatalogHandler struct {
	catalog service.CatalogService
	uploads service.UploadService
	logger  *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalog service.CatalogService, uploads service.UploadService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		uploads: uploads,
		logger:  logger,
	}
}

// RegisterRoutes registers public menu routes and admin catalog routes
func (h *CatalogHandler) RegisterRoutes(r chi.Router, adminOnly func(http.Handler) http.Handler) {
	r.Route("/api/menu", func(r chi.Router) {
		r.Get("/categories", h.ListCategories)
		r.Get("/products", h.ListProducts)
	})

	r.Route("/api/admin/categories", func(r chi.Router) {
		r.Use(adminOnly)
		r.Get("/", h.ListCategories)
		r.Post("/", h.CreateCategory)
		r.Put("/{id}", h.UpdateCategory)
		r.Delete("/{id}", h.DeleteCategory)
	})

	r.Route("/api/admin/products", func(r chi.Router) {
		r.Use(adminOnly)
		r.Get("/", h.AdminListProducts)
		r.Post("/", h.CreateProduct)
		r.Put("/{id}", h.UpdateProduct)
		r.Delete("/{id}", h.DeleteProduct)
	})
}

// ListCategories returns all categories with product counts
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, categories)
}

// ListProducts returns the storefront menu: active products only, with
// optional category filter and search
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	h.listProducts(w, r, true)
}

// AdminListProducts returns every product, active or not
func (h *CatalogHandler) AdminListProducts(w http.ResponseWriter, r *http.Request) {
	h.listProducts(w, r, false)
}

func (h *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request, activeOnly bool) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))

	if search := q.Get("search"); search != "" {
		products, total, err := h.catalog.SearchProducts(r.Context(), search, page, pageSize)
		if err != nil {
			h.logger.Error("Failed to search products", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to search products")
			return
		}
		respondWithProductList(w, products, total, page, pageSize)
		return
	}

	filter := repository.ProductFilter{ActiveOnly: activeOnly}
	if categoryIDStr := q.Get("category_id"); categoryIDStr != "" {
		categoryID, err := uuid.Parse(categoryIDStr)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid category ID")
			return
		}
		filter.CategoryID = &categoryID
	}

	products, total, err := h.catalog.ListProducts(
		r.Context(),
		filter,
		page,
		pageSize,
		q.Get("sort_by"),
		repository.SortOrder(q.Get("sort_order")),
	)
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	respondWithProductList(w, products, total, page, pageSize)
}

// CreateCategory handles admin category creation
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := h.catalog.CreateCategory(r.Context(), req.Name)
	if err != nil {
		if err == repository.ErrCategoryAlreadyExists {
			middleware.RespondWithError(w, http.StatusConflict, err.Error())
			return
		}
		if err == service.ErrCategoryNameRequired {
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Failed to create category", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, category)
}

// UpdateCategory handles admin category rename/toggle
func (h *CatalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category ID")
		return
	}

	var req CategoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	category, err := h.catalog.UpdateCategory(r.Context(), id, req.Name, active)
	if err != nil {
		switch err {
		case repository.ErrCategoryNotFound:
			middleware.RespondWithError(w, http.StatusNotFound, err.Error())
		case repository.ErrCategoryAlreadyExists:
			middleware.RespondWithError(w, http.StatusConflict, err.Error())
		default:
			h.logger.Error("Failed to update category", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update category")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, category)
}

// DeleteCategory handles admin category deletion
func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category ID")
		return
	}

	if err := h.catalog.DeleteCategory(r.Context(), id); err != nil {
		switch err {
		case repository.ErrCategoryNotFound:
			middleware.RespondWithError(w, http.StatusNotFound, err.Error())
		case repository.ErrCategoryHasProducts:
			middleware.RespondWithError(w, http.StatusConflict, "category cannot be deleted while it still has products")
		default:
			h.logger.Error("Failed to delete category", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete category")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "category deleted"})
}

// CreateProduct handles admin product creation
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeProductInput(w, r)
	if !ok {
		return
	}

	product, err := h.catalog.CreateProduct(r.Context(), input)
	if err != nil {
		h.respondProductError(w, err, "failed to create product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// UpdateProduct handles admin product updates
func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	input, ok := h.decodeProductInput(w, r)
	if !ok {
		return
	}

	product, err := h.catalog.UpdateProduct(r.Context(), id, input)
	if err != nil {
		h.respondProductError(w, err, "failed to update product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// DeleteProduct handles admin product deletion and cleans up the stored
// image best-effort
func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	product, err := h.catalog.DeleteProduct(r.Context(), id)
	if err != nil {
		h.respondProductError(w, err, "failed to delete product")
		return
	}

	if product.ImageURL != "" && h.uploads != nil {
		if err := h.uploads.DeleteImage(r.Context(), product.ImageURL); err != nil {
			// The product row is already gone; an orphaned blob is not
			// worth failing the request over
			h.logger.Warn("Failed to delete product image",
				zap.String("image_url", product.ImageURL),
				zap.Error(err),
			)
		}
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

func (h *CatalogHandler) decodeProductInput(w http.ResponseWriter, r *http.Request) (service.ProductInput, bool) {
	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return service.ProductInput{}, false
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return service.ProductInput{}, false
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category ID")
		return service.ProductInput{}, false
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	return service.ProductInput{
		Name:        req.Name,
		CategoryID:  categoryID,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Active:      active,
	}, true
}

func (h *CatalogHandler) respondProductError(w http.ResponseWriter, err error, fallback string) {
	switch err {
	case repository.ErrProductNotFound, repository.ErrCategoryNotFound:
		middleware.RespondWithError(w, http.StatusNotFound, err.Error())
	case service.ErrProductNameRequired:
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error(fallback, zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}

func respondWithProductList(w http.ResponseWriter, products []*domain.Product, total, page, pageSize int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	middleware.RespondWithJSON(w, http.StatusOK, ListResponse{
		Products: products,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}
