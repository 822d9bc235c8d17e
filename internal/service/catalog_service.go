package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"warung-menu/internal/domain"
	"warung-menu/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrCategoryNameRequired = errors.New("category name is required")
	ErrProductNameRequired  = errors.New("product name is required")
	ErrNegativePrice        = errors.New("price must not be negative")
)

// CatalogService holds the business rules around categories and products
type CatalogService interface {
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	CreateCategory(ctx context.Context, name string) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, name string, active bool) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	ListProducts(ctx context.Context, filter repository.ProductFilter, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error)
	SearchProducts(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
}

// ProductInput carries the writable product fields
type ProductInput struct {
	Name        string
	CategoryID  uuid.UUID
	Description string
	Price       float64
	ImageURL    string
	Active      bool
}

type catalogService struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(categories repository.CategoryRepository, products repository.ProductRepository) CatalogService {
	return &catalogService{
		categories: categories,
		products:   products,
	}
}

func (s *catalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.categories.List(ctx)
}

func (s *catalogService) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrCategoryNameRequired
	}

	category := &domain.Category{
		ID:        uuid.New(),
		Name:      name,
		Active:    true,
		CreatedAt: time.Now(),
	}

	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, id uuid.UUID, name string, active bool) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrCategoryNameRequired
	}

	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	category.Name = name
	category.Active = active
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

// DeleteCategory removes a category; the repository refuses while
// products still reference it
func (s *catalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.categories.Delete(ctx, id)
}

func (s *catalogService) ListProducts(ctx context.Context, filter repository.ProductFilter, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.products.List(ctx, filter, page, pageSize, sortBy, sortOrder)
}

func (s *catalogService) SearchProducts(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.products.Search(ctx, query, page, pageSize)
}

func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.products.FindByID(ctx, id)
}

func (s *catalogService) CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	// The category must exist before a product can point at it
	if _, err := s.categories.FindByID(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	product := &domain.Product{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(input.Name),
		CategoryID:  input.CategoryID,
		Description: input.Description,
		Price:       input.Price,
		ImageURL:    input.ImageURL,
		Active:      input.Active,
		CreatedAt:   time.Now(),
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if product.CategoryID != input.CategoryID {
		if _, err := s.categories.FindByID(ctx, input.CategoryID); err != nil {
			return nil, err
		}
	}

	product.Name = strings.TrimSpace(input.Name)
	product.CategoryID = input.CategoryID
	product.Description = input.Description
	product.Price = input.Price
	product.ImageURL = input.ImageURL
	product.Active = input.Active

	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// DeleteProduct removes a product and returns the deleted row so the
// caller can clean up its stored image
func (s *catalogService) DeleteProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.products.Delete(ctx, id); err != nil {
		return nil, err
	}

	return product, nil
}

func validateProductInput(input ProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return ErrProductNameRequired
	}
	if input.Price < 0 {
		return fmt.Errorf("%w: %f", ErrNegativePrice, input.Price)
	}
	return nil
}
