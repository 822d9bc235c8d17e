package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"warung-menu/internal/cart"
	"warung-menu/internal/domain"
	"warung-menu/internal/repository"
	"warung-menu/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// Mock catalog backing the cart handler; only GetProduct matters here
type mockCatalog struct {
	products map[uuid.UUID]*domain.Product
}

func newMockCatalog(products ...*domain.Product) *mockCatalog {
	m := &mockCatalog{products: make(map[uuid.UUID]*domain.Product)}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *mockCatalog) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return p, nil
}

func (m *mockCatalog) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return nil, nil
}

func (m *mockCatalog) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	return nil, nil
}

func (m *mockCatalog) UpdateCategory(ctx context.Context, id uuid.UUID, name string, active bool) (*domain.Category, error) {
	return nil, nil
}

func (m *mockCatalog) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (m *mockCatalog) ListProducts(ctx context.Context, filter repository.ProductFilter, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error) {
	return nil, 0, nil
}

func (m *mockCatalog) SearchProducts(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error) {
	return nil, 0, nil
}

func (m *mockCatalog) CreateProduct(ctx context.Context, input service.ProductInput) (*domain.Product, error) {
	return nil, nil
}

func (m *mockCatalog) UpdateProduct(ctx context.Context, id uuid.UUID, input service.ProductInput) (*domain.Product, error) {
	return nil, nil
}

func (m *mockCatalog) DeleteProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return nil, nil
}

// cartTestClient drives the cart routes while carrying the session
// cookie between requests, like a browser would
type cartTestClient struct {
	t       *testing.T
	router  chi.Router
	cookies []*http.Cookie
}

func newCartTestClient(t *testing.T, catalog service.CatalogService) *cartTestClient {
	t.Helper()

	router := chi.NewRouter()
	handler := NewCartHandler(
		cart.NewManager(),
		catalog,
		sessions.NewCookieStore([]byte("test-session-key")),
		zap.NewNop(),
	)
	handler.RegisterRoutes(router)

	return &cartTestClient{t: t, router: router}
}

func (c *cartTestClient) do(method, path, body string) (*httptest.ResponseRecorder, CartResponse) {
	c.t.Helper()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)

	if cookies := rec.Result().Cookies(); len(cookies) > 0 {
		c.cookies = cookies
	}

	var cartResp CartResponse
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &cartResp); err != nil {
			c.t.Fatalf("Failed to parse cart response: %v", err)
		}
	}
	return rec, cartResp
}

func TestCartLifecycle(t *testing.T) {
	nasi := &domain.Product{ID: uuid.New(), Name: "Nasi Goreng", Price: 15000, Active: true}
	teh := &domain.Product{ID: uuid.New(), Name: "Es Teh", Price: 5000, Active: true}
	client := newCartTestClient(t, newMockCatalog(nasi, teh))

	// A fresh session starts with an empty cart
	rec, cartResp := client.do(http.MethodGet, "/api/cart", "")
	if rec.Code != http.StatusOK || cartResp.TotalItems != 0 {
		t.Fatalf("Expected an empty cart, got code %d items %d", rec.Code, cartResp.TotalItems)
	}

	// Adding the same product twice accumulates quantity
	client.do(http.MethodPost, "/api/cart/items", `{"product_id":"`+nasi.ID.String()+`"}`)
	_, cartResp = client.do(http.MethodPost, "/api/cart/items", `{"product_id":"`+nasi.ID.String()+`"}`)
	if cartResp.TotalItems != 2 || len(cartResp.Lines) != 1 {
		t.Errorf("Expected one line with quantity 2, got %+v", cartResp)
	}

	_, cartResp = client.do(http.MethodPost, "/api/cart/items", `{"product_id":"`+teh.ID.String()+`"}`)
	if cartResp.TotalPrice != 35000 {
		t.Errorf("Expected total 35000, got %f", cartResp.TotalPrice)
	}

	// Absolute quantity update
	_, cartResp = client.do(http.MethodPut, "/api/cart/items/"+teh.ID.String(), `{"quantity":4}`)
	if cartResp.TotalPrice != 50000 {
		t.Errorf("Expected total 50000 after quantity update, got %f", cartResp.TotalPrice)
	}

	// Quantity zero removes the line
	_, cartResp = client.do(http.MethodPut, "/api/cart/items/"+teh.ID.String(), `{"quantity":0}`)
	if len(cartResp.Lines) != 1 {
		t.Errorf("Expected the line removed, got %+v", cartResp.Lines)
	}

	// Clearing empties everything
	_, cartResp = client.do(http.MethodDelete, "/api/cart", "")
	if cartResp.TotalItems != 0 || cartResp.TotalPrice != 0 {
		t.Errorf("Expected an empty cart after clear, got %+v", cartResp)
	}
}

func TestAddUnknownProduct(t *testing.T) {
	client := newCartTestClient(t, newMockCatalog())

	rec, _ := client.do(http.MethodPost, "/api/cart/items", `{"product_id":"`+uuid.New().String()+`"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for an unknown product, got %d", rec.Code)
	}
}

func TestAddInactiveProduct(t *testing.T) {
	hidden := &domain.Product{ID: uuid.New(), Name: "Stok Habis", Price: 10000, Active: false}
	client := newCartTestClient(t, newMockCatalog(hidden))

	rec, _ := client.do(http.MethodPost, "/api/cart/items", `{"product_id":"`+hidden.ID.String()+`"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected 409 for an inactive product, got %d", rec.Code)
	}
}

func TestCartIsSessionScoped(t *testing.T) {
	nasi := &domain.Product{ID: uuid.New(), Name: "Nasi Goreng", Price: 15000, Active: true}
	catalog := newMockCatalog(nasi)

	router := chi.NewRouter()
	handler := NewCartHandler(
		cart.NewManager(),
		catalog,
		sessions.NewCookieStore([]byte("test-session-key")),
		zap.NewNop(),
	)
	handler.RegisterRoutes(router)

	first := &cartTestClient{t: t, router: router}
	second := &cartTestClient{t: t, router: router}

	first.do(http.MethodPost, "/api/cart/items", `{"product_id":"`+nasi.ID.String()+`"}`)

	// A different session sees its own empty cart
	_, cartResp := second.do(http.MethodGet, "/api/cart", "")
	if cartResp.TotalItems != 0 {
		t.Errorf("Expected the second session to have an empty cart, got %d items", cartResp.TotalItems)
	}

	// The first session still has its item
	_, cartResp = first.do(http.MethodGet, "/api/cart", "")
	if cartResp.TotalItems != 1 {
		t.Errorf("Expected the first session to keep its cart, got %d items", cartResp.TotalItems)
	}
}

func TestRemoveAbsentProductReturnsOK(t *testing.T) {
	client := newCartTestClient(t, newMockCatalog())

	rec, _ := client.do(http.MethodDelete, "/api/cart/items/"+uuid.New().String(), "")
	if rec.Code != http.StatusOK {
		t.Errorf("Expected removing an absent product to be a 200 no-op, got %d", rec.Code)
	}
}
