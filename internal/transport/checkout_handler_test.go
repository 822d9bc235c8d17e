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
	"warung-menu/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

type mockCheckoutService struct {
	result *service.CheckoutResult
	err    error

	gotName string
	gotNote string
}

func (m *mockCheckoutService) Submit(ctx context.Context, store *cart.Store, customerName, customerNote string) (*service.CheckoutResult, error) {
	m.gotName = customerName
	m.gotNote = customerNote
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func newCheckoutRouter(checkout service.CheckoutService) chi.Router {
	router := chi.NewRouter()
	cartHandler := NewCartHandler(
		cart.NewManager(),
		newMockCatalog(),
		sessions.NewCookieStore([]byte("test-session-key")),
		zap.NewNop(),
	)
	cartHandler.RegisterRoutes(router)

	handler := NewCheckoutHandler(checkout, cartHandler, zap.NewNop())
	handler.RegisterRoutes(router, nil)
	return router
}

func postCheckout(router chi.Router, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCheckoutSuccess(t *testing.T) {
	order := &domain.Order{
		ID:           uuid.New(),
		CustomerName: "Budi",
		TotalPrice:   25000,
		Status:       domain.OrderStatusPending,
	}
	mock := &mockCheckoutService{
		result: &service.CheckoutResult{
			Order:       order,
			WhatsAppURL: "https://wa.me/628123456789?text=hello",
		},
	}
	router := newCheckoutRouter(mock)

	rec := postCheckout(router, `{"customer_name":"Budi","customer_note":"Tanpa sambal"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if mock.gotName != "Budi" || mock.gotNote != "Tanpa sambal" {
		t.Errorf("Unexpected form values: name %q note %q", mock.gotName, mock.gotNote)
	}

	var result service.CheckoutResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if result.Order.ID != order.ID {
		t.Error("Expected the placed order in the response")
	}
	if result.WhatsAppURL == "" {
		t.Error("Expected the WhatsApp hand-off link in the response")
	}
}

func TestCheckoutValidationErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		err      error
		expected int
	}{
		{"missing name field", `{"customer_note":"x"}`, nil, http.StatusBadRequest},
		{"malformed body", `{"customer_name":`, nil, http.StatusBadRequest},
		{"empty cart", `{"customer_name":"Budi"}`, service.ErrEmptyCart, http.StatusUnprocessableEntity},
		{"blank name", `{"customer_name":" "}`, service.ErrNameRequired, http.StatusUnprocessableEntity},
		{"submission in flight", `{"customer_name":"Budi"}`, service.ErrCheckoutInFlight, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newCheckoutRouter(&mockCheckoutService{err: tt.err})

			rec := postCheckout(router, tt.body)
			if rec.Code != tt.expected {
				t.Errorf("Expected %d, got %d: %s", tt.expected, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestCheckoutPersistenceFailure(t *testing.T) {
	router := newCheckoutRouter(&mockCheckoutService{
		err: context.DeadlineExceeded,
	})

	rec := postCheckout(router, `{"customer_name":"Budi"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500 for a persistence failure, got %d", rec.Code)
	}
}
