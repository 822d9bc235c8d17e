package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"warung-menu/internal/cart"
	"warung-menu/internal/domain"
	"warung-menu/internal/repository"
	"warung-menu/internal/settings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Mock repositories for testing
type mockOrderRepository struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*domain.Order
	items  map[uuid.UUID][]*domain.OrderItem
	err    error
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{
		orders: make(map[uuid.UUID]*domain.Order),
		items:  make(map[uuid.UUID][]*domain.OrderItem),
	}
}

func (m *mockOrderRepository) CreateWithItems(ctx context.Context, order *domain.Order, items []*domain.OrderItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.orders[order.ID] = order
	m.items[order.ID] = items
	return nil
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return order, nil
}

func (m *mockOrderRepository) List(ctx context.Context, status *domain.OrderStatus) ([]*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Order
	for _, o := range m.orders {
		if status == nil || o.Status == *status {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	order.Status = status
	return nil
}

func (m *mockOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[id]; !ok {
		return repository.ErrOrderNotFound
	}
	delete(m.orders, id)
	delete(m.items, id)
	return nil
}

type stubSettingsRepository struct {
	value *domain.SiteSettings
}

func (s *stubSettingsRepository) Get(ctx context.Context) (*domain.SiteSettings, error) {
	if s.value == nil {
		return nil, repository.ErrSettingsNotFound
	}
	copied := *s.value
	return &copied, nil
}

func (s *stubSettingsRepository) Upsert(ctx context.Context, v *domain.SiteSettings) error {
	copied := *v
	s.value = &copied
	return nil
}

func settingsCacheWith(t *testing.T, value *domain.SiteSettings) *settings.Cache {
	t.Helper()
	cache := settings.NewCache(&stubSettingsRepository{value: value}, zap.NewNop())
	if _, err := cache.Refresh(context.Background()); err != nil {
		t.Fatalf("Failed to warm settings cache: %v", err)
	}
	return cache
}

func cartWith(products ...domain.Product) *cart.Store {
	store := cart.NewStore()
	for _, p := range products {
		store.AddItem(p)
	}
	return store
}

func product(name string, price float64) domain.Product {
	return domain.Product{ID: uuid.New(), Name: name, Price: price, Active: true}
}

func TestSubmitEmptyCart(t *testing.T) {
	repo := newMockOrderRepository()
	svc := NewCheckoutService(repo, settingsCacheWith(t, nil), "62", zap.NewNop())

	_, err := svc.Submit(context.Background(), cart.NewStore(), "Budi", "")

	if !errors.Is(err, ErrEmptyCart) {
		t.Errorf("Expected ErrEmptyCart, got %v", err)
	}
	if len(repo.orders) != 0 {
		t.Error("Expected no order to be persisted")
	}
}

func TestSubmitBlankName(t *testing.T) {
	repo := newMockOrderRepository()
	svc := NewCheckoutService(repo, settingsCacheWith(t, nil), "62", zap.NewNop())
	store := cartWith(product("Nasi Goreng", 15000))

	_, err := svc.Submit(context.Background(), store, "   ", "")

	if !errors.Is(err, ErrNameRequired) {
		t.Errorf("Expected ErrNameRequired, got %v", err)
	}
	if store.IsEmpty() {
		t.Error("Expected cart to be untouched after a validation failure")
	}
}

func TestSubmitSuccess(t *testing.T) {
	repo := newMockOrderRepository()
	cache := settingsCacheWith(t, &domain.SiteSettings{
		SiteName:       "Warung Bu Siti",
		WhatsAppNumber: "08123456789",
	})
	svc := NewCheckoutService(repo, cache, "62", zap.NewNop())

	store := cartWith(product("Nasi Goreng", 15000), product("Es Teh", 5000))
	store.SetQuantity(store.Lines()[1].Product.ID, 2)

	result, err := svc.Submit(context.Background(), store, "  Budi  ", "Tanpa sambal")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if result.Order.CustomerName != "Budi" {
		t.Errorf("Expected trimmed customer name, got %q", result.Order.CustomerName)
	}
	if result.Order.Status != domain.OrderStatusPending {
		t.Errorf("Expected pending status, got %s", result.Order.Status)
	}
	if result.Order.TotalPrice != 25000 {
		t.Errorf("Expected total 25000, got %f", result.Order.TotalPrice)
	}
	if len(result.Items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(result.Items))
	}

	// Items snapshot the cart lines
	if result.Items[0].ProductName != "Nasi Goreng" || result.Items[0].Subtotal != 15000 {
		t.Errorf("Unexpected first item: %+v", result.Items[0])
	}
	if result.Items[1].Quantity != 2 || result.Items[1].Subtotal != 10000 {
		t.Errorf("Unexpected second item: %+v", result.Items[1])
	}

	if _, ok := repo.orders[result.Order.ID]; !ok {
		t.Error("Expected the order to be persisted")
	}
	if len(repo.items[result.Order.ID]) != 2 {
		t.Error("Expected the items to be persisted with the order")
	}

	if !strings.HasPrefix(result.WhatsAppURL, "https://wa.me/628123456789?text=") {
		t.Errorf("Unexpected WhatsApp URL: %s", result.WhatsAppURL)
	}
	if result.Warning != "" {
		t.Errorf("Expected no warning, got %q", result.Warning)
	}

	if !store.IsEmpty() {
		t.Error("Expected cart cleared after a successful checkout")
	}
}

func TestSubmitWithoutVendorNumberWarnsButPlacesOrder(t *testing.T) {
	repo := newMockOrderRepository()
	svc := NewCheckoutService(repo, settingsCacheWith(t, nil), "62", zap.NewNop())
	store := cartWith(product("Nasi Goreng", 15000))

	result, err := svc.Submit(context.Background(), store, "Ani", "")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if result.WhatsAppURL != "" {
		t.Errorf("Expected no WhatsApp URL, got %s", result.WhatsAppURL)
	}
	if result.Warning != WarnNoVendorNumber {
		t.Errorf("Expected vendor number warning, got %q", result.Warning)
	}
	if len(repo.orders) != 1 {
		t.Error("Expected the order to be persisted despite the missing number")
	}
	if !store.IsEmpty() {
		t.Error("Expected cart cleared; the order still counts as placed")
	}
}

func TestSubmitPersistenceFailureLeavesCartIntact(t *testing.T) {
	repo := newMockOrderRepository()
	repo.err = errors.New("connection refused")
	svc := NewCheckoutService(repo, settingsCacheWith(t, nil), "62", zap.NewNop())
	store := cartWith(product("Nasi Goreng", 15000))

	_, err := svc.Submit(context.Background(), store, "Budi", "")
	if err == nil {
		t.Fatal("Expected an error when persistence fails")
	}

	if store.IsEmpty() {
		t.Error("Expected cart left intact so the shopper can resubmit")
	}
	if store.TotalItems() != 1 {
		t.Errorf("Expected 1 item still in the cart, got %d", store.TotalItems())
	}
}

func TestSubmitRejectsConcurrentSubmission(t *testing.T) {
	repo := newMockOrderRepository()
	svc := NewCheckoutService(repo, settingsCacheWith(t, nil), "62", zap.NewNop())
	store := cartWith(product("Nasi Goreng", 15000))

	// Simulate a submission already in flight on this cart
	if !store.BeginCheckout() {
		t.Fatal("Failed to acquire the checkout flag")
	}

	_, err := svc.Submit(context.Background(), store, "Budi", "")
	if !errors.Is(err, ErrCheckoutInFlight) {
		t.Errorf("Expected ErrCheckoutInFlight, got %v", err)
	}

	store.EndCheckout()

	// After the in-flight submission ends, checkout succeeds
	if _, err := svc.Submit(context.Background(), store, "Budi", ""); err != nil {
		t.Errorf("Expected checkout to succeed after the flag cleared, got %v", err)
	}
}
