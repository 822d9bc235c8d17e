package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"warung-menu/internal/cart"
	"warung-menu/internal/domain"
	"warung-menu/internal/repository"
	"warung-menu/internal/settings"
	"warung-menu/internal/whatsapp"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrNameRequired      = errors.New("customer name is required")
	ErrCheckoutInFlight  = errors.New("a checkout is already in progress")
	WarnNoVendorNumber   = "no WhatsApp number configured; contact the admin to confirm the order"
)

// CheckoutResult is what a successful submission produces. WhatsAppURL
// is empty and Warning set when the vendor has no number configured;
// the order still counts as placed because the persisted row is the
// source of truth.
type CheckoutResult struct {
	Order       *domain.Order      `json:"order"`
	Items       []*domain.OrderItem `json:"items"`
	WhatsAppURL string             `json:"whatsapp_url,omitempty"`
	Warning     string             `json:"warning,omitempty"`
}

// CheckoutService converts a non-empty cart into a persisted order plus
// a best-effort vendor notification
type CheckoutService interface {
	Submit(ctx context.Context, store *cart.Store, customerName, customerNote string) (*CheckoutResult, error)
}

type checkoutService struct {
	orders      repository.OrderRepository
	settings    *settings.Cache
	countryCode string
	logger      *zap.Logger

	now func() time.Time
}

// NewCheckoutService creates a new instance of CheckoutService
func NewCheckoutService(
	orders repository.OrderRepository,
	settingsCache *settings.Cache,
	countryCode string,
	logger *zap.Logger,
) CheckoutService {
	return &checkoutService{
		orders:      orders,
		settings:    settingsCache,
		countryCode: countryCode,
		logger:      logger,
		now:         time.Now,
	}
}

// Submit runs the checkout flow:
//
//  1. guard against a concurrent submission on the same cart
//  2. validate locally (non-empty cart, non-blank name)
//  3. persist the order and its item snapshots in one transaction
//  4. compose the WhatsApp hand-off (best effort, never fails checkout)
//  5. clear the cart
//
// On a persistence failure the cart is left untouched so the shopper
// can resubmit without re-entering anything.
func (s *checkoutService) Submit(ctx context.Context, store *cart.Store, customerName, customerNote string) (*CheckoutResult, error) {
	if !store.BeginCheckout() {
		return nil, ErrCheckoutInFlight
	}
	defer store.EndCheckout()

	customerName = strings.TrimSpace(customerName)
	customerNote = strings.TrimSpace(customerNote)

	// Validation failures never reach persistence
	if store.IsEmpty() {
		return nil, ErrEmptyCart
	}
	if customerName == "" {
		return nil, ErrNameRequired
	}

	lines := store.Lines()
	now := s.now()

	order := &domain.Order{
		ID:           uuid.New(),
		CustomerName: customerName,
		CustomerNote: customerNote,
		TotalPrice:   store.TotalPrice(),
		Status:       domain.OrderStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	items := make([]*domain.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, &domain.OrderItem{
			ID:           uuid.New(),
			OrderID:      order.ID,
			ProductName:  line.Product.Name,
			ProductPrice: line.Product.Price,
			Quantity:     line.Quantity,
			Subtotal:     line.Subtotal(),
		})
	}

	if err := s.orders.CreateWithItems(ctx, order, items); err != nil {
		s.logger.Error("Checkout persistence failed",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	result := &CheckoutResult{
		Order: order,
		Items: items,
	}

	// Best-effort notify step, explicitly separate from persistence
	vendorNumber := s.settings.Current().WhatsAppNumber
	if vendorNumber == "" {
		result.Warning = WarnNoVendorNumber
		s.logger.Warn("Order placed without a vendor WhatsApp number",
			zap.String("order_id", order.ID.String()),
		)
	} else {
		number := whatsapp.NormalizeNumber(vendorNumber, s.countryCode)
		message := whatsapp.BuildOrderMessage(s.settings.Current().SiteName, order, items)
		result.WhatsAppURL = whatsapp.Link(number, message)
	}

	store.Clear()

	s.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.Float64("total", order.TotalPrice),
		zap.Int("items", len(items)),
	)

	return result, nil
}
