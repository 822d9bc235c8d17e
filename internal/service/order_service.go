package service

import (
	"context"
	"errors"
	"fmt"

	"warung-menu/internal/domain"
	"warung-menu/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidStatus = errors.New("invalid order status")
)

// OrderService exposes the admin-side order operations. Orders are only
// ever created through checkout; the admin mutates status or deletes.
type OrderService interface {
	List(ctx context.Context, status *domain.OrderStatus) ([]*domain.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type orderService struct {
	orders repository.OrderRepository
	logger *zap.Logger
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(orders repository.OrderRepository, logger *zap.Logger) OrderService {
	return &orderService{
		orders: orders,
		logger: logger,
	}
}

func (s *orderService) List(ctx context.Context, status *domain.OrderStatus) ([]*domain.Order, error) {
	if status != nil && !domain.ValidOrderStatus(*status) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, *status)
	}
	return s.orders.List(ctx, status)
}

func (s *orderService) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.orders.FindByID(ctx, id)
}

func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	if !domain.ValidOrderStatus(status) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	if err := s.orders.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	s.logger.Info("Order status updated",
		zap.String("order_id", id.String()),
		zap.String("status", string(status)),
	)

	return s.orders.FindByID(ctx, id)
}

func (s *orderService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.orders.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Order deleted", zap.String("order_id", id.String()))
	return nil
}
