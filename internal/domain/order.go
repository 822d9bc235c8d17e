package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// ValidOrderStatus reports whether s is a known order status
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// Order represents a placed order. TotalPrice equals the sum of its
// items' subtotals at creation time.
type Order struct {
	ID           uuid.UUID   `json:"id" db:"id"`
	CustomerName string      `json:"customer_name" db:"customer_name"`
	CustomerNote string      `json:"customer_note" db:"customer_note"`
	TotalPrice   float64     `json:"total_price" db:"total_price"`
	Status       OrderStatus `json:"status" db:"status"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`

	Items []*OrderItem `json:"items,omitempty" db:"-"`
}

// OrderItem captures a product snapshot at order time. Name and price are
// copied from the product so the order stays accurate if the catalog
// changes later.
type OrderItem struct {
	ID           uuid.UUID `json:"id" db:"id"`
	OrderID      uuid.UUID `json:"order_id" db:"order_id"`
	ProductName  string    `json:"product_name" db:"product_name"`
	ProductPrice float64   `json:"product_price" db:"product_price"`
	Quantity     int       `json:"quantity" db:"quantity"`
	Subtotal     float64   `json:"subtotal" db:"subtotal"`
}
