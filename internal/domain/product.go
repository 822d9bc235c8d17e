package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product represents an item on the menu
type Product struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	CategoryID  uuid.UUID `json:"category_id" db:"category_id"`
	Description string    `json:"description" db:"description"`
	Price       float64   `json:"price" db:"price"`
	ImageURL    string    `json:"image_url" db:"image_url"`
	Active      bool      `json:"active" db:"active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	// Category is join-fetched on list queries; nil otherwise
	Category *Category `json:"category,omitempty" db:"-"`
}

// Category represents a menu category
type Category struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// ProductCount is computed at query time, never stored
	ProductCount int `json:"product_count" db:"-"`
}
