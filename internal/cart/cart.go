package cart

import (
	"sync"

	"warung-menu/internal/domain"

	"github.com/google/uuid"
)

// Line is one product plus a quantity in a shopper's cart. The product
// fields are a snapshot taken when the line was first added.
type Line struct {
	Product  domain.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

// Subtotal returns price multiplied by quantity for this line
func (l Line) Subtotal() float64 {
	return l.Product.Price * float64(l.Quantity)
}

// Subscriber receives a notification after every cart mutation
type Subscriber func()

// Store holds one shopper's selections for the duration of a session.
// Lines are kept in insertion order and there is at most one line per
// product ID. All mutations are serialized by an internal mutex and
// subscribers are notified synchronously after each one.
type Store struct {
	mu    sync.Mutex
	lines []*Line

	nextSubID int
	subs      map[int]Subscriber

	// checkingOut guards against a second submission while one is in
	// flight; see BeginCheckout
	checkingOut bool
}

// NewStore creates an empty cart store
func NewStore() *Store {
	return &Store{
		subs: make(map[int]Subscriber),
	}
}

// AddItem increments the quantity of an existing line for the product,
// or appends a new line with quantity 1 holding a snapshot of the
// product at add time.
func (s *Store) AddItem(product domain.Product) {
	s.mu.Lock()
	for _, line := range s.lines {
		if line.Product.ID == product.ID {
			line.Quantity++
			s.mu.Unlock()
			s.notify()
			return
		}
	}
	s.lines = append(s.lines, &Line{Product: product, Quantity: 1})
	s.mu.Unlock()
	s.notify()
}

// SetQuantity sets the line's quantity to an absolute value. A quantity
// of zero or less removes the line entirely.
func (s *Store) SetQuantity(productID uuid.UUID, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(productID)
		return
	}

	s.mu.Lock()
	changed := false
	for _, line := range s.lines {
		if line.Product.ID == productID {
			line.Quantity = quantity
			changed = true
			break
		}
	}
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

// RemoveItem removes the line for the product if present. Removing an
// absent product is a no-op, not an error.
func (s *Store) RemoveItem(productID uuid.UUID) {
	s.mu.Lock()
	removed := false
	for i, line := range s.lines {
		if line.Product.ID == productID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			removed = true
			break
		}
	}
	s.mu.Unlock()

	if removed {
		s.notify()
	}
}

// Clear empties the cart. Used after a successful checkout or an
// explicit cancellation.
func (s *Store) Clear() {
	s.mu.Lock()
	cleared := len(s.lines) > 0
	s.lines = nil
	s.mu.Unlock()

	if cleared {
		s.notify()
	}
}

// Lines returns a copy of the current lines in insertion order
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := make([]Line, 0, len(s.lines))
	for _, line := range s.lines {
		lines = append(lines, *line)
	}
	return lines
}

// TotalItems returns the sum of all line quantities
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, line := range s.lines {
		total += line.Quantity
	}
	return total
}

// TotalPrice returns the sum over lines of price times quantity
func (s *Store) TotalPrice() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0.0
	for _, line := range s.lines {
		total += line.Subtotal()
	}
	return total
}

// IsEmpty reports whether the cart has no lines
func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines) == 0
}

// Subscribe registers a subscriber called after every mutation. The
// returned function cancels the subscription.
func (s *Store) Subscribe(sub Subscriber) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = sub
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// BeginCheckout marks the cart as having a submission in flight. It
// returns false if one is already running, in which case the caller must
// not proceed.
func (s *Store) BeginCheckout() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.checkingOut {
		return false
	}
	s.checkingOut = true
	return true
}

// EndCheckout clears the in-flight submission flag
func (s *Store) EndCheckout() {
	s.mu.Lock()
	s.checkingOut = false
	s.mu.Unlock()
}

func (s *Store) notify() {
	s.mu.Lock()
	subs := make([]Subscriber, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub()
	}
}
