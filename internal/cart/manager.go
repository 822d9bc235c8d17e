package cart

import (
	"sync"
	"time"
)

// Manager hands out per-session cart stores. Carts live only in process
// memory: a restart loses open carts, which matches the session-scoped
// cart on the storefront. Abandoned carts are evicted by PurgeIdle.
type Manager struct {
	mu    sync.Mutex
	carts map[string]*entry

	now func() time.Time // overridable in tests
}

type entry struct {
	store      *Store
	lastAccess time.Time
}

// NewManager creates an empty cart manager
func NewManager() *Manager {
	return &Manager{
		carts: make(map[string]*entry),
		now:   time.Now,
	}
}

// Get returns the cart store for the session, creating one on first use
func (m *Manager) Get(sessionID string) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.carts[sessionID]
	if !ok {
		e = &entry{store: NewStore()}
		m.carts[sessionID] = e
	}
	e.lastAccess = m.now()
	return e.store
}

// Delete drops the session's cart entirely
func (m *Manager) Delete(sessionID string) {
	m.mu.Lock()
	delete(m.carts, sessionID)
	m.mu.Unlock()
}

// Len returns the number of live carts
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.carts)
}

// PurgeIdle evicts carts untouched for longer than maxIdle and returns
// how many were removed
func (m *Manager) PurgeIdle(maxIdle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-maxIdle)
	purged := 0
	for id, e := range m.carts {
		if e.lastAccess.Before(cutoff) {
			delete(m.carts, id)
			purged++
		}
	}
	return purged
}
