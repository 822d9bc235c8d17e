package cart

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestManagerGetCreatesAndReuses(t *testing.T) {
	manager := NewManager()

	first := manager.Get("session-a")
	second := manager.Get("session-a")

	if first != second {
		t.Error("Expected the same store for the same session ID")
	}

	other := manager.Get("session-b")
	if other == first {
		t.Error("Expected distinct stores for distinct session IDs")
	}

	if manager.Len() != 2 {
		t.Errorf("Expected 2 live carts, got %d", manager.Len())
	}
}

func TestManagerDelete(t *testing.T) {
	manager := NewManager()

	store := manager.Get("session-a")
	store.AddItem(testProduct("Bakso", 18000))

	manager.Delete("session-a")

	if manager.Len() != 0 {
		t.Errorf("Expected 0 carts after delete, got %d", manager.Len())
	}

	// Getting the session again yields a fresh, empty cart
	fresh := manager.Get("session-a")
	if !fresh.IsEmpty() {
		t.Error("Expected a fresh empty cart after delete")
	}
}

func TestPurgeIdleEvictsOnlyStaleCarts(t *testing.T) {
	manager := NewManager()

	current := time.Now()
	manager.now = func() time.Time { return current }

	manager.Get("stale")

	// Advance the clock past the idle window for the first cart only
	current = current.Add(3 * time.Hour)
	manager.Get("fresh")

	purged := manager.PurgeIdle(2 * time.Hour)

	if purged != 1 {
		t.Errorf("Expected 1 purged cart, got %d", purged)
	}
	if manager.Len() != 1 {
		t.Errorf("Expected 1 remaining cart, got %d", manager.Len())
	}
}

func TestPurgeIdleKeepsTouchedCarts(t *testing.T) {
	manager := NewManager()

	current := time.Now()
	manager.now = func() time.Time { return current }

	id := uuid.New().String()
	manager.Get(id)

	current = current.Add(90 * time.Minute)
	manager.Get(id) // touch refreshes last access

	current = current.Add(90 * time.Minute)

	if purged := manager.PurgeIdle(2 * time.Hour); purged != 0 {
		t.Errorf("Expected no purged carts, got %d", purged)
	}
}
