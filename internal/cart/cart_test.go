package cart

import (
	"testing"

	"warung-menu/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func testProduct(name string, price float64) domain.Product {
	return domain.Product{
		ID:     uuid.New(),
		Name:   name,
		Price:  price,
		Active: true,
	}
}

func TestProperty_RepeatedAddsAccumulateQuantity(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("adding the same product n times yields one line with quantity n", prop.ForAll(
		func(n int) bool {
			if n < 1 {
				n = 1
			}
			if n > 50 {
				n = 50
			}

			store := NewStore()
			product := testProduct("Nasi Goreng", 15000)

			for i := 0; i < n; i++ {
				store.AddItem(product)
			}

			lines := store.Lines()
			if len(lines) != 1 {
				t.Logf("FAIL: expected 1 line, got %d", len(lines))
				return false
			}
			if lines[0].Quantity != n {
				t.Logf("FAIL: expected quantity %d, got %d", n, lines[0].Quantity)
				return false
			}
			return store.TotalItems() == n
		},
		gen.IntRange(1, 50),
	))

	properties.TestingRun(t)
}

func TestProperty_TotalPriceIsSumOfLineSubtotals(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("total price equals the sum of price times quantity over lines", prop.ForAll(
		func(prices []float64, quantities []int) bool {
			store := NewStore()

			n := len(prices)
			if len(quantities) < n {
				n = len(quantities)
			}

			expected := 0.0
			for i := 0; i < n; i++ {
				price := prices[i]
				if price < 0 {
					price = -price
				}
				qty := quantities[i]
				if qty < 1 {
					qty = 1
				}
				if qty > 20 {
					qty = 20
				}

				product := testProduct("Item", price)
				store.AddItem(product)
				store.SetQuantity(product.ID, qty)
				expected += price * float64(qty)
			}

			got := store.TotalPrice()
			diff := got - expected
			if diff < 0 {
				diff = -diff
			}
			if diff > 1e-6 {
				t.Logf("FAIL: expected total %f, got %f", expected, got)
				return false
			}
			return true
		},
		gen.SliceOf(gen.Float64Range(0, 100000)),
		gen.SliceOf(gen.IntRange(1, 20)),
	))

	properties.TestingRun(t)
}

func TestProperty_SetQuantityZeroRemovesLine(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("setting quantity to zero or less removes the line", prop.ForAll(
		func(quantity int) bool {
			if quantity > 0 {
				quantity = -quantity
			}

			store := NewStore()
			product := testProduct("Es Teh", 5000)
			store.AddItem(product)

			store.SetQuantity(product.ID, quantity)

			return store.IsEmpty() && store.TotalItems() == 0
		},
		gen.IntRange(-10, 0),
	))

	properties.TestingRun(t)
}

func TestRemoveAbsentProductIsNoOp(t *testing.T) {
	store := NewStore()
	product := testProduct("Ayam Bakar", 20000)
	store.AddItem(product)

	notifications := 0
	cancel := store.Subscribe(func() { notifications++ })
	defer cancel()

	store.RemoveItem(uuid.New())

	if notifications != 0 {
		t.Errorf("Expected no notifications for removing an absent product, got %d", notifications)
	}
	if store.TotalItems() != 1 {
		t.Errorf("Expected cart to be untouched, got %d items", store.TotalItems())
	}
}

func TestSetQuantityOnAbsentProductIsNoOp(t *testing.T) {
	store := NewStore()

	notifications := 0
	cancel := store.Subscribe(func() { notifications++ })
	defer cancel()

	store.SetQuantity(uuid.New(), 5)

	if notifications != 0 {
		t.Errorf("Expected no notifications, got %d", notifications)
	}
	if !store.IsEmpty() {
		t.Error("Expected cart to stay empty")
	}
}

func TestClearEmptiesCart(t *testing.T) {
	store := NewStore()
	store.AddItem(testProduct("Nasi Goreng", 15000))
	store.AddItem(testProduct("Es Teh", 5000))

	store.Clear()

	if !store.IsEmpty() {
		t.Error("Expected cart to be empty after Clear")
	}
	if store.TotalPrice() != 0 {
		t.Errorf("Expected total price 0, got %f", store.TotalPrice())
	}
}

func TestSubscribersNotifiedOnEveryMutation(t *testing.T) {
	store := NewStore()
	product := testProduct("Mie Ayam", 12000)

	notifications := 0
	cancel := store.Subscribe(func() { notifications++ })

	store.AddItem(product)         // 1
	store.SetQuantity(product.ID, 3) // 2
	store.RemoveItem(product.ID)   // 3
	store.Clear()                  // empty, no notification

	if notifications != 3 {
		t.Errorf("Expected 3 notifications, got %d", notifications)
	}

	cancel()
	store.AddItem(product)

	if notifications != 3 {
		t.Errorf("Expected no notifications after cancel, got %d", notifications)
	}
}

func TestLineSnapshotIgnoresLaterProductChanges(t *testing.T) {
	store := NewStore()
	product := testProduct("Sate Ayam", 25000)
	store.AddItem(product)

	// A catalog price change after adding must not affect the cart line
	product.Price = 99999

	lines := store.Lines()
	if lines[0].Product.Price != 25000 {
		t.Errorf("Expected snapshot price 25000, got %f", lines[0].Product.Price)
	}
}

func TestCheckoutFlagBlocksSecondSubmission(t *testing.T) {
	store := NewStore()

	if !store.BeginCheckout() {
		t.Fatal("Expected first BeginCheckout to succeed")
	}
	if store.BeginCheckout() {
		t.Error("Expected second BeginCheckout to fail while one is in flight")
	}

	store.EndCheckout()

	if !store.BeginCheckout() {
		t.Error("Expected BeginCheckout to succeed after EndCheckout")
	}
}
