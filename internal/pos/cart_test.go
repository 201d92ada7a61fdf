package pos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	wheyProtein = ProductRef{ID: 1, Name: "Whey Protein 1kg", Price: 10000}
	creatine    = ProductRef{ID: 2, Name: "Creatine 300g", Price: 5000}
	gymSession  = ProductRef{ID: 3, Name: "Gym per Session", Price: 5000}
)

func TestAddItemIncrementsExisting(t *testing.T) {
	cart := NewCart()

	cart.AddItem(wheyProtein)
	cart.AddItem(wheyProtein)

	items := cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestAddItemPreservesInsertionOrder(t *testing.T) {
	cart := NewCart()

	cart.AddItem(wheyProtein)
	cart.AddItem(creatine)
	cart.AddItem(wheyProtein)

	items := cart.Items()
	require.Len(t, items, 2)
	assert.Equal(t, wheyProtein.ID, items[0].ProductID)
	assert.Equal(t, creatine.ID, items[1].ProductID)
}

func TestTotalRecomputedFromItems(t *testing.T) {
	cart := NewCart()

	cart.AddItem(wheyProtein) // 100.00
	cart.AddItem(wheyProtein) // x2
	cart.AddItem(creatine)    // 50.00

	assert.Equal(t, int64(25000), cart.Total())
	// Idempotent without mutation.
	assert.Equal(t, int64(25000), cart.Total())

	cart.DecreaseQuantity(wheyProtein.ID)
	assert.Equal(t, int64(15000), cart.Total())
}

func TestEmptyCartTotalIsZero(t *testing.T) {
	assert.Equal(t, int64(0), NewCart().Total())
}

func TestAddRemoveRoundTrip(t *testing.T) {
	cart := NewCart()
	cart.AddItem(creatine)

	before := cart.Items()

	cart.AddItem(wheyProtein)
	cart.RemoveItem(wheyProtein.ID)

	assert.Equal(t, before, cart.Items())
	assert.Equal(t, int64(5000), cart.Total())
}

func TestDecreaseQuantityRemovesAtOne(t *testing.T) {
	cart := NewCart()
	cart.AddItem(gymSession)

	cart.DecreaseQuantity(gymSession.ID)

	assert.Equal(t, 0, cart.Len())
	for _, li := range cart.Items() {
		assert.Positive(t, li.Quantity)
	}
}

func TestDecreaseQuantityUnknownProductIsNoop(t *testing.T) {
	cart := NewCart()
	cart.AddItem(creatine)

	cart.DecreaseQuantity(999)
	cart.IncreaseQuantity(999)
	cart.RemoveItem(999)

	items := cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
}

func TestClearEmptiesCart(t *testing.T) {
	cart := NewCart()
	cart.AddItem(wheyProtein)
	cart.AddItem(creatine)

	cart.Clear()

	assert.Equal(t, 0, cart.Len())
	assert.Equal(t, int64(0), cart.Total())
}

func TestItemsReturnsCopy(t *testing.T) {
	cart := NewCart()
	cart.AddItem(wheyProtein)

	items := cart.Items()
	items[0].Quantity = 99

	assert.Equal(t, 1, cart.Items()[0].Quantity)
}

func TestNames(t *testing.T) {
	cart := NewCart()
	cart.AddItem(gymSession)
	cart.AddItem(wheyProtein)

	assert.Equal(t, []string{"Gym per Session", "Whey Protein 1kg"}, cart.Names())
}
