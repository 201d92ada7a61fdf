package pos

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTransactionWithChange(t *testing.T) {
	cart := NewCart()
	cart.AddItem(wheyProtein) // 100.00
	cart.AddItem(wheyProtein)
	cart.AddItem(creatine) // 50.00

	tx, err := BuildTransaction(cart, 30000)
	require.NoError(t, err)

	assert.Equal(t, int64(25000), tx.TotalAmount)
	assert.Equal(t, int64(30000), tx.AmountPaid)
	assert.Equal(t, int64(5000), tx.Change)
	assert.WithinDuration(t, time.Now(), tx.Timestamp, time.Second)
}

func TestBuildTransactionExactPayment(t *testing.T) {
	cart := NewCart()
	cart.AddItem(creatine)

	tx, err := BuildTransaction(cart, 5000)
	require.NoError(t, err)
	assert.Equal(t, int64(0), tx.Change)
}

func TestBuildTransactionInsufficientPayment(t *testing.T) {
	cart := NewCart()
	cart.AddItem(wheyProtein)
	cart.AddItem(wheyProtein)
	cart.AddItem(creatine)

	before := cart.Items()

	tx, err := BuildTransaction(cart, 20000)
	require.Error(t, err)
	assert.Nil(t, tx)

	var insufficient *InsufficientPaymentError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(25000), insufficient.Total)
	assert.Equal(t, int64(5000), insufficient.Shortfall())

	// The cart is never mutated on failure.
	assert.Equal(t, before, cart.Items())
}

func TestTransactionSnapshotIsIsolatedFromCart(t *testing.T) {
	cart := NewCart()
	cart.AddItem(creatine)

	tx, err := BuildTransaction(cart, 10000)
	require.NoError(t, err)

	cart.AddItem(wheyProtein)
	cart.IncreaseQuantity(creatine.ID)

	require.Len(t, tx.Items, 1)
	assert.Equal(t, 1, tx.Items[0].Quantity)
	assert.Equal(t, int64(5000), tx.TotalAmount)
}
