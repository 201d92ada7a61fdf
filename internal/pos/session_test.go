package pos

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionHappyPath(t *testing.T) {
	s := NewSession()
	assert.Equal(t, StateBuilding, s.State())

	cart, err := s.EditableCart()
	require.NoError(t, err)
	cart.AddItem(wheyProtein)
	cart.AddItem(creatine)

	s.AttachCustomer(42)

	require.NoError(t, s.BeginPayment())
	assert.Equal(t, StateAwaitingPayment, s.State())

	tx, err := s.PresentSummary(20000)
	require.NoError(t, err)
	assert.Equal(t, StateSummaryPresented, s.State())
	assert.Equal(t, int64(5000), tx.Change)
	assert.Same(t, tx, s.Pending())

	done, err := s.Finalize()
	require.NoError(t, err)
	assert.Same(t, tx, done)

	// Ready for the next customer.
	assert.Equal(t, StateBuilding, s.State())
	assert.Equal(t, 0, s.Cart().Len())
	assert.Nil(t, s.Pending())
	assert.Zero(t, s.CustomerID())
}

func TestCartLockedOutsideBuilding(t *testing.T) {
	s := NewSession()
	cart, _ := s.EditableCart()
	cart.AddItem(creatine)
	require.NoError(t, s.BeginPayment())

	_, err := s.EditableCart()
	var stateErr *StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, StateAwaitingPayment, stateErr.State)
}

func TestBeginPaymentOnEmptyCartFails(t *testing.T) {
	s := NewSession()

	err := s.BeginPayment()
	var stateErr *StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, StateBuilding, s.State())
}

func TestInsufficientPaymentKeepsAwaitingPayment(t *testing.T) {
	s := NewSession()
	cart, _ := s.EditableCart()
	cart.AddItem(wheyProtein)
	require.NoError(t, s.BeginPayment())

	_, err := s.PresentSummary(9999)
	var insufficient *InsufficientPaymentError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(1), insufficient.Shortfall())

	// Still awaiting a corrected amount, cart untouched.
	assert.Equal(t, StateAwaitingPayment, s.State())
	assert.Equal(t, 1, s.Cart().Len())

	_, err = s.PresentSummary(10000)
	require.NoError(t, err)
	assert.Equal(t, StateSummaryPresented, s.State())
}

func TestCancelPreservesCart(t *testing.T) {
	s := NewSession()
	cart, _ := s.EditableCart()
	cart.AddItem(wheyProtein)
	cart.AddItem(creatine)
	require.NoError(t, s.BeginPayment())
	_, err := s.PresentSummary(30000)
	require.NoError(t, err)

	s.Cancel()

	assert.Equal(t, StateBuilding, s.State())
	assert.Nil(t, s.Pending())
	assert.Equal(t, 2, s.Cart().Len())
	assert.Equal(t, int64(25000), s.Cart().Total())
}

func TestFinalizeRequiresSummary(t *testing.T) {
	s := NewSession()
	cart, _ := s.EditableCart()
	cart.AddItem(creatine)

	_, err := s.Finalize()
	var stateErr *StateError
	require.ErrorAs(t, err, &stateErr)

	require.NoError(t, s.BeginPayment())
	_, err = s.Finalize()
	require.ErrorAs(t, err, &stateErr)
}

func TestSessionJSONRoundTrip(t *testing.T) {
	s := NewSession()
	cart, _ := s.EditableCart()
	cart.AddItem(wheyProtein)
	cart.AddItem(creatine)
	s.AttachCustomer(7)
	require.NoError(t, s.BeginPayment())
	_, err := s.PresentSummary(30000)
	require.NoError(t, err)

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var restored Session
	require.NoError(t, json.Unmarshal(data, &restored))

	assert.Equal(t, StateSummaryPresented, restored.State())
	assert.Equal(t, int64(7), restored.CustomerID())
	assert.Equal(t, s.Cart().Items(), restored.Cart().Items())
	require.NotNil(t, restored.Pending())
	assert.Equal(t, int64(5000), restored.Pending().Change)
}

func TestUnmarshalEmptySessionDefaultsToBuilding(t *testing.T) {
	var s Session
	require.NoError(t, json.Unmarshal([]byte(`{"items":null}`), &s))
	assert.Equal(t, StateBuilding, s.State())
	assert.NotNil(t, s.Cart())
}
