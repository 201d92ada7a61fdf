package api

import (
	"testing"

	"gym-pos-service/internal/pos"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderLineItemsFormatsAmounts(t *testing.T) {
	views := renderLineItems([]pos.LineItem{
		{ProductID: 1, Name: "Whey Protein 1kg", UnitPrice: 10000, Quantity: 2},
		{ProductID: 2, Name: "Creatine 300g", UnitPrice: 5050, Quantity: 1},
	})
	require.Len(t, views, 2)

	assert.Equal(t, "100.00", views[0].UnitPrice)
	assert.Equal(t, "200.00", views[0].Subtotal)
	assert.Equal(t, "50.50", views[1].UnitPrice)
	assert.Equal(t, "50.50", views[1].Subtotal)
}

func TestRenderSessionIncludesSummary(t *testing.T) {
	sess := pos.NewSession()
	cart := sess.Cart()
	cart.AddItem(pos.ProductRef{ID: 1, Name: "Whey Protein 1kg", Price: 10000})

	require.NoError(t, sess.BeginPayment())
	_, err := sess.PresentSummary(15000)
	require.NoError(t, err)

	view := renderSession(sess)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "100.00", view.Items[0].UnitPrice)
	assert.Equal(t, "100.00", view.Total)
	require.NotNil(t, view.Summary)
	assert.Equal(t, "150.00", view.Summary.AmountPaid)
	assert.Equal(t, "50.00", view.Summary.Change)
}
