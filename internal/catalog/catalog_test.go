package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConflictWithinGroup(t *testing.T) {
	c := Default()

	cart := []string{"Gym per Session"}

	assert.True(t, c.HasConflict(cart, "Gym + Treadmill"))
	assert.True(t, c.HasConflict(cart, "Gym per Month"))
}

func TestSelfAddNeverConflicts(t *testing.T) {
	c := Default()

	cart := []string{"Gym per Session"}

	assert.False(t, c.HasConflict(cart, "Gym per Session"))
}

func TestUnconstrainedProductNeverConflicts(t *testing.T) {
	c := Default()

	cart := []string{"Gym per Session", "P.I per Month"}

	// Supplements and equipment are not in any group.
	assert.False(t, c.HasConflict(cart, "Whey Protein 1kg"))
	assert.False(t, c.HasConflict(cart, "Boxing Gloves"))
}

func TestConflictAcrossMultipleGroups(t *testing.T) {
	c := Default()

	// "Gym + Treadmill" belongs to both gym-access and treadmill. A cart
	// holding Monthly Treadmill must block it via the treadmill group even
	// though no gym-access member is present.
	cart := []string{"Monthly Treadmill"}
	assert.True(t, c.HasConflict(cart, "Gym + Treadmill"))

	// And the reverse direction through the other group.
	cart = []string{"Gym + Treadmill"}
	assert.True(t, c.HasConflict(cart, "Gym per Session"))
	assert.True(t, c.HasConflict(cart, "Monthly Treadmill"))
}

func TestConflictIsSymmetricWithinGroup(t *testing.T) {
	c := Default()

	for _, g := range c.Groups() {
		for _, a := range g.Services {
			for _, b := range g.Services {
				if a == b {
					continue
				}
				assert.True(t, c.HasConflict([]string{a}, b),
					"adding %q to cart holding %q should conflict", b, a)
			}
		}
	}
}

func TestConflictingItemsNamesTheClash(t *testing.T) {
	c := Default()

	cart := []string{"Whey Protein 1kg", "Gym per Session"}

	conflicts := c.ConflictingItems(cart, "Gym + Treadmill")
	require.Len(t, conflicts, 1)
	assert.Equal(t, "Gym per Session", conflicts[0])
}

func TestEmptyCartNeverConflicts(t *testing.T) {
	c := Default()

	assert.False(t, c.HasConflict(nil, "Gym per Month"))
	assert.False(t, c.HasConflict([]string{}, "Taekwando per Session"))
}

func TestHasConflictDoesNotMutateInput(t *testing.T) {
	c := Default()

	cart := []string{"Gym per Session", "P.I per Month"}
	c.HasConflict(cart, "Gym + Treadmill")

	assert.Equal(t, []string{"Gym per Session", "P.I per Month"}, cart)
}
