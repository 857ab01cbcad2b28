package checkout

import (
	"testing"

	"github.com/angelmondragon/its27-backend/internal/cart"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPricing = Pricing{FlatFee: 2000, Threshold: 5}

func TestShippingThreshold(t *testing.T) {
	for count := 0; count <= 5; count++ {
		assert.Equal(t, int64(2000), testPricing.ShippingCost(count), "count %d", count)
	}
	for _, count := range []int{6, 7, 20} {
		assert.Zero(t, testPricing.ShippingCost(count), "count %d", count)
	}
}

func TestItemsNeededForFreeShipping(t *testing.T) {
	cases := map[int]int{0: 6, 1: 5, 5: 1, 6: 0, 12: 0}
	for count, want := range cases {
		assert.Equal(t, want, testPricing.ItemsNeededForFreeShipping(count), "count %d", count)
	}

	odd := Pricing{FlatFee: 2000, Threshold: -3}
	assert.Zero(t, odd.ItemsNeededForFreeShipping(0))
	clamped := Pricing{FlatFee: 2000, Threshold: 0}
	assert.Equal(t, 1, clamped.ItemsNeededForFreeShipping(0))
}

func TestQuoteSingleItem(t *testing.T) {
	c := cart.New()
	require.NoError(t, c.AddItem(cart.Snapshot{ID: 4, Name: "Anillo Sello Obsidiana", Price: 62000}, 1))

	q := testPricing.Quote(c)
	assert.Equal(t, Quote{Subtotal: 62000, Shipping: 2000, Total: 64000, Count: 1, ItemsNeeded: 5}, q)
}

func TestQuoteFreeShipping(t *testing.T) {
	c := cart.New()
	require.NoError(t, c.AddItem(cart.Snapshot{ID: 5, Price: 230000}, 1))
	require.NoError(t, c.AddItem(cart.Snapshot{ID: 3, Price: 28000}, 1))
	require.NoError(t, c.AddItem(cart.Snapshot{ID: 10, Price: 10500}, 4))

	q := testPricing.Quote(c)
	assert.Equal(t, 6, q.Count)
	assert.Equal(t, int64(300000), q.Subtotal)
	assert.Zero(t, q.Shipping)
	assert.Equal(t, int64(300000), q.Total)
	assert.True(t, q.FreeShipping)
	assert.Zero(t, q.ItemsNeeded)
}
