package checkout

import (
	"github.com/angelmondragon/its27-backend/internal/cart"
	"github.com/angelmondragon/its27-backend/pkg/config"
)

// Pricing applies the flat shipping fee and the free shipping threshold.
type Pricing struct {
	FlatFee   int64
	Threshold int
}

// NewPricing reads the shipping rule from store configuration.
func NewPricing(cfg config.StoreConfig) Pricing {
	return Pricing{FlatFee: cfg.FlatShippingFee, Threshold: cfg.FreeShippingThreshold}
}

// Quote is the priced view of a cart.
type Quote struct {
	Subtotal     int64 `json:"subtotal"`
	Shipping     int64 `json:"shipping"`
	Total        int64 `json:"total"`
	Count        int   `json:"count"`
	FreeShipping bool  `json:"free_shipping"`
	ItemsNeeded  int   `json:"items_needed_for_free_shipping"`
}

// QualifiesForFreeShipping reports whether count is above the threshold.
func (p Pricing) QualifiesForFreeShipping(count int) bool {
	return count > p.Threshold
}

// ShippingCost is zero above the threshold and the flat fee otherwise.
func (p Pricing) ShippingCost(count int) int64 {
	if p.QualifiesForFreeShipping(count) {
		return 0
	}
	return p.FlatFee
}

// ItemsNeededForFreeShipping is never below 1 while the cart does not qualify
// and is 0 once it does.
func (p Pricing) ItemsNeededForFreeShipping(count int) int {
	if p.QualifiesForFreeShipping(count) {
		return 0
	}
	needed := p.Threshold + 1 - count
	if needed < 1 {
		needed = 1
	}
	return needed
}

// Quote prices c.
func (p Pricing) Quote(c *cart.Cart) Quote {
	count := c.Count()
	subtotal := c.Total()
	shipping := p.ShippingCost(count)
	return Quote{
		Subtotal:     subtotal,
		Shipping:     shipping,
		Total:        subtotal + shipping,
		Count:        count,
		FreeShipping: p.QualifiesForFreeShipping(count),
		ItemsNeeded:  p.ItemsNeededForFreeShipping(count),
	}
}
