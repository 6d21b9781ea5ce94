// internal/domain/cart/pricing.go
package cart

// ShippingPolicy is a flat fee waived once the subtotal reaches a threshold
type ShippingPolicy struct {
	FreeThreshold int64
	FlatFee       int64
}

// DefaultShippingPolicy is free delivery from ₹599, ₹50 below that
var DefaultShippingPolicy = ShippingPolicy{FreeThreshold: 599, FlatFee: 50}

// ShippingFor returns the shipping charge for a subtotal
func (p ShippingPolicy) ShippingFor(subtotal int64) int64 {
	if subtotal >= p.FreeThreshold {
		return 0
	}
	return p.FlatFee
}

// Quote derives the totals for a cart. Nothing is cached, every call reads
// the current lines.
func (p ShippingPolicy) Quote(c *Cart) Totals {
	subtotal := c.Subtotal()
	shipping := p.ShippingFor(subtotal)

	totals := Totals{
		LineCount:    len(c.Lines),
		ItemCount:    c.ItemCount(),
		Subtotal:     subtotal,
		Shipping:     shipping,
		Total:        subtotal + shipping,
		FreeShipping: shipping == 0,
	}
	if !totals.FreeShipping {
		totals.AmountToFreeShipping = p.FreeThreshold - subtotal
	}
	return totals
}
