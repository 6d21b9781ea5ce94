// internal/domain/cart/entity.go
package cart

import (
	"errors"
	"time"

	"github.com/Lizasatasiya/Zelie-web/internal/domain/catalog"
)

// MaxLineQuantity caps a single line so totals stay far from overflow
const MaxLineQuantity = 99

var (
	ErrInvalidQuantity  = errors.New("quantity must be between 1 and 99")
	ErrOutOfStock       = errors.New("product is out of stock")
	ErrConcurrentUpdate = errors.New("cart was modified concurrently, please retry")
)

// Line is one product and its quantity. Quantity is always between 1 and
// MaxLineQuantity while the line is in a cart.
type Line struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Cart is an ordered list of lines, one per product id
type Cart struct {
	Lines []Line `json:"lines"`
}

// Add merges quantity into the line for p, appending a new line if none
// exists. A merge that would pass MaxLineQuantity leaves the line unchanged.
func (c *Cart) Add(p catalog.Product, quantity int) error {
	if quantity < 1 || quantity > MaxLineQuantity {
		return ErrInvalidQuantity
	}
	for i := range c.Lines {
		if c.Lines[i].Product.ID == p.ID {
			if c.Lines[i].Quantity > MaxLineQuantity-quantity {
				return ErrInvalidQuantity
			}
			c.Lines[i].Quantity += quantity
			return nil
		}
	}
	c.Lines = append(c.Lines, Line{Product: p, Quantity: quantity})
	return nil
}

// SetQuantity overwrites a line's quantity. Zero or less removes the line and
// a missing line is left alone.
func (c *Cart) SetQuantity(productID, quantity int) error {
	if quantity <= 0 {
		c.Remove(productID)
		return nil
	}
	if quantity > MaxLineQuantity {
		return ErrInvalidQuantity
	}
	for i := range c.Lines {
		if c.Lines[i].Product.ID == productID {
			c.Lines[i].Quantity = quantity
			return nil
		}
	}
	return nil
}

// Remove deletes the line for productID if present
func (c *Cart) Remove(productID int) {
	for i := range c.Lines {
		if c.Lines[i].Product.ID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.Lines = nil
}

// Line returns the line for productID
func (c *Cart) Line(productID int) (Line, bool) {
	for _, l := range c.Lines {
		if l.Product.ID == productID {
			return l, true
		}
	}
	return Line{}, false
}

// Subtotal is the sum of price times quantity over every line
func (c *Cart) Subtotal() int64 {
	var total int64
	for _, l := range c.Lines {
		total += l.Product.Price * int64(l.Quantity)
	}
	return total
}

// ItemCount is the sum of quantities
func (c *Cart) ItemCount() int {
	count := 0
	for _, l := range c.Lines {
		count += l.Quantity
	}
	return count
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// SessionCart is the stored form of a session's cart (kept in Redis). Only
// product ids are stored; products are resolved from the catalog on load.
type SessionCart struct {
	SessionID string            `json:"session_id"`
	Items     []SessionCartItem `json:"items"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// SessionCartItem is one stored line
type SessionCartItem struct {
	ProductID int       `json:"product_id"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

// Totals are the derived amounts for a cart
type Totals struct {
	LineCount            int   `json:"line_count"` // Number of distinct products
	ItemCount            int   `json:"item_count"` // Sum of all quantities
	Subtotal             int64 `json:"subtotal"`
	Shipping             int64 `json:"shipping"`
	Total                int64 `json:"total"`
	FreeShipping         bool  `json:"free_shipping"`
	AmountToFreeShipping int64 `json:"amount_to_free_shipping"`
}
