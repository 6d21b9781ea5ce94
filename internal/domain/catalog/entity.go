// internal/domain/catalog/entity.go
package catalog

import "errors"

// AllCategories is the category label that matches every product
const AllCategories = "All"

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrDuplicateProduct = errors.New("duplicate product id in catalog")
	ErrInvalidPrice     = errors.New("product price must be positive")
)

// Product represents a purchasable item. Prices are whole rupees.
type Product struct {
	ID            int      `json:"id"`
	Name          string   `json:"name"`
	Price         int64    `json:"price"`
	OriginalPrice *int64   `json:"original_price,omitempty"`
	Images        []string `json:"images"`
	Description   string   `json:"description"`
	Category      string   `json:"category"`
	InStock       bool     `json:"in_stock"`
	Rating        float64  `json:"rating"`
	Reviews       int      `json:"reviews"`
	Bestseller    bool     `json:"bestseller"`
}

// IsDiscounted reports whether the product shows a strike-through price
func (p Product) IsDiscounted() bool {
	return p.OriginalPrice != nil && *p.OriginalPrice > p.Price
}
