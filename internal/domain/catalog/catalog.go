// internal/domain/catalog/catalog.go
package catalog

import (
	"fmt"
	"strconv"
)

// Catalog is the fixed, read-only list of products loaded at start.
type Catalog struct {
	products []Product
	byID     map[int]int
}

// New validates products and builds a catalog that preserves their order
func New(products []Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]Product, 0, len(products)),
		byID:     make(map[int]int, len(products)),
	}

	for _, p := range products {
		if _, exists := c.byID[p.ID]; exists {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateProduct, p.ID)
		}
		if p.Price <= 0 {
			return nil, fmt.Errorf("%w: product %d has price %d", ErrInvalidPrice, p.ID, p.Price)
		}
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}

	return c, nil
}

// All returns a copy of every product in catalog order
func (c *Catalog) All() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

// Find returns the product with the given id
func (c *Catalog) Find(id int) (Product, error) {
	idx, ok := c.byID[id]
	if !ok {
		return Product{}, fmt.Errorf("%w: %d", ErrProductNotFound, id)
	}
	return c.products[idx], nil
}

// FindString resolves a product id kept in its string form, as wishlist
// entries are.
func (c *Catalog) FindString(id string) (Product, error) {
	n, err := strconv.Atoi(id)
	if err != nil {
		return Product{}, fmt.Errorf("%w: %q", ErrProductNotFound, id)
	}
	return c.Find(n)
}

// Search filters the catalog, see Filter
func (c *Catalog) Search(query, category string) []Product {
	return Filter(c.products, query, category)
}

// Categories lists the selectable categories for this catalog
func (c *Catalog) Categories() []string {
	return Categories(c.products)
}

// Len returns the number of products
func (c *Catalog) Len() int {
	return len(c.products)
}
