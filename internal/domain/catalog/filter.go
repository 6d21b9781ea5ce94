// internal/domain/catalog/filter.go
package catalog

import "strings"

// Filter returns the products whose name or description contains query,
// ignoring case, and whose category matches. An empty query matches every
// product and the "All" category matches every category. The result keeps
// catalog order.
func Filter(products []Product, query, category string) []Product {
	if category == "" {
		category = AllCategories
	}
	needle := strings.ToLower(query)

	out := make([]Product, 0, len(products))
	for _, p := range products {
		if category != AllCategories && p.Category != category {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Categories returns "All" followed by each distinct category in order of
// first appearance.
func Categories(products []Product) []string {
	seen := make(map[string]struct{}, len(products))
	out := []string{AllCategories}
	for _, p := range products {
		if p.Category == "" || p.Category == AllCategories {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}
