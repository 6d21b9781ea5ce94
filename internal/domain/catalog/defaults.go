// internal/domain/catalog/defaults.go
package catalog

import "fmt"

type seedProduct struct {
	Product
	folder string
}

var launchProducts = []seedProduct{
	{folder: "IshqMini", Product: Product{
		ID: 1, Name: "Ishq Mini", Price: 1,
		Description: "💖 IshqMini – Where Love Lives in the Little Things",
		Category:    "Necklaces", InStock: true, Rating: 4.8, Reviews: 24, Bestseller: true,
	}},
	{folder: "DilBlink", Product: Product{
		ID: 2, Name: "Dill Blink", Price: 279,
		Description: "✨ Dil Blink – When the Heart Sparkles.",
		Category:    "Necklaces", InStock: true, Rating: 4.9, Reviews: 18, Bestseller: true,
	}},
	{folder: "Gulab", Product: Product{
		ID: 3, Name: "Noor e Gulab", Price: 199,
		Description: "🌹 Noor-e-Gulab – The Light of Love, Petal by Petal",
		Category:    "Necklaces", InStock: true, Rating: 4.7, Reviews: 32, Bestseller: true,
	}},
	{folder: "envelope", Product: Product{
		ID: 4, Name: "Pyaar Envelope", Price: 499,
		Description: "💌 Pyaar Envelope – Love, Sealed Just for You",
		Category:    "Necklaces", InStock: true, Rating: 5.0, Reviews: 15,
	}},
	{folder: "1111", Product: Product{
		ID: 5, Name: "11:11 Necklace", Price: 249,
		Description: "🌟 11:11 Necklace – A Moment Aligned with the Heart.",
		Category:    "Necklaces", InStock: true, Rating: 4.6, Reviews: 28,
	}},
	{folder: "knot", Product: Product{
		ID: 6, Name: "Tiny Kont", Price: 249,
		Description: "🎀 Tiny Knot – Where Small Things Hold Big Meaning.",
		Category:    "Necklaces", InStock: true, Rating: 4.8, Reviews: 12,
	}},
}

// Default builds the launch catalog, resolving image paths through images
func Default(images *ImageResolver) (*Catalog, error) {
	products := make([]Product, 0, len(launchProducts))
	for _, seed := range launchProducts {
		p := seed.Product
		resolved, err := images.Resolve(seed.folder)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve images for %s: %w", p.Name, err)
		}
		p.Images = resolved
		products = append(products, p)
	}
	return New(products)
}
