// Package catalog defines the Product entity carried by cart line items and
// a read-only in-memory catalog for the demo server and CLI.
package catalog

import (
	"encoding/json"
	"sort"

	"github.com/shopspring/decimal"
)

// Product represents a catalog item available for purchase.
// Only ID and Price matter to the cart; the rest is display data.
type Product struct {
	ID       string          `json:"id"`
	Name     string          `json:"name,omitempty"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category,omitempty"`
	Image    string          `json:"image,omitempty"`
}

// MarshalJSON encodes Price as a JSON number.
func (p Product) MarshalJSON() ([]byte, error) {
	type alias Product
	return json.Marshal(struct {
		alias
		Price json.Number `json:"price"`
	}{
		alias: alias(p),
		Price: json.Number(p.Price.String()),
	})
}

// Catalog is a read-only product lookup.
type Catalog struct {
	byID  map[string]Product
	order []string
}

// New creates a catalog from products. Later duplicates replace earlier ones.
func New(products ...Product) *Catalog {
	c := &Catalog{byID: make(map[string]Product, len(products))}
	for _, p := range products {
		if _, ok := c.byID[p.ID]; !ok {
			c.order = append(c.order, p.ID)
		}
		c.byID[p.ID] = p
	}
	return c
}

// Lookup returns the product with the given ID.
func (c *Catalog) Lookup(id string) (Product, bool) {
	p, ok := c.byID[id]
	return p, ok
}

// Products returns all products in insertion order.
func (c *Catalog) Products() []Product {
	out := make([]Product, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// Categories returns the distinct categories, sorted.
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range c.byID {
		if p.Category != "" && !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	sort.Strings(out)
	return out
}

// Demo returns the sample terpene catalog used by `storefront serve`.
func Demo() *Catalog {
	return New(
		Product{ID: "limonene-10ml", Name: "Limonene 10 ml", Price: decimal.RequireFromString("9.99"), Category: "single", Image: "/img/limonene.jpg"},
		Product{ID: "myrcene-10ml", Name: "Myrcene 10 ml", Price: decimal.RequireFromString("11.50"), Category: "single", Image: "/img/myrcene.jpg"},
		Product{ID: "pinene-10ml", Name: "Alpha-Pinene 10 ml", Price: decimal.RequireFromString("10.25"), Category: "single", Image: "/img/pinene.jpg"},
		Product{ID: "linalool-5ml", Name: "Linalool 5 ml", Price: decimal.RequireFromString("7.45"), Category: "single", Image: "/img/linalool.jpg"},
		Product{ID: "citrus-blend-30ml", Name: "Citrus Blend 30 ml", Price: decimal.RequireFromString("24.90"), Category: "blend", Image: "/img/citrus-blend.jpg"},
		Product{ID: "forest-blend-30ml", Name: "Forest Blend 30 ml", Price: decimal.RequireFromString("26.00"), Category: "blend", Image: "/img/forest-blend.jpg"},
	)
}
