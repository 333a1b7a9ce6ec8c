// Package catalog keeps a live in-memory projection of the product
// collection and derives per-vendor search views from it.
package catalog

import (
	"strings"

	"github.com/angelmondragon/vendorverse-backend/internal/products"
)

// Filter returns the products whose name contains query, ignoring case and
// surrounding whitespace. A blank query returns list unchanged.
func Filter(list []products.ProductDTO, query string) []products.ProductDTO {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return list
	}
	out := make([]products.ProductDTO, 0, len(list))
	for _, p := range list {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			out = append(out, p)
		}
	}
	return out
}
