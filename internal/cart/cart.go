// Package cart keeps each vendor's in-memory shopping cart.
package cart

import (
	"sync"

	"github.com/angelmondragon/vendorverse-backend/internal/products"
	"github.com/angelmondragon/vendorverse-backend/pkg/money"
	"github.com/shopspring/decimal"
)

// Policy decides what adding an already present product does.
type Policy int

const (
	// PolicyAppend adds a new entry every time, even for the same product.
	PolicyAppend Policy = iota
	// PolicyMerge bumps the quantity of the existing entry instead.
	PolicyMerge
)

// PolicyFromFlag maps the merge feature flag onto a Policy.
func PolicyFromFlag(merge bool) Policy {
	if merge {
		return PolicyMerge
	}
	return PolicyAppend
}

// Entry is a product snapshot taken when it was added, plus a quantity that
// never drops below one.
type Entry struct {
	Product  products.ProductDTO `json:"product"`
	Quantity int                 `json:"quantity"`
}

// LineTotal is price × quantity for this entry.
func (e Entry) LineTotal() decimal.Decimal {
	return money.LineTotal(e.Product.Price, e.Quantity)
}

// Cart is an ordered list of entries safe for concurrent use. Every surface
// of a session shares one Cart, so each call is atomic and the last write
// wins between surfaces.
type Cart struct {
	mu      sync.Mutex
	entries []Entry
	policy  Policy
}

func New(policy Policy) *Cart {
	return &Cart{policy: policy}
}

// Add puts product in the cart and returns the index of the affected entry.
func (c *Cart) Add(product products.ProductDTO) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.policy == PolicyMerge {
		for i := range c.entries {
			if c.entries[i].Product.ID == product.ID {
				c.entries[i].Quantity++
				return i
			}
		}
	}
	c.entries = append(c.entries, Entry{Product: product, Quantity: 1})
	return len(c.entries) - 1
}

// UpdateQuantity adds delta to the entry at index, clamping at one. It
// reports false and changes nothing when index is out of range.
func (c *Cart) UpdateQuantity(index, delta int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(c.entries) {
		return false
	}
	next := c.entries[index].Quantity + delta
	if next < 1 {
		next = 1
	}
	c.entries[index].Quantity = next
	return true
}

// Remove deletes the entry at index; later entries shift down by one.
func (c *Cart) Remove(index int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(c.entries) {
		return false
	}
	c.entries = append(c.entries[:index:index], c.entries[index+1:]...)
	return true
}

// Total is recomputed from the entries on every call.
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return total(c.entries)
}

func (c *Cart) Clear() {
	c.mu.Lock()
	c.entries = nil
	c.mu.Unlock()
}

// Drain empties the cart and returns what it held, in one step, so an Add
// racing a checkout lands either in the drained entries or in the next cart.
func (c *Cart) Drain() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.entries
	c.entries = nil
	return out
}

// Entries returns a copy of the current entries.
func (c *Cart) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Total sums the line totals of entries.
func Total(entries []Entry) decimal.Decimal {
	return total(entries)
}

func total(entries []Entry) decimal.Decimal {
	sum := decimal.Zero
	for _, entry := range entries {
		sum = sum.Add(entry.LineTotal())
	}
	return sum
}
