// Package checkout turns a single product or a snapshot of the cart into a
// confirmed order summary.
package checkout

import (
	"sync"
	"time"

	"github.com/angelmondragon/vendorverse-backend/internal/cart"
	"github.com/angelmondragon/vendorverse-backend/internal/products"
	pkgerrors "github.com/angelmondragon/vendorverse-backend/pkg/errors"
	"github.com/angelmondragon/vendorverse-backend/pkg/money"
	"github.com/shopspring/decimal"
)

// Mode says which input the flow is confirming.
type Mode string

const (
	ModeNone    Mode = ""
	ModeProduct Mode = "product"
	ModeCart    Mode = "cart"
)

// Line is one product of an order summary.
type Line struct {
	Product   products.ProductDTO `json:"product"`
	Quantity  int                 `json:"quantity"`
	LineTotal float64             `json:"line_total"`
}

// OrderSummary is what a confirmation emits. Nothing is submitted onward.
type OrderSummary struct {
	Mode        Mode            `json:"mode"`
	Lines       []Line          `json:"lines"`
	Stores      []StoreSubtotal `json:"stores"`
	Quantity    int             `json:"quantity"`
	Total       float64         `json:"total"`
	ConfirmedAt time.Time       `json:"confirmed_at"`
}

// Flow holds one checkout interaction. The quantity selector only drives the
// single-product path; the cart path is a read-only summary.
type Flow struct {
	mu       sync.Mutex
	mode     Mode
	product  *products.ProductDTO
	entries  []cart.Entry
	quantity int
	now      func() time.Time
}

func NewFlow() *Flow {
	return &Flow{quantity: 1, now: time.Now}
}

// SetProduct switches to buy-now. The quantity resets to 1 whenever p is a
// different reference than the current one.
func (f *Flow) SetProduct(p *products.ProductDTO) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mode == ModeProduct && f.product == p {
		return
	}
	f.mode = ModeProduct
	f.product = p
	f.entries = nil
	f.quantity = 1
}

// SetCart switches to the cart path with a snapshot of entries.
func (f *Flow) SetCart(entries []cart.Entry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mode = ModeCart
	f.product = nil
	f.entries = append([]cart.Entry(nil), entries...)
	f.quantity = 1
}

func (f *Flow) Increment() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quantity++
}

// Decrement lowers the quantity, never below 1.
func (f *Flow) Decrement() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.quantity > 1 {
		f.quantity--
	}
}

// SetQuantity sets the quantity, clamped at 1.
func (f *Flow) SetQuantity(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quantity = money.Quantity(n)
}

func (f *Flow) Quantity() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.quantity
}

func (f *Flow) Mode() Mode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

// Total is price × quantity for a product and the sum of line totals for a
// cart.
func (f *Flow) Total() decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch f.mode {
	case ModeProduct:
		if f.product == nil {
			return decimal.Zero
		}
		return money.LineTotal(f.product.Price, f.quantity)
	case ModeCart:
		return cart.Total(f.entries)
	default:
		return decimal.Zero
	}
}

// Confirm emits the order summary for the current input.
func (f *Flow) Confirm() (*OrderSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var lines []Line
	switch f.mode {
	case ModeProduct:
		if f.product == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "no product selected")
		}
		lines = []Line{{
			Product:   *f.product,
			Quantity:  f.quantity,
			LineTotal: money.Float(money.LineTotal(f.product.Price, f.quantity)),
		}}
	case ModeCart:
		if len(f.entries) == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "your cart is empty")
		}
		lines = make([]Line, 0, len(f.entries))
		for _, e := range f.entries {
			lines = append(lines, Line{
				Product:   e.Product,
				Quantity:  e.Quantity,
				LineTotal: money.Float(e.LineTotal()),
			})
		}
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nothing to check out")
	}

	summary := &OrderSummary{
		Mode:        f.mode,
		Lines:       lines,
		Stores:      SubtotalsByStore(lines),
		ConfirmedAt: f.now().UTC(),
	}
	total := decimal.Zero
	for _, l := range lines {
		summary.Quantity += l.Quantity
		total = total.Add(money.LineTotal(l.Product.Price, l.Quantity))
	}
	summary.Total = money.Float(total)
	return summary, nil
}
