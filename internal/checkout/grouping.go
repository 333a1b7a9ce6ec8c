package checkout

import (
	"github.com/angelmondragon/vendorverse-backend/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StoreSubtotal is the share of an order that one supplier store fulfils.
type StoreSubtotal struct {
	StoreID   uuid.UUID `json:"store_id"`
	ItemCount int       `json:"item_count"`
	Quantity  int       `json:"quantity"`
	Subtotal  float64   `json:"subtotal"`
}

// SubtotalsByStore groups lines by store, in the order each store first
// appears.
func SubtotalsByStore(lines []Line) []StoreSubtotal {
	order := make([]uuid.UUID, 0, len(lines))
	sums := make(map[uuid.UUID]decimal.Decimal, len(lines))
	groups := make(map[uuid.UUID]*StoreSubtotal, len(lines))
	for _, l := range lines {
		id := l.Product.StoreID
		g, ok := groups[id]
		if !ok {
			g = &StoreSubtotal{StoreID: id}
			groups[id] = g
			order = append(order, id)
		}
		g.ItemCount++
		g.Quantity += l.Quantity
		sums[id] = sums[id].Add(money.LineTotal(l.Product.Price, l.Quantity))
	}

	out := make([]StoreSubtotal, 0, len(order))
	for _, id := range order {
		g := groups[id]
		g.Subtotal = money.Float(sums[id])
		out = append(out, *g)
	}
	return out
}
