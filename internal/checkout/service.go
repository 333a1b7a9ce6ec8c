package checkout

import (
	"context"
	"fmt"

	"github.com/angelmondragon/vendorverse-backend/internal/cart"
	"github.com/angelmondragon/vendorverse-backend/internal/identity"
	"github.com/angelmondragon/vendorverse-backend/internal/products"
	"github.com/angelmondragon/vendorverse-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/vendorverse-backend/pkg/errors"
	"github.com/angelmondragon/vendorverse-backend/pkg/logger"
	"github.com/angelmondragon/vendorverse-backend/pkg/money"
	"github.com/angelmondragon/vendorverse-backend/pkg/validation"
	"github.com/google/uuid"
)

type catalogLookup interface {
	Product(id uuid.UUID) (products.ProductDTO, bool)
}

type cartSource interface {
	Cart(who identity.Identity) (*cart.Cart, error)
}

// BuyNowRequest checks out one catalog product directly.
type BuyNowRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"omitempty,min=1"`
}

// CartPreview is the read-only summary shown before confirming a cart.
type CartPreview struct {
	Lines    []Line          `json:"lines"`
	Stores   []StoreSubtotal `json:"stores"`
	Quantity int             `json:"quantity"`
	Total    float64         `json:"total"`
}

// Service drives checkout flows for vendors.
type Service interface {
	BuyNow(ctx context.Context, who identity.Identity, req BuyNowRequest) (*OrderSummary, error)
	PreviewCart(ctx context.Context, who identity.Identity) (*CartPreview, error)
	ConfirmCart(ctx context.Context, who identity.Identity) (*OrderSummary, error)
}

type service struct {
	catalog        catalogLookup
	carts          cartSource
	clearOnConfirm bool
	logg           *logger.Logger
	newFlow        func() *Flow
}

// NewService builds the checkout service. clearOnConfirm empties the cart
// after a confirmed cart checkout.
func NewService(catalog catalogLookup, carts cartSource, clearOnConfirm bool, logg *logger.Logger) (Service, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog lookup required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart source required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		catalog:        catalog,
		carts:          carts,
		clearOnConfirm: clearOnConfirm,
		logg:           logg,
		newFlow:        NewFlow,
	}, nil
}

func (s *service) BuyNow(ctx context.Context, who identity.Identity, req BuyNowRequest) (*OrderSummary, error) {
	if err := who.Require(enums.RoleVendor); err != nil {
		return nil, err
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	product, ok := s.catalog.Product(req.ProductID)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found in catalog")
	}

	flow := s.newFlow()
	flow.SetProduct(&product)
	if req.Quantity > 0 {
		flow.SetQuantity(req.Quantity)
	}
	summary, err := flow.Confirm()
	if err != nil {
		return nil, err
	}
	s.logConfirmed(ctx, who, summary)
	return summary, nil
}

func (s *service) PreviewCart(ctx context.Context, who identity.Identity) (*CartPreview, error) {
	c, err := s.carts.Cart(who)
	if err != nil {
		return nil, err
	}
	entries := c.Entries()
	preview := &CartPreview{
		Lines: make([]Line, 0, len(entries)),
		Total: money.Float(cart.Total(entries)),
	}
	for _, e := range entries {
		preview.Lines = append(preview.Lines, Line{
			Product:   e.Product,
			Quantity:  e.Quantity,
			LineTotal: money.Float(e.LineTotal()),
		})
		preview.Quantity += e.Quantity
	}
	preview.Stores = SubtotalsByStore(preview.Lines)
	return preview, nil
}

func (s *service) ConfirmCart(ctx context.Context, who identity.Identity) (*OrderSummary, error) {
	c, err := s.carts.Cart(who)
	if err != nil {
		return nil, err
	}

	var entries []cart.Entry
	if s.clearOnConfirm {
		entries = c.Drain()
	} else {
		entries = c.Entries()
	}

	flow := s.newFlow()
	flow.SetCart(entries)
	summary, err := flow.Confirm()
	if err != nil {
		return nil, err
	}
	s.logConfirmed(ctx, who, summary)
	return summary, nil
}

func (s *service) logConfirmed(ctx context.Context, who identity.Identity, summary *OrderSummary) {
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"user_id":  who.UserID.String(),
		"mode":     string(summary.Mode),
		"lines":    len(summary.Lines),
		"quantity": summary.Quantity,
		"total":    summary.Total,
	}), "checkout confirmed")
}
