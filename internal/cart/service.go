package cart

import (
	"fmt"

	"github.com/angelmondragon/vendorverse-backend/internal/identity"
	"github.com/angelmondragon/vendorverse-backend/internal/products"
	"github.com/angelmondragon/vendorverse-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/vendorverse-backend/pkg/errors"
	"github.com/angelmondragon/vendorverse-backend/pkg/money"
	"github.com/google/uuid"
)

type catalogLookup interface {
	Product(id uuid.UUID) (products.ProductDTO, bool)
}

// Summary is the cart as returned to vendors.
type Summary struct {
	Entries []Entry `json:"entries"`
	Count   int     `json:"count"`
	Total   float64 `json:"total"`
}

// Service exposes the vendor's cart operations. Products are resolved
// against the live catalog so the cart snapshots what the vendor was shown.
type Service struct {
	registry *Registry
	catalog  catalogLookup
}

func NewService(registry *Registry, catalog catalogLookup) (*Service, error) {
	if registry == nil {
		return nil, fmt.Errorf("cart registry required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog lookup required")
	}
	return &Service{registry: registry, catalog: catalog}, nil
}

// Cart returns the vendor's shared cart instance.
func (s *Service) Cart(who identity.Identity) (*Cart, error) {
	if err := who.Require(enums.RoleVendor); err != nil {
		return nil, err
	}
	return s.registry.For(who.UserID), nil
}

func (s *Service) Get(who identity.Identity) (*Summary, error) {
	c, err := s.Cart(who)
	if err != nil {
		return nil, err
	}
	return summarize(c), nil
}

func (s *Service) Add(who identity.Identity, productID uuid.UUID) (*Summary, error) {
	c, err := s.Cart(who)
	if err != nil {
		return nil, err
	}
	product, ok := s.catalog.Product(productID)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found in catalog")
	}
	c.Add(product)
	return summarize(c), nil
}

func (s *Service) UpdateQuantity(who identity.Identity, index, delta int) (*Summary, error) {
	c, err := s.Cart(who)
	if err != nil {
		return nil, err
	}
	if !c.UpdateQuantity(index, delta) {
		return nil, itemNotFound(index)
	}
	return summarize(c), nil
}

func (s *Service) Remove(who identity.Identity, index int) (*Summary, error) {
	c, err := s.Cart(who)
	if err != nil {
		return nil, err
	}
	if !c.Remove(index) {
		return nil, itemNotFound(index)
	}
	return summarize(c), nil
}

func (s *Service) Clear(who identity.Identity) (*Summary, error) {
	c, err := s.Cart(who)
	if err != nil {
		return nil, err
	}
	c.Clear()
	return summarize(c), nil
}

func summarize(c *Cart) *Summary {
	entries := c.Entries()
	return &Summary{
		Entries: entries,
		Count:   len(entries),
		Total:   money.Float(Total(entries)),
	}
}

func itemNotFound(index int) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found").
		WithDetails(map[string]any{"index": index})
}
