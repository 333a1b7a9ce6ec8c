package products

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/vendorverse-backend/internal/identity"
	"github.com/angelmondragon/vendorverse-backend/internal/stores"
	"github.com/angelmondragon/vendorverse-backend/pkg/changefeed"
	"github.com/angelmondragon/vendorverse-backend/pkg/db"
	"github.com/angelmondragon/vendorverse-backend/pkg/db/models"
	"github.com/angelmondragon/vendorverse-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/vendorverse-backend/pkg/errors"
	"github.com/angelmondragon/vendorverse-backend/pkg/logger"
	"github.com/angelmondragon/vendorverse-backend/pkg/validation"
	"github.com/google/uuid"
)

// Service exposes supplier catalog management. Every mutation answers with
// the supplier's refreshed product list.
type Service interface {
	List(ctx context.Context, who identity.Identity) ([]ProductDTO, error)
	Create(ctx context.Context, who identity.Identity, input Input) ([]ProductDTO, error)
	Update(ctx context.Context, who identity.Identity, productID uuid.UUID, input Input) ([]ProductDTO, error)
	Delete(ctx context.Context, who identity.Identity, productID uuid.UUID) ([]ProductDTO, error)
}

type readyGate interface {
	RequireReady(ctx context.Context, who identity.Identity) (*stores.StoreDTO, error)
}

type service struct {
	repo      ProductRepository
	gate      readyGate
	publisher changefeed.Publisher
	logg      *logger.Logger
	now       func() time.Time
}

// NewService constructs the supplier product service.
func NewService(repo ProductRepository, gate readyGate, publisher changefeed.Publisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if gate == nil {
		return nil, fmt.Errorf("onboarding gate required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("change publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:      repo,
		gate:      gate,
		publisher: publisher,
		logg:      logg,
		now:       time.Now,
	}, nil
}

func (s *service) List(ctx context.Context, who identity.Identity) ([]ProductDTO, error) {
	store, err := s.authorize(ctx, who)
	if err != nil {
		return nil, err
	}
	return s.scopedList(ctx, store.ID, who.UserID)
}

func (s *service) Create(ctx context.Context, who identity.Identity, input Input) ([]ProductDTO, error) {
	if err := who.Require(enums.RoleSupplier); err != nil {
		return nil, err
	}
	input = input.normalized()
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	store, err := s.gate.RequireReady(ctx, who)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		StoreID:    store.ID,
		SupplierID: who.UserID,
	}
	input.apply(product)
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
	}

	s.notify(ctx, changefeed.OpCreate, product.ID)
	return s.scopedList(ctx, store.ID, who.UserID)
}

func (s *service) Update(ctx context.Context, who identity.Identity, productID uuid.UUID, input Input) ([]ProductDTO, error) {
	if err := who.Require(enums.RoleSupplier); err != nil {
		return nil, err
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	input = input.normalized()
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	store, err := s.gate.RequireReady(ctx, who)
	if err != nil {
		return nil, err
	}

	product, err := s.repo.FindScoped(ctx, store.ID, who.UserID, productID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	input.apply(product)
	if err := s.repo.Update(ctx, product); err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
	}

	s.notify(ctx, changefeed.OpUpdate, productID)
	return s.scopedList(ctx, store.ID, who.UserID)
}

func (s *service) Delete(ctx context.Context, who identity.Identity, productID uuid.UUID) ([]ProductDTO, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	store, err := s.authorize(ctx, who)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, store.ID, who.UserID, productID); err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete product")
	}

	s.notify(ctx, changefeed.OpDelete, productID)
	return s.scopedList(ctx, store.ID, who.UserID)
}

func (s *service) authorize(ctx context.Context, who identity.Identity) (*stores.StoreDTO, error) {
	if err := who.Require(enums.RoleSupplier); err != nil {
		return nil, err
	}
	return s.gate.RequireReady(ctx, who)
}

func (s *service) scopedList(ctx context.Context, storeID, supplierID uuid.UUID) ([]ProductDTO, error) {
	rows, err := s.repo.ListScoped(ctx, storeID, supplierID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list products")
	}
	return FromModels(rows), nil
}

// notify publishes the change. The write already committed, so a failed
// publish is only logged; live views catch up on the next event.
func (s *service) notify(ctx context.Context, op changefeed.Op, productID uuid.UUID) {
	event := changefeed.Event{
		Collection: changefeed.CollectionProducts,
		Op:         op,
		DocumentID: productID.String(),
		At:         s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"collection": event.Collection,
			"op":         string(op),
			"product_id": event.DocumentID,
			"error":      err.Error(),
		})
		s.logg.Warn(logCtx, "change feed publish failed")
	}
}
