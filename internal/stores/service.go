package stores

import (
	"context"
	"fmt"

	"github.com/angelmondragon/vendorverse-backend/internal/identity"
	"github.com/angelmondragon/vendorverse-backend/pkg/db"
	"github.com/angelmondragon/vendorverse-backend/pkg/db/models"
	"github.com/angelmondragon/vendorverse-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/vendorverse-backend/pkg/errors"
	"github.com/google/uuid"
)

type storeRepository interface {
	Create(ctx context.Context, store *models.Store) error
	FindBySupplier(ctx context.Context, supplierID uuid.UUID) (*models.Store, error)
}

// Service exposes store operations. Stores are immutable once created.
type Service interface {
	Create(ctx context.Context, who identity.Identity, input CreateStoreInput) (*StoreDTO, error)
	Get(ctx context.Context, who identity.Identity) (*StoreDTO, error)
	// Lookup returns nil without error when the supplier has no store yet.
	Lookup(ctx context.Context, supplierID uuid.UUID) (*StoreDTO, error)
}

type service struct {
	repo storeRepository
}

// NewService builds a store service with the provided repository.
func NewService(repo storeRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, who identity.Identity, input CreateStoreInput) (*StoreDTO, error) {
	if err := who.Require(enums.RoleSupplier); err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	input = input.normalized()

	store := input.toModel(who.UserID)
	if err := s.repo.Create(ctx, store); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "store already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert store")
	}
	return FromModel(store), nil
}

func (s *service) Get(ctx context.Context, who identity.Identity) (*StoreDTO, error) {
	if err := who.Require(enums.RoleSupplier); err != nil {
		return nil, err
	}
	store, err := s.Lookup(ctx, who.UserID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
	}
	return store, nil
}

func (s *service) Lookup(ctx context.Context, supplierID uuid.UUID) (*StoreDTO, error) {
	store, err := s.repo.FindBySupplier(ctx, supplierID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, nil
		}
		return nil, pkgerrors.Wrapf(pkgerrors.CodeDependency, err, "db: load store for supplier %s", supplierID)
	}
	return FromModel(store), nil
}
