package suppliers

import (
	"context"
	"fmt"

	"github.com/angelmondragon/vendorverse-backend/internal/identity"
	"github.com/angelmondragon/vendorverse-backend/internal/stores"
	"github.com/angelmondragon/vendorverse-backend/pkg/db"
	"github.com/angelmondragon/vendorverse-backend/pkg/db/models"
	"github.com/angelmondragon/vendorverse-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/vendorverse-backend/pkg/errors"
	"github.com/google/uuid"
)

type profileRepository interface {
	Create(ctx context.Context, profile *models.SupplierProfile) error
	FindByID(ctx context.Context, supplierID uuid.UUID) (*models.SupplierProfile, error)
}

type storeLookup interface {
	Lookup(ctx context.Context, supplierID uuid.UUID) (*stores.StoreDTO, error)
}

// Service manages supplier profiles.
type Service interface {
	Create(ctx context.Context, who identity.Identity, input CreateProfileInput) (*ProfileDTO, error)
	// Lookup returns nil without error when no profile exists.
	Lookup(ctx context.Context, supplierID uuid.UUID) (*ProfileDTO, error)
}

type service struct {
	repo   profileRepository
	stores storeLookup
}

func NewService(repo profileRepository, stores storeLookup) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("supplier profile repository required")
	}
	if stores == nil {
		return nil, fmt.Errorf("store lookup required")
	}
	return &service{repo: repo, stores: stores}, nil
}

// Create stores the caller's profile. A store must exist first.
func (s *service) Create(ctx context.Context, who identity.Identity, input CreateProfileInput) (*ProfileDTO, error) {
	if err := who.Require(enums.RoleSupplier); err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	input = input.normalized()

	store, err := s.stores.Lookup(ctx, who.UserID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "create a store before the supplier profile")
	}

	profile := input.toModel(who.UserID, who.Email)
	if err := s.repo.Create(ctx, profile); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "supplier profile already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert supplier profile")
	}
	return FromModel(profile), nil
}

func (s *service) Lookup(ctx context.Context, supplierID uuid.UUID) (*ProfileDTO, error) {
	profile, err := s.repo.FindByID(ctx, supplierID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load supplier profile")
	}
	return FromModel(profile), nil
}
