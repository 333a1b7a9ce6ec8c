// Package onboarding decides where a supplier stands in setup: a store must
// exist, then a profile, before products can be managed.
package onboarding

import (
	"context"
	"fmt"

	"github.com/angelmondragon/vendorverse-backend/internal/identity"
	"github.com/angelmondragon/vendorverse-backend/internal/stores"
	"github.com/angelmondragon/vendorverse-backend/internal/suppliers"
	"github.com/angelmondragon/vendorverse-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/vendorverse-backend/pkg/errors"
	"github.com/google/uuid"
)

type storeService interface {
	Create(ctx context.Context, who identity.Identity, input stores.CreateStoreInput) (*stores.StoreDTO, error)
	Lookup(ctx context.Context, supplierID uuid.UUID) (*stores.StoreDTO, error)
}

type profileService interface {
	Create(ctx context.Context, who identity.Identity, input suppliers.CreateProfileInput) (*suppliers.ProfileDTO, error)
	Lookup(ctx context.Context, supplierID uuid.UUID) (*suppliers.ProfileDTO, error)
}

// Status is the resolved gate position plus whatever documents exist.
type Status struct {
	State   enums.GateState       `json:"state"`
	Store   *stores.StoreDTO      `json:"store,omitempty"`
	Profile *suppliers.ProfileDTO `json:"profile,omitempty"`
}

// Gate resolves and advances the onboarding state.
type Gate struct {
	stores   storeService
	profiles profileService
}

func NewGate(stores storeService, profiles profileService) (*Gate, error) {
	if stores == nil {
		return nil, fmt.Errorf("store service required")
	}
	if profiles == nil {
		return nil, fmt.Errorf("supplier profile service required")
	}
	return &Gate{stores: stores, profiles: profiles}, nil
}

// Resolve runs the store check, then the profile check.
func (g *Gate) Resolve(ctx context.Context, who identity.Identity) (*Status, error) {
	if err := who.Require(enums.RoleSupplier); err != nil {
		return nil, err
	}

	store, err := g.stores.Lookup(ctx, who.UserID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return &Status{State: enums.GateStateNoStore}, nil
	}

	profile, err := g.profiles.Lookup(ctx, who.UserID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return &Status{State: enums.GateStateNoProfile, Store: store}, nil
	}
	return &Status{State: enums.GateStateReady, Store: store, Profile: profile}, nil
}

// CreateStore is only valid while the supplier has no store. Bad input is
// reported before the gate is consulted.
func (g *Gate) CreateStore(ctx context.Context, who identity.Identity, input stores.CreateStoreInput) (*Status, error) {
	if err := who.Require(enums.RoleSupplier); err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	status, err := g.Resolve(ctx, who)
	if err != nil {
		return nil, err
	}
	if status.State != enums.GateStateNoStore {
		return nil, stateConflict(status.State, enums.GateStateNoStore)
	}

	store, err := g.stores.Create(ctx, who, input)
	if err != nil {
		return nil, err
	}
	return &Status{State: enums.GateStateNoProfile, Store: store}, nil
}

// CreateProfile is only valid once a store exists and before a profile does.
func (g *Gate) CreateProfile(ctx context.Context, who identity.Identity, input suppliers.CreateProfileInput) (*Status, error) {
	if err := who.Require(enums.RoleSupplier); err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	status, err := g.Resolve(ctx, who)
	if err != nil {
		return nil, err
	}
	if status.State != enums.GateStateNoProfile {
		return nil, stateConflict(status.State, enums.GateStateNoProfile)
	}

	profile, err := g.profiles.Create(ctx, who, input)
	if err != nil {
		return nil, err
	}
	return &Status{State: enums.GateStateReady, Store: status.Store, Profile: profile}, nil
}

// RequireReady returns the supplier's store, or STATE_CONFLICT when
// onboarding is incomplete.
func (g *Gate) RequireReady(ctx context.Context, who identity.Identity) (*stores.StoreDTO, error) {
	status, err := g.Resolve(ctx, who)
	if err != nil {
		return nil, err
	}
	if status.State != enums.GateStateReady {
		return nil, stateConflict(status.State, enums.GateStateReady)
	}
	return status.Store, nil
}

func stateConflict(current, required enums.GateState) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "onboarding step not available").
		WithDetails(map[string]any{"state": current, "required": required})
}
