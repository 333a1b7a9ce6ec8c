package stores

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/vendorverse-backend/internal/identity"
	"github.com/angelmondragon/vendorverse-backend/pkg/db/models"
	"github.com/angelmondragon/vendorverse-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/vendorverse-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubStoreRepo struct {
	store     *models.Store
	createErr error
	findErr   error
	created   []*models.Store
}

func (s *stubStoreRepo) Create(_ context.Context, store *models.Store) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, store)
	return nil
}

func (s *stubStoreRepo) FindBySupplier(_ context.Context, supplierID uuid.UUID) (*models.Store, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.store == nil || s.store.SupplierID != supplierID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.store, nil
}

func supplier() identity.Identity {
	return identity.Identity{UserID: uuid.New(), Email: "s@example.com", Role: enums.RoleSupplier}
}

func TestNewServiceRequiresRepo(t *testing.T) {
	if _, err := NewService(nil); err == nil {
		t.Fatal("expected error creating service without repo")
	}
}

func TestServiceCreateKeysStoreBySupplier(t *testing.T) {
	repo := &stubStoreRepo{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	who := supplier()
	blank := "   "
	dto, err := svc.Create(context.Background(), who, CreateStoreInput{
		Name:        "  Green Acres ",
		Description: " Fresh produce ",
		ImageURL:    &blank,
	})
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	if dto.ID != who.UserID || dto.SupplierID != who.UserID {
		t.Fatalf("expected store keyed by supplier %s, got id=%s supplier=%s", who.UserID, dto.ID, dto.SupplierID)
	}
	if dto.Name != "Green Acres" || dto.Description != "Fresh produce" {
		t.Fatalf("expected trimmed fields, got %q / %q", dto.Name, dto.Description)
	}
	if dto.ImageURL != nil {
		t.Fatalf("expected blank image url to be dropped, got %q", *dto.ImageURL)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one insert, got %d", len(repo.created))
	}
}

func TestServiceCreateValidatesBeforeInsert(t *testing.T) {
	repo := &stubStoreRepo{}
	svc, _ := NewService(repo)

	_, err := svc.Create(context.Background(), supplier(), CreateStoreInput{Name: "  ", Description: "x"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(repo.created) != 0 {
		t.Fatal("repository must not be called on invalid input")
	}
}

func TestServiceCreateRejectsVendor(t *testing.T) {
	svc, _ := NewService(&stubStoreRepo{})
	vendor := identity.Identity{UserID: uuid.New(), Role: enums.RoleVendor}

	_, err := svc.Create(context.Background(), vendor, CreateStoreInput{Name: "a", Description: "b"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestServiceCreateDuplicateIsConflict(t *testing.T) {
	repo := &stubStoreRepo{createErr: errors.New("UNIQUE constraint failed: stores.id")}
	svc, _ := NewService(repo)

	_, err := svc.Create(context.Background(), supplier(), CreateStoreInput{Name: "a", Description: "b"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestServiceGetAndLookup(t *testing.T) {
	who := supplier()
	repo := &stubStoreRepo{store: &models.Store{ID: who.UserID, SupplierID: who.UserID, Name: "Farm"}}
	svc, _ := NewService(repo)

	dto, err := svc.Get(context.Background(), who)
	if err != nil {
		t.Fatalf("get store: %v", err)
	}
	if dto.Name != "Farm" {
		t.Fatalf("unexpected store %+v", dto)
	}

	missing, err := svc.Lookup(context.Background(), uuid.New())
	if err != nil || missing != nil {
		t.Fatalf("expected nil store without error, got %v / %v", missing, err)
	}

	_, err = svc.Get(context.Background(), supplier())
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestServiceLookupWrapsBackendErrors(t *testing.T) {
	svc, _ := NewService(&stubStoreRepo{findErr: errors.New("connection reset")})
	supplierID := uuid.New()

	_, err := svc.Lookup(context.Background(), supplierID)
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	var typed *pkgerrors.Error
	if !errors.As(err, &typed) || typed.Message() != "db: load store for supplier "+supplierID.String() {
		t.Fatalf("expected supplier in message, got %v", err)
	}
}
