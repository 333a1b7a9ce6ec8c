package identity

import (
	"testing"

	"github.com/angelmondragon/vendorverse-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/vendorverse-backend/pkg/errors"
	"github.com/google/uuid"
)

func TestRequire(t *testing.T) {
	var anonymous Identity
	if !anonymous.IsZero() {
		t.Fatal("expected zero identity")
	}
	if err := anonymous.Require(enums.RoleVendor); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	supplier := Identity{UserID: uuid.New(), Role: enums.RoleSupplier}
	if err := supplier.Require(enums.RoleSupplier); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := supplier.Require(enums.RoleVendor); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}
