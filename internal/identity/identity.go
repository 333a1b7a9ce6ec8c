// Package identity carries the authenticated caller explicitly through
// service calls instead of services looking up a "current user".
package identity

import (
	"github.com/angelmondragon/vendorverse-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/vendorverse-backend/pkg/errors"
	"github.com/google/uuid"
)

// Identity is the authenticated account making a request.
type Identity struct {
	UserID    uuid.UUID
	Email     string
	Role      enums.Role
	SessionID string
}

// IsZero reports whether no caller is attached.
func (i Identity) IsZero() bool {
	return i.UserID == uuid.Nil
}

// Require fails unless the identity is authenticated with the given role.
func (i Identity) Require(role enums.Role) error {
	if i.IsZero() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if i.Role != role {
		return pkgerrors.New(pkgerrors.CodeForbidden, "this action requires the "+role.String()+" role")
	}
	return nil
}
