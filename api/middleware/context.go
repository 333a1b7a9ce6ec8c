package middleware

import (
	"context"

	"github.com/angelmondragon/vendorverse-backend/internal/identity"
)

type contextKey string

const ctxIdentity contextKey = "identity"

// WithIdentity attaches the authenticated caller to ctx.
func WithIdentity(ctx context.Context, who identity.Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxIdentity, who)
}

// IdentityFromContext returns the caller, or the zero identity.
func IdentityFromContext(ctx context.Context) identity.Identity {
	if ctx == nil {
		return identity.Identity{}
	}
	if v, ok := ctx.Value(ctxIdentity).(identity.Identity); ok {
		return v
	}
	return identity.Identity{}
}

func UserIDFromContext(ctx context.Context) string {
	who := IdentityFromContext(ctx)
	if who.IsZero() {
		return ""
	}
	return who.UserID.String()
}

func RoleFromContext(ctx context.Context) string {
	return IdentityFromContext(ctx).Role.String()
}
