package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/vendorverse-backend/pkg/enums"
)

// AccessTokenPayload is what the caller knows when minting. An empty JTI
// gets a random one.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Email  string
	Role   enums.Role
	JTI    string
}

// AccessTokenClaims is the JWT body. The jti doubles as the session key for
// the refresh token.
type AccessTokenClaims struct {
	UserID uuid.UUID  `json:"user_id"`
	Email  string     `json:"email"`
	Role   enums.Role `json:"role"`
	jwt.RegisteredClaims
}

// SessionID is the jti.
func (c *AccessTokenClaims) SessionID() string {
	return c.ID
}
