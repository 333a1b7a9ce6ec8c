package auth

import (
	"github.com/angelmondragon/vendorverse-backend/internal/users"
)

// SignUpRequest is the payload for creating an account.
type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=vendor supplier"`
}

// SignInRequest captures the user credentials sent to the sign-in endpoint.
type SignInRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries the refresh token; the access token travels in the
// Authorization header.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse contains the tokens, user and landing route produced by a
// successful sign-up or sign-in.
type AuthResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         *users.UserDTO `json:"user"`
	Redirect     string         `json:"redirect"`
}

// TokenPair is returned by refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// MeResponse describes the signed-in account.
type MeResponse struct {
	User     *users.UserDTO `json:"user"`
	Redirect string         `json:"redirect"`
}
