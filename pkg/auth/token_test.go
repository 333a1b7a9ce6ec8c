package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/vendorverse-backend/pkg/config"
	"github.com/angelmondragon/vendorverse-backend/pkg/enums"
)

var testCfg = config.JWTConfig{Secret: "secret", Issuer: "vendorverse", ExpirationMinutes: 30}

func mint(t *testing.T, now time.Time, payload AccessTokenPayload) string {
	t.Helper()
	token, err := MintAccessToken(testCfg, now, payload)
	require.NoError(t, err)
	return token
}

func TestMintAndParseRoundTrip(t *testing.T) {
	now := time.Now().UTC()
	userID := uuid.New()
	token := mint(t, now, AccessTokenPayload{UserID: userID, Email: "farm@example.com", Role: enums.RoleSupplier, JTI: "jti-123"})

	claims, err := ParseAccessToken(testCfg, token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "farm@example.com", claims.Email)
	assert.Equal(t, enums.RoleSupplier, claims.Role)
	assert.Equal(t, "jti-123", claims.SessionID())
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, "vendorverse", claims.Issuer)
	assert.WithinDuration(t, now.Add(30*time.Minute), claims.ExpiresAt.Time, time.Second)
}

func TestMintGeneratesJTI(t *testing.T) {
	token := mint(t, time.Now(), AccessTokenPayload{UserID: uuid.New(), Role: enums.RoleVendor})
	claims, err := ParseAccessToken(testCfg, token)
	require.NoError(t, err)
	_, err = uuid.Parse(claims.ID)
	assert.NoError(t, err)
}

func TestParseRejectsTampering(t *testing.T) {
	token := mint(t, time.Now(), AccessTokenPayload{UserID: uuid.New(), Role: enums.RoleVendor})

	_, err := ParseAccessToken(testCfg, token+"x")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	other := testCfg
	other.Secret = "another"
	_, err = ParseAccessToken(other, token)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	other = testCfg
	other.Issuer = "someone-else"
	_, err = ParseAccessToken(other, token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParseRejectsOtherAlgorithms(t *testing.T) {
	claims := AccessTokenClaims{UserID: uuid.New(), Role: enums.RoleVendor, RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    testCfg.Issuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testCfg.Secret))
	require.NoError(t, err)

	_, err = ParseAccessToken(testCfg, token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestExpiredTokenOnlyParsesForRefresh(t *testing.T) {
	userID := uuid.New()
	token := mint(t, time.Now().Add(-time.Hour), AccessTokenPayload{UserID: userID, Role: enums.RoleVendor, JTI: "old"})

	_, err := ParseAccessToken(testCfg, token)
	assert.ErrorIs(t, err, ErrTokenExpired)

	claims, err := ParseAccessTokenAllowExpired(testCfg, token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "old", claims.ID)
}

func TestMintValidatesInput(t *testing.T) {
	now := time.Now()
	_, err := MintAccessToken(testCfg, now, AccessTokenPayload{UserID: uuid.New()})
	assert.Error(t, err, "role is required")

	_, err = MintAccessToken(testCfg, now, AccessTokenPayload{Role: enums.RoleVendor})
	assert.Error(t, err, "user id is required")

	_, err = MintAccessToken(config.JWTConfig{Issuer: "x", ExpirationMinutes: 1}, now, AccessTokenPayload{UserID: uuid.New(), Role: enums.RoleVendor})
	assert.Error(t, err, "secret is required")

	_, err = MintAccessToken(config.JWTConfig{Secret: "s", Issuer: "x"}, now, AccessTokenPayload{UserID: uuid.New(), Role: enums.RoleVendor})
	assert.Error(t, err, "expiry is required")
}
