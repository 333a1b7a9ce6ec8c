package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/vendorverse-backend/internal/identity"
	"github.com/angelmondragon/vendorverse-backend/pkg/auth"
	"github.com/angelmondragon/vendorverse-backend/pkg/config"
	"github.com/angelmondragon/vendorverse-backend/pkg/enums"
	"github.com/angelmondragon/vendorverse-backend/pkg/logger"
)

var jwtCfg = config.JWTConfig{Secret: "secret", Issuer: "vendorverse", ExpirationMinutes: 60}

type sessionsStub struct {
	live bool
	err  error
}

func (s sessionsStub) HasSession(context.Context, string) (bool, error) {
	return s.live, s.err
}

func tokenFor(t *testing.T, userID uuid.UUID, role enums.Role, issuedAt time.Time) string {
	t.Helper()
	token, err := auth.MintAccessToken(jwtCfg, issuedAt, auth.AccessTokenPayload{
		UserID: userID,
		Email:  "grower@example.com",
		Role:   role,
		JTI:    "jti-" + userID.String()[:8],
	})
	require.NoError(t, err)
	return token
}

func serveAuth(sessions sessionsStub, header string, next http.HandlerFunc) *httptest.ResponseRecorder {
	if next == nil {
		next = func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	Auth(jwtCfg, sessions, nil)(next).ServeHTTP(rec, req)
	return rec
}

func TestAuthRejectsMissingOrBrokenTokens(t *testing.T) {
	for name, header := range map[string]string{
		"missing": "",
		"garbage": "Bearer invalid",
		"empty":   "Bearer ",
	} {
		t.Run(name, func(t *testing.T) {
			rec := serveAuth(sessionsStub{live: true}, header, nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
		})
	}
}

func TestAuthFlagsExpiredTokens(t *testing.T) {
	token := tokenFor(t, uuid.New(), enums.RoleVendor, time.Now().Add(-2*time.Hour))
	rec := serveAuth(sessionsStub{live: true}, "Bearer "+token, nil)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	var body struct {
		Error struct {
			Message string            `json:"message"`
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "token expired", body.Error.Message)
	assert.Equal(t, "expired", body.Error.Details["reason"])
}

func TestAuthSeedsIdentity(t *testing.T) {
	userID := uuid.New()
	token := tokenFor(t, userID, enums.RoleSupplier, time.Now())

	var who identity.Identity
	rec := serveAuth(sessionsStub{live: true}, "bearer "+token, func(w http.ResponseWriter, r *http.Request) {
		who = IdentityFromContext(r.Context())
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, who.UserID)
	assert.Equal(t, enums.RoleSupplier, who.Role)
	assert.Equal(t, "grower@example.com", who.Email)
	assert.Equal(t, "jti-"+userID.String()[:8], who.SessionID)
}

func TestAuthScopesLogsToCaller(t *testing.T) {
	var logs bytes.Buffer
	logg := logger.New(logger.Options{Output: &logs})
	userID := uuid.New()
	token := tokenFor(t, userID, enums.RoleVendor, time.Now())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	Auth(jwtCfg, sessionsStub{live: true}, logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logg.Info(r.Context(), "cart.viewed")
	})).ServeHTTP(rec, req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(logs.Bytes(), &entry))
	assert.Equal(t, userID.String(), entry["user_id"])
	assert.Equal(t, "vendor", entry["role"])
}

func TestAuthChecksSession(t *testing.T) {
	token := tokenFor(t, uuid.New(), enums.RoleVendor, time.Now())
	mustNotRun := func(http.ResponseWriter, *http.Request) { t.Fatal("handler must not run") }

	assert.Equal(t, http.StatusUnauthorized, serveAuth(sessionsStub{live: false}, "Bearer "+token, mustNotRun).Code)
	assert.Equal(t, http.StatusServiceUnavailable, serveAuth(sessionsStub{err: errors.New("redis down")}, "Bearer "+token, mustNotRun).Code)
}

func TestBearerToken(t *testing.T) {
	for header, want := range map[string]string{
		"Bearer abc":   "abc",
		"BEARER  abc ": "abc",
		"abc":          "abc",
		"":             "",
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		assert.Equal(t, want, BearerToken(req), header)
	}
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(enums.RoleVendor, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		name string
		who  identity.Identity
		want int
	}{
		{"anonymous", identity.Identity{}, http.StatusUnauthorized},
		{"supplier", identity.Identity{UserID: uuid.New(), Role: enums.RoleSupplier}, http.StatusForbidden},
		{"vendor", identity.Identity{UserID: uuid.New(), Role: enums.RoleVendor}, http.StatusNoContent},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithIdentity(req.Context(), tc.who))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, tc.want, rec.Code, tc.name)
	}
}
