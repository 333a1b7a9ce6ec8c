package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/vendorverse-backend/api/middleware"
	"github.com/angelmondragon/vendorverse-backend/internal/identity"
	"github.com/angelmondragon/vendorverse-backend/pkg/enums"
	"github.com/angelmondragon/vendorverse-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func vendor() identity.Identity {
	return identity.Identity{UserID: uuid.New(), Email: "vendor@example.com", Role: enums.RoleVendor}
}

func supplier() identity.Identity {
	return identity.Identity{UserID: uuid.New(), Email: "supplier@example.com", Role: enums.RoleSupplier}
}

// newRequest builds a request carrying who and the given chi URL params.
func newRequest(method, target, body string, who identity.Identity, params map[string]string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	ctx := req.Context()
	if !who.IsZero() {
		ctx = middleware.WithIdentity(ctx, who)
	}
	if len(params) > 0 {
		rc := chi.NewRouteContext()
		for k, v := range params {
			rc.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rc)
	}
	return req.WithContext(ctx)
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	env := decodeEnvelope(t, rec)
	if err := json.Unmarshal(env.Data, dest); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	env := decodeEnvelope(t, rec)
	if env.Error == nil {
		t.Fatalf("expected error envelope, got %s", rec.Body.String())
	}
	return env.Error.Code
}
