package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/vendorverse-backend/pkg/errors"
)

const maxSearchLen = 200

// SearchQuery returns the cleaned ?q= parameter.
func SearchQuery(r *http.Request) string {
	return CleanText(r.URL.Query().Get("q"), maxSearchLen)
}

// ParsePathIndex reads a non-negative integer URL parameter.
func ParsePathIndex(r *http.Request, key string) (int, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "path parameter must be a non-negative integer").WithDetails(map[string]any{"field": key})
	}
	return value, nil
}

// ParsePathUUID reads a UUID URL parameter.
func ParsePathUUID(r *http.Request, key string) (uuid.UUID, error) {
	value, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, key)))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "path parameter must be a uuid").WithDetails(map[string]any{"field": key})
	}
	return value, nil
}
