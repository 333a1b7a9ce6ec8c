package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/vendorverse-backend/pkg/errors"
)

type line struct {
	SKU      string `json:"sku" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=1"`
}

type sample struct {
	Name   string   `json:"name" validate:"required"`
	Price  *float64 `json:"price" validate:"required,gt=0"`
	Link   string   `json:"image_url" validate:"omitempty,url"`
	Lines  []line   `json:"lines" validate:"dive"`
	Secret string   `json:"-"`
}

func detailsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var typed *pkgerrors.Error
	require.True(t, errors.As(err, &typed))
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok, "details are %T", typed.Details())
	return details
}

func TestStructReportsFieldDetails(t *testing.T) {
	zero := 0.0
	details := detailsOf(t, Struct(sample{Price: &zero, Link: "not a url"}))

	assert.Equal(t, "is required", details["name"])
	assert.Equal(t, "must be greater than 0", details["price"])
	assert.Equal(t, "must be a valid URL", details["image_url"])
}

func TestStructKeysNestedFieldsByPath(t *testing.T) {
	price := 1.0
	details := detailsOf(t, Struct(sample{
		Name:  "Tomatoes",
		Price: &price,
		Lines: []line{{SKU: "a", Quantity: 1}, {Quantity: 0}},
	}))

	assert.Equal(t, map[string]string{
		"lines[1].sku":      "is required",
		"lines[1].quantity": "must be 1 or more",
	}, details)
}

func TestStructPasses(t *testing.T) {
	price := 2.5
	assert.NoError(t, Struct(sample{Name: "Tomatoes", Price: &price}))
}

func TestFormatWrapsForeignErrors(t *testing.T) {
	err := Format(errors.New("bad input"))
	assert.Equal(t, pkgerrors.CodeValidation, err.Code())
}
