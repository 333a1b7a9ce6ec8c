// Package validation checks struct tags on request bodies and domain inputs.
// Failures come back as VALIDATION_ERROR with one detail per field, keyed by
// the field's JSON path (items[0].quantity).
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/angelmondragon/vendorverse-backend/pkg/errors"
	"github.com/angelmondragon/vendorverse-backend/pkg/money"
)

var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	_ = v.RegisterValidation("price", func(fl validator.FieldLevel) bool {
		return fl.Field().CanFloat() && money.ValidPrice(fl.Field().Float())
	})
	return v
}()

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

// Struct returns nil or a *pkgerrors.Error.
func Struct(dest any) error {
	err := validate.Struct(dest)
	if err == nil {
		return nil
	}
	return Format(err)
}

func Format(err error) *pkgerrors.Error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
	}
	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fieldPath(fe)] = describe(fe)
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	if _, rest, ok := strings.Cut(fe.Namespace(), "."); ok {
		return rest
	}
	return fe.Field()
}

var phrases = map[string]string{
	"required": "is required",
	"email":    "must be a valid email",
	"url":      "must be a valid URL",
	"http_url": "must be a valid URL",
	"uuid4":    "must be a valid id",
	"min":      "must be at least %s",
	"max":      "must be at most %s",
	"gt":       "must be greater than %s",
	"gte":      "must be %s or more",
	"lte":      "must be %s or less",
	"oneof":    "must be one of %s",
	"price":    "must be between 0.01 and 9999999999.99",
}

func describe(fe validator.FieldError) string {
	phrase, ok := phrases[fe.Tag()]
	if !ok {
		return "is invalid"
	}
	if strings.Contains(phrase, "%s") {
		return fmt.Sprintf(phrase, fe.Param())
	}
	return phrase
}
