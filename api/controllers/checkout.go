package controllers

import (
	"net/http"

	"github.com/angelmondragon/vendorverse-backend/api/middleware"
	"github.com/angelmondragon/vendorverse-backend/api/responses"
	"github.com/angelmondragon/vendorverse-backend/api/validators"
	"github.com/angelmondragon/vendorverse-backend/internal/checkout"
	pkgerrors "github.com/angelmondragon/vendorverse-backend/pkg/errors"
	"github.com/angelmondragon/vendorverse-backend/pkg/logger"
)

// CheckoutProduct confirms a buy-now order for one catalog product.
func CheckoutProduct(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var body checkout.BuyNowRequest
		if err := validators.DecodeJSONBody(w, r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.BuyNow(r.Context(), middleware.IdentityFromContext(r.Context()), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, summary)
	}
}

func CheckoutCartPreview(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		preview, err := svc.PreviewCart(r.Context(), middleware.IdentityFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, preview)
	}
}

func CheckoutCartConfirm(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.ConfirmCart(r.Context(), middleware.IdentityFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, summary)
	}
}
