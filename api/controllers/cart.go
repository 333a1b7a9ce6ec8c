package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/vendorverse-backend/api/middleware"
	"github.com/angelmondragon/vendorverse-backend/api/responses"
	"github.com/angelmondragon/vendorverse-backend/api/validators"
	"github.com/angelmondragon/vendorverse-backend/internal/cart"
	"github.com/angelmondragon/vendorverse-backend/internal/identity"
	"github.com/angelmondragon/vendorverse-backend/pkg/logger"
)

// CartService is implemented by *cart.Service.
type CartService interface {
	Get(who identity.Identity) (*cart.Summary, error)
	Add(who identity.Identity, productID uuid.UUID) (*cart.Summary, error)
	UpdateQuantity(who identity.Identity, index, delta int) (*cart.Summary, error)
	Remove(who identity.Identity, index int) (*cart.Summary, error)
	Clear(who identity.Identity) (*cart.Summary, error)
}

type cartAddRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
}

type cartQuantityRequest struct {
	Delta int `json:"delta" validate:"required"`
}

func CartFetch(svc CartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.Get(middleware.IdentityFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// CartAddItem adds a product from the live catalog.
func CartAddItem(svc CartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body cartAddRequest
		if err := validators.DecodeJSONBody(w, r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Add(middleware.IdentityFromContext(r.Context()), body.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, summary)
	}
}

// CartUpdateItem applies a quantity delta; the quantity never drops below 1.
func CartUpdateItem(svc CartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, err := validators.ParsePathIndex(r, "index")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body cartQuantityRequest
		if err := validators.DecodeJSONBody(w, r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.UpdateQuantity(middleware.IdentityFromContext(r.Context()), index, body.Delta)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

func CartRemoveItem(svc CartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, err := validators.ParsePathIndex(r, "index")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Remove(middleware.IdentityFromContext(r.Context()), index)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

func CartClear(svc CartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.Clear(middleware.IdentityFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
