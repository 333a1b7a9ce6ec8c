package controllers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/vendorverse-backend/internal/cart"
	"github.com/angelmondragon/vendorverse-backend/internal/checkout"
	"github.com/angelmondragon/vendorverse-backend/internal/identity"
	"github.com/angelmondragon/vendorverse-backend/internal/products"
	pkgerrors "github.com/angelmondragon/vendorverse-backend/pkg/errors"
)

type stubLookup map[uuid.UUID]products.ProductDTO

func (s stubLookup) Product(id uuid.UUID) (products.ProductDTO, bool) {
	p, ok := s[id]
	return p, ok
}

type commerceFixture struct {
	carts    *cart.Service
	checkout checkout.Service
	tea      products.ProductDTO
	mugs     products.ProductDTO
}

func newCommerceFixture(t *testing.T) commerceFixture {
	t.Helper()
	tea := products.ProductDTO{ID: uuid.New(), Name: "Tea", Price: 4, StoreID: uuid.New()}
	mugs := products.ProductDTO{ID: uuid.New(), Name: "Mug", Price: 10, StoreID: uuid.New()}
	lookup := stubLookup{tea.ID: tea, mugs.ID: mugs}

	carts, err := cart.NewService(cart.NewRegistry(cart.PolicyAppend), lookup)
	if err != nil {
		t.Fatalf("cart service: %v", err)
	}
	svc, err := checkout.NewService(lookup, carts, true, testLogger())
	if err != nil {
		t.Fatalf("checkout service: %v", err)
	}
	return commerceFixture{carts: carts, checkout: svc, tea: tea, mugs: mugs}
}

func TestCartHandlers(t *testing.T) {
	f := newCommerceFixture(t)
	who := vendor()
	logg := testLogger()

	rec := httptest.NewRecorder()
	CartAddItem(f.carts, logg)(rec, newRequest(http.MethodPost, "/", fmt.Sprintf(`{"product_id":%q}`, f.tea.ID), who, nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	CartUpdateItem(f.carts, logg)(rec, newRequest(http.MethodPatch, "/", `{"delta":-3}`, who, map[string]string{"index": "0"}))
	var summary cart.Summary
	decodeData(t, rec, &summary)
	if summary.Entries[0].Quantity != 1 || summary.Total != 4 {
		t.Fatalf("expected quantity to stay at 1, got %+v", summary)
	}

	rec = httptest.NewRecorder()
	CartUpdateItem(f.carts, logg)(rec, newRequest(http.MethodPatch, "/", `{"delta":0}`, who, map[string]string{"index": "0"}))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a zero delta, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	CartRemoveItem(f.carts, logg)(rec, newRequest(http.MethodDelete, "/", "", who, map[string]string{"index": "abc"}))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a non-numeric index, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	CartRemoveItem(f.carts, logg)(rec, newRequest(http.MethodDelete, "/", "", who, map[string]string{"index": "4"}))
	if code := errorCode(t, rec); code != string(pkgerrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %s", code)
	}

	rec = httptest.NewRecorder()
	CartClear(f.carts, logg)(rec, newRequest(http.MethodDelete, "/", "", who, nil))
	decodeData(t, rec, &summary)
	if summary.Count != 0 || summary.Total != 0 {
		t.Fatalf("expected empty cart, got %+v", summary)
	}
}

func TestCartAddUnknownProduct(t *testing.T) {
	f := newCommerceFixture(t)
	rec := httptest.NewRecorder()
	CartAddItem(f.carts, testLogger())(rec, newRequest(http.MethodPost, "/", fmt.Sprintf(`{"product_id":%q}`, uuid.New()), vendor(), nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCartRejectsSuppliers(t *testing.T) {
	f := newCommerceFixture(t)
	rec := httptest.NewRecorder()
	CartFetch(f.carts, testLogger())(rec, newRequest(http.MethodGet, "/", "", supplier(), nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestCheckoutHandlers(t *testing.T) {
	f := newCommerceFixture(t)
	who := vendor()
	logg := testLogger()

	rec := httptest.NewRecorder()
	CheckoutProduct(f.checkout, logg)(rec, newRequest(http.MethodPost, "/", fmt.Sprintf(`{"product_id":%q,"quantity":3}`, f.mugs.ID), who, nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %s", rec.Code, rec.Body.String())
	}
	var order checkout.OrderSummary
	decodeData(t, rec, &order)
	if order.Mode != checkout.ModeProduct || order.Quantity != 3 || order.Total != 30 {
		t.Fatalf("unexpected buy-now summary %+v", order)
	}

	rec = httptest.NewRecorder()
	CheckoutCartConfirm(f.checkout, logg)(rec, newRequest(http.MethodPost, "/", "", who, nil))
	if code := errorCode(t, rec); code != string(pkgerrors.CodeValidation) {
		t.Fatalf("expected empty cart validation error, got %s", code)
	}

	for _, id := range []uuid.UUID{f.tea.ID, f.mugs.ID, f.tea.ID} {
		if _, err := f.carts.Add(who, id); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	rec = httptest.NewRecorder()
	CheckoutCartPreview(f.checkout, logg)(rec, newRequest(http.MethodGet, "/", "", who, nil))
	var preview checkout.CartPreview
	decodeData(t, rec, &preview)
	if preview.Total != 18 || len(preview.Stores) != 2 || preview.Stores[0].StoreID != f.tea.StoreID {
		t.Fatalf("unexpected preview %+v", preview)
	}

	rec = httptest.NewRecorder()
	CheckoutCartConfirm(f.checkout, logg)(rec, newRequest(http.MethodPost, "/", "", who, nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %s", rec.Code, rec.Body.String())
	}
	if summary, _ := f.carts.Get(who); summary.Count != 0 {
		t.Fatalf("expected cart cleared after confirm, got %d entries", summary.Count)
	}
}

func TestCheckoutProductValidation(t *testing.T) {
	f := newCommerceFixture(t)
	rec := httptest.NewRecorder()
	CheckoutProduct(f.checkout, testLogger())(rec, newRequest(http.MethodPost, "/", fmt.Sprintf(`{"product_id":%q,"quantity":-1}`, f.tea.ID), vendor(), nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var who identity.Identity
	rec = httptest.NewRecorder()
	CheckoutCartPreview(f.checkout, testLogger())(rec, newRequest(http.MethodGet, "/", "", who, nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", rec.Code)
	}
}
