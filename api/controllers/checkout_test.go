package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/refabry-storefront/pkg/config"
	"github.com/angelmondragon/refabry-storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/refabry-storefront/pkg/errors"
)

const validCheckoutBody = `{"c_name":"Rahim Uddin","c_phone":"01712345678","address":"House 12, Road 5, Dhanmondi","courier":"pathao"}`

func checkoutState(t *testing.T, f *fixture) checkoutView {
	t.Helper()
	rec := serve(GetCheckout(f.registry, nil), http.MethodGet, "/api/v1/checkout", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var view checkoutView
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &view))
	return view
}

func TestSubmitCheckoutEmptyCart(t *testing.T) {
	f := newFixture(t)
	rec := serve(SubmitCheckout(f.registry, nil), http.MethodPost, "/api/v1/checkout", validCheckoutBody, nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Your cart is empty", decodeEnvelope(t, rec).Error.Message)
	assert.Equal(t, 0, f.creator.calls())
	assert.Equal(t, enums.OrderStatusIdle, checkoutState(t, f).Status)
}

func TestSubmitCheckoutSuccessClearsCart(t *testing.T) {
	f := newFixture(t)
	serve(AddCartItem(f.catalog, f.registry, nil), http.MethodPost, "/api/v1/cart/items", `{"id":1,"quantity":2}`, nil)
	serve(AddCartItem(f.catalog, f.registry, nil), http.MethodPost, "/api/v1/cart/items", `{"id":3,"quantity":1}`, nil)

	rec := serve(SubmitCheckout(f.registry, nil), http.MethodPost, "/api/v1/checkout", validCheckoutBody, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	require.Equal(t, 1, f.creator.calls())
	req := f.creator.requests[0]
	assert.Equal(t, "1,3", req.ProductIDs)
	assert.Equal(t, "2,1", req.Quantities)
	assert.Equal(t, "4280", req.CODAmount)

	assert.Equal(t, 0, f.session(t).Cart.Snapshot().Count)
	view := checkoutState(t, f)
	assert.Equal(t, enums.OrderStatusSuccess, view.Status)
	assert.Empty(t, view.Form.Name)
	assert.Equal(t, enums.DefaultCourier, view.Form.Courier)
}

func TestSubmitCheckoutRemoteRejectionKeepsCart(t *testing.T) {
	f := newFixture(t)
	f.creator.err = pkgerrors.New(pkgerrors.CodeRemoteValidation, "Invalid phone number")
	serve(AddCartItem(f.catalog, f.registry, nil), http.MethodPost, "/api/v1/cart/items", `{"id":2}`, nil)

	rec := serve(SubmitCheckout(f.registry, nil), http.MethodPost, "/api/v1/checkout", validCheckoutBody, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Invalid phone number", decodeEnvelope(t, rec).Error.Message)

	assert.Equal(t, 1, f.session(t).Cart.Snapshot().Count)
	view := checkoutState(t, f)
	assert.Equal(t, enums.OrderStatusError, view.Status)
	assert.Equal(t, "Invalid phone number", view.Error)
	assert.Equal(t, "Rahim Uddin", view.Form.Name)

	rec = serve(ResetCheckout(f.registry, nil), http.MethodPost, "/api/v1/checkout/reset", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, enums.OrderStatusIdle, checkoutState(t, f).Status)
}

func TestSubmitCheckoutTransportFailure(t *testing.T) {
	f := newFixture(t)
	f.creator.err = pkgerrors.New(pkgerrors.CodeDependency, "request failed with status code 500")
	serve(AddCartItem(f.catalog, f.registry, nil), http.MethodPost, "/api/v1/cart/items", `{"id":2}`, nil)

	rec := serve(SubmitCheckout(f.registry, nil), http.MethodPost, "/api/v1/checkout", validCheckoutBody, nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "request failed with status code 500", checkoutState(t, f).Error)
}

func TestSubmitCheckoutRejectsUnknownFields(t *testing.T) {
	f := newFixture(t)
	rec := serve(SubmitCheckout(f.registry, nil), http.MethodPost, "/api/v1/checkout", `{"c_name":"Rahim","coupon":"X"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type pingerFunc func(context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}, Cart: config.CartConfig{Backend: config.CartBackendMemory}}

	rec := serve(HealthReady(cfg, pingerFunc(func(context.Context) error { return nil }), nil), http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dev", rec.Header().Get("X-Storefront-Env"))

	rec = serve(HealthReady(cfg, pingerFunc(func(context.Context) error { return errors.New("down") }), nil), http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = serve(HealthLive(cfg), http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
