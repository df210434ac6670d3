package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/refabry-storefront/api/responses"
	"github.com/angelmondragon/refabry-storefront/api/validators"
	"github.com/angelmondragon/refabry-storefront/pkg/logger"
)

type addCartItemRequest struct {
	ID       int `json:"id" validate:"required,gte=1"`
	Quantity int `json:"quantity"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

func GetCart(sessions Sessions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := shopperSession(r, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session.Cart.Snapshot())
	}
}

// AddCartItem snapshots the product's name, price and image into the cart,
// merging with an existing line for the same product.
func AddCartItem(cat Catalog, sessions Sessions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := shopperSession(r, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := lookupProduct(r.Context(), cat, payload.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot := session.Cart.Add(r.Context(), lineFromProduct(product, payload.Quantity))
		responses.WriteSuccess(w, snapshot)
	}
}

// UpdateCartItem sets a line's quantity. Quantities below 1 and unknown products
// leave the cart unchanged.
func UpdateCartItem(sessions Sessions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathInt(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := shopperSession(r, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, session.Cart.UpdateQuantity(r.Context(), id, payload.Quantity))
	}
}

func RemoveCartItem(sessions Sessions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathInt(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := shopperSession(r, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, session.Cart.Remove(r.Context(), id))
	}
}

func ClearCart(sessions Sessions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := shopperSession(r, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session.Cart.Clear(r.Context()))
	}
}
