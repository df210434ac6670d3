package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/refabry-storefront/api/responses"
	"github.com/angelmondragon/refabry-storefront/api/validators"
	"github.com/angelmondragon/refabry-storefront/internal/cart"
	"github.com/angelmondragon/refabry-storefront/internal/catalog"
	"github.com/angelmondragon/refabry-storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/refabry-storefront/pkg/errors"
	"github.com/angelmondragon/refabry-storefront/pkg/logger"
)

const (
	maxListLimit   = 200
	maxSearchQuery = 100
)

// Catalog is the shared product store used by the storefront handlers.
type Catalog interface {
	State() catalog.State
	Loaded() bool
	FetchAll(ctx context.Context) ([]catalog.Product, error)
	FetchOne(ctx context.Context, id int) (catalog.Product, error)
}

type productListMeta struct {
	Count  int                 `json:"count"`
	Total  int                 `json:"total"`
	Status enums.CatalogStatus `json:"status"`
}

// ListProducts serves the catalog, loading it on first use or when refresh=true.
func ListProducts(cat Catalog, imageBase string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cat == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		sortOption, err := enums.ParseSortOption(r.URL.Query().Get("sort"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sort"))
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, maxListLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		refresh, err := validators.ParseQueryBool(r, "refresh")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var products []catalog.Product
		if refresh || !cat.Loaded() {
			products, err = cat.FetchAll(r.Context())
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		} else {
			products = cat.State().Products
		}

		listed := catalog.Browse(products, catalog.BrowseOptions{
			Query: validators.SanitizeString(r.URL.Query().Get("q"), maxSearchQuery),
			Sort:  sortOption,
			Limit: limit,
		})

		responses.WriteSuccessMeta(w, catalog.NewProductDTOs(listed, imageBase), productListMeta{
			Count:  len(listed),
			Total:  len(products),
			Status: cat.State().Status,
		})
	}
}

// GetProduct serves a single product, from the loaded catalog when possible.
func GetProduct(cat Catalog, imageBase string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cat == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		id, err := validators.ParsePathInt(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := cat.FetchOne(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, catalog.NewProductDTO(product, imageBase))
	}
}

type buyNowRequest struct {
	Quantity int `json:"quantity" validate:"omitempty,gte=1"`
	checkoutRequest
}

// BuyNow orders a single product directly, leaving the shopper's cart untouched.
func BuyNow(cat Catalog, sessions Sessions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cat == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		id, err := validators.ParsePathInt(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload buyNowRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := shopperSession(r, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := lookupProduct(r.Context(), cat, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item := lineFromProduct(product, payload.Quantity)
		resp, err := session.Checkout.BuyNow(r.Context(), item, payload.form())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderPlaced(resp, session.Checkout))
	}
}

// lookupProduct reads the loaded catalog without touching the selected product.
// On a miss it refreshes the whole catalog once and searches that result.
func lookupProduct(ctx context.Context, cat Catalog, id int) (catalog.Product, error) {
	if p, ok := findByID(cat.State().Products, id); ok {
		return p, nil
	}
	products, err := cat.FetchAll(ctx)
	if err != nil {
		return catalog.Product{}, err
	}
	if p, ok := findByID(products, id); ok {
		return p, nil
	}
	return catalog.Product{}, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found").
		WithDetails(map[string]any{"product_id": id})
}

func findByID(products []catalog.Product, id int) (catalog.Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return catalog.Product{}, false
}

func lineFromProduct(p catalog.Product, quantity int) cart.LineItem {
	if quantity < 1 {
		quantity = 1
	}
	return cart.LineItem{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Image:     p.Image,
		Quantity:  quantity,
	}
}
