package controllers

import (
	"net/http"

	"github.com/angelmondragon/refabry-storefront/api/responses"
	"github.com/angelmondragon/refabry-storefront/api/validators"
	"github.com/angelmondragon/refabry-storefront/internal/orders"
	"github.com/angelmondragon/refabry-storefront/pkg/enums"
	"github.com/angelmondragon/refabry-storefront/pkg/logger"
	"github.com/angelmondragon/refabry-storefront/pkg/shopapi"
)

// checkoutRequest carries the raw form. Field rules live in orders.CheckoutForm so
// the shopper sees its messages rather than generic tag errors.
type checkoutRequest struct {
	Name    string `json:"c_name"`
	Phone   string `json:"c_phone"`
	Address string `json:"address"`
	Courier string `json:"courier"`
}

func (c checkoutRequest) form() orders.CheckoutForm {
	return orders.CheckoutForm{
		Name:    c.Name,
		Phone:   c.Phone,
		Address: c.Address,
		Courier: enums.Courier(c.Courier),
	}
}

type checkoutView struct {
	Status  enums.OrderStatus   `json:"status"`
	Loading bool                `json:"loading"`
	Error   string              `json:"error,omitempty"`
	Success bool                `json:"success"`
	Form    orders.CheckoutForm `json:"form"`
}

func newCheckoutView(state orders.State, form orders.CheckoutForm) checkoutView {
	return checkoutView{
		Status:  state.Status(),
		Loading: state.Loading,
		Error:   state.Error,
		Success: state.Success,
		Form:    form,
	}
}

type orderPlaced struct {
	Order    *shopapi.OrderResponse `json:"order"`
	Checkout checkoutView           `json:"checkout"`
}

func newOrderPlaced(resp *shopapi.OrderResponse, wf *orders.Workflow) orderPlaced {
	return orderPlaced{
		Order:    resp,
		Checkout: newCheckoutView(wf.State(), wf.Form()),
	}
}

func GetCheckout(sessions Sessions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := shopperSession(r, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCheckoutView(session.Checkout.State(), session.Checkout.Form()))
	}
}

// SubmitCheckout places an order for the whole cart. A rejected or failed
// submission leaves the cart intact and is reflected in the checkout state.
func SubmitCheckout(sessions Sessions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := shopperSession(r, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := session.Checkout.Submit(r.Context(), payload.form())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderPlaced(resp, session.Checkout))
	}
}

func ResetCheckout(sessions Sessions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := shopperSession(r, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		state := session.Checkout.Reset()
		responses.WriteSuccess(w, newCheckoutView(state, session.Checkout.Form()))
	}
}
