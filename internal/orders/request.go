package orders

import (
	"strconv"
	"strings"

	"github.com/angelmondragon/refabry-storefront/internal/cart"
	"github.com/angelmondragon/refabry-storefront/pkg/shopapi"
)

// Request is the order-creation payload. It is built per submission and never stored.
type Request = shopapi.OrderRequest

// BuildRequest flattens lines and form into a Request. Index i of the product ids
// corresponds to index i of the quantities.
func BuildRequest(lines cart.Lines, form CheckoutForm) Request {
	ids := make([]string, 0, len(lines))
	quantities := make([]string, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, strconv.Itoa(line.ProductID))
		quantities = append(quantities, strconv.Itoa(line.Quantity))
	}
	return Request{
		ProductIDs:     strings.Join(ids, ","),
		Quantities:     strings.Join(quantities, ","),
		CustomerName:   form.Name,
		CustomerPhone:  form.Phone,
		Address:        form.Address,
		Courier:        form.Courier.String(),
		CODAmount:      cart.Total(lines).String(),
		DeliveryCharge: cart.DeliveryCharge.String(),
	}
}
