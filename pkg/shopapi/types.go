package shopapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Product is the wire shape of one catalog entry returned by the product list endpoint.
type Product struct {
	ID             int             `json:"id"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	Image          string          `json:"image"`
	Stock          int             `json:"stock"`
	IsDiscount     Flag            `json:"is_discount"`
	DiscountAmount *FlexString     `json:"discount_amount"`
	ShortDesc      *string         `json:"short_desc"`
	Category       *Category       `json:"category"`
	Code           *string         `json:"code"`
	UniqueID       *string         `json:"unique_id"`
	ProductImages  []ProductImage  `json:"product_images"`
}

type Category struct {
	Name string `json:"name"`
}

type ProductImage struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Flag decodes 0/1 integers, booleans and their string forms.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	switch strings.ToLower(raw) {
	case "", "null", "0", "false":
		*f = false
		return nil
	case "true":
		*f = true
		return nil
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid flag value %s", string(data))
	}
	*f = n != 0
	return nil
}

func (f Flag) MarshalJSON() ([]byte, error) {
	if f {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}

// FlexString accepts a JSON string or number and keeps its textual form.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var v string
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("invalid string or number %s", string(data))
	}
	*s = FlexString(n.String())
	return nil
}

// OrderRequest is the body accepted by the order-creation endpoint. Numeric fields are
// decimal strings; ids and quantities are comma-joined and positionally aligned.
type OrderRequest struct {
	ProductIDs     string  `json:"product_ids"`
	Quantities     string  `json:"s_product_qty"`
	CustomerName   string  `json:"c_name"`
	CustomerPhone  string  `json:"c_phone"`
	Address        string  `json:"address"`
	Courier        string  `json:"courier"`
	CODAmount      string  `json:"cod_amount"`
	DeliveryCharge string  `json:"delivery_charge"`
	Advance        *string `json:"advance"`
	DiscountAmount *string `json:"discount_amount"`
}

// OrderResponse keeps the remote acknowledgement. Message and Status are best-effort.
type OrderResponse struct {
	Status  any             `json:"status,omitempty"`
	Message string          `json:"message,omitempty"`
	Raw     json.RawMessage `json:"-"`
}
