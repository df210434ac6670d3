package cart

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// DeliveryCharge is added once per order, independent of contents and courier.
var DeliveryCharge = decimal.NewFromInt(80)

// LineItem is the cart's snapshot of a product taken when it was added.
// Price, name and image are not refreshed from the catalog afterwards.
type LineItem struct {
	ProductID int             `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Quantity  int             `json:"quantity"`
}

// MarshalJSON writes the price as a JSON number, matching the stored cart shape.
func (l LineItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ProductID int         `json:"id"`
		Name      string      `json:"name"`
		UnitPrice json.Number `json:"price"`
		Image     string      `json:"image"`
		Quantity  int         `json:"quantity"`
	}{
		ProductID: l.ProductID,
		Name:      l.Name,
		UnitPrice: json.Number(l.UnitPrice.String()),
		Image:     l.Image,
		Quantity:  l.Quantity,
	})
}

// LineTotal is UnitPrice × Quantity.
func (l LineItem) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Lines is the ordered cart content. Order is first-add order and survives merges.
// There is at most one line per ProductID and every Quantity is at least 1.
type Lines []LineItem

// Add merges item into lines by ProductID, or appends it when absent.
// A quantity below 1 is treated as 1.
func Add(lines Lines, item LineItem) Lines {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	next := lines.clone()
	if idx := next.index(item.ProductID); idx >= 0 {
		next[idx].Quantity += item.Quantity
		return next
	}
	return append(next, item)
}

// Remove drops the line for productID. Absent ids leave lines unchanged.
func Remove(lines Lines, productID int) Lines {
	next := make(Lines, 0, len(lines))
	for _, line := range lines {
		if line.ProductID != productID {
			next = append(next, line)
		}
	}
	return next
}

// UpdateQuantity sets the quantity of an existing line. Quantities below 1 and
// unknown ids are ignored.
func UpdateQuantity(lines Lines, productID, quantity int) Lines {
	next := lines.clone()
	if quantity < 1 {
		return next
	}
	if idx := next.index(productID); idx >= 0 {
		next[idx].Quantity = quantity
	}
	return next
}

// Clear returns an empty cart.
func Clear() Lines {
	return Lines{}
}

// Subtotal is Σ UnitPrice × Quantity.
func Subtotal(lines Lines) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.LineTotal())
	}
	return total
}

// Total is Subtotal plus DeliveryCharge.
func Total(lines Lines) decimal.Decimal {
	return Subtotal(lines).Add(DeliveryCharge)
}

// Units is the number of items across all lines.
func Units(lines Lines) int {
	units := 0
	for _, line := range lines {
		units += line.Quantity
	}
	return units
}

func (l Lines) index(productID int) int {
	for i, line := range l {
		if line.ProductID == productID {
			return i
		}
	}
	return -1
}

func (l Lines) clone() Lines {
	next := make(Lines, len(l))
	copy(next, l)
	return next
}

// validate reports the first stored entry that breaks the line invariants.
func (l Lines) validate() error {
	seen := make(map[int]struct{}, len(l))
	for i, line := range l {
		if line.Quantity < 1 {
			return fmt.Errorf("cart line %d: quantity %d below 1", i, line.Quantity)
		}
		if _, dup := seen[line.ProductID]; dup {
			return fmt.Errorf("cart line %d: duplicate product id %d", i, line.ProductID)
		}
		seen[line.ProductID] = struct{}{}
	}
	return nil
}
