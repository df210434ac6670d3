package enums

// OrderStatus is the derived state of a shopper's checkout.
type OrderStatus string

const (
	OrderStatusIdle    OrderStatus = "idle"
	OrderStatusPending OrderStatus = "pending"
	OrderStatusSuccess OrderStatus = "success"
	OrderStatusError   OrderStatus = "error"
)

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}
