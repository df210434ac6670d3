package enums

import (
	"fmt"
	"strings"
)

// Courier is the delivery partner chosen at checkout.
type Courier string

const (
	CourierSteadfast Courier = "steadfast"
	CourierPathao    Courier = "pathao"
	CourierRedX      Courier = "redx"
	CourierPaperfly  Courier = "paperfly"
)

// DefaultCourier is preselected on a fresh checkout form.
const DefaultCourier = CourierSteadfast

var validCouriers = []Courier{
	CourierSteadfast,
	CourierPathao,
	CourierRedX,
	CourierPaperfly,
}

// String implements fmt.Stringer.
func (c Courier) String() string {
	return string(c)
}

// IsValid reports whether the value is a known Courier.
func (c Courier) IsValid() bool {
	for _, candidate := range validCouriers {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCourier converts raw input into a Courier, ignoring case and surrounding space.
func ParseCourier(value string) (Courier, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validCouriers {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid courier %q", value)
}
