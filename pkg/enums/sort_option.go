package enums

import "fmt"

// SortOption orders a product listing.
type SortOption string

const (
	SortDefault   SortOption = "default"
	SortPriceLow  SortOption = "price-low"
	SortPriceHigh SortOption = "price-high"
	SortNameAsc   SortOption = "name-asc"
	SortNameDesc  SortOption = "name-desc"
)

var validSortOptions = []SortOption{
	SortDefault,
	SortPriceLow,
	SortPriceHigh,
	SortNameAsc,
	SortNameDesc,
}

// String implements fmt.Stringer.
func (s SortOption) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SortOption.
func (s SortOption) IsValid() bool {
	for _, candidate := range validSortOptions {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSortOption converts raw input into a SortOption. Empty input selects SortDefault.
func ParseSortOption(value string) (SortOption, error) {
	if value == "" {
		return SortDefault, nil
	}
	for _, candidate := range validSortOptions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sort option %q", value)
}
