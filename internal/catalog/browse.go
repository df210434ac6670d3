package catalog

import (
	"sort"
	"strings"

	"github.com/angelmondragon/refabry-storefront/pkg/enums"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// BrowseOptions filters and orders a product listing.
type BrowseOptions struct {
	Query string
	Sort  enums.SortOption
	Limit int
}

// Browse returns the products whose name contains Query (case-insensitive),
// ordered by Sort and truncated to Limit when Limit is positive. Equal keys keep
// catalog order. products is not modified.
func Browse(products []Product, opts BrowseOptions) []Product {
	query := strings.ToLower(strings.TrimSpace(opts.Query))
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if query == "" || strings.Contains(strings.ToLower(p.Name), query) {
			out = append(out, p)
		}
	}

	switch opts.Sort {
	case enums.SortPriceLow:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.LessThan(out[j].Price) })
	case enums.SortPriceHigh:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.GreaterThan(out[j].Price) })
	case enums.SortNameAsc, enums.SortNameDesc:
		// Collator keeps internal buffers, so one per call.
		col := collate.New(language.English)
		desc := opts.Sort == enums.SortNameDesc
		sort.SliceStable(out, func(i, j int) bool {
			cmp := col.CompareString(out[i].Name, out[j].Name)
			if desc {
				return cmp > 0
			}
			return cmp < 0
		})
	}

	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out
}
