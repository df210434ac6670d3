package catalog

import "github.com/angelmondragon/refabry-storefront/pkg/enums"

// State is the shared catalog: every loaded product plus the product being viewed.
type State struct {
	Products []Product           `json:"products"`
	Selected *Product            `json:"selected"`
	Status   enums.CatalogStatus `json:"status"`
	Error    string              `json:"error,omitempty"`
}

// Loading mirrors the status for callers that only need the flag.
func (s State) Loading() bool {
	return s.Status == enums.CatalogStatusLoading
}

// Event is an input to Reduce.
type Event interface {
	catalogEvent()
}

type (
	FetchStarted    struct{}
	FetchSucceeded  struct{ Products []Product }
	FetchFailed     struct{ Message string }
	SelectStarted   struct{}
	SelectSucceeded struct{ Product Product }
	SelectFailed    struct{ Message string }
)

func (FetchStarted) catalogEvent()    {}
func (FetchSucceeded) catalogEvent()  {}
func (FetchFailed) catalogEvent()     {}
func (SelectStarted) catalogEvent()   {}
func (SelectSucceeded) catalogEvent() {}
func (SelectFailed) catalogEvent()    {}

// InitialState is an idle, empty catalog.
func InitialState() State {
	return State{Products: []Product{}, Status: enums.CatalogStatusIdle}
}

// Reduce returns the state that follows ev. It never mutates s.
func Reduce(s State, ev Event) State {
	next := s
	switch e := ev.(type) {
	case FetchStarted, SelectStarted:
		next.Status = enums.CatalogStatusLoading
		next.Error = ""
	case FetchSucceeded:
		next.Status = enums.CatalogStatusReady
		next.Error = ""
		next.Products = copyProducts(e.Products)
	case FetchFailed:
		next.Status = enums.CatalogStatusFailed
		next.Error = e.Message
		next.Products = []Product{}
	case SelectSucceeded:
		product := e.Product
		next.Status = enums.CatalogStatusReady
		next.Error = ""
		next.Selected = &product
	case SelectFailed:
		next.Status = enums.CatalogStatusFailed
		next.Error = e.Message
		next.Selected = nil
	}
	return next
}

func copyProducts(products []Product) []Product {
	out := make([]Product, len(products))
	copy(out, products)
	return out
}

func findProduct(products []Product, id int) (Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}
