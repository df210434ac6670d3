package catalog

import (
	"context"
	"sync"
	"time"

	pkgerrors "github.com/angelmondragon/refabry-storefront/pkg/errors"
	"github.com/angelmondragon/refabry-storefront/pkg/logger"
	"github.com/angelmondragon/refabry-storefront/pkg/shopapi"
)

const productNotFoundMessage = "Product not found"

// Source lists the remote catalog.
type Source interface {
	ListProducts(ctx context.Context) ([]shopapi.Product, error)
}

// FetchRecorder observes remote catalog fetches.
type FetchRecorder interface {
	ObserveCatalogFetch(duration time.Duration, err error)
}

type nopFetchRecorder struct{}

func (nopFetchRecorder) ObserveCatalogFetch(time.Duration, error) {}

// Store owns the catalog state shared by every shopper.
//
// Fetches are fenced by ticket: a response is applied only when no newer fetch
// has started since it was issued, so the newest request wins.
type Store struct {
	mu       sync.RWMutex
	state    State
	ticket   uint64
	loaded   bool
	source   Source
	logg     *logger.Logger
	recorder FetchRecorder
	now      func() time.Time
}

// NewStore builds an idle catalog backed by source.
func NewStore(source Source, logg *logger.Logger, recorder FetchRecorder) *Store {
	if logg == nil {
		logg = logger.Nop()
	}
	if recorder == nil {
		recorder = nopFetchRecorder{}
	}
	return &Store{
		state:    InitialState(),
		source:   source,
		logg:     logg,
		recorder: recorder,
		now:      time.Now,
	}
}

// State returns a copy of the current catalog state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.state
	out.Products = copyProducts(s.state.Products)
	if s.state.Selected != nil {
		selected := *s.state.Selected
		out.Selected = &selected
	}
	return out
}

// Loaded reports whether a fetch has completed successfully.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// FetchAll loads the full catalog. On failure the products are emptied and the
// error is recorded. The returned products are this call's own result even when
// a newer fetch superseded it.
func (s *Store) FetchAll(ctx context.Context) ([]Product, error) {
	ticket := s.begin(FetchStarted{})

	products, err := s.list(ctx)
	if err != nil {
		s.applyIfCurrent(ctx, ticket, FetchFailed{Message: pkgerrors.Reason(err)})
		return nil, err
	}
	s.applyIfCurrent(ctx, ticket, FetchSucceeded{Products: products})
	return products, nil
}

// FetchOne selects a product, preferring the loaded catalog. On a miss it fetches
// the catalog once and refreshes the loaded products. A product still missing
// afterwards is reported as NOT_FOUND; transport problems keep their own code.
func (s *Store) FetchOne(ctx context.Context, id int) (Product, error) {
	s.mu.Lock()
	if product, ok := findProduct(s.state.Products, id); ok {
		s.reduce(SelectSucceeded{Product: product})
		s.mu.Unlock()
		return product, nil
	}
	s.mu.Unlock()

	ticket := s.begin(SelectStarted{})

	products, err := s.list(ctx)
	if err != nil {
		s.applyIfCurrent(ctx, ticket, SelectFailed{Message: pkgerrors.Reason(err)})
		return Product{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ticket == ticket {
		s.reduce(FetchSucceeded{Products: products})
	}
	product, ok := findProduct(products, id)
	if !ok {
		s.reduce(SelectFailed{Message: productNotFoundMessage})
		return Product{}, pkgerrors.New(pkgerrors.CodeNotFound, productNotFoundMessage).
			WithDetails(map[string]any{"product_id": id})
	}
	s.reduce(SelectSucceeded{Product: product})
	return product, nil
}

func (s *Store) begin(ev Event) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ticket++
	s.reduce(ev)
	return s.ticket
}

func (s *Store) applyIfCurrent(ctx context.Context, ticket uint64, ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ticket != ticket {
		s.logg.Debug(s.logg.WithField(ctx, "ticket", ticket), "discarding superseded catalog response")
		return
	}
	s.reduce(ev)
}

// reduce applies ev; callers hold s.mu.
func (s *Store) reduce(ev Event) {
	s.state = Reduce(s.state, ev)
	switch ev.(type) {
	case FetchSucceeded:
		s.loaded = true
	case FetchFailed:
		s.loaded = false
	}
}

func (s *Store) list(ctx context.Context) ([]Product, error) {
	if s.source == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog source not configured")
	}
	started := s.now()
	wire, err := s.source.ListProducts(ctx)
	s.recorder.ObserveCatalogFetch(s.now().Sub(started), err)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "catalog fetch failed")
		return nil, err
	}
	return productsFromWire(wire), nil
}
