package cart

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

// Snapshot is a read-only view of the cart with its derived totals.
type Snapshot struct {
	Lines          Lines           `json:"items"`
	Count          int             `json:"count"`
	Units          int             `json:"units"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DeliveryCharge decimal.Decimal `json:"delivery_charge"`
	Total          decimal.Decimal `json:"total"`
}

func newSnapshot(lines Lines) Snapshot {
	return Snapshot{
		Lines:          lines.clone(),
		Count:          len(lines),
		Units:          Units(lines),
		Subtotal:       Subtotal(lines),
		DeliveryCharge: DeliveryCharge,
		Total:          Total(lines),
	}
}

// Store holds one shopper's cart. Every mutation replaces the in-memory lines and
// is written through to the adapter before it returns.
type Store struct {
	mu       sync.Mutex
	lines    Lines
	adapter  *Adapter
	recorder Recorder
}

// NewStore hydrates a store from adapter. A nil adapter keeps the cart in memory only.
func NewStore(ctx context.Context, adapter *Adapter) *Store {
	s := &Store{lines: Lines{}, recorder: nopRecorder{}}
	if adapter != nil {
		s.adapter = adapter
		s.recorder = adapter.recorder
		s.lines = adapter.Hydrate(ctx)
	}
	return s
}

// Add merges item into the cart.
func (s *Store) Add(ctx context.Context, item LineItem) Snapshot {
	return s.apply(ctx, "add", func(lines Lines) Lines { return Add(lines, item) })
}

// Remove drops the line for productID.
func (s *Store) Remove(ctx context.Context, productID int) Snapshot {
	return s.apply(ctx, "remove", func(lines Lines) Lines { return Remove(lines, productID) })
}

// UpdateQuantity sets the quantity of an existing line. Values below 1 are ignored.
func (s *Store) UpdateQuantity(ctx context.Context, productID, quantity int) Snapshot {
	return s.apply(ctx, "update_quantity", func(lines Lines) Lines { return UpdateQuantity(lines, productID, quantity) })
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) Snapshot {
	return s.apply(ctx, "clear", func(Lines) Lines { return Clear() })
}

// Lines returns a copy of the current lines.
func (s *Store) Lines() Lines {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lines.clone()
}

// Snapshot returns the current lines with their totals.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return newSnapshot(s.lines)
}

func (s *Store) apply(ctx context.Context, op string, mutate func(Lines) Lines) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = mutate(s.lines)
	s.recorder.IncCartMutation(op)
	if s.adapter != nil {
		s.adapter.Persist(ctx, s.lines)
	}
	return newSnapshot(s.lines)
}
