package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/refabry-storefront/pkg/slots"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSlot struct {
	payload  []byte
	readErr  error
	writeErr error
	writes   int
}

func (s *stubSlot) Read(context.Context) ([]byte, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}
	if s.payload == nil {
		return nil, slots.ErrEmpty
	}
	return append([]byte(nil), s.payload...), nil
}

func (s *stubSlot) Write(_ context.Context, payload []byte) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.writes++
	s.payload = append([]byte(nil), payload...)
	return nil
}

type countingRecorder struct {
	mutations map[string]int
	failures  map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{mutations: map[string]int{}, failures: map[string]int{}}
}

func (r *countingRecorder) IncCartMutation(op string) { r.mutations[op]++ }
func (r *countingRecorder) IncSlotFailure(op string)  { r.failures[op]++ }

func TestStoreWritesThroughOnEveryMutation(t *testing.T) {
	ctx := context.Background()
	slot := &stubSlot{}
	recorder := newCountingRecorder()
	store := NewStore(ctx, NewAdapter(slot, nil, recorder))

	store.Add(ctx, item(1, 100, 2))
	store.Add(ctx, item(2, 50, 1))
	store.UpdateQuantity(ctx, 2, 4)
	store.Remove(ctx, 99)

	assert.Equal(t, 4, slot.writes)
	assert.Equal(t, 2, recorder.mutations["add"])
	assert.JSONEq(t, `[{"id":1,"name":"product","price":100,"image":"p.jpg","quantity":2},{"id":2,"name":"product","price":50,"image":"p.jpg","quantity":4}]`, string(slot.payload))

	snap := store.Clear(ctx)
	assert.Empty(t, snap.Lines)
	assert.Equal(t, `[]`, string(slot.payload))
}

func TestRoundTripLaw(t *testing.T) {
	ctx := context.Background()
	slot := &stubSlot{}
	store := NewStore(ctx, NewAdapter(slot, nil, nil))

	store.Add(ctx, item(3, 120, 1))
	first := item(1, 100, 2)
	first.UnitPrice = decimal.RequireFromString("99.95")
	store.Add(ctx, first)
	persisted := append([]byte(nil), slot.payload...)

	reloaded := NewStore(ctx, NewAdapter(slot, nil, nil))
	assert.Equal(t, store.Lines(), reloaded.Lines())

	NewAdapter(slot, nil, nil).Persist(ctx, reloaded.Lines())
	assert.Equal(t, persisted, slot.payload)
}

func TestHydrateFailsOpen(t *testing.T) {
	ctx := context.Background()
	cases := map[string]*stubSlot{
		"empty slot":        {},
		"unavailable":       {readErr: slots.ErrUnavailable},
		"read error":        {readErr: errors.New("redis down")},
		"not json":          {payload: []byte(`{oops`)},
		"wrong shape":       {payload: []byte(`{"id":1}`)},
		"zero quantity":     {payload: []byte(`[{"id":1,"name":"a","price":1,"image":"","quantity":0}]`)},
		"duplicate product": {payload: []byte(`[{"id":1,"price":1,"quantity":1},{"id":1,"price":1,"quantity":1}]`)},
		"null":              {payload: []byte(`null`)},
	}
	for name, slot := range cases {
		t.Run(name, func(t *testing.T) {
			lines := NewAdapter(slot, nil, nil).Hydrate(ctx)
			assert.NotNil(t, lines)
			assert.Empty(t, lines)
		})
	}
}

func TestHydrateAcceptsStringPrices(t *testing.T) {
	slot := &stubSlot{payload: []byte(`[{"id":7,"name":"Cap","price":"99.5","image":"c.jpg","quantity":2}]`)}
	lines := NewAdapter(slot, nil, nil).Hydrate(context.Background())
	require.Len(t, lines, 1)
	assert.Equal(t, "199", Subtotal(lines).String())
}

func TestPersistSkipsUnavailableAndCountsWriteFailures(t *testing.T) {
	ctx := context.Background()
	recorder := newCountingRecorder()

	NewAdapter(&stubSlot{writeErr: slots.ErrUnavailable}, nil, recorder).Persist(ctx, Lines{item(1, 1, 1)})
	assert.Zero(t, recorder.failures["write"])

	NewAdapter(&stubSlot{writeErr: errors.New("disk full")}, nil, recorder).Persist(ctx, Lines{item(1, 1, 1)})
	assert.Equal(t, 1, recorder.failures["write"])
}

func TestStoreMutationSurvivesWriteFailure(t *testing.T) {
	ctx := context.Background()
	store := NewStore(ctx, NewAdapter(&stubSlot{writeErr: errors.New("disk full")}, nil, nil))

	snap := store.Add(ctx, item(1, 100, 1))
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, "180", snap.Total.String())
}

func TestStoreWithoutAdapter(t *testing.T) {
	ctx := context.Background()
	store := NewStore(ctx, nil)
	store.Add(ctx, item(1, 10, 1))
	assert.Equal(t, 1, store.Snapshot().Count)
}
