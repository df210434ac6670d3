package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/angelmondragon/refabry-storefront/pkg/logger"
	"github.com/angelmondragon/refabry-storefront/pkg/slots"
)

// Slot is the durable location holding one shopper's serialized cart.
type Slot interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, payload []byte) error
}

// Recorder receives cart activity counters.
type Recorder interface {
	IncCartMutation(op string)
	IncSlotFailure(op string)
}

type nopRecorder struct{}

func (nopRecorder) IncCartMutation(string) {}
func (nopRecorder) IncSlotFailure(string)  {}

// Adapter mirrors cart lines into a Slot and restores them from it.
type Adapter struct {
	slot     Slot
	logg     *logger.Logger
	recorder Recorder
}

// NewAdapter binds an adapter to slot. Nil logger or recorder are replaced by no-ops.
func NewAdapter(slot Slot, logg *logger.Logger, recorder Recorder) *Adapter {
	if logg == nil {
		logg = logger.Nop()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Adapter{slot: slot, logg: logg, recorder: recorder}
}

// Hydrate returns the stored lines. Missing, unreachable or malformed data yields an empty cart.
func (a *Adapter) Hydrate(ctx context.Context) Lines {
	if a.slot == nil {
		return Lines{}
	}
	payload, err := a.slot.Read(ctx)
	switch {
	case errors.Is(err, slots.ErrEmpty), errors.Is(err, slots.ErrUnavailable):
		return Lines{}
	case err != nil:
		a.recorder.IncSlotFailure("read")
		a.logg.Warn(a.logg.WithField(ctx, "error", err.Error()), "cart slot read failed; starting with an empty cart")
		return Lines{}
	}

	lines, err := decodeLines(payload)
	if err != nil {
		a.recorder.IncSlotFailure("decode")
		a.logg.Warn(a.logg.WithField(ctx, "error", err.Error()), "stored cart is malformed; starting with an empty cart")
		return Lines{}
	}
	return lines
}

// Persist overwrites the slot with the full line sequence. Failures are logged, not returned.
func (a *Adapter) Persist(ctx context.Context, lines Lines) {
	if a.slot == nil {
		return
	}
	payload, err := encodeLines(lines)
	if err != nil {
		a.recorder.IncSlotFailure("encode")
		a.logg.Error(ctx, "encode cart lines", err)
		return
	}
	err = a.slot.Write(ctx, payload)
	switch {
	case err == nil, errors.Is(err, slots.ErrUnavailable):
		return
	default:
		a.recorder.IncSlotFailure("write")
		a.logg.Error(ctx, "cart slot write failed", err)
	}
}

func encodeLines(lines Lines) ([]byte, error) {
	if lines == nil {
		lines = Lines{}
	}
	return json.Marshal(lines)
}

func decodeLines(payload []byte) (Lines, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return Lines{}, nil
	}
	var lines Lines
	if err := json.Unmarshal(trimmed, &lines); err != nil {
		return nil, err
	}
	if err := lines.validate(); err != nil {
		return nil, err
	}
	if lines == nil {
		lines = Lines{}
	}
	return lines, nil
}
