// Package slots provides the durable key-value backends that hold each shopper's
// serialized cart. A backend stores one opaque payload per session id.
package slots

import (
	"context"
	"errors"
)

var (
	// ErrEmpty reports that nothing has been written for the session yet.
	ErrEmpty = errors.New("slot empty")
	// ErrUnavailable reports that the backing storage cannot be reached at all.
	ErrUnavailable = errors.New("slot storage unavailable")
)

// Backend reads and overwrites per-session payloads.
type Backend interface {
	Read(ctx context.Context, sessionID string) ([]byte, error)
	Write(ctx context.Context, sessionID string, payload []byte) error
	Ping(ctx context.Context) error
}

// Slot is a backend bound to one session.
type Slot struct {
	backend   Backend
	sessionID string
}

// Bind returns the slot for sessionID. A nil backend yields an unavailable slot.
func Bind(backend Backend, sessionID string) Slot {
	if backend == nil {
		backend = Unavailable{}
	}
	return Slot{backend: backend, sessionID: sessionID}
}

func (s Slot) Read(ctx context.Context) ([]byte, error) {
	return s.backend.Read(ctx, s.sessionID)
}

func (s Slot) Write(ctx context.Context, payload []byte) error {
	return s.backend.Write(ctx, s.sessionID, payload)
}

// Unavailable is the backend used when no durable storage exists for the process.
type Unavailable struct{}

func (Unavailable) Read(context.Context, string) ([]byte, error) { return nil, ErrUnavailable }

func (Unavailable) Write(context.Context, string, []byte) error { return ErrUnavailable }

func (Unavailable) Ping(context.Context) error { return nil }
