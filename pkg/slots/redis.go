package slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	pkgredis "github.com/angelmondragon/refabry-storefront/pkg/redis"
)

type redisStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Ping(ctx context.Context) error
	CartSlotKey(sessionID string) string
}

// Redis stores payloads under sf:cart:<session>. A zero ttl keeps them forever.
type Redis struct {
	store redisStore
	ttl   time.Duration
}

func NewRedis(store redisStore, ttl time.Duration) *Redis {
	return &Redis{store: store, ttl: ttl}
}

func (r *Redis) Read(ctx context.Context, sessionID string) ([]byte, error) {
	value, err := r.store.Get(ctx, r.store.CartSlotKey(sessionID))
	if errors.Is(err, pkgredis.Nil) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("read cart slot: %w", err)
	}
	return []byte(value), nil
}

func (r *Redis) Write(ctx context.Context, sessionID string, payload []byte) error {
	if err := r.store.Set(ctx, r.store.CartSlotKey(sessionID), string(payload), r.ttl); err != nil {
		return fmt.Errorf("write cart slot: %w", err)
	}
	return nil
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.store.Ping(ctx)
}
