package shoppers

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/refabry-storefront/internal/cart"
	"github.com/angelmondragon/refabry-storefront/internal/orders"
	pkgerrors "github.com/angelmondragon/refabry-storefront/pkg/errors"
	"github.com/angelmondragon/refabry-storefront/pkg/logger"
	"github.com/angelmondragon/refabry-storefront/pkg/metrics"
	"github.com/angelmondragon/refabry-storefront/pkg/slots"
)

const (
	defaultIdleTTL  = 30 * time.Minute
	maxSessionIDLen = 64
)

// Session is one shopper's cart and checkout.
type Session struct {
	ID       string
	Cart     *cart.Store
	Checkout *orders.Workflow
	lastSeen time.Time
}

// RegistryParams configure the registry.
type RegistryParams struct {
	Backend slots.Backend
	Orders  orders.OrderCreator
	Logger  *logger.Logger
	Metrics *metrics.Storefront
	IdleTTL time.Duration
}

// Registry keeps live sessions in memory. Evicting a session drops only its
// in-memory state; the cart slot stays in the backend and is hydrated again on
// the next access.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	backend  slots.Backend
	orders   orders.OrderCreator
	logg     *logger.Logger
	metrics  *metrics.Storefront
	idleTTL  time.Duration
	now      func() time.Time
}

// NewRegistry builds a session registry.
func NewRegistry(params RegistryParams) (*Registry, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order creator required")
	}
	backend := params.Backend
	if backend == nil {
		backend = slots.Unavailable{}
	}
	idleTTL := params.IdleTTL
	if idleTTL <= 0 {
		idleTTL = defaultIdleTTL
	}
	return &Registry{
		sessions: map[string]*Session{},
		backend:  backend,
		orders:   params.Orders,
		logg:     params.Logger,
		metrics:  params.Metrics,
		idleTTL:  idleTTL,
		now:      time.Now,
	}, nil
}

// Get returns the session for id, hydrating its cart on first access.
func (r *Registry) Get(ctx context.Context, id string) (*Session, error) {
	id = strings.TrimSpace(id)
	if id == "" || len(id) > maxSessionIDLen {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cart session id")
	}

	r.mu.Lock()
	if sess, ok := r.sessions[id]; ok {
		sess.lastSeen = r.now()
		r.mu.Unlock()
		return sess, nil
	}
	r.mu.Unlock()

	built := r.build(ctx, id)

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.sessions[id]; ok {
		existing.lastSeen = r.now()
		return existing, nil
	}
	built.lastSeen = r.now()
	r.sessions[id] = built
	r.metrics.SetActiveShoppers(len(r.sessions))
	return built, nil
}

func (r *Registry) build(ctx context.Context, id string) *Session {
	adapter := cart.NewAdapter(slots.Bind(r.backend, id), r.logg, r.metrics)
	store := cart.NewStore(ctx, adapter)
	return &Session{
		ID:       id,
		Cart:     store,
		Checkout: orders.NewWorkflow(store, r.orders, r.logg, r.metrics),
	}
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// EvictIdle drops sessions unused for longer than the idle TTL. Sessions with an
// order in flight are kept.
func (r *Registry) EvictIdle() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-r.idleTTL)
	evicted := 0
	for id, sess := range r.sessions {
		if sess.lastSeen.After(cutoff) || sess.Checkout.State().Loading {
			continue
		}
		delete(r.sessions, id)
		evicted++
	}
	r.metrics.SetActiveShoppers(len(r.sessions))
	return evicted
}

// Run evicts idle sessions every half idle TTL until ctx is canceled.
func (r *Registry) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.idleTTL / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logg.Info(ctx, "shopper session janitor stopped")
			return ctx.Err()
		case <-ticker.C:
			if n := r.EvictIdle(); n > 0 {
				r.logg.Debug(r.logg.WithField(ctx, "evicted", n), "evicted idle shopper sessions")
			}
		}
	}
}
