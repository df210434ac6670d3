package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/refabry-storefront/api/responses"
	"github.com/angelmondragon/refabry-storefront/pkg/config"
	pkgerrors "github.com/angelmondragon/refabry-storefront/pkg/errors"
	"github.com/angelmondragon/refabry-storefront/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// Pinger is a dependency checked by the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Storefront-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready once the cart slot backend answers a ping.
func HealthReady(cfg *config.Config, slots Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Storefront-Env", cfg.App.Env)
		if slots != nil {
			ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
			defer cancel()
			if err := slots.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cart storage unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready", "cart_backend": cfg.Cart.Backend})
	}
}
