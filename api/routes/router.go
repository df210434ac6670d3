package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/refabry-storefront/api/controllers"
	"github.com/angelmondragon/refabry-storefront/api/middleware"
	"github.com/angelmondragon/refabry-storefront/pkg/config"
	"github.com/angelmondragon/refabry-storefront/pkg/logger"
	"github.com/angelmondragon/refabry-storefront/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	slotBackend controllers.Pinger,
	redisClient *redis.Client,
	catalog controllers.Catalog,
	sessions controllers.Sessions,
	gatherer prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, slotBackend, logg))
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	// A nil *redis.Client must not reach the middleware as a non-nil interface.
	var idempotencyStore redis.IdempotencyStore
	var rateStore interface {
		IncrWithTTL(context.Context, string, time.Duration) (int64, error)
	}
	if redisClient != nil {
		idempotencyStore = redisClient
		rateStore = redisClient
	}

	imageBase := cfg.ShopAPI.ImageBaseURL
	// Replays are answered before they count against the rate limit.
	orderGuards := []func(http.Handler) http.Handler{
		middleware.Idempotency(idempotencyStore, cfg.Checkout.IdempotencyTTL, logg),
		middleware.CheckoutRateLimit(middleware.NewCheckoutRateLimitPolicy(
			"checkout",
			cfg.Checkout.RateLimitWindow,
			cfg.Checkout.RateLimitIPLimit,
			cfg.Checkout.RateLimitPhoneLimit,
		), rateStore, logg),
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.CartSession(middleware.SessionPolicy{
			CookieName: cfg.Session.CookieName,
			MaxAge:     cfg.Session.CookieMaxAge,
			Secure:     cfg.Session.SecureCookie,
		}, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(catalog, imageBase, logg))
			r.Get("/{id}", controllers.GetProduct(catalog, imageBase, logg))
			r.With(orderGuards...).Post("/{id}/order", controllers.BuyNow(catalog, sessions, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.GetCart(sessions, logg))
			r.Delete("/", controllers.ClearCart(sessions, logg))
			r.Post("/items", controllers.AddCartItem(catalog, sessions, logg))
			r.Patch("/items/{id}", controllers.UpdateCartItem(sessions, logg))
			r.Delete("/items/{id}", controllers.RemoveCartItem(sessions, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", controllers.GetCheckout(sessions, logg))
			r.With(orderGuards...).Post("/", controllers.SubmitCheckout(sessions, logg))
			r.Post("/reset", controllers.ResetCheckout(sessions, logg))
		})
	})

	return r
}
