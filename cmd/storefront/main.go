package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/refabry-storefront/api/routes"
	"github.com/angelmondragon/refabry-storefront/internal/catalog"
	"github.com/angelmondragon/refabry-storefront/internal/shoppers"
	"github.com/angelmondragon/refabry-storefront/pkg/config"
	"github.com/angelmondragon/refabry-storefront/pkg/db"
	"github.com/angelmondragon/refabry-storefront/pkg/instance"
	"github.com/angelmondragon/refabry-storefront/pkg/logger"
	"github.com/angelmondragon/refabry-storefront/pkg/metrics"
	"github.com/angelmondragon/refabry-storefront/pkg/migrate"
	"github.com/angelmondragon/refabry-storefront/pkg/redis"
	"github.com/angelmondragon/refabry-storefront/pkg/shopapi"
	"github.com/angelmondragon/refabry-storefront/pkg/slots"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	var closers []io.Closer
	defer func() {
		if err := closeAll(closers); err != nil {
			logg.Error(context.Background(), "error closing resources", err)
		}
	}()

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		closers = append(closers, redisClient)
	}

	backend, closer, err := openSlotBackend(context.Background(), cfg, logg, redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to open cart slot backend", err)
		os.Exit(1)
	}
	if closer != nil {
		closers = append(closers, closer)
	}

	shop, err := shopapi.NewClient(cfg.ShopAPI.BaseURL, shopapi.WithTimeout(cfg.ShopAPI.Timeout))
	if err != nil {
		logg.Error(context.Background(), "failed to create shop api client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewStorefront(registry)

	products := catalog.NewStore(shop, logg, recorder)
	sessions, err := shoppers.NewRegistry(shoppers.RegistryParams{
		Backend: backend,
		Orders:  shop,
		Logger:  logg,
		Metrics: recorder,
		IdleTTL: cfg.Session.IdleTTL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create shopper registry", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":          cfg.App.Env,
		"addr":         addr,
		"cart_backend": cfg.Cart.Backend,
		"instance":     instance.GetID(),
	})

	go func() {
		if err := sessions.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logg.Error(ctx, "shopper session janitor stopped unexpectedly", err)
		}
	}()

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, backend, redisClient, products, sessions, registry),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting storefront server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logg.Error(ctx, "storefront server stopped unexpectedly", err)
			if closeErr := closeAll(closers); closeErr != nil {
				logg.Error(ctx, "error closing resources", closeErr)
			}
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	logg.Info(ctx, "storefront server shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(shutdownCtx, "storefront server shutdown failed", err)
	}
}

// openSlotBackend builds the durable cart slot store named by STOREFRONT_CART_BACKEND.
// The returned closer is nil when the backend owns no connection of its own.
func openSlotBackend(ctx context.Context, cfg *config.Config, logg *logger.Logger, redisClient *redis.Client) (slots.Backend, io.Closer, error) {
	switch cfg.Cart.Backend {
	case config.CartBackendRedis:
		if redisClient == nil {
			return nil, nil, errors.New("redis cart backend requires redis settings")
		}
		return slots.NewRedis(redisClient, cfg.Cart.SlotTTL), nil, nil
	case config.CartBackendSQL:
		dbClient, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			return nil, nil, err
		}
		if err := migrate.MaybeRun(ctx, cfg, logg, dbClient); err != nil {
			return nil, nil, multierr.Append(err, dbClient.Close())
		}
		return slots.NewSQL(dbClient.DB()), dbClient, nil
	case config.CartBackendMemory:
		return slots.NewMemory(), nil, nil
	default:
		logg.Warn(ctx, "cart persistence disabled, carts live only in memory for the session")
		return slots.Unavailable{}, nil, nil
	}
}

func closeAll(closers []io.Closer) error {
	var errs error
	for i := len(closers) - 1; i >= 0; i-- {
		errs = multierr.Append(errs, closers[i].Close())
	}
	return errs
}
