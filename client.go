// Package coinwidget is the data core behind the price widgets: cached,
// single-flight access to the pricing API plus cross-refresh price deltas.
// The host widget runtime owns scheduling and rendering; this package owns
// fetching, caching, batching, and derived values.
package coinwidget

import (
	"context"
	"time"

	"coinwidget/internal/config"
	"coinwidget/internal/provider"
	"coinwidget/internal/service"
	"coinwidget/internal/store"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/trace"
)

// Client is the host-facing handle. It embeds the read operations
// (ListCryptos, FetchPrices, Portfolio) and exposes the provider for URL
// helpers the host's image pipeline needs.
type Client struct {
	*service.PriceService
	Provider *provider.CoinSpaceProvider
}

// New builds a Client from cfg. Persistent state lands in postgres when
// DATABASE_URL is set, else redis when REDIS_URL is set, else an in-process
// store that loses deltas on restart.
func New(ctx context.Context, cfg *config.Config, tracer trace.Tracer) (*Client, error) {
	st, err := newStore(ctx, cfg, tracer)
	if err != nil {
		return nil, err
	}

	p := provider.NewCoinSpaceProvider(cfg.PriceAPIURL, tracer)
	svc := service.NewPriceService(tracer, p, st,
		time.Duration(cfg.ListingTTLSecs)*time.Second,
		time.Duration(cfg.PriceTTLSecs)*time.Second,
	)
	return &Client{PriceService: svc, Provider: p}, nil
}

func newStore(ctx context.Context, cfg *config.Config, tracer trace.Tracer) (store.Store, error) {
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		pg := store.NewPostgresStore(pool, tracer)
		if err := pg.RunMigrations(ctx); err != nil {
			return nil, err
		}
		return pg, nil
	}
	if cfg.RedisURL != "" {
		client, err := store.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return store.NewRedisStore(client), nil
	}
	return store.NewMemoryStore(), nil
}
