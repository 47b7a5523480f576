package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/entitlements/pkg/catalog"
	"github.com/dmitrymomot/entitlements/pkg/config"
	"github.com/dmitrymomot/entitlements/pkg/entitlement"
	"github.com/dmitrymomot/entitlements/pkg/ledger"
	"github.com/dmitrymomot/entitlements/pkg/logger"
	"github.com/dmitrymomot/entitlements/pkg/mongo"
	"github.com/dmitrymomot/entitlements/pkg/pg"
	"github.com/dmitrymomot/entitlements/pkg/purchase"
	"github.com/dmitrymomot/entitlements/pkg/redis"
	"github.com/dmitrymomot/entitlements/pkg/sweep"
)

type appConfig struct {
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	PlansPath   string        `env:"PLANS_PATH" envDefault:"plans.yaml"`
	CycleLength time.Duration `env:"BILLING_CYCLE" envDefault:"720h"`

	// LedgerBackend selects the store: postgres, redis, mongo or memory.
	LedgerBackend string `env:"LEDGER_BACKEND" envDefault:"postgres"`

	// PlanCacheTTL enables the Redis plan-resolution cache when positive.
	PlanCacheTTL time.Duration `env:"PLAN_CACHE_TTL" envDefault:"0"`

	SweepConcurrency    int           `env:"SWEEP_CONCURRENCY" envDefault:"8"`
	SweepAccountTimeout time.Duration `env:"SWEEP_ACCOUNT_TIMEOUT" envDefault:"10s"`
}

// app holds the wired engine for one CLI invocation.
type app struct {
	cfg       appConfig
	log       *slog.Logger
	store     ledger.Store
	catalog   *catalog.Catalog
	purchases purchase.Source
	sweeper   *sweep.Sweeper
	service   entitlement.Service

	redisClient *goredis.Client
	closers     []func()
}

func wireApp(ctx context.Context) (*app, error) {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}

	a := &app{
		cfg: cfg,
		log: logger.New(
			logger.WithFormat(logger.Format(cfg.LogFormat)),
			logger.WithLevel(parseLevel(cfg.LogLevel)),
		),
	}

	if err := a.wireStore(ctx); err != nil {
		return nil, err
	}

	cat, err := catalog.New(ctx, catalog.NewYAMLSource(cfg.PlansPath))
	if err != nil {
		a.close()
		return nil, err
	}
	a.catalog = cat

	var paddleCfg purchase.PaddleConfig
	if err := config.Load(&paddleCfg); err != nil {
		a.close()
		return nil, err
	}
	purchases, err := purchase.NewPaddleSource(paddleCfg, nil)
	if err != nil {
		a.close()
		return nil, err
	}
	a.purchases = purchases

	a.sweeper = sweep.New(a.store, purchases, cat,
		sweep.WithConcurrency(cfg.SweepConcurrency),
		sweep.WithAccountTimeout(cfg.SweepAccountTimeout),
		sweep.WithLogger(a.log),
	)

	opts := []entitlement.Option{
		entitlement.WithCycle(cfg.CycleLength),
		entitlement.WithLogger(a.log),
	}
	if cfg.PlanCacheTTL > 0 {
		client, err := a.redisConn(ctx)
		if err != nil {
			a.close()
			return nil, err
		}
		opts = append(opts, entitlement.WithPlanCache(client, cfg.PlanCacheTTL))
	}
	a.service = entitlement.New(ledger.NewService(a.store, ledger.WithLogger(a.log)), purchases, cat, opts...)

	return a, nil
}

// wireStore builds the ledger store for the configured backend.
func (a *app) wireStore(ctx context.Context) error {
	switch a.cfg.LedgerBackend {
	case "postgres":
		var pgCfg pg.Config
		if err := config.Load(&pgCfg); err != nil {
			return err
		}
		pool, err := pg.Connect(ctx, pgCfg)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, pool.Close)
		a.store = ledger.NewPostgresStore(pool)

	case "redis":
		client, err := a.redisConn(ctx)
		if err != nil {
			return err
		}
		a.store = ledger.NewRedisStore(client)

	case "mongo":
		var mongoCfg mongo.Config
		if err := config.Load(&mongoCfg); err != nil {
			return err
		}
		client, err := mongo.Connect(ctx, mongoCfg)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() { _ = client.Disconnect(context.Background()) })
		a.store = ledger.NewMongoStore(client.Database(mongoCfg.Database))

	case "memory":
		a.store = ledger.NewMemStore()

	default:
		return fmt.Errorf("unknown ledger backend %q", a.cfg.LedgerBackend)
	}
	return nil
}

// redisConn returns the shared Redis client, dialing it on first use so
// the ledger store and plan cache reuse one connection pool.
func (a *app) redisConn(ctx context.Context) (*goredis.Client, error) {
	if a.redisClient != nil {
		return a.redisClient, nil
	}

	var redisCfg redis.Config
	if err := config.Load(&redisCfg); err != nil {
		return nil, err
	}
	client, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() { _ = client.Close() })
	a.redisClient = client
	return client, nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
