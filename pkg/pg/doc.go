// Package pg wires the entitlement engine to PostgreSQL using pgx/v5.
// It covers pooled connectivity with retry, goose schema migrations for
// the credit_accounts table, a health check, and error classifiers used
// by the ledger store to tell transient failures from permanent ones.
//
// Configuration comes from environment variables via the Config struct:
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, slog.Default()); err != nil {
//	    return err
//	}
package pg
