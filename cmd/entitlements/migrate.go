package main

import (
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/entitlements/pkg/config"
	"github.com/dmitrymomot/entitlements/pkg/logger"
	"github.com/dmitrymomot/entitlements/pkg/pg"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var pgCfg pg.Config
			if err := config.Load(&pgCfg); err != nil {
				return err
			}

			pool, err := pg.Connect(cmd.Context(), pgCfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			return pg.Migrate(cmd.Context(), pool, pgCfg, logger.New())
		},
	}
}
