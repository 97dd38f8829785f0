package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/vibast-solutions/ms-go-checkout/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema for the configured driver",
	Run: func(_ *cobra.Command, _ []string) {
		cfg := mustLoadConfig()
		db := mustOpenDB(cfg)
		defer func() { _ = db.Close() }()

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		runJob("migrate", func() error {
			return migrations.Apply(ctx, db, cfg.Database.Driver)
		})
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
