package main

import (
	"github.com/spf13/cobra"

	"github.com/artem13815/shortlist/pkg/storage/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()
		if cfg.Database.URL == "" {
			return errNoDatabase
		}
		pool, err := postgres.ConnectAndMigrate(cmd.Context(), cfg.Database.URL, log)
		if err != nil {
			return err
		}
		pool.Close()
		log.Info("database is up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
