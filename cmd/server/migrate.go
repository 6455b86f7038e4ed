package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iliyamo/election-tally/internal/config"
	"github.com/iliyamo/election-tally/internal/database"
)

func newMigrateCmd(log zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadDatabase()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()
			if err := database.CreateSchema(cmd.Context(), db); err != nil {
				return err
			}
			log.Info().Str("db", cfg.DBName).Msg("schema ready")
			return nil
		},
	}
}
