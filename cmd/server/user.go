package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iliyamo/election-tally/internal/config"
	"github.com/iliyamo/election-tally/internal/database"
	"github.com/iliyamo/election-tally/internal/model"
	"github.com/iliyamo/election-tally/internal/repository"
)

func newCreateUserCmd(log zerolog.Logger) *cobra.Command {
	var (
		username string
		password string
		role     string
		areaID   uint64
		cost     int
	)
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a voter or staff account",
		RunE: func(cmd *cobra.Command, args []string) error {
			role = strings.ToUpper(strings.TrimSpace(role))
			if role != model.RoleVoter && role != model.RoleStaff {
				return fmt.Errorf("role must be %s or %s", model.RoleVoter, model.RoleStaff)
			}
			if strings.TrimSpace(username) == "" || password == "" {
				return errors.New("username and password are required")
			}
			cfg, err := config.LoadDatabase()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			var area *uint64
			if areaID != 0 {
				area = &areaID
			}
			id, err := repository.NewUserRepo(db).Create(cmd.Context(), username, password, role, area, cost)
			if err != nil {
				return err
			}
			log.Info().Uint64("user_id", id).Str("role", role).Msg("user created")
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "login name")
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	cmd.Flags().StringVar(&role, "role", model.RoleVoter, "VOTER or STAFF")
	cmd.Flags().Uint64Var(&areaID, "area", 0, "home area id (0 for none)")
	cmd.Flags().IntVar(&cost, "bcrypt-cost", 12, "bcrypt cost")
	return cmd
}
