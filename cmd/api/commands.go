package main

import (
	"context"
	"fmt"
	"time"

	"sleek-shop/internal/config"
	"sleek-shop/internal/database"
	"sleek-shop/internal/middleware"
	"sleek-shop/internal/model"

	"github.com/spf13/cobra"
)

func migrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "apply or revert database migrations",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "migrate all the way up",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(func(mg *database.Migrator) error { return mg.Up() })
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "revert all migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(func(mg *database.Migrator) error { return mg.Down() })
			},
		},
	)

	return cmd
}

func withMigrator(fn func(mg *database.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := config.NewLogger(cfg.Logger)

	mg, err := database.NewMigrator(cfg.Database.ConnectionString(), logger)
	if err != nil {
		return err
	}
	defer mg.Close()

	return fn(mg)
}

func seedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "insert the sample product catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			logger := config.NewLogger(cfg.Logger)

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			pool, err := database.NewPool(ctx, cfg.Database, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer pool.Close()

			inserted, err := database.Seed(ctx, pool, database.SampleProducts, logger)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d products\n", inserted)
			return nil
		},
	}
}

func tokenCommand() *cobra.Command {
	var (
		userID int64
		email  string
		role   string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "issue a signed bearer token for local testing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if role != model.RoleCustomer && role != model.RoleAdmin {
				return fmt.Errorf("invalid role %q (must be %s or %s)", role, model.RoleCustomer, model.RoleAdmin)
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			logger := config.NewLogger(cfg.Logger)

			auth := middleware.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer, logger)
			token, err := auth.Issue(model.Identity{ID: userID, Email: email, Role: role}, ttl)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user-id", 1, "user id carried in the token")
	cmd.Flags().StringVar(&email, "email", "", "email carried in the token")
	cmd.Flags().StringVar(&role, "role", model.RoleCustomer, "customer or admin")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")

	return cmd
}
