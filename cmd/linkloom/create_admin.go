// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Linkloom Contributors

package main

import (
	"os"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/linkloom/linkloom/internal/auth"
	authpg "github.com/linkloom/linkloom/internal/auth/postgres"
	"github.com/linkloom/linkloom/internal/config"
	"github.com/linkloom/linkloom/internal/store"
)

// NewCreateAdminCmd creates the create-admin subcommand. The first
// admin account cannot be created through the API (user creation is
// admin-only), so it is bootstrapped from the command line.
func NewCreateAdminCmd() *cobra.Command {
	var (
		username string
		email    string
		password string
	)

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin user",
		Long: `Create an admin user directly in the database. Use this to
bootstrap the first account; further users can then be registered
through the API. The password may also be supplied via the
LINKLOOM_ADMIN_PASSWORD environment variable to keep it out of shell
history.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv("LINKLOOM_ADMIN_PASSWORD")
			}
			if password == "" {
				return oops.Code("CONFIG_INVALID").
					Errorf("password is required (--password or LINKLOOM_ADMIN_PASSWORD)")
			}
			return runCreateAdmin(cmd, username, email, password)
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "admin username")
	cmd.Flags().StringVar(&email, "email", "", "admin email address")
	cmd.Flags().StringVar(&password, "password", "", "admin password (prefer LINKLOOM_ADMIN_PASSWORD)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func runCreateAdmin(cmd *cobra.Command, username, email, password string) error {
	databaseURL := os.Getenv(config.EnvDatabaseURL)
	if databaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("%s environment variable is required", config.EnvDatabaseURL)
	}

	ctx := cmd.Context()

	db, err := store.Open(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	migrator, err := store.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		return err
	}
	if err := migrator.Close(); err != nil {
		return err
	}

	// Token settings are irrelevant here; the service only needs a
	// syntactically valid issuer to construct.
	issuer, err := auth.NewTokenIssuer("bootstrap", config.DefaultTokenMethod, time.Minute)
	if err != nil {
		return err
	}

	authSvc, err := auth.NewService(authpg.NewUserRepository(db.Pool()), auth.NewArgon2idHasher(), issuer)
	if err != nil {
		return err
	}

	user, err := authSvc.Register(ctx, auth.RegisterInput{
		Username: username,
		Email:    email,
		Password: password,
		IsAdmin:  true,
	})
	if err != nil {
		return err
	}

	cmd.Printf("Admin user %s created (id %s)\n", user.Username, user.ID.String())
	return nil
}
