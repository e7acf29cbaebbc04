// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Linkloom Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the linkloom CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "linkloom",
		Short: "Linkloom - an authenticated link registry",
		Long: `Linkloom is an authenticated link registry service. It verifies
credentials, issues stateless access tokens, and keeps a deduplicated,
attributed record of registered links in PostgreSQL.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewCreateAdminCmd())

	return cmd
}
