// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/holomush/holomob/internal/config"
)

// serviceName tags log records and the schema generator.
const serviceName = "holomob"

// NewRootCmd creates the root command for the HoloMob CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "holomob",
		Short: "HoloMob - autonomous agents for text worlds",
		Long: `HoloMob runs patrolling, hunting and attacking agents in an in-memory
text world seeded from a YAML configuration file.`,
		SilenceUsage: true,
	}

	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewValidateCmd())
	cmd.AddCommand(NewSchemaCmd())

	return cmd
}

// loadConfig loads and validates the configuration named by the flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString(config.FlagConfig)
	if err != nil {
		return nil, err //nolint:wrapcheck // flag lookup errors are programming errors
	}
	cfg, err := config.Load(path, cmd.Root().PersistentFlags())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
