// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

// NewValidateCmd creates the validate subcommand.
func NewValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration file without running it",
		Long: `Checks the configuration against the JSON Schema and the semantic
rules, then seeds a throwaway world to catch anything left. Exits with
code 0 on success, non-zero on failure.

Useful in CI pipelines:
  holomob validate --config world.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
			rt, err := buildRuntime(cmd.Context(), cfg, quiet)
			if err != nil {
				return err
			}
			defer rt.Close()

			cmd.Printf("configuration valid: %d locations, %d exits, %d characters, %d agents\n",
				len(cfg.World.Locations), len(cfg.World.Exits), len(cfg.World.Characters), len(cfg.Mobs))
			return nil
		},
	}
}
