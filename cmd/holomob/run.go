// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/holomob/internal/config"
	"github.com/holomush/holomob/internal/logging"
	"github.com/holomush/holomob/internal/observability"
)

const shutdownTimeout = 5 * time.Second

// NewRunCmd creates the run subcommand.
func NewRunCmd() *cobra.Command {
	var console bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the agents against the configured world",
		Long: `Seed the in-memory world from the configuration file, activate the
configured agents and run until interrupted. With --console, operator
commands (status, mobon <unit>, moboff <unit>) are read from stdin.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cmd, cfg, console)
		},
	}
	cmd.Flags().BoolVar(&console, "console", false, "read operator commands from stdin")

	return cmd
}

func run(ctx context.Context, cmd *cobra.Command, cfg *config.Config, console bool) error {
	closer, err := logging.SetDefault(cfg.LoggingOptions(serviceName, version))
	if err != nil {
		return oops.In("run").Wrapf(err, "set up logging")
	}
	defer func() {
		if closeErr := closer.Close(); closeErr != nil {
			slog.Debug("error closing log file", "error", closeErr)
		}
	}()
	logger := slog.Default()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rt, err := buildRuntime(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	var obsServer *observability.Server
	if cfg.MetricsAddr != "" {
		obsServer = observability.NewServer(cfg.MetricsAddr, rt.Ready, metricRegistrars()...)
		obsErrChan, err := obsServer.Start()
		if err != nil {
			return oops.In("run").Wrapf(err, "start observability server")
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
	}

	if console {
		go func() {
			runConsole(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), rt)
			cancel()
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	cmd.Println("HoloMob running")
	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig)
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down")
	}

	if obsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := obsServer.Stop(shutdownCtx); err != nil {
			logger.Warn("error stopping observability server", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}

// monitorServerErrors cancels the context when a server reports an error.
// It exits when an error arrives, the channel closes or the context ends.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
	}
}
