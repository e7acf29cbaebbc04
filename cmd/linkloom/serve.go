// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Linkloom Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/linkloom/linkloom/internal/auth"
	authpg "github.com/linkloom/linkloom/internal/auth/postgres"
	"github.com/linkloom/linkloom/internal/config"
	"github.com/linkloom/linkloom/internal/httpapi"
	"github.com/linkloom/linkloom/internal/links"
	linkspg "github.com/linkloom/linkloom/internal/links/postgres"
	"github.com/linkloom/linkloom/internal/logging"
	"github.com/linkloom/linkloom/internal/observability"
	"github.com/linkloom/linkloom/internal/store"
)

const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the link registry server",
		Long: `Start the HTTP API server. Applies pending database migrations,
then serves the authenticated link registry API plus a separate
metrics/health listener.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, cmd)
		},
	}

	cmd.Flags().String("listen", config.DefaultListen, "API listen address")
	cmd.Flags().String("metrics-addr", config.DefaultMetricsAddr, "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().String("log-format", config.DefaultLogFormat, "log format (json or text)")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, cmd *cobra.Command) error {
	logging.SetDefault("linkloom", version, cfg.LogFormat)
	logger := slog.Default()

	logger.Info("starting server",
		"listen", cfg.Listen,
		"metrics_addr", cfg.MetricsAddr,
		"log_format", cfg.LogFormat,
	)

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	logger.Info("connected to database")

	migrator, err := store.NewMigrator(cfg.DatabaseURL)
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

	logger.Info("migrations applied")

	issuer, err := auth.NewTokenIssuer(cfg.Token.Secret, cfg.Token.Method, cfg.Token.TTL())
	if err != nil {
		return err
	}

	authSvc, err := auth.NewService(authpg.NewUserRepository(db.Pool()), auth.NewArgon2idHasher(), issuer)
	if err != nil {
		return err
	}
	linkSvc, err := links.NewService(linkspg.NewLinkRepository(db.Pool()))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Metrics/health listener is separate from the API so it can stay
	// private to the cluster.
	var obsServer *observability.Server
	var metrics *observability.Metrics
	if cfg.MetricsAddr != "" {
		obsServer = observability.NewServer(cfg.MetricsAddr, func() bool {
			pingCtx, pingCancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer pingCancel()
			return db.Ping(pingCtx) == nil
		})
		obsErrCh, err := obsServer.Start()
		if err != nil {
			return err
		}
		go monitorServerErrors(ctx, cancel, obsErrCh, "observability")
		metrics = obsServer.Metrics()
		logger.Info("observability server started", "addr", obsServer.Addr())
	}

	apiServer, err := httpapi.NewServer(httpapi.ServerConfig{
		Addr:        cfg.Listen,
		TokenType:   cfg.Token.Type,
		CORSOrigins: cfg.CORSOrigins,
		Auth:        authSvc,
		Links:       linkSvc,
		Metrics:     metrics,
		Logger:      logger,
	})
	if err != nil {
		return stopObservability(obsServer, err)
	}

	apiErrCh, err := apiServer.Start()
	if err != nil {
		return stopObservability(obsServer, err)
	}
	go monitorServerErrors(ctx, cancel, apiErrCh, "api")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	cmd.Println("Server started on " + apiServer.Addr())
	logger.Info("server ready", "addr", apiServer.Addr())

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down")
	}

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := apiServer.Stop(shutdownCtx); err != nil {
		logger.Warn("error stopping api server", "error", err)
	}
	if obsServer != nil {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			logger.Warn("error stopping observability server", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}

// stopObservability tears down the metrics listener on a failed start
// and returns the original error.
func stopObservability(obsServer *observability.Server, err error) error {
	if obsServer != nil {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer stopCancel()
		if stopErr := obsServer.Stop(stopCtx); stopErr != nil {
			slog.Warn("failed to stop observability server during cleanup", "error", stopErr)
		}
	}
	return err
}

// monitorServerErrors cancels the run context when a server reports a
// fatal error. A closed channel means a clean stop.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, name string) {
	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			slog.Error("server failed", "server", name, "error", err)
			cancel()
		}
	case <-ctx.Done():
	}
}
