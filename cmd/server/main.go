// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/previouslyon/internal/config"
	"github.com/tomtom215/previouslyon/internal/logging"
	"github.com/tomtom215/previouslyon/internal/metrics"
	"github.com/tomtom215/previouslyon/internal/store"
	"github.com/tomtom215/previouslyon/internal/supervisor"
	"github.com/tomtom215/previouslyon/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	metrics.SetAppInfo(version)

	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Bool("assistant_enabled", cfg.AssistantEnabled()).
		Msg("Starting PreviouslyOn")

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Server exited with error")
	}
	logging.Info().Msg("Application stopped gracefully")
}

func run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := store.Open(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	st := store.New(db, logging.Logger())
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database connected")

	if cfg.Database.AutoMigrate {
		if err := st.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("schema: %w", err)
		}
		logging.Info().Msg("Database schema applied")
	}

	app, err := wire(cfg, st)
	if err != nil {
		return err
	}

	server := newHTTPServer(&cfg.Server, app.router.SetupChi())

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("supervisor: %w", err)
	}
	tree.AddDataService(app.cacheWriter)
	tree.AddMaintenanceService(services.NewCacheJanitorService(app.catalog, cfg.TMDB.ListCacheTTL, logging.Logger()))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logging.Logger()))

	go cancelOnSignal(cancel)

	logging.Info().Str("addr", server.Addr).Interface("layout", tree.Layout()).Msg("Starting supervisor tree")
	supervise(ctx, tree)
	return nil
}

func newHTTPServer(cfg *config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Timeout,
		WriteTimeout:      cfg.Timeout,
		IdleTimeout:       60 * time.Second,
	}
}

// cancelOnSignal cancels on the first SIGINT or SIGTERM.
func cancelOnSignal(cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	signal.Stop(sigCh)
	logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	cancel()
}

// supervise runs the tree until ctx ends or the tree gives up, then
// reports services that outlived the shutdown timeout.
func supervise(ctx context.Context, tree *supervisor.SupervisorTree) {
	errCh := tree.ServeBackground(ctx)

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		logging.Info().Msg("Waiting for services to stop")
		err = <-errCh
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree stopped with error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}
}
