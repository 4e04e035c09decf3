// Copyright (c) 2026 Authgate. All rights reserved.
// Author: long.phamduy.dev@gmail.com

// Command api runs the Authgate authentication server.
//
// # Startup Order
//
//  1. Load configuration from the environment.
//  2. Connect PostgreSQL and Redis, failing fast if either is down.
//  3. Apply pending schema migrations.
//  4. Wire the domain services and the HTTP server.
//  5. Serve until SIGINT/SIGTERM, then drain gracefully.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phamduylong/authgate/internal/api"
	"github.com/phamduylong/authgate/internal/auth"
	"github.com/phamduylong/authgate/internal/auth/google"
	"github.com/phamduylong/authgate/internal/platform/config"
	"github.com/phamduylong/authgate/internal/platform/constants"
	"github.com/phamduylong/authgate/internal/platform/migration"
	"github.com/phamduylong/authgate/internal/platform/postgres"
	"github.com/phamduylong/authgate/internal/platform/redis"
	"github.com/phamduylong/authgate/internal/platform/sec"
)

func main() {
	// ── 1. Logging & configuration ───────────────────────────────────────
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	must(logger, "load configuration", err)

	if cfg.Debug {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		slog.SetDefault(logger)
	}

	logger.Info("starting",
		slog.String("app", constants.AppName),
		slog.String("version", constants.AppVersion),
		slog.String("environment", cfg.Environment),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── 2. Backing stores ────────────────────────────────────────────────
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, logger)
	must(logger, "connect postgres", err)
	defer pool.Close()

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL, logger)
	must(logger, "connect redis", err)
	defer func() { _ = redisClient.Close() }()

	// ── 3. Schema migrations ─────────────────────────────────────────────
	must(logger, "apply migrations", migration.Up(cfg.MigrationPath, cfg.DatabaseURL, logger))

	// ── 4. Domain wiring ─────────────────────────────────────────────────
	tokenService, err := sec.NewTokenService(cfg.SessionSecret, constants.AuthIssuer)
	must(logger, "initialize token service", err)

	accountStore := auth.NewPostgresAccountStore(pool)
	authService := auth.NewService(accountStore, tokenService, logger)
	authHandler := auth.NewHandler(authService, tokenService, cfg.IsProduction())

	if cfg.GoogleEnabled() {
		stateStore := google.NewRedisStateStore(redisClient)
		googleProvider, err := google.NewProvider(ctx,
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.GoogleRedirectURL,
			stateStore,
			logger,
		)
		must(logger, "initialize google provider", err)
		authHandler.RegisterProvider(googleProvider)
		logger.Info("google federated login enabled")
	} else {
		logger.Warn("google federated login disabled: credentials not configured")
	}

	// ── 5. Serve ─────────────────────────────────────────────────────────
	server := api.New(ctx, api.Dependencies{
		Config:      cfg,
		Logger:      logger,
		Pool:        pool,
		Redis:       redisClient,
		Tokens:      tokenService,
		AuthHandler: authHandler,
	})

	errs := make(chan error, 1)
	go func() { errs <- server.Start() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errs:
		must(logger, "serve http", err)
	case sig := <-stop:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer shutdownCancel()
	must(logger, "graceful shutdown", server.Shutdown(shutdownCtx))

	logger.Info("stopped")
}

// must aborts startup on a fatal error.
func must(logger *slog.Logger, step string, err error) {
	if err != nil {
		logger.Error("startup failed", slog.String("step", step), slog.String("error", err.Error()))
		os.Exit(1)
	}
}
