// Copyright (c) 2026 Authgate. All rights reserved.
// Author: long.phamduy.dev@gmail.com

/*
Package api assembles the HTTP server from its routed components.

# Architecture

The server mounts three surfaces on one chi router:

  - /api/v1/auth: the JSON authentication API.
  - /healthz, /readyz: orchestrator probes.
  - The page surface (/, /signin, /signup, /dashboard) behind the
    route guard.

All surfaces share the same middleware chain, so every request is traced,
logged, rate limited, and authenticated the same way.
*/
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/phamduylong/authgate/internal/auth"
	"github.com/phamduylong/authgate/internal/platform/config"
	"github.com/phamduylong/authgate/internal/platform/constants"
	"github.com/phamduylong/authgate/internal/platform/middleware"
	"github.com/phamduylong/authgate/internal/platform/sec"
)

// Dependencies carries everything the server needs, wired in main.
type Dependencies struct {
	Config      *config.Config
	Logger      *slog.Logger
	Pool        *pgxpool.Pool
	Redis       *redis.Client
	Tokens      *sec.TokenService
	AuthHandler *auth.Handler
}

// Server is the assembled HTTP server.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// New builds the router and the HTTP server around it.
//
// The context bounds background goroutines started by middleware (the
// rate limiter's cleanup loop); cancel it on shutdown.
func New(ctx context.Context, deps Dependencies) *Server {
	router := chi.NewRouter()

	// ── 1. Cross-cutting middleware chain ────────────────────────────────
	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogger(deps.Logger))
	router.Use(middleware.PanicRecovery(deps.Logger))
	router.Use(middleware.RateLimit(ctx))
	router.Use(middleware.CORS(deps.Config))
	router.Use(chimiddleware.Timeout(constants.GlobalRequestTimeout))
	router.Use(middleware.Authenticate(deps.Tokens))

	// ── 2. Health probes ─────────────────────────────────────────────────
	health := newHealthHandler(deps.Pool, deps.Redis)
	router.Get("/healthz", health.handleLiveness)
	router.Get("/readyz", health.handleReadiness)

	// ── 3. Authentication API ────────────────────────────────────────────
	router.Mount("/api/v1/auth", deps.AuthHandler.Routes())

	// ── 4. Page surface behind the route guard ───────────────────────────
	router.Group(func(pages chi.Router) {
		pages.Use(middleware.RouteGuard(middleware.DefaultGuardConfig()))

		pages.Get(constants.PathLanding, handleLandingPage)
		pages.Get(constants.PathSignIn, handleSignInPage)
		pages.Get(constants.PathSignUp, handleSignUpPage)
		pages.Get(constants.PathDashboard, handleDashboardPage)
		pages.Get(constants.PathDashboard+"/*", handleDashboardPage)
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + deps.Config.ServerPort,
			Handler:           router,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
		logger: deps.Logger,
	}
}

// Start runs the HTTP server until it is shut down.
func (server *Server) Start() error {
	server.logger.Info("http server listening", slog.String("addr", server.httpServer.Addr))

	if err := server.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully drains in-flight requests.
func (server *Server) Shutdown(ctx context.Context) error {
	server.logger.Info("http server shutting down")
	return server.httpServer.Shutdown(ctx)
}
