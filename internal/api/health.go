// Copyright (c) 2026 Authgate. All rights reserved.
// Author: long.phamduy.dev@gmail.com

package api

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/phamduylong/authgate/internal/platform/postgres"
	"github.com/phamduylong/authgate/internal/platform/redis"
	"github.com/phamduylong/authgate/internal/platform/respond"
)

// healthHandler serves the orchestrator probe endpoints.
type healthHandler struct {
	pool  *pgxpool.Pool
	redis *goredis.Client
}

func newHealthHandler(pool *pgxpool.Pool, redisClient *goredis.Client) *healthHandler {
	return &healthHandler{pool: pool, redis: redisClient}
}

// handleLiveness reports that the process is up. It never touches
// dependencies, so a degraded database cannot cause a restart loop.
//
//	GET /healthz
func (handler *healthHandler) handleLiveness(writer http.ResponseWriter, request *http.Request) {
	respond.JSON(writer, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReadiness reports whether the server can serve real traffic,
// checking each backing store individually.
//
//	GET /readyz
func (handler *healthHandler) handleReadiness(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()
	checks := map[string]string{
		"postgres": "ok",
		"redis":    "ok",
	}
	healthy := true

	if err := postgres.Ping(ctx, handler.pool); err != nil {
		checks["postgres"] = err.Error()
		healthy = false
	}
	if err := redis.Ping(ctx, handler.redis); err != nil {
		checks["redis"] = err.Error()
		healthy = false
	}

	status := http.StatusOK
	overall := "ok"
	if !healthy {
		status = http.StatusServiceUnavailable
		overall = "degraded"
	}

	respond.JSON(writer, status, map[string]interface{}{
		"status": overall,
		"checks": checks,
	})
}
