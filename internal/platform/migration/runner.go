// Copyright (c) 2026 Authgate. All rights reserved.
// Author: long.phamduy.dev@gmail.com

// Package migration applies versioned SQL schema migrations at startup.
//
// Migrations live as paired .up.sql/.down.sql files and are applied with
// golang-migrate against the primary PostgreSQL database before the HTTP
// server begins accepting traffic.
package migration

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Up applies all pending migrations from the given directory.
//
// # Parameters
//   - migrationPath: Filesystem path to the directory of .sql migration files.
//   - databaseURL: The postgres:// connection URL.
//   - logger: Structured logger for migration events.
//
// A database already at the latest version is not an error.
func Up(migrationPath string, databaseURL string, logger *slog.Logger) error {
	migrator, err := migrate.New("file://"+migrationPath, databaseURL)
	if err != nil {
		return fmt.Errorf("migration: failed to initialize: %w", err)
	}
	defer func() {
		sourceErr, databaseErr := migrator.Close()
		if sourceErr != nil {
			logger.Warn("migration source close failed", slog.String("error", sourceErr.Error()))
		}
		if databaseErr != nil {
			logger.Warn("migration database close failed", slog.String("error", databaseErr.Error()))
		}
	}()

	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("database schema already up to date")
			return nil
		}
		return fmt.Errorf("migration: failed to apply: %w", err)
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		return fmt.Errorf("migration: failed to read version: %w", err)
	}

	logger.Info("database migrations applied",
		slog.Uint64("version", uint64(version)),
		slog.Bool("dirty", dirty),
	)

	return nil
}
