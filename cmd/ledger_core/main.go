package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"

	"github.com/SscSPs/ledger_core/internal/core/services"
	"github.com/SscSPs/ledger_core/internal/platform/config"
	"github.com/SscSPs/ledger_core/internal/repositories/database/pgsql"
	"github.com/SscSPs/ledger_core/pkg/database"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// main wires the ledger core against PostgreSQL: config, migrations, stores
// and the service container. The container is the library surface; command
// handlers (API layers, projection workers) are external and plug in on top.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg, logger); err != nil {
		logger.Error("Failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	stores := pgsql.NewStoreProvider(dbPool)
	container := services.NewServiceContainer(cfg, stores.EventStore, stores.SnapshotStore, stores.SequenceRepo, logger)

	// Read-only probe through the full service stack; fails fast on a
	// misconfigured store before any caller depends on the container.
	if _, err := container.Journal.JournalExists(context.Background(), "startup-probe", "startup-probe"); err != nil {
		logger.Error("Store connectivity probe failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Ledger core ready",
		slog.Int64("snapshot_interval", cfg.SnapshotInterval),
		slog.Bool("production", cfg.IsProduction))
}

func runMigrations(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	// golang-migrate needs a database/sql connection; the pgx stdlib driver
	// keeps it compatible with the main pool.
	migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(cfg.MigrationsPath, "postgres", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	logger.Info("Database migrations completed.")
	return nil
}
