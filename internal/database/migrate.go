package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// DefaultMigrationsDir is relative to the working directory of the binary.
const DefaultMigrationsDir = "migrations"

// MigrationStatus describes the schema version after a migration run.
type MigrationStatus struct {
	Version uint
	Dirty   bool
	Applied bool
}

// Migrate applies every pending up migration found in dir.
func Migrate(databaseURL, dir string, logger *slog.Logger) (*MigrationStatus, error) {
	return withMigrator(databaseURL, dir, logger, func(m *migrate.Migrate) error {
		return m.Up()
	})
}

// Rollback reverts the given number of migrations.
func Rollback(databaseURL, dir string, steps int, logger *slog.Logger) (*MigrationStatus, error) {
	if steps <= 0 {
		return nil, fmt.Errorf("steps must be positive")
	}
	return withMigrator(databaseURL, dir, logger, func(m *migrate.Migrate) error {
		return m.Steps(-steps)
	})
}

func withMigrator(databaseURL, dir string, logger *slog.Logger, run func(*migrate.Migrate) error) (*MigrationStatus, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dir == "" {
		dir = DefaultMigrationsDir
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	status := &MigrationStatus{Applied: true}
	if err := run(m); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
		status.Applied = false
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return nil, fmt.Errorf("failed to get migration version: %w", err)
	}
	if dirty {
		return nil, fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	}
	status.Version = version

	logger.Info("migrations complete", "version", version, "applied", status.Applied)
	return status, nil
}
