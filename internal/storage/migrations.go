package storage

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// ExpectedSchemaVersion is the schema version this build reads and writes.
const ExpectedSchemaVersion = 3

// ErrDirtySchema means a migration failed halfway and needs manual repair.
var ErrDirtySchema = errors.New("database schema is dirty")

//go:embed migrations/*.sql
var migrationFiles embed.FS

// migrator runs the embedded migrations against s.db. It must not be
// closed: closing it closes s.db.
func (s *SQLiteStorage) migrator() (*migrate.Migrate, error) {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}
	driver, err := sqlite3.WithInstance(s.db, &sqlite3.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to prepare migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return m, nil
}

func schemaVersion(m *migrate.Migrate) (int, error) {
	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	case dirty:
		return int(version), fmt.Errorf("%w at version %d", ErrDirtySchema, version)
	}
	return int(version), nil
}

// Migrate applies every pending migration. Canceling ctx stops after the
// migration in progress.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	m, err := s.migrator()
	if err != nil {
		return err
	}
	from, err := schemaVersion(m)
	if err != nil {
		return err
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			m.GracefulStop <- true
		case <-done:
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	to, err := schemaVersion(m)
	if err != nil {
		return err
	}
	if to != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, to)
	}
	if to != from {
		s.logger.Info("Applied migrations", "from", from, "to", to)
	}
	return nil
}

// SchemaVersion reports the migration version the database is at, zero for
// a new database.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	m, err := s.migrator()
	if err != nil {
		return 0, err
	}
	return schemaVersion(m)
}
