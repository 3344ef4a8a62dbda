package storage

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationManager applies the embedded schema migrations.
type MigrationManager struct {
	migrate *migrate.Migrate
}

// MigrationStatus describes the schema version of a database.
type MigrationStatus struct {
	Version uint
	Dirty   bool
	// Applied is false for a database that never ran a migration.
	Applied bool
}

// NewMigrationManager creates a migration manager for the SQLite file at dbPath.
func NewMigrationManager(dbPath string) (*MigrationManager, error) {
	migrationsDir, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to access migrations directory: %w", err)
	}

	sourceDriver, err := iofs.New(migrationsDir, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to create source driver: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, databaseURL(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}

	return &MigrationManager{migrate: m}, nil
}

// databaseURL converts a file path to a sqlite:// URL, including Windows
// drive paths.
func databaseURL(dbPath string) string {
	normalized := filepath.ToSlash(dbPath)
	if filepath.IsAbs(dbPath) && normalized[0] != '/' {
		normalized = "/" + normalized
	}
	return "sqlite://" + normalized
}

// Up applies all pending migrations.
func (mm *MigrationManager) Up() error {
	if err := mm.migrate.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Down rolls back the last migration.
func (mm *MigrationManager) Down() error {
	if err := mm.migrate.Steps(-1); err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}
	return nil
}

// Steps applies n migrations. Positive n migrates up, negative down.
func (mm *MigrationManager) Steps(n int) error {
	if err := mm.migrate.Steps(n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to migrate %d steps: %w", n, err)
	}
	return nil
}

// Status returns the current schema version.
func (mm *MigrationManager) Status() (MigrationStatus, error) {
	version, dirty, err := mm.migrate.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return MigrationStatus{}, nil
	}
	if err != nil {
		return MigrationStatus{}, fmt.Errorf("failed to get migration version: %w", err)
	}
	return MigrationStatus{Version: version, Dirty: dirty, Applied: true}, nil
}

// Goto migrates up or down to a specific version.
func (mm *MigrationManager) Goto(version uint) error {
	if err := mm.migrate.Migrate(version); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to migrate to version %d: %w", version, err)
	}
	return nil
}

// Force sets the version without running migrations. It is meant for
// recovering a dirty database after a failed migration.
func (mm *MigrationManager) Force(version int) error {
	if err := mm.migrate.Force(version); err != nil {
		return fmt.Errorf("failed to force version %d: %w", version, err)
	}
	return nil
}

// Close releases the source and database handles.
func (mm *MigrationManager) Close() error {
	srcErr, dbErr := mm.migrate.Close()
	if srcErr != nil {
		return fmt.Errorf("failed to close source: %w", srcErr)
	}
	if dbErr != nil {
		return fmt.Errorf("failed to close database: %w", dbErr)
	}
	return nil
}
