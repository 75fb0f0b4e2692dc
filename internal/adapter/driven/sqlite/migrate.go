package sqlite

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var sessionMigrations embed.FS

// MigrateSessions applies the embedded session schema migrations on the writer
// and returns the schema version in effect afterwards.
func (db *DB) MigrateSessions() (uint, error) {
	src, err := iofs.New(sessionMigrations, "migrations")
	if err != nil {
		return 0, fmt.Errorf("load session migrations: %w", err)
	}

	target, err := migratesqlite.WithInstance(db.Writer, &migratesqlite.Config{})
	if err != nil {
		return 0, fmt.Errorf("open migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", target)
	if err != nil {
		return 0, fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("migrate sessions schema: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("read sessions schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("sessions schema version %d is dirty", version)
	}
	return version, nil
}
