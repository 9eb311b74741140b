// Package migrations embeds the SQL schema of the device history database
// (SQLite) and the relay registry (PostgreSQL) and applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed device/*.sql relay/*.sql
var embedMigrations embed.FS

var errNilDB = errors.New("db is nil")

// MigrateDevice applies the device migrations to a SQLite database.
func MigrateDevice(db *sql.DB) error {
	return migrate(db, goose.DialectSQLite3, "device")
}

// MigrateRelay applies the relay migrations to a PostgreSQL database.
func MigrateRelay(db *sql.DB) error {
	return migrate(db, goose.DialectPostgres, "relay")
}

func migrate(db *sql.DB, dialect goose.Dialect, dir string) error {
	if db == nil {
		return fmt.Errorf("migration error: %w", errNilDB)
	}

	fsys, err := fs.Sub(embedMigrations, dir)
	if err != nil {
		return fmt.Errorf("migration error opening %s migrations: %w", dir, err)
	}

	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return fmt.Errorf("migration error creating provider: %w", err)
	}

	if _, err = provider.Up(context.Background()); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	return nil
}
