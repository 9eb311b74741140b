// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package migrations

import (
	"database/sql"
	"io/fs"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_DBError(t *testing.T) {
	tests := []struct {
		name    string
		migrate func(*sql.DB) error
	}{
		{name: "device", migrate: MigrateDevice},
		{name: "relay", migrate: MigrateRelay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			_ = mock // goose talks to the DB itself, no expectation matches

			err = tt.migrate(db)
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), "migration error"), "got: %v", err)
		})
	}
}

func TestMigrate_NilDB(t *testing.T) {
	var db *sql.DB

	err := MigrateDevice(db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db is nil")

	err = MigrateRelay(db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db is nil")
}

func TestEmbeddedMigrations(t *testing.T) {
	for _, dir := range []string{"device", "relay"} {
		entries, err := fs.ReadDir(embedMigrations, dir)
		require.NoError(t, err)
		require.NotEmpty(t, entries, dir)

		for _, entry := range entries {
			body, err := fs.ReadFile(embedMigrations, dir+"/"+entry.Name())
			require.NoError(t, err)
			assert.Contains(t, string(body), "-- +goose Up", entry.Name())
			assert.Contains(t, string(body), "-- +goose Down", entry.Name())
		}
	}
}
