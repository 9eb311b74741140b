package store

import (
	"context"
	"strings"

	"github.com/MKhiriev/go-pair-link/internal/config"
	"github.com/MKhiriev/go-pair-link/internal/logger"
)

// DeviceStorages groups the stores of a paired instance.
type DeviceStorages struct {
	State   StateStore
	History HistoryRepository

	db *DB
}

// NewDeviceStorages builds the state store for cfg.StateKeys and a history
// repository. An empty DSN keeps history in memory, anything else is opened
// as a SQLite file.
func NewDeviceStorages(ctx context.Context, cfg config.DeviceConfig, log *logger.Logger) (*DeviceStorages, error) {
	storages := &DeviceStorages{
		State: NewMemoryStateStore(cfg.StateKeys...),
	}

	if cfg.Storage.DB.DSN == "" {
		log.Debug().Str("func", "NewDeviceStorages").Msg("connection history is kept in memory")
		storages.History = NewMemoryHistoryRepository()
		return storages, nil
	}

	db, err := NewConnectSQLite(ctx, cfg.Storage.DB.DSN, log)
	if err != nil {
		return nil, err
	}
	storages.db = db
	storages.History = NewHistoryRepository(db, log)

	return storages, nil
}

// Close releases the database, if one was opened.
func (s *DeviceStorages) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RelayStorages groups the stores of the relay.
type RelayStorages struct {
	Devices DeviceRepository

	db *DB
}

// NewRelayStorages opens the registry named by dsn. An empty DSN keeps
// registrations in memory; a postgres:// or postgresql:// DSN opens PostgreSQL.
func NewRelayStorages(ctx context.Context, dsn string, log *logger.Logger) (*RelayStorages, error) {
	if dsn == "" || !isPostgresDSN(dsn) {
		if dsn != "" {
			log.Warn().Str("func", "NewRelayStorages").Msg("unsupported relay DSN, keeping registrations in memory")
		}
		return &RelayStorages{Devices: NewMemoryDeviceRepository()}, nil
	}

	db, err := NewConnectPostgres(ctx, dsn, log)
	if err != nil {
		return nil, err
	}

	return &RelayStorages{
		Devices: NewDeviceRepository(db, log),
		db:      db,
	}, nil
}

// Close releases the database, if one was opened.
func (s *RelayStorages) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}
