package store

import (
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-pair-link/models"
)

const (
	historyTable = "connection_history"
	devicesTable = "devices"
)

var (
	historyColumns = []string{"id", "device_id", "address", "connected_at", "disconnected_at", "error"}
	deviceColumns  = []string{"device_id", "type", "master_device_id", "registered_at"}
)

// device history lives in SQLite, the relay registry in PostgreSQL
var (
	sqlite   = sq.StatementBuilder.PlaceholderFormat(sq.Question)
	postgres = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
)

func buildInsertHistoryQuery(entry models.ConnectionHistoryEntry) (string, []any, error) {
	return sqlite.
		Insert(historyTable).
		Columns("device_id", "address", "connected_at", "disconnected_at", "error").
		Values(
			entry.DeviceID,
			entry.Address,
			entry.ConnectedAt.UTC(),
			entry.DisconnectedAt.UTC(),
			entry.Error,
		).
		ToSql()
}

func buildSelectHistoryQuery(deviceID string, limit int) (string, []any, error) {
	query := sqlite.
		Select(historyColumns...).
		From(historyTable).
		Where(sq.Eq{"device_id": deviceID}).
		OrderBy("disconnected_at DESC", "id DESC")

	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	return query.ToSql()
}

func buildUpsertDeviceQuery(device models.RegisteredDevice) (string, []any, error) {
	registeredAt := device.RegisteredAt
	if registeredAt.IsZero() {
		registeredAt = time.Now()
	}

	return postgres.
		Insert(devicesTable).
		Columns(deviceColumns...).
		Values(device.DeviceID, string(device.Type), device.MasterDeviceID, registeredAt.UTC()).
		Suffix(`ON CONFLICT (device_id) DO UPDATE SET
			type = EXCLUDED.type,
			master_device_id = EXCLUDED.master_device_id,
			registered_at = EXCLUDED.registered_at`).
		ToSql()
}

func buildSelectDeviceQuery(deviceID string) (string, []any, error) {
	return postgres.
		Select(deviceColumns...).
		From(devicesTable).
		Where(sq.Eq{"device_id": deviceID}).
		ToSql()
}

func buildSelectSlavesQuery(masterDeviceID string) (string, []any, error) {
	return postgres.
		Select(deviceColumns...).
		From(devicesTable).
		Where(sq.Eq{"type": string(models.RoleSlave), "master_device_id": masterDeviceID}).
		OrderBy("registered_at", "device_id").
		ToSql()
}
