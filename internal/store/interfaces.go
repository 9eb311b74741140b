package store

import (
	"context"
	"encoding/json"

	"github.com/MKhiriev/go-pair-link/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// StateStore is the keyed state container the pairing protocol synchronizes.
// Every key holds a property map; reads return deep copies.
type StateStore interface {
	// Keys returns the synchronizable keys in a stable order.
	Keys() []string
	// Get returns a deep copy of the properties under key.
	Get(key string) (models.Properties, error)
	// Set writes one property with the given timestamp. The stored timestamp
	// is raised above the previous one if updateAt does not exceed it.
	Set(key, property string, value json.RawMessage, updateAt int64) (models.Property, error)
	// Delete removes one property. Deleting a missing property is a no-op.
	Delete(key, property string) error
	// ApplyChanges applies a sync diff: nil entries delete, values overwrite
	// only when their timestamp is strictly newer.
	ApplyChanges(key string, changes models.Changes) error
}

// HistoryRepository is the append-only connection history log of a device.
type HistoryRepository interface {
	// Append stores entry and returns it with its assigned ID.
	Append(ctx context.Context, entry models.ConnectionHistoryEntry) (models.ConnectionHistoryEntry, error)
	// List returns up to limit entries of deviceID, newest first. A
	// non-positive limit returns every entry.
	List(ctx context.Context, deviceID string, limit int) ([]models.ConnectionHistoryEntry, error)
}

// DeviceRepository is the relay's registration registry.
type DeviceRepository interface {
	// Save inserts or replaces the registration of device.DeviceID.
	Save(ctx context.Context, device models.RegisteredDevice) error
	// Find returns the registration of deviceID or [ErrDeviceNotFound].
	Find(ctx context.Context, deviceID string) (models.RegisteredDevice, error)
	// ListSlaves returns the slaves registered against masterDeviceID.
	ListSlaves(ctx context.Context, masterDeviceID string) ([]models.RegisteredDevice, error)
}
