package config

import "errors"

// Validation errors returned when required configuration groups are
// incomplete or invalid.
var (
	// ErrInvalidDeviceConfigs indicates invalid device identity settings
	// (for example, unknown role or empty device id).
	ErrInvalidDeviceConfigs = errors.New("invalid device configuration")
	// ErrInvalidTransportConfigs indicates invalid transport settings
	// (for example, no relay candidates).
	ErrInvalidTransportConfigs = errors.New("invalid transport configuration")
	// ErrInvalidSyncConfigs indicates invalid retry queue settings.
	ErrInvalidSyncConfigs = errors.New("invalid sync configuration")
	// ErrInvalidRelayConfigs indicates invalid relay server settings
	// (for example, missing listen address or token sign key).
	ErrInvalidRelayConfigs = errors.New("invalid relay configuration")
)
