package config

import (
	"fmt"
	"time"

	"dario.cat/mergo"

	"github.com/MKhiriev/go-pair-link/models"
)

// DeviceConfig is the validated configuration view of a paired instance,
// assembled from [StructuredConfig] with defaults applied.
type DeviceConfig struct {
	// Role is the role the device starts in.
	Role models.Role
	// DeviceID identifies the device towards the relay.
	DeviceID string
	// Workspace is stamped on commands issued without one.
	Workspace models.Workspace
	// MasterDeviceID is the master a slave pairs with.
	MasterDeviceID string
	// AcceptSlaves enables slave acceptance on a master at startup.
	AcceptSlaves bool
	// StateKeys lists the synchronizable state keys.
	StateKeys []string

	// Transport holds relay candidates and transport limits.
	Transport Transport
	// Sync holds retry queue settings.
	Sync Sync
	// Remote holds remote call and reconnect settings.
	Remote Remote
	// Storage holds the connection history database settings.
	Storage Storage
	// LogFile is an optional log destination.
	LogFile string
}

// defaultDeviceConfig holds the values used for every zero field.
func defaultDeviceConfig() DeviceConfig {
	return DeviceConfig{
		Workspace: models.WorkspaceMain,
		StateKeys: []string{"settings"},
		Transport: Transport{
			ConnectTimeout:   10 * time.Second,
			HeartbeatTimeout: 30 * time.Second,
			QueueCapacity:    100,
			DedupCapacity:    1000,
			DedupTTL:         5 * time.Minute,
		},
		Sync: Sync{
			RetryDelay:    3 * time.Second,
			MaxRetries:    5,
			QueueCapacity: 100,
		},
		Remote: Remote{
			CommandTimeout:    30 * time.Second,
			ReconnectInterval: 5 * time.Second,
		},
	}
}

// GetDeviceConfig builds and validates the device view of the merged
// structured configuration.
func GetDeviceConfig() (*DeviceConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	return newDeviceConfig(cfg)
}

func newDeviceConfig(cfg *StructuredConfig) (*DeviceConfig, error) {
	deviceCfg := &DeviceConfig{
		Role:           models.Role(cfg.Device.Role),
		DeviceID:       cfg.Device.ID,
		Workspace:      models.Workspace(cfg.Device.Workspace),
		MasterDeviceID: cfg.Device.MasterDeviceID,
		AcceptSlaves:   cfg.Device.AcceptSlaves,
		StateKeys:      cfg.Device.StateKeys,
		Transport:      cfg.Transport,
		Sync:           cfg.Sync,
		Remote:         cfg.Remote,
		Storage:        cfg.Storage,
		LogFile:        cfg.LogFile,
	}

	if err := mergo.Merge(deviceCfg, defaultDeviceConfig()); err != nil {
		return nil, fmt.Errorf("error applying device defaults: %w", err)
	}

	return deviceCfg, deviceCfg.validate()
}
