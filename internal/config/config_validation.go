// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"

	"github.com/MKhiriev/go-pair-link/models"
)

// validate checks the merged [StructuredConfig]. Only values that are wrong
// for every binary are rejected here; role specific rules live in the
// device and relay views.
func (cfg *StructuredConfig) validate() error {
	if cfg.Device.Role != "" && !models.Role(cfg.Device.Role).Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidDeviceConfigs, cfg.Device.Role)
	}

	return nil
}

func (cfg *DeviceConfig) validate() error {
	if !cfg.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidDeviceConfigs, cfg.Role)
	}

	if cfg.DeviceID == "" {
		return fmt.Errorf("%w: empty device id", ErrInvalidDeviceConfigs)
	}

	if cfg.Workspace != models.WorkspaceMain && cfg.Workspace != models.WorkspaceBranch {
		return fmt.Errorf("%w: unknown workspace %q", ErrInvalidDeviceConfigs, cfg.Workspace)
	}

	if len(cfg.Transport.Servers) == 0 {
		return fmt.Errorf("%w: no relay servers", ErrInvalidTransportConfigs)
	}

	if cfg.Transport.QueueCapacity < 0 || cfg.Transport.DedupCapacity < 0 {
		return fmt.Errorf("%w: negative capacity", ErrInvalidTransportConfigs)
	}

	if cfg.Sync.MaxRetries < 0 || cfg.Sync.QueueCapacity < 0 {
		return ErrInvalidSyncConfigs
	}

	return nil
}

func (cfg *RelayConfig) validate() error {
	if cfg.Relay.Address == "" {
		return fmt.Errorf("%w: empty address", ErrInvalidRelayConfigs)
	}

	if cfg.Relay.TokenSignKey == "" {
		return fmt.Errorf("%w: empty token sign key", ErrInvalidRelayConfigs)
	}

	return nil
}
