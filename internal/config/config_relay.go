// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"time"

	"dario.cat/mergo"
)

// RelayConfig is the validated configuration view of the relay server.
type RelayConfig struct {
	// Relay holds listen address, token and heartbeat settings.
	Relay Relay
	// Storage holds the registration database settings.
	Storage Storage
	// LogFile is an optional log destination.
	LogFile string
}

func defaultRelayConfig() RelayConfig {
	return RelayConfig{
		Relay: Relay{
			Address:           "localhost:8080",
			TokenIssuer:       "go-pair-link-relay",
			TokenDuration:     time.Minute,
			HeartbeatInterval: 10 * time.Second,
			RequestTimeout:    30 * time.Second,
		},
	}
}

// GetRelayConfig builds and validates the relay view of the merged
// structured configuration.
func GetRelayConfig() (*RelayConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	return newRelayConfig(cfg)
}

func newRelayConfig(cfg *StructuredConfig) (*RelayConfig, error) {
	relayCfg := &RelayConfig{
		Relay:   cfg.Relay,
		Storage: cfg.Storage,
		LogFile: cfg.LogFile,
	}

	if err := mergo.Merge(relayCfg, defaultRelayConfig()); err != nil {
		return nil, fmt.Errorf("error applying relay defaults: %w", err)
	}

	return relayCfg, relayCfg.validate()
}
