// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// DeviceRegistration is the identity offered to a relay during the
// pre-connect handshake (POST /register).
type DeviceRegistration struct {
	// Type is the role the device registers as.
	Type Role `json:"type"`

	// DeviceID is the stable identifier of the registering device.
	DeviceID string `json:"deviceId"`

	// MasterDeviceID is required for slaves: the master they pair with.
	MasterDeviceID string `json:"masterDeviceId,omitempty"`

	// RuntimeConfig carries free-form settings the relay may echo back or use
	// for routing (e.g. advertised server addresses of a master).
	RuntimeConfig map[string]any `json:"runtimeConfig,omitempty"`
}

// DeviceInfo describes the registered device as seen by the relay.
type DeviceInfo struct {
	DeviceType Role   `json:"deviceType"`
	DeviceID   string `json:"deviceId"`
}

// RegisterResponse is the body returned by POST /register.
type RegisterResponse struct {
	Success    bool        `json:"success"`
	Error      string      `json:"error,omitempty"`
	Token      string      `json:"token,omitempty"`
	DeviceInfo *DeviceInfo `json:"deviceInfo,omitempty"`
}

// RegisteredDevice is the relay-side persisted registration record.
type RegisteredDevice struct {
	DeviceID       string    `json:"device_id"`
	Type           Role      `json:"type"`
	MasterDeviceID string    `json:"master_device_id,omitempty"`
	RegisteredAt   time.Time `json:"registered_at"`
}

// RelayHealth is the body of the relay's GET /health.
type RelayHealth struct {
	Status  string `json:"status"`
	Masters int    `json:"masters"`
	Slaves  int    `json:"slaves"`
}
