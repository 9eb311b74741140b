package models

import (
	"fmt"
	"time"
)

// ConnectionState is the phase the transport client is currently in.
//
// Transitions are strictly sequential:
//
//	Disconnected -> Registering -> Connecting -> Connected -> Disconnecting -> Disconnected
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateRegistering
	StateConnecting
	StateConnected
	StateDisconnecting
)

var connectionStateNames = map[ConnectionState]string{
	StateDisconnected:  "DISCONNECTED",
	StateRegistering:   "REGISTERING",
	StateConnecting:    "CONNECTING",
	StateConnected:     "CONNECTED",
	StateDisconnecting: "DISCONNECTING",
}

func (s ConnectionState) String() string {
	if name, ok := connectionStateNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// MarshalText lets the state be rendered by name in JSON status payloads.
func (s ConnectionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (s *ConnectionState) UnmarshalText(text []byte) error {
	for state, name := range connectionStateNames {
		if name == string(text) {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("unknown connection state %q", text)
}

// ConnectionHistoryEntry records one finished connect/disconnect cycle.
// Entries are append-only.
type ConnectionHistoryEntry struct {
	ID             int64     `json:"id,omitempty"`
	DeviceID       string    `json:"device_id"`
	Address        string    `json:"address,omitempty"`
	ConnectedAt    time.Time `json:"connected_at"`
	DisconnectedAt time.Time `json:"disconnected_at"`
	Error          string    `json:"error,omitempty"`
}

// PairStatus is the read model exposed to the UI layer.
type PairStatus struct {
	DeviceID        string                   `json:"device_id"`
	Role            Role                     `json:"role"`
	Workspace       Workspace                `json:"workspace"`
	State           ConnectionState          `json:"state"`
	AcceptSlaves    bool                     `json:"accept_slaves"`
	SlaveConnected  bool                     `json:"slave_connected"`
	SlaveDeviceID   string                   `json:"slave_device_id,omitempty"`
	SyncActive      bool                     `json:"sync_active"`
	ConnectAttempts int                      `json:"connect_attempts"`
	ConnectedAt     *time.Time               `json:"connected_at,omitempty"`
	LastError       string                   `json:"last_error,omitempty"`
	History         []ConnectionHistoryEntry `json:"history,omitempty"`
}
