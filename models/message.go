// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "encoding/json"

// Reserved system type tags. They are produced and consumed by the relay and
// the transport layer, never by application code.
const (
	TypeHeartbeat         = "__system_heartbeat"
	TypeHeartbeatAck      = "__system_heartbeat_ack"
	TypeSlaveConnected    = "__system_slave_connected"
	TypeSlaveDisconnected = "__system_slave_disconnected"
)

// Application-level type tags used by the pairing protocol.
const (
	TypeRemoteCommand         = "REMOTE_COMMAND"
	TypeRemoteCommandExecuted = "REMOTE_COMMAND_EXECUTED"
	TypeSyncState             = "SYNC_STATE"
)

// Message is the JSON envelope carried over the duplex channel.
type Message struct {
	From string          `json:"from"`
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// IsSystem reports whether the envelope uses a reserved system tag.
func (m Message) IsSystem() bool {
	switch m.Type {
	case TypeHeartbeat, TypeHeartbeatAck, TypeSlaveConnected, TypeSlaveDisconnected:
		return true
	}
	return false
}

// SlaveNotice is the payload of slave attach/detach notifications.
type SlaveNotice struct {
	DeviceID string `json:"deviceId"`
}
