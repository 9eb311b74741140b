// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"maps"
)

// Well-known keys of [Command.Extra].
const (
	ExtraRole      = "role"
	ExtraWorkspace = "workspace"
	// ExtraCausation carries the comma separated ancestor command names of a
	// forwarded command.
	ExtraCausation = "causation"
)

// Command is an immutable, locally issued request handled by the command
// dispatcher. Converters never mutate a command in place, they return a copy.
type Command struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Payload   json.RawMessage   `json:"payload,omitempty"`
	RequestID string            `json:"requestId,omitempty"`
	SessionID string            `json:"sessionId,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// WithExtra returns a copy of c with key set to value in Extra.
func (c Command) WithExtra(key, value string) Command {
	extra := make(map[string]string, len(c.Extra)+1)
	maps.Copy(extra, c.Extra)
	extra[key] = value
	c.Extra = extra
	return c
}

// ExtraValue returns Extra[key] or an empty string.
func (c Command) ExtraValue(key string) string {
	if c.Extra == nil {
		return ""
	}
	return c.Extra[key]
}

// RemoteCommand is the REMOTE_COMMAND envelope payload: a command forwarded
// to the peer for execution.
type RemoteCommand struct {
	CommandID   string            `json:"commandId"`
	CommandName string            `json:"commandName"`
	Payload     json.RawMessage   `json:"payload,omitempty"`
	RequestID   string            `json:"requestId,omitempty"`
	SessionID   string            `json:"sessionId,omitempty"`
	Extra       map[string]string `json:"extra,omitempty"`
}

// NewRemoteCommand wraps cmd for the wire.
func NewRemoteCommand(cmd Command) RemoteCommand {
	return RemoteCommand{
		CommandID:   cmd.ID,
		CommandName: cmd.Name,
		Payload:     cmd.Payload,
		RequestID:   cmd.RequestID,
		SessionID:   cmd.SessionID,
		Extra:       maps.Clone(cmd.Extra),
	}
}

// Command rebuilds the local command, inheriting every identifier.
func (r RemoteCommand) Command() Command {
	return Command{
		ID:        r.CommandID,
		Name:      r.CommandName,
		Payload:   r.Payload,
		RequestID: r.RequestID,
		SessionID: r.SessionID,
		Extra:     maps.Clone(r.Extra),
	}
}

// RemoteCommandExecuted acknowledges a REMOTE_COMMAND. Error is empty on success.
type RemoteCommandExecuted struct {
	CommandID string `json:"commandId"`
	Error     string `json:"error,omitempty"`
}

// SendToRemotePayload is the payload of the wrapper command that replaces a
// command addressed to the peer.
type SendToRemotePayload struct {
	Command Command `json:"command"`
}
