package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-pair-link/internal/command"
	"github.com/MKhiriev/go-pair-link/internal/statesync"
	"github.com/MKhiriev/go-pair-link/internal/store"
	"github.com/MKhiriev/go-pair-link/models"
)

// Names of the built-in commands.
const (
	NameSyncStateAtConnect = "SyncStateAtConnect"
	NameSwitchRole         = "SwitchRole"
	NameSetSlaveAcceptance = "SetSlaveAcceptance"
	NameConnectPeer        = "ConnectPeer"
	NameDisconnectPeer     = "DisconnectPeer"
	NameSetState           = "SetState"
)

// SwitchRolePayload is the payload of SwitchRole.
type SwitchRolePayload struct {
	Role models.Role `json:"role"`
}

// SetSlaveAcceptancePayload is the payload of SetSlaveAcceptance.
type SetSlaveAcceptancePayload struct {
	Accept bool `json:"accept"`
}

// SetStatePayload is the payload of SetState. Delete removes the property
// and ignores Value.
type SetStatePayload struct {
	Key      string          `json:"key"`
	Property string          `json:"property"`
	Value    json.RawMessage `json:"value,omitempty"`
	Delete   bool            `json:"delete,omitempty"`
}

// Definitions returns the built-in commands bound to o.
func (o *Orchestrator) Definitions() []command.Definition {
	return []command.Definition{
		{Name: command.NameSendToRemote, Handler: o.handleSendToRemote},
		{Name: NameSyncStateAtConnect, Handler: o.handleSyncStateAtConnect},
		{Name: NameSwitchRole, Handler: o.handleSwitchRole},
		{Name: NameSetSlaveAcceptance, Handler: o.handleSetSlaveAcceptance},
		{Name: NameConnectPeer, Handler: o.handleConnectPeer},
		{Name: NameDisconnectPeer, Handler: o.handleDisconnectPeer},
		{Name: NameSetState, Handler: o.handleSetState},
	}
}

func decodePayload(cmd models.Command, dst any) error {
	if len(cmd.Payload) == 0 {
		return fmt.Errorf("%w: %s has no payload", ErrInvalidPayload, cmd.Name)
	}
	if err := json.Unmarshal(cmd.Payload, dst); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidPayload, cmd.Name, err)
	}
	return nil
}

func (o *Orchestrator) handleSendToRemote(ctx context.Context, cmd models.Command) error {
	var payload models.SendToRemotePayload
	if err := decodePayload(cmd, &payload); err != nil {
		return err
	}
	return o.ForwardCommand(ctx, payload.Command)
}

// handleSyncStateAtConnect answers the peer's reconciliation request. Every
// key's reply is sent before incremental sync starts, so the bulk answer
// cannot race a newer incremental diff.
func (o *Orchestrator) handleSyncStateAtConnect(_ context.Context, cmd models.Command) error {
	log := o.logger.With().Str("func", "*Orchestrator.handleSyncStateAtConnect").Logger()

	var req models.SyncAtConnectRequest
	if err := decodePayload(cmd, &req); err != nil {
		return err
	}
	if req.Role == o.Role() {
		return fmt.Errorf("%w: %s", ErrReconcileDirection, req.Role)
	}

	st := o.sync.Store()
	for _, key := range st.Keys() {
		local, err := st.Get(key)
		if err != nil {
			return err
		}

		reply := statesync.ReconcileReply(local, req.Timestamps[key])
		if len(reply) == 0 {
			continue
		}
		if err = o.sync.SendReply(key, reply); err != nil {
			return fmt.Errorf("error sending reconciliation of %q: %w", key, err)
		}
		log.Debug().Str("key", key).Int("properties", len(reply)).Msg("reconciliation reply sent")
	}

	o.sync.SetActive(true)
	return nil
}

func (o *Orchestrator) handleSwitchRole(_ context.Context, cmd models.Command) error {
	var payload SwitchRolePayload
	if err := decodePayload(cmd, &payload); err != nil {
		return err
	}
	return o.SwitchRole(payload.Role)
}

func (o *Orchestrator) handleSetSlaveAcceptance(_ context.Context, cmd models.Command) error {
	var payload SetSlaveAcceptancePayload
	if err := decodePayload(cmd, &payload); err != nil {
		return err
	}
	o.SetSlaveAcceptance(payload.Accept)
	return nil
}

func (o *Orchestrator) handleConnectPeer(ctx context.Context, cmd models.Command) error {
	var target ConnectTarget
	if len(cmd.Payload) > 0 {
		if err := decodePayload(cmd, &target); err != nil {
			return err
		}
	}
	return o.ConnectPeer(ctx, target)
}

func (o *Orchestrator) handleDisconnectPeer(ctx context.Context, _ models.Command) error {
	o.Disconnect(ctx)
	return nil
}

func (o *Orchestrator) handleSetState(_ context.Context, cmd models.Command) error {
	var payload SetStatePayload
	if err := decodePayload(cmd, &payload); err != nil {
		return err
	}
	if payload.Key == "" || payload.Property == "" {
		return fmt.Errorf("%w: %s needs a key and a property", ErrInvalidPayload, cmd.Name)
	}

	if payload.Delete {
		return o.sync.Delete(payload.Key, payload.Property)
	}

	if len(payload.Value) == 0 || !json.Valid(payload.Value) {
		return fmt.Errorf("%w: %s needs a JSON value", ErrInvalidPayload, cmd.Name)
	}
	_, err := o.sync.Set(payload.Key, payload.Property, payload.Value)
	if errors.Is(err, store.ErrUnknownStateKey) {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return err
}
