package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-pair-link/models"
)

func (o *Orchestrator) newRoleHandler(role models.Role) roleHandler {
	if role == models.RoleSlave {
		return &slaveRole{o: o}
	}
	return &masterRole{o: o}
}

// SwitchRole drops the current link, stops reconnecting and adopts role.
// The next [Orchestrator.ConnectPeer] registers with the new role.
func (o *Orchestrator) SwitchRole(role models.Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidPayload, role)
	}

	o.mu.Lock()
	if o.handler.role() == role {
		o.mu.Unlock()
		return nil
	}
	o.autoReconnect = false
	o.mu.Unlock()

	o.reconnect.Stop()
	o.transport.Disconnect("role switched")

	o.mu.Lock()
	previous := o.handler.role()
	o.handler = o.newRoleHandler(role)
	o.slaves = nil
	o.mu.Unlock()

	o.logger.Info().Str("func", "*Orchestrator.SwitchRole").
		Str("from", string(previous)).Str("to", string(role)).Msg("role switched")
	return nil
}

// SetSlaveAcceptance toggles whether a master accepts slaves. Disabling it
// while a master is linked drops the link and stops reconnecting.
func (o *Orchestrator) SetSlaveAcceptance(accept bool) {
	o.mu.Lock()
	o.acceptSlaves = accept
	isMaster := o.handler.role() == models.RoleMaster
	if !accept && isMaster {
		o.autoReconnect = false
	}
	o.mu.Unlock()

	if !accept && isMaster {
		o.reconnect.Stop()
		o.transport.Disconnect("slave acceptance disabled")
	}

	o.logger.Info().Str("func", "*Orchestrator.SetSlaveAcceptance").Bool("accept", accept).Msg("slave acceptance changed")
}

// Disconnect drops the link and stops reconnecting.
func (o *Orchestrator) Disconnect(_ context.Context) {
	o.mu.Lock()
	o.autoReconnect = false
	o.mu.Unlock()

	o.reconnect.Stop()
	o.transport.Disconnect("disconnect requested")
}
