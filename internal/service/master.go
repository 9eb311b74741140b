package service

import (
	"context"
	"encoding/json"
	"slices"

	"github.com/MKhiriev/go-pair-link/models"
)

// masterRole accepts slaves. It connects to the relay only while slave
// acceptance is enabled and tracks the slaves the relay reports attached.
type masterRole struct {
	o *Orchestrator
}

func (m *masterRole) role() models.Role {
	return models.RoleMaster
}

// called with o.mu held
func (m *masterRole) preconditions() []string {
	var reasons []string
	if !m.o.acceptSlaves {
		reasons = append(reasons, "slave acceptance is disabled")
	}
	if m.o.deviceID == "" {
		reasons = append(reasons, "device id is empty")
	}
	return reasons
}

// called with o.mu held
func (m *masterRole) registration() models.DeviceRegistration {
	return models.DeviceRegistration{
		Type:     models.RoleMaster,
		DeviceID: m.o.deviceID,
		RuntimeConfig: map[string]any{
			"servers":   slices.Clone(m.o.servers),
			"workspace": string(m.o.workspace),
		},
	}
}

func (m *masterRole) onConnected(context.Context) {
	m.o.logger.Info().Str("func", "*masterRole.onConnected").Msg("waiting for slaves")
}

func (m *masterRole) onDisconnected() {
	m.o.mu.Lock()
	m.o.slaves = nil
	m.o.mu.Unlock()
}

func (m *masterRole) onSystemMessage(msg models.Message) {
	log := m.o.logger.With().Str("func", "*masterRole.onSystemMessage").Str("type", msg.Type).Logger()

	var notice models.SlaveNotice
	if err := json.Unmarshal(msg.Data, &notice); err != nil || notice.DeviceID == "" {
		log.Warn().Err(err).Msg("malformed slave notice dropped")
		return
	}

	m.o.mu.Lock()
	switch msg.Type {
	case models.TypeSlaveConnected:
		if !slices.Contains(m.o.slaves, notice.DeviceID) {
			m.o.slaves = append(m.o.slaves, notice.DeviceID)
		}
	case models.TypeSlaveDisconnected:
		m.o.slaves = slices.DeleteFunc(m.o.slaves, func(id string) bool { return id == notice.DeviceID })
	}
	remaining := len(m.o.slaves)
	m.o.mu.Unlock()

	log.Info().Str("slave", notice.DeviceID).Int("slaves", remaining).Msg("slave attachment changed")

	if msg.Type == models.TypeSlaveDisconnected && remaining == 0 {
		m.o.sync.SetActive(false)
		m.o.pending.failAll(ErrPeerNotConnected.Error())
	}
}

// called with o.mu held
func (m *masterRole) peerAttached() bool {
	return len(m.o.slaves) > 0
}
