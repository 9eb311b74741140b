package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MKhiriev/go-pair-link/internal/statesync"
	"github.com/MKhiriev/go-pair-link/models"
)

// slaveRole pairs with a known master and starts the initial reconciliation
// every time its connection is established.
type slaveRole struct {
	o *Orchestrator
}

func (s *slaveRole) role() models.Role {
	return models.RoleSlave
}

// called with o.mu held
func (s *slaveRole) preconditions() []string {
	var reasons []string
	if s.o.masterDeviceID == "" {
		reasons = append(reasons, "no master device to pair with")
	}
	if s.o.deviceID == "" {
		reasons = append(reasons, "device id is empty")
	}
	if s.o.deviceID != "" && s.o.deviceID == s.o.masterDeviceID {
		reasons = append(reasons, "device cannot pair with itself")
	}
	return reasons
}

// called with o.mu held
func (s *slaveRole) registration() models.DeviceRegistration {
	return models.DeviceRegistration{
		Type:           models.RoleSlave,
		DeviceID:       s.o.deviceID,
		MasterDeviceID: s.o.masterDeviceID,
	}
}

func (s *slaveRole) onConnected(ctx context.Context) {
	// listeners run on the connecting goroutine; reconciliation waits on the peer
	go s.reconcile(ctx)
}

func (s *slaveRole) onDisconnected() {}

func (s *slaveRole) onSystemMessage(models.Message) {}

// called with o.mu held
func (s *slaveRole) peerAttached() bool {
	return true
}

// reconcile sends the local timestamps to the master as a forwarded
// SyncStateAtConnect command. The master replies with SYNC_STATE diffs before
// acknowledging, so once the call returns every reply has been applied and
// incremental sync may start.
func (s *slaveRole) reconcile(ctx context.Context) {
	log := s.o.logger.With().Str("func", "*slaveRole.reconcile").Logger()

	if err := s.requestReconciliation(ctx); err != nil {
		log.Warn().Err(err).Msg("initial reconciliation failed")
		s.o.transport.Disconnect("reconciliation failed")
		return
	}

	if s.o.transport.State() != models.StateConnected {
		return
	}
	s.o.sync.SetActive(true)
	log.Info().Msg("initial reconciliation finished")
}

func (s *slaveRole) requestReconciliation(ctx context.Context) error {
	s.o.mu.Lock()
	dispatcher := s.o.dispatcher
	s.o.mu.Unlock()
	if dispatcher == nil {
		return fmt.Errorf("no command dispatcher")
	}

	timestamps, err := statesync.Timestamps(s.o.sync.Store())
	if err != nil {
		return err
	}

	payload, err := json.Marshal(models.SyncAtConnectRequest{Role: models.RoleSlave, Timestamps: timestamps})
	if err != nil {
		return err
	}

	return dispatcher.Dispatch(ctx, models.Command{
		Name:    NameSyncStateAtConnect,
		Payload: payload,
		Extra:   map[string]string{models.ExtraRole: string(models.RoleMaster)},
	})
}
