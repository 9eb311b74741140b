package service

import "github.com/MKhiriev/go-pair-link/models"

// SyncSender delivers sync diffs as SYNC_STATE envelopes.
type SyncSender struct {
	transport Transport
}

// NewSyncSender returns a sync sender writing through tr.
func NewSyncSender(tr Transport) *SyncSender {
	return &SyncSender{transport: tr}
}

// SendSync sends the diff of one key.
func (s *SyncSender) SendSync(key string, changes models.Changes) error {
	return s.transport.Send(models.TypeSyncState, models.SyncStatePayload{Key: key, Changes: changes})
}
