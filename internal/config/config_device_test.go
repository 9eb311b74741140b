package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-pair-link/models"
)

func TestNewDeviceConfig_AppliesDefaults(t *testing.T) {
	cfg, err := newDeviceConfig(&StructuredConfig{
		Device:    Device{Role: "MASTER", ID: "master-1"},
		Transport: Transport{Servers: []string{"relay:8080"}},
	})
	require.NoError(t, err)

	assert.Equal(t, models.RoleMaster, cfg.Role)
	assert.Equal(t, models.WorkspaceMain, cfg.Workspace)
	assert.Equal(t, []string{"settings"}, cfg.StateKeys)
	assert.Equal(t, 10*time.Second, cfg.Transport.ConnectTimeout)
	assert.Equal(t, 30*time.Second, cfg.Transport.HeartbeatTimeout)
	assert.Equal(t, 100, cfg.Transport.QueueCapacity)
	assert.Equal(t, 1000, cfg.Transport.DedupCapacity)
	assert.Equal(t, 5*time.Minute, cfg.Transport.DedupTTL)
	assert.Equal(t, 3*time.Second, cfg.Sync.RetryDelay)
	assert.Equal(t, 5, cfg.Sync.MaxRetries)
	assert.Equal(t, 30*time.Second, cfg.Remote.CommandTimeout)
	assert.Equal(t, 5*time.Second, cfg.Remote.ReconnectInterval)
}

func TestNewDeviceConfig_KeepsExplicitValues(t *testing.T) {
	cfg, err := newDeviceConfig(&StructuredConfig{
		Device:    Device{Role: "SLAVE", ID: "slave-1", Workspace: "BRANCH", MasterDeviceID: "master-1"},
		Transport: Transport{Servers: []string{"relay:8080"}, ConnectTimeout: time.Second},
		Remote:    Remote{CommandTimeout: 2 * time.Second},
	})
	require.NoError(t, err)

	assert.Equal(t, models.WorkspaceBranch, cfg.Workspace)
	assert.Equal(t, "master-1", cfg.MasterDeviceID)
	assert.Equal(t, time.Second, cfg.Transport.ConnectTimeout)
	assert.Equal(t, 2*time.Second, cfg.Remote.CommandTimeout)
}

func TestNewDeviceConfig_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     StructuredConfig
		wantErr error
	}{
		{
			name:    "missing role",
			cfg:     StructuredConfig{Device: Device{ID: "d"}, Transport: Transport{Servers: []string{"r:1"}}},
			wantErr: ErrInvalidDeviceConfigs,
		},
		{
			name:    "missing device id",
			cfg:     StructuredConfig{Device: Device{Role: "MASTER"}, Transport: Transport{Servers: []string{"r:1"}}},
			wantErr: ErrInvalidDeviceConfigs,
		},
		{
			name:    "unknown workspace",
			cfg:     StructuredConfig{Device: Device{Role: "MASTER", ID: "d", Workspace: "SIDE"}, Transport: Transport{Servers: []string{"r:1"}}},
			wantErr: ErrInvalidDeviceConfigs,
		},
		{
			name:    "no servers",
			cfg:     StructuredConfig{Device: Device{Role: "MASTER", ID: "d"}},
			wantErr: ErrInvalidTransportConfigs,
		},
		{
			name:    "negative retries",
			cfg:     StructuredConfig{Device: Device{Role: "MASTER", ID: "d"}, Transport: Transport{Servers: []string{"r:1"}}, Sync: Sync{MaxRetries: -1}},
			wantErr: ErrInvalidSyncConfigs,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newDeviceConfig(&tt.cfg)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewRelayConfig(t *testing.T) {
	cfg, err := newRelayConfig(&StructuredConfig{Relay: Relay{TokenSignKey: "secret"}})
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", cfg.Relay.Address)
	assert.Equal(t, "go-pair-link-relay", cfg.Relay.TokenIssuer)
	assert.Equal(t, time.Minute, cfg.Relay.TokenDuration)
	assert.Equal(t, 10*time.Second, cfg.Relay.HeartbeatInterval)

	_, err = newRelayConfig(&StructuredConfig{})
	assert.ErrorIs(t, err, ErrInvalidRelayConfigs)
}
