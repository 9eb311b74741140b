package relay

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-pair-link/internal/config"
	"github.com/MKhiriev/go-pair-link/internal/logger"
	"github.com/MKhiriev/go-pair-link/internal/mock"
	"github.com/MKhiriev/go-pair-link/internal/store"
	"github.com/MKhiriev/go-pair-link/internal/utils"
	"github.com/MKhiriev/go-pair-link/models"
)

type fakePresence map[string]models.Role

func (f fakePresence) Online(deviceID string) (models.Role, bool) {
	role, ok := f[deviceID]
	return role, ok
}

var testRelayConfig = config.Relay{
	TokenSignKey:  "sign-key",
	TokenIssuer:   "test-relay",
	TokenDuration: time.Minute,
}

func TestRegister_InvalidRegistration(t *testing.T) {
	tests := []struct {
		name string
		reg  models.DeviceRegistration
	}{
		{name: "unknown type", reg: models.DeviceRegistration{Type: "PEER", DeviceID: "d"}},
		{name: "empty device id", reg: models.DeviceRegistration{Type: models.RoleMaster}},
		{name: "slave without master", reg: models.DeviceRegistration{Type: models.RoleSlave, DeviceID: "s"}},
		{name: "slave pairing with itself", reg: models.DeviceRegistration{Type: models.RoleSlave, DeviceID: "s", MasterDeviceID: "s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			devices := mock.NewMockDeviceRepository(ctrl)
			svc := NewRegistrationService(devices, fakePresence{}, testRelayConfig, logger.Nop())

			_, err := svc.Register(context.Background(), tt.reg)
			assert.ErrorIs(t, err, ErrInvalidRegistration)
		})
	}
}

func TestRegister_SlaveNeedsOnlineMaster(t *testing.T) {
	tests := []struct {
		name     string
		presence fakePresence
	}{
		{name: "master not attached", presence: fakePresence{}},
		{name: "id attached as a slave", presence: fakePresence{"m1": models.RoleSlave}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			devices := mock.NewMockDeviceRepository(ctrl)
			svc := NewRegistrationService(devices, tt.presence, testRelayConfig, logger.Nop())

			_, err := svc.Register(context.Background(), models.DeviceRegistration{
				Type: models.RoleSlave, DeviceID: "s1", MasterDeviceID: "m1",
			})
			assert.ErrorIs(t, err, ErrMasterOffline)
		})
	}
}

func TestRegister_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	devices := mock.NewMockDeviceRepository(ctrl)
	svc := NewRegistrationService(devices, fakePresence{"m1": models.RoleMaster}, testRelayConfig, logger.Nop())

	devices.EXPECT().
		Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, device models.RegisteredDevice) error {
			assert.Equal(t, "s1", device.DeviceID)
			assert.Equal(t, models.RoleSlave, device.Type)
			assert.Equal(t, "m1", device.MasterDeviceID)
			assert.False(t, device.RegisteredAt.IsZero())
			return nil
		})

	resp, err := svc.Register(context.Background(), models.DeviceRegistration{
		Type: models.RoleSlave, DeviceID: "s1", MasterDeviceID: "m1",
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, &models.DeviceInfo{DeviceType: models.RoleSlave, DeviceID: "s1"}, resp.DeviceInfo)

	claims, err := utils.ValidateDeviceToken(resp.Token, testRelayConfig.TokenSignKey, testRelayConfig.TokenIssuer)
	require.NoError(t, err)
	assert.Equal(t, "s1", claims.DeviceID())
	assert.Equal(t, "m1", claims.MasterDeviceID)
}

func TestRegister_SaveError(t *testing.T) {
	ctrl := gomock.NewController(t)
	devices := mock.NewMockDeviceRepository(ctrl)
	svc := NewRegistrationService(devices, fakePresence{}, testRelayConfig, logger.Nop())

	devices.EXPECT().Save(gomock.Any(), gomock.Any()).Return(store.ErrExecutingStatement)

	_, err := svc.Register(context.Background(), models.DeviceRegistration{Type: models.RoleMaster, DeviceID: "m1"})
	assert.ErrorIs(t, err, store.ErrExecutingStatement)
}

func TestAuthenticate(t *testing.T) {
	reg := models.DeviceRegistration{Type: models.RoleSlave, DeviceID: "s1", MasterDeviceID: "m1"}
	token, err := utils.GenerateDeviceToken(testRelayConfig.TokenIssuer, reg, time.Minute, testRelayConfig.TokenSignKey)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		found   models.RegisteredDevice
		findErr error
		noFind  bool
		wantErr error
	}{
		{
			name:  "valid token",
			token: token,
			found: models.RegisteredDevice{DeviceID: "s1", Type: models.RoleSlave, MasterDeviceID: "m1"},
		},
		{
			name:    "garbage token",
			token:   "not-a-jwt",
			noFind:  true,
			wantErr: ErrInvalidToken,
		},
		{
			name:    "device no longer registered",
			token:   token,
			findErr: store.ErrDeviceNotFound,
			wantErr: ErrInvalidToken,
		},
		{
			name:    "registration changed",
			token:   token,
			found:   models.RegisteredDevice{DeviceID: "s1", Type: models.RoleMaster},
			wantErr: ErrInvalidToken,
		},
		{
			name:    "storage failure",
			token:   token,
			findErr: store.ErrExecutingQuery,
			wantErr: store.ErrExecutingQuery,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			devices := mock.NewMockDeviceRepository(ctrl)
			svc := NewRegistrationService(devices, fakePresence{}, testRelayConfig, logger.Nop())

			if !tt.noFind {
				devices.EXPECT().Find(gomock.Any(), "s1").Return(tt.found, tt.findErr)
			}

			claims, err := svc.Authenticate(context.Background(), tt.token)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "s1", claims.DeviceID())
		})
	}
}
