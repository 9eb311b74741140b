package relay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-pair-link/internal/config"
	"github.com/MKhiriev/go-pair-link/internal/logger"
	"github.com/MKhiriev/go-pair-link/internal/store"
	"github.com/MKhiriev/go-pair-link/internal/utils"
	"github.com/MKhiriev/go-pair-link/models"
)

// registrationService is the concrete implementation of RegistrationService.
// Registrations are persisted in a DeviceRepository; tokens are HMAC-SHA256
// JWTs carrying the registered identity.
type registrationService struct {
	devices  store.DeviceRepository
	presence Presence

	tokenSignKey  string
	tokenIssuer   string
	tokenDuration time.Duration

	logger *logger.Logger
}

// NewRegistrationService constructs a RegistrationService. presence decides
// whether a slave's master is online.
func NewRegistrationService(devices store.DeviceRepository, presence Presence, cfg config.Relay, log *logger.Logger) RegistrationService {
	return &registrationService{
		devices:       devices,
		presence:      presence,
		tokenSignKey:  cfg.TokenSignKey,
		tokenIssuer:   cfg.TokenIssuer,
		tokenDuration: cfg.TokenDuration,
		logger:        log.WithComponent("relay/registration"),
	}
}

// Register admits a device.
//
// A slave is admitted only while the master it names is attached to the
// relay. Re-registering a device id replaces the previous registration.
//
// Returns:
//   - ErrInvalidRegistration for an unknown type, an empty device id or a
//     slave naming no master or itself.
//   - ErrMasterOffline if the slave's master is not attached.
//   - A wrapped storage error if the registration cannot be saved.
func (s *registrationService) Register(ctx context.Context, reg models.DeviceRegistration) (models.RegisterResponse, error) {
	log := logger.FromContext(ctx).With().Str("func", "*registrationService.Register").
		Str("device_id", reg.DeviceID).Str("type", string(reg.Type)).Logger()

	if err := validateRegistration(reg); err != nil {
		log.Warn().Err(err).Msg("registration refused")
		return models.RegisterResponse{}, err
	}

	if reg.Type == models.RoleSlave {
		if role, online := s.presence.Online(reg.MasterDeviceID); !online || role != models.RoleMaster {
			log.Warn().Str("master_device_id", reg.MasterDeviceID).Msg("master is not online")
			return models.RegisterResponse{}, fmt.Errorf("%w: %s", ErrMasterOffline, reg.MasterDeviceID)
		}
	}

	err := s.devices.Save(ctx, models.RegisteredDevice{
		DeviceID:       reg.DeviceID,
		Type:           reg.Type,
		MasterDeviceID: reg.MasterDeviceID,
		RegisteredAt:   time.Now().UTC(),
	})
	if err != nil {
		log.Err(err).Msg("error saving registration")
		return models.RegisterResponse{}, fmt.Errorf("error saving registration: %w", err)
	}

	token, err := utils.GenerateDeviceToken(s.tokenIssuer, reg, s.tokenDuration, s.tokenSignKey)
	if err != nil {
		log.Err(err).Msg("error generating token")
		return models.RegisterResponse{}, err
	}

	log.Info().Msg("device registered")

	return models.RegisterResponse{
		Success:    true,
		Token:      token,
		DeviceInfo: &models.DeviceInfo{DeviceType: reg.Type, DeviceID: reg.DeviceID},
	}, nil
}

// Authenticate validates token and checks that it still describes the
// device's current registration.
func (s *registrationService) Authenticate(ctx context.Context, token string) (*utils.DeviceClaims, error) {
	claims, err := utils.ValidateDeviceToken(token, s.tokenSignKey, s.tokenIssuer)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	device, err := s.devices.Find(ctx, claims.DeviceID())
	if err != nil {
		if errors.Is(err, store.ErrDeviceNotFound) {
			return nil, fmt.Errorf("%w: %s is not registered", ErrInvalidToken, claims.DeviceID())
		}
		return nil, err
	}

	if device.Type != claims.DeviceType || device.MasterDeviceID != claims.MasterDeviceID {
		return nil, fmt.Errorf("%w: registration of %s changed", ErrInvalidToken, claims.DeviceID())
	}

	return claims, nil
}

func validateRegistration(reg models.DeviceRegistration) error {
	if !reg.Type.Valid() {
		return fmt.Errorf("%w: unknown device type %q", ErrInvalidRegistration, reg.Type)
	}
	if reg.DeviceID == "" {
		return fmt.Errorf("%w: empty device id", ErrInvalidRegistration)
	}
	if reg.Type == models.RoleSlave {
		if reg.MasterDeviceID == "" {
			return fmt.Errorf("%w: slave must name a master", ErrInvalidRegistration)
		}
		if reg.MasterDeviceID == reg.DeviceID {
			return fmt.Errorf("%w: device cannot pair with itself", ErrInvalidRegistration)
		}
	}
	return nil
}
