package relay

import (
	"github.com/MKhiriev/go-pair-link/internal/config"
	"github.com/MKhiriev/go-pair-link/internal/logger"
	"github.com/MKhiriev/go-pair-link/internal/store"
	"github.com/MKhiriev/go-pair-link/internal/utils"
)

// Services groups what the relay's HTTP layer depends on.
type Services struct {
	Registration RegistrationService
	Hub          *Hub
}

func NewServices(storages *store.RelayStorages, cfg config.Relay, logger *logger.Logger) *Services {
	hub := NewHub(storages.Devices, utils.NewUUIDGenerator(), logger)
	return &Services{
		Registration: NewRegistrationService(storages.Devices, hub, cfg, logger),
		Hub:          hub,
	}
}
