package handler

import (
	"github.com/MKhiriev/go-pair-link/internal/config"
	"github.com/MKhiriev/go-pair-link/internal/handler/http"
	"github.com/MKhiriev/go-pair-link/internal/logger"
	"github.com/MKhiriev/go-pair-link/internal/relay"
)

type Handlers struct {
	HTTP *http.Handler
}

func NewHandlers(services *relay.Services, cfg config.Relay, logger *logger.Logger) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	if cfg.Address == "" {
		return nil, errNoHandlersAreCreated
	}

	return &Handlers{HTTP: http.NewHandler(services, cfg, logger)}, nil
}
