package http

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MKhiriev/go-pair-link/internal/config"
	"github.com/MKhiriev/go-pair-link/internal/logger"
	"github.com/MKhiriev/go-pair-link/internal/relay"
)

type Handler struct {
	services *relay.Services

	upgrader       websocket.Upgrader
	requestTimeout time.Duration

	logger *logger.Logger
}

func NewHandler(services *relay.Services, cfg config.Relay, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services: services,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// devices are not browsers; the token is the credential
			CheckOrigin: func(*http.Request) bool { return true },
		},
		requestTimeout: cfg.RequestTimeout,
		logger:         logger,
	}
}
