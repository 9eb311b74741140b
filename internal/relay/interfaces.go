package relay

import (
	"context"
	"time"

	"github.com/MKhiriev/go-pair-link/internal/utils"
	"github.com/MKhiriev/go-pair-link/models"
)

// RegistrationService admits devices to the relay.
type RegistrationService interface {
	// Register validates reg, records it and issues a channel token.
	Register(ctx context.Context, reg models.DeviceRegistration) (models.RegisterResponse, error)
	// Authenticate validates a channel token against the stored registration.
	Authenticate(ctx context.Context, token string) (*utils.DeviceClaims, error)
}

// Presence reports which devices are attached right now.
type Presence interface {
	Online(deviceID string) (models.Role, bool)
}

// SlaveLister lists the slaves registered against a master.
type SlaveLister interface {
	ListSlaves(ctx context.Context, masterDeviceID string) ([]models.RegisteredDevice, error)
}

// Conn is the server side of a duplex channel. *websocket.Conn satisfies it.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	Close() error
}

// IDGenerator produces envelope ids for relay-originated messages.
type IDGenerator interface {
	Generate() string
}
