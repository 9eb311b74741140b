package service

import (
	"context"

	"github.com/MKhiriev/go-pair-link/internal/transport"
	"github.com/MKhiriev/go-pair-link/models"
)

// Transport is the part of [*transport.Client] the orchestrator drives.
type Transport interface {
	Connect(ctx context.Context, cfg transport.ConnectConfig) error
	Disconnect(reason string)
	Send(msgType string, data any) error
	State() models.ConnectionState
	Address() string

	OnConnected(fn func(transport.ConnectedEvent)) func()
	OnDisconnected(fn func(transport.DisconnectedEvent)) func()
	OnMessage(fn func(models.Message)) func()
}

// CommandDispatcher runs commands through the conversion pipeline.
type CommandDispatcher interface {
	Dispatch(ctx context.Context, cmd models.Command) error
	DispatchRemote(ctx context.Context, cmd models.Command) error
}

// IDGenerator issues unique ids.
type IDGenerator interface {
	Generate() string
}
