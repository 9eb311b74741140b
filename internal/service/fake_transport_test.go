package service

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/MKhiriev/go-pair-link/internal/transport"
	"github.com/MKhiriev/go-pair-link/models"
)

// fakeTransport mimics the transport client: listeners run synchronously on
// the calling goroutine and Connect emits Connected before it returns.
type fakeTransport struct {
	mu           sync.Mutex
	state        models.ConnectionState
	connectErr   error
	connectCalls []transport.ConnectConfig
	sent         []models.Message
	onSend       func(msgType string, data any)

	connected    []func(transport.ConnectedEvent)
	disconnected []func(transport.DisconnectedEvent)
	messages     []func(models.Message)
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{state: models.StateDisconnected}
}

func (f *fakeTransport) Connect(_ context.Context, cfg transport.ConnectConfig) error {
	f.mu.Lock()
	f.connectCalls = append(f.connectCalls, cfg)
	if f.state != models.StateDisconnected {
		f.mu.Unlock()
		return transport.ErrInvalidState
	}
	if f.connectErr != nil {
		err := f.connectErr
		f.mu.Unlock()
		return err
	}
	f.state = models.StateConnected
	listeners := slices.Clone(f.connected)
	f.mu.Unlock()

	for _, fn := range listeners {
		fn(transport.ConnectedEvent{Address: "ws://fake", DeviceID: cfg.Registration.DeviceID})
	}
	return nil
}

func (f *fakeTransport) Disconnect(reason string) {
	f.drop(true, reason, nil)
}

// drop ends the connection the way the read loop does on an error.
func (f *fakeTransport) drop(clean bool, reason string, cause error) {
	f.mu.Lock()
	if f.state != models.StateConnected {
		f.mu.Unlock()
		return
	}
	f.state = models.StateDisconnected
	listeners := slices.Clone(f.disconnected)
	f.mu.Unlock()

	for _, fn := range listeners {
		fn(transport.DisconnectedEvent{Address: "ws://fake", Clean: clean, Reason: reason, Err: cause})
	}
}

func (f *fakeTransport) Send(msgType string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}

	f.mu.Lock()
	if f.state != models.StateConnected {
		state := f.state
		f.mu.Unlock()
		return fmt.Errorf("%w: send while %s", transport.ErrInvalidState, state)
	}
	f.sent = append(f.sent, models.Message{Type: msgType, Data: raw})
	hook := f.onSend
	f.mu.Unlock()

	if hook != nil {
		hook(msgType, data)
	}
	return nil
}

func (f *fakeTransport) State() models.ConnectionState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeTransport) Address() string {
	return "ws://fake"
}

func (f *fakeTransport) OnConnected(fn func(transport.ConnectedEvent)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = append(f.connected, fn)
	idx := len(f.connected) - 1
	return func() { f.unset(func() { f.connected[idx] = func(transport.ConnectedEvent) {} }) }
}

func (f *fakeTransport) OnDisconnected(fn func(transport.DisconnectedEvent)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnected = append(f.disconnected, fn)
	idx := len(f.disconnected) - 1
	return func() { f.unset(func() { f.disconnected[idx] = func(transport.DisconnectedEvent) {} }) }
}

func (f *fakeTransport) OnMessage(fn func(models.Message)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, fn)
	idx := len(f.messages) - 1
	return func() { f.unset(func() { f.messages[idx] = func(models.Message) {} }) }
}

func (f *fakeTransport) unset(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn()
}

// deliver hands an inbound envelope to the message listeners.
func (f *fakeTransport) deliver(msgType string, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		panic(err)
	}

	f.mu.Lock()
	listeners := slices.Clone(f.messages)
	f.mu.Unlock()

	for _, fn := range listeners {
		fn(models.Message{From: "peer", ID: "m", Type: msgType, Data: raw})
	}
}

func (f *fakeTransport) setOnSend(hook func(msgType string, data any)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onSend = hook
}

func (f *fakeTransport) setConnectErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connectErr = err
}

func (f *fakeTransport) connectCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.connectCalls)
}

func (f *fakeTransport) lastConnect() transport.ConnectConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connectCalls[len(f.connectCalls)-1]
}

func (f *fakeTransport) sentOfType(msgType string) []models.Message {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]models.Message, 0)
	for _, msg := range f.sent {
		if msg.Type == msgType {
			out = append(out, msg)
		}
	}
	return out
}
