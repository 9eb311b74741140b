package transport

import (
	"sync"
	"time"

	"github.com/MKhiriev/go-pair-link/models"
)

// ConnectedEvent is emitted once a candidate accepted the duplex channel.
type ConnectedEvent struct {
	Address  string
	DeviceID string
}

// DisconnectedEvent is emitted after cleanup has returned the client to
// Disconnected. Clean is true for a local Disconnect or a normal close frame.
type DisconnectedEvent struct {
	Address string
	Clean   bool
	Reason  string
	Err     error
}

// HeartbeatTimeoutEvent is emitted right before the client force-disconnects
// because the relay went silent.
type HeartbeatTimeoutEvent struct {
	Address string
	Elapsed time.Duration
}

type listener[T any] struct {
	id uint64
	fn func(T)
}

// listenerSet holds the subscribers of one event type. Listeners run on the
// emitting goroutine, in subscription order, outside the set's lock.
type listenerSet[T any] struct {
	mu        sync.Mutex
	nextID    uint64
	listeners []listener[T]
}

func (s *listenerSet[T]) add(fn func(T)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listener[T]{id: id, fn: fn})

	return func() { s.remove(id) }
}

func (s *listenerSet[T]) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, l := range s.listeners {
		if l.id == id {
			s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
			return
		}
	}
}

func (s *listenerSet[T]) emit(event T) {
	s.mu.Lock()
	snapshot := make([]listener[T], len(s.listeners))
	copy(snapshot, s.listeners)
	s.mu.Unlock()

	for _, l := range snapshot {
		l.fn(event)
	}
}

func (s *listenerSet[T]) clear() {
	s.mu.Lock()
	s.listeners = nil
	s.mu.Unlock()
}

// OnConnected subscribes fn to Connected events. The returned func
// unsubscribes.
func (c *Client) OnConnected(fn func(ConnectedEvent)) func() {
	return c.connected.add(fn)
}

// OnDisconnected subscribes fn to Disconnected events.
func (c *Client) OnDisconnected(fn func(DisconnectedEvent)) func() {
	return c.disconnected.add(fn)
}

// OnMessage subscribes fn to deduplicated inbound application envelopes.
// Envelopes are delivered in arrival order on the read goroutine.
func (c *Client) OnMessage(fn func(models.Message)) func() {
	return c.messages.add(fn)
}

// OnHeartbeatTimeout subscribes fn to heartbeat expiry.
func (c *Client) OnHeartbeatTimeout(fn func(HeartbeatTimeoutEvent)) func() {
	return c.heartbeatTimeouts.add(fn)
}
