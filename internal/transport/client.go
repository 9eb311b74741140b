// Package transport implements the device side of the relay connection: the
// registration handshake with candidate failover, the duplex channel, relay
// heartbeats, inbound deduplication and the pre-connect outbound queue.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MKhiriev/go-pair-link/internal/adapter"
	"github.com/MKhiriev/go-pair-link/internal/logger"
	"github.com/MKhiriev/go-pair-link/models"
)

// IDGenerator issues unique envelope ids.
type IDGenerator interface {
	Generate() string
}

// ConnectConfig describes one connect cycle.
type ConnectConfig struct {
	// Registration is the identity offered to every candidate.
	Registration models.DeviceRegistration
	// Servers are tried in order until one accepts.
	Servers []string
	// ConnectTimeout bounds registration plus socket open per candidate.
	ConnectTimeout time.Duration
	// HeartbeatTimeout is the tolerated relay silence; zero disables the check.
	HeartbeatTimeout time.Duration
	// QueueCapacity bounds envelopes queued before the channel is open.
	QueueCapacity int
}

// Client is the transport client. It is safe for concurrent use; at most one
// connect cycle runs at a time.
type Client struct {
	registrar adapter.RegistrationAdapter
	dialer    Dialer
	ids       IDGenerator
	dedup     *dedupCache
	logger    *logger.Logger

	mu            sync.Mutex
	state         models.ConnectionState
	deviceID      string
	session       *session
	queue         [][]byte
	queueCapacity int
	abortConnect  context.CancelFunc
	shutdown      bool

	connected         listenerSet[ConnectedEvent]
	disconnected      listenerSet[DisconnectedEvent]
	messages          listenerSet[models.Message]
	heartbeatTimeouts listenerSet[HeartbeatTimeoutEvent]
}

// Option customizes a [Client].
type Option func(*Client)

// WithDialer replaces the gorilla/websocket dialer.
func WithDialer(d Dialer) Option {
	return func(c *Client) { c.dialer = d }
}

// WithDedup sets the inbound id cache bounds.
func WithDedup(capacity int, ttl time.Duration) Option {
	return func(c *Client) { c.dedup = newDedupCache(capacity, ttl) }
}

// NewClient constructs a disconnected client.
func NewClient(registrar adapter.RegistrationAdapter, ids IDGenerator, log *logger.Logger, opts ...Option) *Client {
	c := &Client{
		registrar: registrar,
		dialer:    NewWebSocketDialer(),
		ids:       ids,
		dedup:     newDedupCache(defaultDedupCapacity, defaultDedupTTL),
		logger:    log.WithComponent("transport/client"),
		state:     models.StateDisconnected,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// State returns the current connection state.
func (c *Client) State() models.ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Address returns the relay the client is connected to, or "".
func (c *Client) Address() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return ""
	}
	return c.session.address
}

// Connect registers with the first candidate that accepts, opens the duplex
// channel and returns once the client is Connected. Only a Disconnected
// client accepts Connect. On failure the client is Disconnected again and
// the error is a [*ConnectionError] of kind KindAllCandidates joining every
// candidate's error.
func (c *Client) Connect(ctx context.Context, cfg ConnectConfig) error {
	log := c.logger.With().Str("func", "*Client.Connect").Logger()

	c.mu.Lock()
	if c.shutdown {
		c.mu.Unlock()
		return ErrClientShutdown
	}
	if c.state != models.StateDisconnected {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("%w: connect while %s", ErrInvalidState, state)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.state = models.StateRegistering
	c.deviceID = cfg.Registration.DeviceID
	c.queue = nil
	c.queueCapacity = cfg.QueueCapacity
	c.abortConnect = cancel
	c.mu.Unlock()

	var errs []error
	for _, address := range cfg.Servers {
		conn, err := c.dialCandidate(ctx, address, cfg)
		if err == nil {
			if err = c.establish(conn, address, cfg); err == nil {
				log.Info().Str("address", address).Msg("connected")
				return nil
			}
		}

		log.Warn().Err(err).Str("address", address).Msg("candidate failed")
		errs = append(errs, err)

		if ctx.Err() != nil {
			break
		}
	}

	if len(errs) == 0 {
		errs = append(errs, errors.New("no server candidates"))
	}

	c.mu.Lock()
	if c.state != models.StateConnected {
		c.state = models.StateDisconnected
		c.queue = nil
	}
	c.abortConnect = nil
	c.mu.Unlock()

	return newConnectionError(KindAllCandidates, "", errors.Join(errs...))
}

// dialCandidate performs registration and socket open against one address
// within its own timeout.
func (c *Client) dialCandidate(ctx context.Context, address string, cfg ConnectConfig) (Conn, error) {
	attemptCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	c.setConnectingState(models.StateRegistering)

	resp, err := c.registrar.Register(attemptCtx, address, cfg.Registration)
	if err != nil {
		return nil, newConnectionError(kindFor(attemptCtx, KindRegistration), address, err)
	}

	c.setConnectingState(models.StateConnecting)

	wsURL, err := WebSocketURL(address, resp.Token)
	if err != nil {
		return nil, newConnectionError(KindTransport, address, err)
	}

	conn, err := c.dialer.Dial(attemptCtx, wsURL)
	if err != nil {
		return nil, newConnectionError(kindFor(attemptCtx, KindTransport), address, err)
	}

	return conn, nil
}

func kindFor(ctx context.Context, fallback ErrorKind) ErrorKind {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return KindTimeout
	}
	return fallback
}

// setConnectingState moves between Registering and Connecting unless the
// attempt was aborted meanwhile.
func (c *Client) setConnectingState(state models.ConnectionState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == models.StateRegistering || c.state == models.StateConnecting {
		c.state = state
	}
}

// establish switches to Connected, flushes the pre-connect queue in order and
// starts the per-connection goroutines.
func (c *Client) establish(conn Conn, address string, cfg ConnectConfig) error {
	sess := newSession(conn, address)
	sess.heartbeat = newHeartbeatMonitor(cfg.HeartbeatTimeout, func(elapsed time.Duration) {
		c.onHeartbeatTimeout(sess, elapsed)
	})

	c.mu.Lock()
	if c.shutdown || c.state != models.StateConnecting {
		c.mu.Unlock()
		sess.close(true)
		return newConnectionError(KindTransport, address, errors.New("connect aborted"))
	}

	// Holding the write lock across the state switch keeps queued envelopes
	// ahead of any Send issued right after Connected.
	sess.writeMu.Lock()
	c.session = sess
	c.state = models.StateConnected
	c.abortConnect = nil
	queued := c.queue
	c.queue = nil
	deviceID := c.deviceID
	c.mu.Unlock()

	sess.heartbeat.start()
	go c.dedup.runSweeper(sess.done)

	for _, data := range queued {
		if err := sess.writeLocked(data); err != nil {
			c.logger.Warn().Str("func", "*Client.establish").Err(err).Msg("error flushing queued message")
			break
		}
	}
	sess.writeMu.Unlock()

	go c.readLoop(sess)

	c.connected.emit(ConnectedEvent{Address: address, DeviceID: deviceID})
	return nil
}

// Send wraps data in an envelope of type msgType. While Connected it is
// written immediately; while Registering or Connecting it is queued up to
// the configured capacity and silently dropped beyond it. Other states fail
// with [ErrInvalidState].
func (c *Client) Send(msgType string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("error encoding %s payload: %w", msgType, err)
	}

	c.mu.Lock()
	envelope, err := json.Marshal(models.Message{
		From: c.deviceID,
		ID:   c.ids.Generate(),
		Type: msgType,
		Data: payload,
	})
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("error encoding envelope: %w", err)
	}

	switch c.state {
	case models.StateConnected:
		sess := c.session
		c.mu.Unlock()
		if err = sess.write(envelope); err != nil {
			// The read loop observes the closed socket and tears down.
			_ = sess.conn.Close()
			return newConnectionError(KindNetwork, sess.address, err)
		}
		return nil

	case models.StateRegistering, models.StateConnecting:
		if len(c.queue) < c.queueCapacity {
			c.queue = append(c.queue, envelope)
		} else {
			c.logger.Debug().Str("func", "*Client.Send").Str("type", msgType).Msg("pre-connect queue full, message dropped")
		}
		c.mu.Unlock()
		return nil

	default:
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("%w: send while %s", ErrInvalidState, state)
	}
}

func (c *Client) readLoop(sess *session) {
	log := c.logger.With().Str("func", "*Client.readLoop").Str("address", sess.address).Logger()

	for {
		_, raw, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.teardown(sess, true, "closed by relay", nil)
				return
			}
			c.teardown(sess, false, "connection lost", newConnectionError(KindNetwork, sess.address, err))
			return
		}

		var msg models.Message
		if err = json.Unmarshal(raw, &msg); err != nil {
			log.Warn().Err(err).Msg("malformed envelope dropped")
			continue
		}

		switch msg.Type {
		case models.TypeHeartbeat:
			sess.heartbeat.beat()
			if err = c.sendHeartbeatAck(sess); err != nil {
				log.Warn().Err(err).Msg("error acknowledging heartbeat")
			}
			continue
		case models.TypeHeartbeatAck:
			continue
		}

		if msg.ID != "" && c.dedup.seen(msg.ID) {
			log.Debug().Str("id", msg.ID).Str("type", msg.Type).Msg("duplicate envelope dropped")
			continue
		}

		c.messages.emit(msg)
	}
}

func (c *Client) sendHeartbeatAck(sess *session) error {
	c.mu.Lock()
	envelope, err := json.Marshal(models.Message{From: c.deviceID, ID: c.ids.Generate(), Type: models.TypeHeartbeatAck})
	c.mu.Unlock()
	if err != nil {
		return err
	}
	return sess.write(envelope)
}

func (c *Client) onHeartbeatTimeout(sess *session, elapsed time.Duration) {
	c.mu.Lock()
	current := c.session == sess
	c.mu.Unlock()
	if !current {
		return
	}

	c.logger.Warn().Str("func", "*Client.onHeartbeatTimeout").Dur("elapsed", elapsed).Msg("heartbeat timeout")
	c.heartbeatTimeouts.emit(HeartbeatTimeoutEvent{Address: sess.address, Elapsed: elapsed})
	c.teardown(sess, false, "heartbeat timeout", newConnectionError(KindHeartbeatTimeout, sess.address, nil))
}

// teardown releases sess and returns the client to Disconnected. Calls for a
// session that is no longer current are ignored.
func (c *Client) teardown(sess *session, clean bool, reason string, cause error) {
	c.mu.Lock()
	if sess == nil || c.session != sess {
		c.mu.Unlock()
		return
	}
	c.state = models.StateDisconnecting
	c.session = nil
	c.queue = nil
	c.mu.Unlock()

	sess.close(clean)
	c.dedup.clear()

	c.mu.Lock()
	c.state = models.StateDisconnected
	c.mu.Unlock()

	c.logger.Info().Str("func", "*Client.teardown").Str("address", sess.address).
		Bool("clean", clean).Str("reason", reason).AnErr("cause", cause).Msg("disconnected")

	c.disconnected.emit(DisconnectedEvent{Address: sess.address, Clean: clean, Reason: reason, Err: cause})
}

// Disconnect closes the connection cleanly. A connect cycle in progress is
// aborted. Calling Disconnect on a Disconnected client is a no-op.
func (c *Client) Disconnect(reason string) {
	c.mu.Lock()
	switch c.state {
	case models.StateConnected:
		sess := c.session
		c.mu.Unlock()
		c.teardown(sess, true, reason, nil)
		return
	case models.StateRegistering, models.StateConnecting:
		if c.abortConnect != nil {
			c.abortConnect()
		}
	}
	c.mu.Unlock()
}

// Shutdown disconnects, drops every listener and makes the client unusable.
func (c *Client) Shutdown() {
	c.Disconnect("shutdown")

	c.mu.Lock()
	c.shutdown = true
	c.mu.Unlock()

	c.connected.clear()
	c.disconnected.clear()
	c.messages.clear()
	c.heartbeatTimeouts.clear()
}
