package service

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/MKhiriev/go-pair-link/internal/config"
	"github.com/MKhiriev/go-pair-link/internal/logger"
	"github.com/MKhiriev/go-pair-link/internal/statesync"
	"github.com/MKhiriev/go-pair-link/internal/store"
	"github.com/MKhiriev/go-pair-link/internal/transport"
	"github.com/MKhiriev/go-pair-link/models"
)

// historyLimit bounds the history entries included in a status snapshot.
const historyLimit = 20

// roleHandler is the role-specific half of the orchestrator.
type roleHandler interface {
	role() models.Role
	// preconditions returns every reason the role cannot connect now.
	preconditions() []string
	registration() models.DeviceRegistration
	onConnected(ctx context.Context)
	onDisconnected()
	onSystemMessage(msg models.Message)
	// peerAttached reports whether a forwarded command can reach a peer.
	peerAttached() bool
}

// Orchestrator drives the transport client for the current role: connect
// preconditions, reconnects, initial reconciliation, forwarded commands and
// inbound sync diffs.
type Orchestrator struct {
	transport Transport
	sync      *statesync.Middleware
	history   store.HistoryRepository
	logger    *logger.Logger

	deviceID          string
	connectTimeout    time.Duration
	heartbeatTimeout  time.Duration
	queueCapacity     int
	commandTimeout    time.Duration
	reconnectInterval time.Duration

	pending   *pendingCalls
	reconnect *reconnectJob

	mu             sync.Mutex
	ctx            context.Context
	cancel         context.CancelFunc
	unsubscribe    []func()
	dispatcher     CommandDispatcher
	handler        roleHandler
	workspace      models.Workspace
	masterDeviceID string
	servers        []string
	acceptSlaves   bool
	slaves         []string
	autoReconnect  bool
	attempts       int
	connectedAt    time.Time
	lastError      string
}

// NewOrchestrator constructs an orchestrator for cfg. It stays idle until
// [Orchestrator.Start].
func NewOrchestrator(
	cfg config.DeviceConfig,
	tr Transport,
	middleware *statesync.Middleware,
	history store.HistoryRepository,
	log *logger.Logger,
) *Orchestrator {
	o := &Orchestrator{
		transport:         tr,
		sync:              middleware,
		history:           history,
		logger:            log.WithComponent("service/orchestrator"),
		deviceID:          cfg.DeviceID,
		connectTimeout:    cfg.Transport.ConnectTimeout,
		heartbeatTimeout:  cfg.Transport.HeartbeatTimeout,
		queueCapacity:     cfg.Transport.QueueCapacity,
		commandTimeout:    cfg.Remote.CommandTimeout,
		reconnectInterval: cfg.Remote.ReconnectInterval,
		pending:           newPendingCalls(),
		reconnect:         newReconnectJob(),
		workspace:         cfg.Workspace,
		masterDeviceID:    cfg.MasterDeviceID,
		servers:           slices.Clone(cfg.Transport.Servers),
		acceptSlaves:      cfg.AcceptSlaves,
	}
	o.handler = o.newRoleHandler(cfg.Role)
	return o
}

// SetDispatcher wires the dispatcher used to execute inbound remote commands
// and to issue the sync-at-connect request.
func (o *Orchestrator) SetDispatcher(d CommandDispatcher) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.dispatcher = d
}

// Start subscribes to transport events. ctx bounds every background
// operation of the orchestrator.
func (o *Orchestrator) Start(ctx context.Context) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.cancel != nil {
		return
	}
	o.ctx, o.cancel = context.WithCancel(ctx)
	o.unsubscribe = []func(){
		o.transport.OnConnected(o.handleConnected),
		o.transport.OnDisconnected(o.handleDisconnected),
		o.transport.OnMessage(o.handleMessage),
	}
}

// Stop cancels reconnects, disconnects and drops the transport subscriptions.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	cancel := o.cancel
	unsubscribe := o.unsubscribe
	o.cancel, o.unsubscribe = nil, nil
	o.autoReconnect = false
	o.mu.Unlock()

	o.reconnect.Stop()
	o.transport.Disconnect("orchestrator stopped")

	for _, fn := range unsubscribe {
		fn()
	}
	if cancel != nil {
		cancel()
	}
	o.sync.SetActive(false)
	o.pending.failAll(ErrPeerNotConnected.Error())
}

// Role returns the current role.
func (o *Orchestrator) Role() models.Role {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.handler.role()
}

// Workspace returns the workspace stamped on untagged commands.
func (o *Orchestrator) Workspace() models.Workspace {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.workspace
}

// ConnectTarget overrides where a slave connects. Empty values keep the
// current setting.
type ConnectTarget struct {
	MasterDeviceID string   `json:"masterDeviceId,omitempty"`
	Servers        []string `json:"servers,omitempty"`
}

// ConnectPeer checks the role's preconditions and runs one connect cycle.
// After it was called, every disconnect or failed attempt schedules another
// attempt until the role is switched, acceptance is disabled or the
// orchestrator stops. Precondition failures change nothing.
func (o *Orchestrator) ConnectPeer(ctx context.Context, target ConnectTarget) error {
	o.mu.Lock()
	if o.cancel == nil {
		o.mu.Unlock()
		return ErrOrchestratorStopped
	}
	if target.MasterDeviceID != "" {
		o.masterDeviceID = target.MasterDeviceID
	}
	if len(target.Servers) > 0 {
		o.servers = slices.Clone(target.Servers)
	}
	o.mu.Unlock()

	if err := o.checkPreconditions(); err != nil {
		return err
	}

	o.mu.Lock()
	o.autoReconnect = true
	o.mu.Unlock()

	o.reconnect.Stop()
	return o.connectOnce(ctx)
}

func (o *Orchestrator) checkPreconditions() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	reasons := o.handler.preconditions()
	if len(o.servers) == 0 {
		reasons = append(reasons, "no relay server address configured")
	}
	if state := o.transport.State(); state != models.StateDisconnected {
		reasons = append(reasons, "connection is "+state.String())
	}
	if len(reasons) > 0 {
		return &PreconditionError{Role: o.handler.role(), Reasons: reasons}
	}
	return nil
}

func (o *Orchestrator) connectOnce(ctx context.Context) error {
	log := o.logger.With().Str("func", "*Orchestrator.connectOnce").Logger()

	if err := o.checkPreconditions(); err != nil {
		return err
	}

	o.mu.Lock()
	o.attempts++
	attempt := o.attempts
	cfg := transport.ConnectConfig{
		Registration:     o.handler.registration(),
		Servers:          slices.Clone(o.servers),
		ConnectTimeout:   o.connectTimeout,
		HeartbeatTimeout: o.heartbeatTimeout,
		QueueCapacity:    o.queueCapacity,
	}
	o.mu.Unlock()

	log.Info().Int("attempt", attempt).Str("role", string(cfg.Registration.Type)).
		Strs("servers", cfg.Servers).Msg("connecting")

	if err := o.transport.Connect(ctx, cfg); err != nil {
		log.Warn().Err(err).Int("attempt", attempt).Msg("connect failed")
		o.mu.Lock()
		o.lastError = err.Error()
		o.mu.Unlock()
		o.scheduleReconnect()
		return err
	}

	return nil
}

func (o *Orchestrator) scheduleReconnect() {
	o.mu.Lock()
	ctx, enabled := o.ctx, o.autoReconnect && o.cancel != nil
	o.mu.Unlock()
	if !enabled {
		return
	}

	o.reconnect.Schedule(ctx, o.reconnectInterval, func(ctx context.Context) {
		err := o.connectOnce(ctx)
		if errors.Is(err, ErrPrecondition) {
			o.logger.Warn().Err(err).Str("func", "*Orchestrator.scheduleReconnect").Msg("reconnect abandoned")
		}
	})
}

func (o *Orchestrator) handleConnected(ev transport.ConnectedEvent) {
	o.mu.Lock()
	o.connectedAt = time.Now()
	o.attempts = 0
	o.lastError = ""
	ctx := o.ctx
	handler := o.handler
	o.mu.Unlock()

	o.logger.Info().Str("func", "*Orchestrator.handleConnected").Str("address", ev.Address).Msg("connected to relay")

	if ctx != nil {
		handler.onConnected(ctx)
	}
}

func (o *Orchestrator) handleDisconnected(ev transport.DisconnectedEvent) {
	log := o.logger.With().Str("func", "*Orchestrator.handleDisconnected").Logger()

	o.mu.Lock()
	entry := models.ConnectionHistoryEntry{
		DeviceID:       o.deviceID,
		Address:        ev.Address,
		ConnectedAt:    o.connectedAt,
		DisconnectedAt: time.Now(),
	}
	if ev.Err != nil {
		entry.Error = ev.Err.Error()
		o.lastError = entry.Error
	}
	o.connectedAt = time.Time{}
	ctx := o.ctx
	handler := o.handler
	o.mu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}

	o.sync.SetActive(false)
	handler.onDisconnected()
	o.pending.failAll(ErrPeerNotConnected.Error())

	if _, err := o.history.Append(ctx, entry); err != nil {
		log.Err(err).Msg("error saving connection history")
	}

	log.Info().Bool("clean", ev.Clean).Str("reason", ev.Reason).AnErr("cause", ev.Err).Msg("disconnected from relay")
	o.scheduleReconnect()
}

func (o *Orchestrator) handleMessage(msg models.Message) {
	log := o.logger.With().Str("func", "*Orchestrator.handleMessage").Str("type", msg.Type).Str("from", msg.From).Logger()

	switch msg.Type {
	case models.TypeRemoteCommand:
		var rc models.RemoteCommand
		if err := json.Unmarshal(msg.Data, &rc); err != nil || rc.CommandID == "" {
			log.Warn().Err(err).Msg("malformed remote command dropped")
			return
		}
		// the handler may itself wait on the peer, so it must not block the read loop
		go o.executeRemote(rc)

	case models.TypeRemoteCommandExecuted:
		var ack models.RemoteCommandExecuted
		if err := json.Unmarshal(msg.Data, &ack); err != nil {
			log.Warn().Err(err).Msg("malformed remote command ack dropped")
			return
		}
		if !o.pending.resolve(ack.CommandID, callResult{err: ack.Error}) {
			log.Debug().Str("command_id", ack.CommandID).Msg("ack without pending call ignored")
		}

	case models.TypeSyncState:
		var payload models.SyncStatePayload
		if err := json.Unmarshal(msg.Data, &payload); err != nil || payload.Key == "" {
			log.Warn().Err(err).Msg("malformed sync payload dropped")
			return
		}
		if err := o.sync.ApplyRemote(payload.Key, payload.Changes); err != nil {
			log.Warn().Err(err).Str("key", payload.Key).Msg("sync payload not applied")
		}

	case models.TypeSlaveConnected, models.TypeSlaveDisconnected:
		o.mu.Lock()
		handler := o.handler
		o.mu.Unlock()
		handler.onSystemMessage(msg)

	default:
		log.Debug().Msg("unhandled message type")
	}
}

func (o *Orchestrator) executeRemote(rc models.RemoteCommand) {
	log := o.logger.With().Str("func", "*Orchestrator.executeRemote").
		Str("command", rc.CommandName).Str("command_id", rc.CommandID).Logger()

	o.mu.Lock()
	ctx, dispatcher := o.ctx, o.dispatcher
	o.mu.Unlock()
	if ctx == nil {
		return
	}

	ack := models.RemoteCommandExecuted{CommandID: rc.CommandID}
	if dispatcher == nil {
		ack.Error = "no command dispatcher"
	} else if err := dispatcher.DispatchRemote(ctx, rc.Command()); err != nil {
		log.Warn().Err(err).Msg("remote command failed")
		ack.Error = err.Error()
	}

	if err := o.transport.Send(models.TypeRemoteCommandExecuted, ack); err != nil {
		log.Warn().Err(err).Msg("error acknowledging remote command")
	}
}

// Status returns the read model shown to the user.
func (o *Orchestrator) Status(ctx context.Context) models.PairStatus {
	o.mu.Lock()
	status := models.PairStatus{
		DeviceID:        o.deviceID,
		Role:            o.handler.role(),
		Workspace:       o.workspace,
		AcceptSlaves:    o.acceptSlaves,
		SlaveConnected:  len(o.slaves) > 0,
		ConnectAttempts: o.attempts,
		LastError:       o.lastError,
	}
	if len(o.slaves) > 0 {
		status.SlaveDeviceID = o.slaves[0]
	}
	if !o.connectedAt.IsZero() {
		connectedAt := o.connectedAt
		status.ConnectedAt = &connectedAt
	}
	o.mu.Unlock()

	status.State = o.transport.State()
	status.SyncActive = o.sync.Active()

	history, err := o.history.List(ctx, o.deviceID, historyLimit)
	if err != nil {
		o.logger.Err(err).Str("func", "*Orchestrator.Status").Msg("error loading connection history")
	}
	status.History = history

	return status
}
