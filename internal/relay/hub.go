package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/MKhiriev/go-pair-link/internal/logger"
	"github.com/MKhiriev/go-pair-link/internal/utils"
	"github.com/MKhiriev/go-pair-link/models"
)

// relaySender is the "from" of envelopes the relay originates.
const relaySender = "relay"

// Hub tracks attached devices and routes envelopes between them: a Master's
// envelopes go to every Slave attached for it, a Slave's go to its Master.
type Hub struct {
	slaves SlaveLister
	ids    IDGenerator
	logger *logger.Logger

	mu    sync.RWMutex
	peers map[string]*peer
}

// NewHub constructs an empty [Hub]. slaves is consulted when a Master
// attaches to report the Slaves that are already online.
func NewHub(slaves SlaveLister, ids IDGenerator, log *logger.Logger) *Hub {
	return &Hub{
		slaves: slaves,
		ids:    ids,
		logger: log.WithComponent("relay/hub"),
		peers:  make(map[string]*peer),
	}
}

// Online reports whether deviceID is attached and in which role.
func (h *Hub) Online(deviceID string) (models.Role, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	p, ok := h.peers[deviceID]
	if !ok {
		return "", false
	}
	return p.role, true
}

// Stats returns the number of attached masters and slaves.
func (h *Hub) Stats() models.RelayHealth {
	h.mu.RLock()
	defer h.mu.RUnlock()

	health := models.RelayHealth{Status: "ok"}
	for _, p := range h.peers {
		if p.role == models.RoleMaster {
			health.Masters++
		} else {
			health.Slaves++
		}
	}
	return health
}

// Serve attaches the device described by claims and pumps conn until either
// side closes it. A device that attaches again replaces its previous channel.
// A Slave whose Master is not attached is refused with [ErrMasterOffline].
func (h *Hub) Serve(ctx context.Context, claims *utils.DeviceClaims, conn Conn) error {
	log := h.logger.With().Str("func", "*Hub.Serve").
		Str("device_id", claims.DeviceID()).Str("type", string(claims.DeviceType)).Logger()

	p := newPeer(claims, conn)
	conn.SetReadLimit(maxMessageSize)

	if err := h.attach(p); err != nil {
		log.Warn().Err(err).Msg("attach refused")
		p.close(err.Error())
		p.writePump()
		return err
	}

	go p.writePump()
	log.Info().Msg("device attached")

	h.announce(ctx, p)
	h.readLoop(p)
	h.detach(p)

	log.Info().Str("reason", p.closeReason()).Msg("device detached")
	return nil
}

// Heartbeat sends a relay heartbeat to every attached device.
func (h *Hub) Heartbeat(context.Context) {
	h.mu.RLock()
	peers := make([]*peer, 0, len(h.peers))
	for _, p := range h.peers {
		peers = append(peers, p)
	}
	h.mu.RUnlock()

	for _, p := range peers {
		h.sendSystem(p, models.TypeHeartbeat, nil)
	}
}

// Close detaches every device.
func (h *Hub) Close() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, p := range h.peers {
		p.close("relay shutting down")
	}
}

func (h *Hub) attach(p *peer) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if p.role == models.RoleSlave {
		master, ok := h.peers[p.masterID]
		if !ok || master.role != models.RoleMaster {
			return fmt.Errorf("%w: %s", ErrMasterOffline, p.masterID)
		}
	}

	if previous, ok := h.peers[p.deviceID]; ok {
		previous.close("replaced by a new connection")
	}
	h.peers[p.deviceID] = p
	return nil
}

// announce tells a Master which of its Slaves are online, or a Master that
// its Slave attached.
func (h *Hub) announce(ctx context.Context, p *peer) {
	if p.role == models.RoleSlave {
		h.notifyMaster(p, models.TypeSlaveConnected)
		return
	}

	registered, err := h.slaves.ListSlaves(ctx, p.deviceID)
	if err != nil {
		h.logger.Err(err).Str("func", "*Hub.announce").Str("device_id", p.deviceID).Msg("error listing slaves")
		return
	}

	h.mu.RLock()
	online := make([]string, 0, len(registered))
	for _, device := range registered {
		if slave, ok := h.peers[device.DeviceID]; ok && slave.role == models.RoleSlave && slave.masterID == p.deviceID {
			online = append(online, device.DeviceID)
		}
	}
	h.mu.RUnlock()

	for _, id := range online {
		h.sendSystem(p, models.TypeSlaveConnected, models.SlaveNotice{DeviceID: id})
	}
}

func (h *Hub) readLoop(p *peer) {
	log := h.logger.With().Str("func", "*Hub.readLoop").Str("device_id", p.deviceID).Logger()

	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Msg("read failed")
			}
			p.close("connection closed by device")
			return
		}

		var msg models.Message
		if err = json.Unmarshal(data, &msg); err != nil || msg.Type == "" {
			log.Warn().Err(err).Msg("malformed envelope dropped")
			continue
		}

		switch msg.Type {
		case models.TypeHeartbeatAck, models.TypeHeartbeat:
			continue
		case models.TypeSlaveConnected, models.TypeSlaveDisconnected:
			log.Warn().Str("type", msg.Type).Msg("device sent a relay notice, dropped")
			continue
		}

		h.route(p, msg)
	}
}

func (h *Hub) route(from *peer, msg models.Message) {
	msg.From = from.deviceID
	if msg.ID == "" {
		msg.ID = h.ids.Generate()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Err(err).Str("func", "*Hub.route").Msg("error encoding envelope")
		return
	}

	targets := h.targets(from)
	if len(targets) == 0 {
		h.logger.Debug().Str("func", "*Hub.route").Str("from", from.deviceID).Str("type", msg.Type).Msg("no peer attached, envelope dropped")
		return
	}
	for _, target := range targets {
		target.enqueue(data)
	}
}

func (h *Hub) targets(from *peer) []*peer {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if from.role == models.RoleSlave {
		if master, ok := h.peers[from.masterID]; ok && master.role == models.RoleMaster {
			return []*peer{master}
		}
		return nil
	}

	var out []*peer
	for _, p := range h.peers {
		if p.role == models.RoleSlave && p.masterID == from.deviceID {
			out = append(out, p)
		}
	}
	return out
}

func (h *Hub) detach(p *peer) {
	h.mu.Lock()
	if h.peers[p.deviceID] != p {
		// replaced; the new channel owns the device id
		h.mu.Unlock()
		return
	}
	delete(h.peers, p.deviceID)

	var orphans []*peer
	if p.role == models.RoleMaster {
		for _, slave := range h.peers {
			if slave.role == models.RoleSlave && slave.masterID == p.deviceID {
				orphans = append(orphans, slave)
			}
		}
	}
	h.mu.Unlock()

	if p.role == models.RoleSlave {
		h.notifyMaster(p, models.TypeSlaveDisconnected)
	}
	for _, slave := range orphans {
		slave.close("master detached")
	}
}

func (h *Hub) notifyMaster(slave *peer, msgType string) {
	h.mu.RLock()
	master, ok := h.peers[slave.masterID]
	h.mu.RUnlock()
	if !ok || master.role != models.RoleMaster {
		return
	}
	h.sendSystem(master, msgType, models.SlaveNotice{DeviceID: slave.deviceID})
}

func (h *Hub) sendSystem(p *peer, msgType string, data any) {
	msg := models.Message{From: relaySender, ID: h.ids.Generate(), Type: msgType}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			h.logger.Err(err).Str("func", "*Hub.sendSystem").Msg("error encoding notice")
			return
		}
		msg.Data = raw
	}

	envelope, err := json.Marshal(msg)
	if err != nil {
		h.logger.Err(err).Str("func", "*Hub.sendSystem").Msg("error encoding envelope")
		return
	}
	p.enqueue(envelope)
}
