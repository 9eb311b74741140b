package relay

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MKhiriev/go-pair-link/internal/utils"
	"github.com/MKhiriev/go-pair-link/models"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 1 << 20
	sendBuffer     = 256
)

// peer is one attached device. Writes go through send and are performed by
// writePump only.
type peer struct {
	deviceID string
	role     models.Role
	masterID string

	conn Conn
	send chan []byte

	done      chan struct{}
	closeOnce sync.Once
	mu        sync.Mutex
	reason    string
}

func newPeer(claims *utils.DeviceClaims, conn Conn) *peer {
	return &peer{
		deviceID: claims.DeviceID(),
		role:     claims.DeviceType,
		masterID: claims.MasterDeviceID,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		done:     make(chan struct{}),
	}
}

// enqueue hands data to the write pump. A peer that cannot keep up is closed.
func (p *peer) enqueue(data []byte) bool {
	select {
	case <-p.done:
		return false
	default:
	}

	select {
	case p.send <- data:
		return true
	default:
		p.close("send buffer overflow")
		return false
	}
}

// close stops the write pump, which sends a close frame and closes the conn.
func (p *peer) close(reason string) {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.reason = reason
		p.mu.Unlock()
		close(p.done)
	})
}

func (p *peer) closeReason() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reason
}

func (p *peer) writePump() {
	defer p.conn.Close()

	for {
		select {
		case data := <-p.send:
			_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				p.close("write failed")
				return
			}
		case <-p.done:
			_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = p.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, p.closeReason()))
			return
		}
	}
}
