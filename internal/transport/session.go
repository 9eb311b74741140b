package transport

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	closeFrameWait = time.Second
)

// session owns the resources of one established connection. Every timer and
// goroutine started for the connection stops when done is closed.
type session struct {
	conn      Conn
	address   string
	heartbeat *heartbeatMonitor

	writeMu sync.Mutex

	done      chan struct{}
	closeOnce sync.Once
}

func newSession(conn Conn, address string) *session {
	return &session{
		conn:    conn,
		address: address,
		done:    make(chan struct{}),
	}
}

func (s *session) write(data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.writeLocked(data)
}

func (s *session) writeLocked(data []byte) error {
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// close stops the heartbeat monitor and sweeper and closes the socket. With
// graceful set, a normal close frame is attempted first.
func (s *session) close(graceful bool) {
	s.closeOnce.Do(func() {
		if s.heartbeat != nil {
			s.heartbeat.stop()
		}
		close(s.done)

		if graceful {
			frame := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = s.conn.WriteControl(websocket.CloseMessage, frame, time.Now().Add(closeFrameWait))
		}
		_ = s.conn.Close()
	})
}
