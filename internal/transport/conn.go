package transport

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MKhiriev/go-pair-link/internal/adapter"
)

// Conn is the duplex channel. *websocket.Conn satisfies it.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Dialer opens the duplex channel at a fully qualified ws(s) URL.
type Dialer interface {
	Dial(ctx context.Context, wsURL string) (Conn, error)
}

type websocketDialer struct {
	dialer *websocket.Dialer
}

// NewWebSocketDialer returns a gorilla/websocket backed [Dialer].
func NewWebSocketDialer() Dialer {
	return &websocketDialer{dialer: &websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
		ReadBufferSize:   4096,
		WriteBufferSize:  4096,
	}}
}

func (d *websocketDialer) Dial(ctx context.Context, wsURL string) (Conn, error) {
	conn, resp, err := d.dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket handshake: status %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("websocket dial: %w", err)
	}

	return conn, nil
}

// WebSocketURL builds <ws-scheme>://<host>/ws?token=<token> for a relay
// address given as "host:port" or http(s)/ws(s) URL.
func WebSocketURL(address, token string) (string, error) {
	base, err := adapter.NormalizeBaseURL(address)
	if err != nil {
		return "", err
	}

	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}

	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	u.RawQuery = url.Values{"token": []string{token}}.Encode()

	return u.String(), nil
}
