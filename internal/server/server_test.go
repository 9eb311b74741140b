package server

import (
	"context"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-pair-link/internal/config"
	"github.com/MKhiriev/go-pair-link/internal/handler"
	"github.com/MKhiriev/go-pair-link/internal/logger"
	"github.com/MKhiriev/go-pair-link/internal/relay"
	"github.com/MKhiriev/go-pair-link/internal/store"
)

type backgroundSpy struct {
	started, stopped atomic.Bool
}

func (b *backgroundSpy) Run(ctx context.Context) {
	b.started.Store(true)
	<-ctx.Done()
	b.stopped.Store(true)
}

type closerSpy struct {
	closed atomic.Bool
}

func (c *closerSpy) Close() {
	c.closed.Store(true)
}

func newTestServer(t *testing.T, background Background, channels Closer) *server {
	t.Helper()

	cfg := config.Relay{Address: "127.0.0.1:0", TokenSignKey: "k", TokenIssuer: "relay", TokenDuration: time.Minute}
	storages, err := store.NewRelayStorages(context.Background(), "", logger.Nop())
	require.NoError(t, err)

	handlers, err := handler.NewHandlers(relay.NewServices(storages, cfg, logger.Nop()), cfg, logger.Nop())
	require.NoError(t, err)

	srv, err := NewServer(handlers, background, channels, cfg, logger.Nop())
	require.NoError(t, err)
	return srv.(*server)
}

func TestNewServer_NoHandlers(t *testing.T) {
	srv, err := NewServer(nil, nil, nil, config.Relay{}, logger.Nop())
	assert.ErrorIs(t, err, errNoServersAreCreated)
	assert.Nil(t, srv)
}

func TestServer_RunAndShutdown(t *testing.T) {
	background := &backgroundSpy{}
	channels := &closerSpy{}
	srv := newTestServer(t, background, channels)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- srv.run(context.Background(), listener) }()

	url := "http://" + listener.Addr().String() + "/health"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, time.Second, 10*time.Millisecond)
	require.Eventually(t, background.started.Load, time.Second, 5*time.Millisecond)

	srv.Shutdown()
	srv.Shutdown()

	select {
	case err = <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	assert.True(t, background.stopped.Load())
	assert.True(t, channels.closed.Load())

	_, err = http.Get(url)
	assert.Error(t, err)
}

func TestServer_StopsWithContext(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.run(ctx, listener) }()

	cancel()
	select {
	case err = <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
