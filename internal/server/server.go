package server

import (
	"context"
	"fmt"
	"net"
	"os/signal"
	"sync"
	"syscall"

	"github.com/MKhiriev/go-pair-link/internal/config"
	"github.com/MKhiriev/go-pair-link/internal/handler"
	"github.com/MKhiriev/go-pair-link/internal/logger"
)

type server struct {
	httpServer *httpServer
	address    string
	background Background
	channels   Closer

	stopOnce sync.Once
	stop     chan struct{}

	logger *logger.Logger
}

// NewServer builds the relay server. background runs for the lifetime of the
// server; channels is closed before the HTTP server shuts down.
func NewServer(handlers *handler.Handlers, background Background, channels Closer, cfg config.Relay, logger *logger.Logger) (Server, error) {
	logger.Info().Msg("creating new server...")

	if handlers == nil || handlers.HTTP == nil {
		return nil, errNoServersAreCreated
	}

	return &server{
		httpServer: newHTTPServer(handlers.HTTP.Init(), cfg.Address, logger),
		address:    cfg.Address,
		background: background,
		channels:   channels,
		stop:       make(chan struct{}),
		logger:     logger,
	}, nil
}

func (s *server) RunServer() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		s.logger.Err(err).Str("address", s.address).Msg("error listening")
		return
	}

	if err = s.run(ctx, listener); err != nil {
		s.logger.Err(err).Msg("error running server")
	}
}

// Shutdown makes RunServer return.
func (s *server) Shutdown() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *server) run(ctx context.Context, listener net.Listener) error {
	if s.httpServer == nil {
		return fmt.Errorf("run: %w", errNoServersAreCreated)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	if s.background != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.background.Run(ctx)
		}()
	}

	s.logger.Info().Str("address", listener.Addr().String()).Msg("Launching HTTP server")
	served := make(chan struct{})
	go func() {
		defer close(served)
		s.httpServer.Serve(listener)
	}()

	select {
	case <-ctx.Done():
	case <-s.stop:
	case <-served:
	}

	cancel()
	if s.channels != nil {
		s.channels.Close()
	}
	s.httpServer.Shutdown()
	<-served
	wg.Wait()

	s.logger.Info().Msg("server Shutdown gracefully")
	return nil
}
