package server

import "context"

// Server defines the lifecycle contract of the relay process.
//
// RunServer blocks until SIGTERM, SIGINT or SIGQUIT arrives and the server
// has shut down; Shutdown stops it from another goroutine.
type Server interface {
	RunServer()
	Shutdown()
}

// Background is work that runs while the server is up, e.g. heartbeats.
type Background interface {
	Run(ctx context.Context)
}

// Closer releases long-lived connections the HTTP server no longer tracks
// after they were hijacked.
type Closer interface {
	Close()
}
