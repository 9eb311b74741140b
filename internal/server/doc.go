// Package server runs the relay: the HTTP server, its background workers and
// signal-driven graceful shutdown.
package server
