// Package http implements the relay's HTTP layer.
//
// It exposes device registration (POST /register), the duplex channel
// upgrade (GET /ws?token=...) and a health probe (GET /health). Request
// tracing, access logging, panic recovery and token validation are handled
// here before requests reach the relay services.
package http
