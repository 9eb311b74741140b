// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container shared by the
// device and relay binaries. It is populated by merging values from
// environment variables, command-line flags, and an optional JSON file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// Device holds the local identity of a paired instance.
	Device Device `envPrefix:"DEVICE_"`

	// Transport holds the relay candidates and transport client limits.
	Transport Transport `envPrefix:"TRANSPORT_"`

	// Sync holds the sync retry queue settings.
	Sync Sync `envPrefix:"SYNC_"`

	// Remote holds remote command and reconnect settings.
	Remote Remote `envPrefix:"REMOTE_"`

	// Storage holds the database settings. The device stores its connection
	// history in SQLite, the relay its registrations in PostgreSQL.
	Storage Storage `envPrefix:"STORAGE_"`

	// Relay holds the relay server settings.
	Relay Relay `envPrefix:"RELAY_"`

	// LogFile is an optional path log output is appended to.
	// Env: LOG_FILE
	LogFile string `env:"LOG_FILE"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// Device describes the local instance.
type Device struct {
	// Role is MASTER or SLAVE.
	// Env: DEVICE_ROLE
	Role string `env:"ROLE"`

	// ID is the stable device identifier offered at registration.
	// Env: DEVICE_ID
	ID string `env:"ID"`

	// Workspace is MAIN or BRANCH.
	// Env: DEVICE_WORKSPACE
	Workspace string `env:"WORKSPACE"`

	// MasterDeviceID is the master a slave pairs with.
	// Env: DEVICE_MASTER_ID
	MasterDeviceID string `env:"MASTER_ID"`

	// AcceptSlaves enables slave acceptance on a master.
	// Env: DEVICE_ACCEPT_SLAVES
	AcceptSlaves bool `env:"ACCEPT_SLAVES"`

	// StateKeys lists the synchronizable state keys.
	// Env: DEVICE_STATE_KEYS (comma separated)
	StateKeys []string `env:"STATE_KEYS" envSeparator:","`
}

// Transport holds transport client settings.
type Transport struct {
	// Servers is the ordered list of relay candidates (host:port or URL).
	// Env: TRANSPORT_SERVERS (comma separated)
	Servers []string `env:"SERVERS" envSeparator:","`

	// ConnectTimeout bounds registration + socket open per candidate.
	// Env: TRANSPORT_CONNECT_TIMEOUT
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT"`

	// HeartbeatTimeout is the maximum silence tolerated from the relay.
	// Env: TRANSPORT_HEARTBEAT_TIMEOUT
	HeartbeatTimeout time.Duration `env:"HEARTBEAT_TIMEOUT"`

	// QueueCapacity bounds messages queued while registering/connecting.
	// Env: TRANSPORT_QUEUE_CAPACITY
	QueueCapacity int `env:"QUEUE_CAPACITY"`

	// DedupCapacity bounds the inbound message id cache.
	// Env: TRANSPORT_DEDUP_CAPACITY
	DedupCapacity int `env:"DEDUP_CAPACITY"`

	// DedupTTL is how long a seen message id is remembered.
	// Env: TRANSPORT_DEDUP_TTL
	DedupTTL time.Duration `env:"DEDUP_TTL"`
}

// Sync holds retry queue settings.
type Sync struct {
	// RetryDelay is the pause before each retry cycle.
	// Env: SYNC_RETRY_DELAY
	RetryDelay time.Duration `env:"RETRY_DELAY"`

	// MaxRetries is how often an item is resent before it is dropped.
	// Env: SYNC_MAX_RETRIES
	MaxRetries int `env:"MAX_RETRIES"`

	// QueueCapacity bounds the number of pending keys.
	// Env: SYNC_QUEUE_CAPACITY
	QueueCapacity int `env:"QUEUE_CAPACITY"`
}

// Remote holds remote invocation settings.
type Remote struct {
	// CommandTimeout bounds the wait for a REMOTE_COMMAND_EXECUTED ack.
	// Env: REMOTE_COMMAND_TIMEOUT
	CommandTimeout time.Duration `env:"COMMAND_TIMEOUT"`

	// ReconnectInterval is the pause before a reconnect attempt.
	// Env: REMOTE_RECONNECT_INTERVAL
	ReconnectInterval time.Duration `env:"RECONNECT_INTERVAL"`
}

// Storage groups the configuration for storage backends.
type Storage struct {
	// DB holds the database connection settings.
	DB DB `envPrefix:"DB_"`
}

// DB holds connection settings for the relational database backend.
type DB struct {
	// DSN is the data source name. A "postgres://" DSN selects PostgreSQL,
	// anything else is treated as a SQLite file path. Empty keeps data in memory.
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Relay holds settings of the relay server.
type Relay struct {
	// Address is the TCP address the relay listens on, "host:port".
	// Env: RELAY_ADDRESS
	Address string `env:"ADDRESS"`

	// TokenSignKey signs registration tokens.
	// Env: RELAY_TOKEN_SIGN_KEY
	TokenSignKey string `env:"TOKEN_SIGN_KEY"`

	// TokenIssuer is the "iss" claim of registration tokens.
	// Env: RELAY_TOKEN_ISSUER
	TokenIssuer string `env:"TOKEN_ISSUER"`

	// TokenDuration is how long a registration token may be redeemed.
	// Env: RELAY_TOKEN_DURATION
	TokenDuration time.Duration `env:"TOKEN_DURATION"`

	// HeartbeatInterval is how often the relay pings attached devices.
	// Env: RELAY_HEARTBEAT_INTERVAL
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL"`

	// RequestTimeout bounds a single HTTP request.
	// Env: RELAY_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// GetStructuredConfig loads, merges, and validates the configuration from
// all available sources in the following priority order (last source wins
// for non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		build()
}
