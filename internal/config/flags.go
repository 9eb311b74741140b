package config

import (
	"errors"
	"flag"
	"net"
	"strconv"
	"strings"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// serverList collects a comma separated list of relay candidates.
// It implements the flag.Value interface; repeated flags append.
type serverList []string

func (s *serverList) String() string {
	return strings.Join(*s, ",")
}

func (s *serverList) Set(value string) error {
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*s = append(*s, part)
		}
	}
	return nil
}

// parseFlags parses all configuration flags from args.
//
// Flags:
//
//	-role MASTER or SLAVE
//	-device-id local device id
//	-workspace MAIN or BRANCH
//	-master-id master device id (slaves)
//	-accept-slaves enable slave acceptance (masters)
//	-state-keys comma separated synchronizable state keys
//	-servers comma separated relay candidates
//	-connect-timeout per-candidate connect timeout (e.g. "10s")
//	-heartbeat-timeout heartbeat timeout (e.g. "30s")
//	-command-timeout remote command timeout
//	-reconnect-interval pause before reconnecting
//	-d database DSN
//	-a relay listen address in format [host]:[port]
//	-token-sign-key registration token signing key
//	-token-issuer registration token issuer
//	-token-duration registration token duration
//	-heartbeat-interval relay heartbeat interval
//	-log-file log file path
//	-c/-config json file path with configs
func parseFlags(args []string) (*StructuredConfig, error) {
	fs := flag.NewFlagSet("go-pair-link", flag.ContinueOnError)

	var relayAddress NetAddress
	var servers serverList
	var stateKeys serverList
	cfg := &StructuredConfig{}

	fs.StringVar(&cfg.Device.Role, "role", "", "Device role (MASTER or SLAVE)")
	fs.StringVar(&cfg.Device.ID, "device-id", "", "Device id")
	fs.StringVar(&cfg.Device.Workspace, "workspace", "", "Workspace (MAIN or BRANCH)")
	fs.StringVar(&cfg.Device.MasterDeviceID, "master-id", "", "Master device id")
	fs.BoolVar(&cfg.Device.AcceptSlaves, "accept-slaves", false, "Accept slave devices")
	fs.Var(&stateKeys, "state-keys", "Comma separated synchronizable state keys")
	fs.Var(&servers, "servers", "Comma separated relay candidates")
	fs.DurationVar(&cfg.Transport.ConnectTimeout, "connect-timeout", 0, "Per-candidate connect timeout")
	fs.DurationVar(&cfg.Transport.HeartbeatTimeout, "heartbeat-timeout", 0, "Heartbeat timeout")
	fs.DurationVar(&cfg.Remote.CommandTimeout, "command-timeout", 0, "Remote command timeout")
	fs.DurationVar(&cfg.Remote.ReconnectInterval, "reconnect-interval", 0, "Reconnect interval")
	fs.StringVar(&cfg.Storage.DB.DSN, "d", "", "Database DSN")
	fs.Var(&relayAddress, "a", "Relay net address host:port")
	fs.StringVar(&cfg.Relay.TokenSignKey, "token-sign-key", "", "Token signing key")
	fs.StringVar(&cfg.Relay.TokenIssuer, "token-issuer", "", "Token issuer")
	fs.DurationVar(&cfg.Relay.TokenDuration, "token-duration", 0, "Token duration (e.g., 1m)")
	fs.DurationVar(&cfg.Relay.HeartbeatInterval, "heartbeat-interval", 0, "Relay heartbeat interval")
	fs.StringVar(&cfg.LogFile, "log-file", "", "Log file path")
	fs.StringVar(&cfg.JSONFilePath, "c", "", "JSON config file path")
	fs.StringVar(&cfg.JSONFilePath, "config", "", "JSON config file path (alias)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.Relay.Address = relayAddress.String()
	if len(servers) > 0 {
		cfg.Transport.Servers = servers
	}
	if len(stateKeys) > 0 {
		cfg.Device.StateKeys = stateKeys
	}

	return cfg, nil
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost"
// or empty, and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return errors.New("need address in a form `host:port`")
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return err
	}

	if port < 1 || port > 65535 {
		return errors.New("port number is a positive integer up to 65535")
	}

	if host != "localhost" && host != "" {
		if ip := net.ParseIP(host); ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
