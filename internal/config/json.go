package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig mirrors [StructuredConfig] for the JSON config file.
// Durations are accepted as strings ("30s") or as nanosecond numbers.
type StructuredJSONConfig struct {
	Device struct {
		Role           string   `json:"role"`
		ID             string   `json:"id"`
		Workspace      string   `json:"workspace"`
		MasterDeviceID string   `json:"master_device_id"`
		AcceptSlaves   bool     `json:"accept_slaves"`
		StateKeys      []string `json:"state_keys"`
	} `json:"device,omitempty"`

	Transport struct {
		Servers          []string `json:"servers"`
		ConnectTimeout   Duration `json:"connect_timeout"`
		HeartbeatTimeout Duration `json:"heartbeat_timeout"`
		QueueCapacity    int      `json:"queue_capacity"`
		DedupCapacity    int      `json:"dedup_capacity"`
		DedupTTL         Duration `json:"dedup_ttl"`
	} `json:"transport,omitempty"`

	Sync struct {
		RetryDelay    Duration `json:"retry_delay"`
		MaxRetries    int      `json:"max_retries"`
		QueueCapacity int      `json:"queue_capacity"`
	} `json:"sync,omitempty"`

	Remote struct {
		CommandTimeout    Duration `json:"command_timeout"`
		ReconnectInterval Duration `json:"reconnect_interval"`
	} `json:"remote,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Relay struct {
		Address           string   `json:"address"`
		TokenSignKey      string   `json:"token_sign_key"`
		TokenIssuer       string   `json:"token_issuer"`
		TokenDuration     Duration `json:"token_duration"`
		HeartbeatInterval Duration `json:"heartbeat_interval"`
		RequestTimeout    Duration `json:"request_timeout"`
	} `json:"relay,omitempty"`

	LogFile string `json:"log_file"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		Device: Device{
			Role:           jsonCfg.Device.Role,
			ID:             jsonCfg.Device.ID,
			Workspace:      jsonCfg.Device.Workspace,
			MasterDeviceID: jsonCfg.Device.MasterDeviceID,
			AcceptSlaves:   jsonCfg.Device.AcceptSlaves,
			StateKeys:      jsonCfg.Device.StateKeys,
		},
		Transport: Transport{
			Servers:          jsonCfg.Transport.Servers,
			ConnectTimeout:   time.Duration(jsonCfg.Transport.ConnectTimeout),
			HeartbeatTimeout: time.Duration(jsonCfg.Transport.HeartbeatTimeout),
			QueueCapacity:    jsonCfg.Transport.QueueCapacity,
			DedupCapacity:    jsonCfg.Transport.DedupCapacity,
			DedupTTL:         time.Duration(jsonCfg.Transport.DedupTTL),
		},
		Sync: Sync{
			RetryDelay:    time.Duration(jsonCfg.Sync.RetryDelay),
			MaxRetries:    jsonCfg.Sync.MaxRetries,
			QueueCapacity: jsonCfg.Sync.QueueCapacity,
		},
		Remote: Remote{
			CommandTimeout:    time.Duration(jsonCfg.Remote.CommandTimeout),
			ReconnectInterval: time.Duration(jsonCfg.Remote.ReconnectInterval),
		},
		Storage: Storage{
			DB: DB{
				DSN: jsonCfg.Storage.DB.DSN,
			},
		},
		Relay: Relay{
			Address:           jsonCfg.Relay.Address,
			TokenSignKey:      jsonCfg.Relay.TokenSignKey,
			TokenIssuer:       jsonCfg.Relay.TokenIssuer,
			TokenDuration:     time.Duration(jsonCfg.Relay.TokenDuration),
			HeartbeatInterval: time.Duration(jsonCfg.Relay.HeartbeatInterval),
			RequestTimeout:    time.Duration(jsonCfg.Relay.RequestTimeout),
		},
		LogFile:      jsonCfg.LogFile,
		JSONFilePath: "",
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
