// Package config provides configuration loading, merging, and validation
// facilities for the device and relay binaries.
//
// Configuration is assembled from multiple sources in the following priority
// order (later sources override earlier non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON config file
//
// The main entry points are [GetDeviceConfig] for paired instances and
// [GetRelayConfig] for the relay server. Both apply defaults with mergo and
// validate the resulting view.
package config
