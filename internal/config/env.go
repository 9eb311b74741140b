// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// parseEnv reads the `env` and `envPrefix` tags of [StructuredConfig] from
// environ, or from the process environment when environ is nil.
func parseEnv(environ map[string]string) (*StructuredConfig, error) {
	var opts env.Options
	if environ != nil {
		opts.Environment = environ
	}

	cfg, err := env.ParseAsWithOptions[StructuredConfig](opts)
	if err != nil {
		return nil, fmt.Errorf("error reading environment: %w", err)
	}
	return &cfg, nil
}
