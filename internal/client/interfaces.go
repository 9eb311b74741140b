// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"
	"io"

	"github.com/MKhiriev/go-pair-link/models"
)

// Client defines the lifecycle contract of a runnable device.
type Client interface {
	// Run starts the device and blocks until ctx is done.
	Run(ctx context.Context) error
	// Dispatch issues a command through the conversion pipeline.
	Dispatch(ctx context.Context, cmd models.Command) error
	// RunConsole serves JSON commands read from in until EOF or ctx is done.
	RunConsole(ctx context.Context, in io.Reader, out io.Writer) error
}
