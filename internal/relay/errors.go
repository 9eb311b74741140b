// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package relay

import "errors"

var (
	// ErrInvalidRegistration is returned for a registration with an unknown
	// type, an empty device id or a slave without a usable master id.
	ErrInvalidRegistration = errors.New("invalid registration")

	// ErrMasterOffline is returned when a slave names a master that is not
	// attached to the relay.
	ErrMasterOffline = errors.New("master is not online")

	// ErrInvalidToken is returned when a channel token cannot be validated or
	// no longer matches the device's registration.
	ErrInvalidToken = errors.New("invalid or expired token")
)
