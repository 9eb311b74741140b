// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the pre-connect registration call against a relay.
//
// The primary abstraction is [RegistrationAdapter], which decouples the
// transport client from the HTTP protocol used for the handshake. The package
// ships a resty implementation ([NewHTTPRegistrationAdapter]).
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] (e.g. [ErrConflict] for
// 409, [ErrUnauthorized] for 401). A well-formed response with
// "success": false is reported as [ErrRegistrationRejected].
package adapter

import (
	"context"

	"github.com/MKhiriev/go-pair-link/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/registration_adapter_mock.go -package=mock

// RegistrationAdapter performs the registration handshake against one relay
// candidate.
type RegistrationAdapter interface {
	// Register POSTs reg to <address>/register and returns the relay response.
	// address may be "host:port" or a full http(s) URL. The returned response
	// always has Success set and a non-empty Token when err is nil.
	Register(ctx context.Context, address string, reg models.DeviceRegistration) (models.RegisterResponse, error)
}
