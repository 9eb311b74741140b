// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import "errors"

// Sentinel errors used by the token middleware. Callers can match against
// them with [errors.Is].
var (
	// ErrEmptyToken is returned when the channel request carries neither a
	// "token" query parameter nor a bearer "Authorization" header.
	ErrEmptyToken = errors.New("empty token")

	// ErrInvalidAuthorizationHeader is returned when the "Authorization"
	// header is present but cannot be split into a scheme and a token.
	ErrInvalidAuthorizationHeader = errors.New("invalid `Authorization` header")

	// ErrNoDeviceClaims is returned when a channel request reaches the
	// handler without validated token claims.
	ErrNoDeviceClaims = errors.New("no device claims in request context")
)
