// Package utils provides general-purpose helper utilities
// used across different parts of the application.
// Includes tools for working with context, type-safe keys, id generation,
// HTTP response writing, HTTP client initialization, and relay token
// generation and validation.
package utils

import (
	"context"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// DeviceClaimsCtxKey is the key the relay stores validated token claims
// under.
//
// Example of writing a value to the context:
//
//	ctx := context.WithValue(ctx, utils.DeviceClaimsCtxKey, claims)
var DeviceClaimsCtxKey = contextKey("deviceClaims")

// GetDeviceClaimsFromContext retrieves the validated token claims stored by
// the relay's token middleware.
func GetDeviceClaimsFromContext(ctx context.Context) (*DeviceClaims, bool) {
	claims, ok := ctx.Value(DeviceClaimsCtxKey).(*DeviceClaims)
	return claims, ok && claims != nil
}
