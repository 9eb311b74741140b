package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MKhiriev/go-pair-link/models"
)

// DeviceClaims are the claims of a relay registration token. The subject is
// the device id.
type DeviceClaims struct {
	jwt.RegisteredClaims
	DeviceType     models.Role `json:"type"`
	MasterDeviceID string      `json:"masterDeviceId,omitempty"`
}

// DeviceID returns the token subject.
func (c *DeviceClaims) DeviceID() string {
	return c.Subject
}

// GenerateDeviceToken creates a signed HMAC-SHA256 JWT for a registered device.
//
// The token includes the following claims:
//   - Issuer    (iss): identifies the relay that issued the token
//   - Subject   (sub): the device id
//   - IssuedAt  (iat): the current time
//   - ExpiresAt (exp): the current time plus tokenDuration
//   - type, masterDeviceId: the registration identity
//
// Returns an error if issuer, device id, duration or key are empty or zero.
//
// Example usage:
//
//	token, err := utils.GenerateDeviceToken("relay", reg, time.Minute, "secret")
func GenerateDeviceToken(issuer string, reg models.DeviceRegistration, tokenDuration time.Duration, signKey string) (string, error) {
	if issuer == "" || reg.DeviceID == "" || tokenDuration == 0 || signKey == "" {
		return "", errors.New("invalid params for generating JWT Token")
	}

	now := time.Now()
	claims := &DeviceClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   reg.DeviceID,
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		DeviceType:     reg.Type,
		MasterDeviceID: reg.MasterDeviceID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(signKey))
	if err != nil {
		return "", fmt.Errorf("error occurred during singing JWT token: %w", err)
	}

	return tokenString, nil
}

// ValidateDeviceToken verifies signature, issuer and expiry of tokenString
// and returns its claims. The subject and device type must be present.
func ValidateDeviceToken(tokenString, tokenSignKey, tokenIssuer string) (*DeviceClaims, error) {
	claims := &DeviceClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return []byte(tokenSignKey), nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("error occurred validating and parsing token: %w", err)
	}

	if claims.Subject == "" {
		return nil, errors.New("empty subject error")
	}

	if !claims.DeviceType.Valid() {
		return nil, fmt.Errorf("unknown device type %q in token", claims.DeviceType)
	}

	return claims, nil
}
