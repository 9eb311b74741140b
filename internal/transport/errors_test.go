package transport

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnectionError_MatchesKindAndCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := newConnectionError(KindTransport, "relay:8080", cause)

	assert.ErrorIs(t, err, ErrTransportFailed)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrRegistrationFailed)
	assert.Equal(t, "transport failed (relay:8080): dial tcp: refused", err.Error())
}

func TestConnectionError_WithoutCause(t *testing.T) {
	err := newConnectionError(KindHeartbeatTimeout, "", nil)

	assert.ErrorIs(t, err, ErrHeartbeatTimeout)
	assert.Equal(t, "heartbeat timeout", err.Error())
}

func TestConnectionError_Kinds(t *testing.T) {
	tests := map[ErrorKind]error{
		KindRegistration:     ErrRegistrationFailed,
		KindTransport:        ErrTransportFailed,
		KindAllCandidates:    ErrAllCandidatesFailed,
		KindTimeout:          ErrConnectTimeout,
		KindHeartbeatTimeout: ErrHeartbeatTimeout,
		KindNetwork:          ErrNetwork,
	}

	for kind, want := range tests {
		assert.ErrorIs(t, newConnectionError(kind, "", nil), want)
	}
}

func TestConnectionError_NestedInJoin(t *testing.T) {
	err := newConnectionError(KindAllCandidates, "", errors.Join(
		newConnectionError(KindRegistration, "a:1", errors.New("refused")),
		newConnectionError(KindTimeout, "b:1", nil),
	))

	assert.ErrorIs(t, err, ErrAllCandidatesFailed)
	assert.ErrorIs(t, err, ErrRegistrationFailed)
	assert.ErrorIs(t, err, ErrConnectTimeout)

	var connErr *ConnectionError
	assert.True(t, errors.As(err, &connErr))
	assert.Equal(t, KindAllCandidates, connErr.Kind)
}
