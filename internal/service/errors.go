package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-pair-link/models"
)

var (
	// ErrPrecondition is matched by every [*PreconditionError].
	ErrPrecondition = errors.New("connect precondition failed")

	// ErrPeerNotConnected is returned when a command is forwarded while no
	// peer is reachable.
	ErrPeerNotConnected = errors.New("peer not connected")

	// ErrRemoteCallTimeout is returned when the peer does not acknowledge a
	// forwarded command in time.
	ErrRemoteCallTimeout = errors.New("remote call timed out")

	// ErrRemoteCommandFailed is returned when the peer acknowledged a
	// forwarded command with an error.
	ErrRemoteCommandFailed = errors.New("remote command failed")

	// ErrInvalidPayload is returned when a built-in command carries a payload
	// that cannot be decoded.
	ErrInvalidPayload = errors.New("invalid command payload")

	// ErrReconcileDirection is returned when a sync-at-connect request comes
	// from a device of the receiver's own role.
	ErrReconcileDirection = errors.New("sync-at-connect request from the same role")

	// ErrOrchestratorStopped is returned by operations on a stopped orchestrator.
	ErrOrchestratorStopped = errors.New("orchestrator is stopped")
)

// PreconditionError lists every reason a connect attempt was refused.
type PreconditionError struct {
	Role    models.Role
	Reasons []string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s cannot connect: %s", ErrPrecondition, e.Role, strings.Join(e.Reasons, "; "))
}

// Is makes errors.Is(err, ErrPrecondition) succeed.
func (e *PreconditionError) Is(target error) bool {
	return target == ErrPrecondition
}
