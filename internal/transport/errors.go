package transport

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState is returned when Connect or Send is called in a state
	// that does not accept it.
	ErrInvalidState = errors.New("invalid connection state")
	// ErrClientShutdown is returned by every operation after Shutdown.
	ErrClientShutdown = errors.New("transport client shut down")

	ErrRegistrationFailed  = errors.New("registration failed")
	ErrTransportFailed     = errors.New("transport failed")
	ErrAllCandidatesFailed = errors.New("all server candidates failed")
	ErrConnectTimeout      = errors.New("connect timeout")
	ErrHeartbeatTimeout    = errors.New("heartbeat timeout")
	ErrNetwork             = errors.New("network error")
)

// ErrorKind distinguishes the cause of a [ConnectionError].
type ErrorKind int

const (
	KindRegistration ErrorKind = iota + 1
	KindTransport
	KindAllCandidates
	KindTimeout
	KindHeartbeatTimeout
	KindNetwork
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindRegistration:
		return ErrRegistrationFailed
	case KindTransport:
		return ErrTransportFailed
	case KindAllCandidates:
		return ErrAllCandidatesFailed
	case KindTimeout:
		return ErrConnectTimeout
	case KindHeartbeatTimeout:
		return ErrHeartbeatTimeout
	default:
		return ErrNetwork
	}
}

func (k ErrorKind) String() string {
	return k.sentinel().Error()
}

// ConnectionError is a typed connection failure. It matches the sentinel of
// its Kind and the underlying error with errors.Is.
type ConnectionError struct {
	Kind    ErrorKind
	Address string
	Err     error
}

func (e *ConnectionError) Error() string {
	msg := e.Kind.String()
	if e.Address != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Address)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ConnectionError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind.sentinel()}
	}
	return []error{e.Kind.sentinel(), e.Err}
}

func newConnectionError(kind ErrorKind, address string, err error) *ConnectionError {
	return &ConnectionError{Kind: kind, Address: address, Err: err}
}
