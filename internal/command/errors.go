package command

import "errors"

var (
	// ErrUnknownCommand is returned when no handler is registered under a name.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrDuplicateCommand is returned when a name is registered twice.
	ErrDuplicateCommand = errors.New("duplicate command")
	// ErrCommandCycle is returned when a command name repeats in its own
	// causation chain.
	ErrCommandCycle = errors.New("command cycle detected")
	// ErrInvalidCommand is returned for a command without a name.
	ErrInvalidCommand = errors.New("invalid command")
)
