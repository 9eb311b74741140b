package command

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-pair-link/internal/logger"
	"github.com/MKhiriev/go-pair-link/models"
)

// Dispatcher runs every locally issued command through the conversion
// pipeline and then its registered handler.
type Dispatcher struct {
	registry *Registry
	pipeline *Pipeline
	ids      IDGenerator
	logger   *logger.Logger
}

// NewDispatcher constructs a [Dispatcher].
func NewDispatcher(registry *Registry, pipeline *Pipeline, ids IDGenerator, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		pipeline: pipeline,
		ids:      ids,
		logger:   log.WithComponent("command/dispatcher"),
	}
}

// Dispatch converts and executes cmd. A command without an id gets one. A
// name that already appears in the causation chain of ctx fails with
// [ErrCommandCycle] before anything runs.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd models.Command) error {
	return d.dispatch(ctx, cmd, false)
}

// DispatchRemote executes a command received from the peer. Its causation
// chain is restored from the command's metadata. A received command that
// would be forwarded straight back fails with [ErrCommandCycle]; commands
// its handler issues may still go to the peer.
func (d *Dispatcher) DispatchRemote(ctx context.Context, cmd models.Command) error {
	chain := ParseChain(cmd.ExtraValue(models.ExtraCausation))
	return d.dispatch(WithChain(ctx, chain), cmd, true)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmd models.Command, remote bool) error {
	if cmd.Name == "" {
		return ErrInvalidCommand
	}
	if cmd.ID == "" {
		cmd.ID = d.ids.Generate()
	}

	ancestors := ChainFromContext(ctx)
	if ancestors.Contains(cmd.Name) {
		return fmt.Errorf("%w: %s after %s", ErrCommandCycle, cmd.Name, ancestors)
	}

	converted, err := d.pipeline.Convert(WithChain(ctx, ancestors), cmd)
	if err != nil {
		return fmt.Errorf("error converting %s: %w", cmd.Name, err)
	}

	if remote && converted.Name == NameSendToRemote {
		return fmt.Errorf("%w: %s received from peer would be sent back", ErrCommandCycle, cmd.Name)
	}

	chain := ancestors.With(cmd.Name)
	if converted.Name != cmd.Name {
		if chain.Contains(converted.Name) {
			return fmt.Errorf("%w: %s after %s", ErrCommandCycle, converted.Name, chain)
		}
		chain = chain.With(converted.Name)
	}

	handler, err := d.registry.Lookup(converted.Name)
	if err != nil {
		return err
	}

	d.logger.Debug().Str("func", "*Dispatcher.Dispatch").
		Str("command", converted.Name).Str("command_id", converted.ID).
		Str("chain", chain.String()).Msg("dispatching command")

	return handler(WithChain(ctx, chain), converted)
}
