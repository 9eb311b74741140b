package service

import (
	"context"
	"fmt"
	"time"

	"github.com/MKhiriev/go-pair-link/models"
)

// ForwardCommand sends cmd to the peer and waits for its acknowledgment. It
// fails with [ErrPeerNotConnected] when no peer is reachable, with
// [ErrRemoteCallTimeout] when no acknowledgment arrives within the command
// timeout and with [ErrRemoteCommandFailed] when the peer reports an error.
// Side effects of the command reach this instance through state sync.
func (o *Orchestrator) ForwardCommand(ctx context.Context, cmd models.Command) error {
	log := o.logger.With().Str("func", "*Orchestrator.ForwardCommand").
		Str("command", cmd.Name).Str("command_id", cmd.ID).Logger()

	if cmd.ID == "" {
		return fmt.Errorf("%w: forwarded command has no id", ErrInvalidPayload)
	}

	o.mu.Lock()
	attached := o.handler.peerAttached()
	timeout := o.commandTimeout
	o.mu.Unlock()

	if o.transport.State() != models.StateConnected || !attached {
		return ErrPeerNotConnected
	}

	result := o.pending.register(cmd.ID)
	defer o.pending.cancel(cmd.ID)

	if err := o.transport.Send(models.TypeRemoteCommand, models.NewRemoteCommand(cmd)); err != nil {
		log.Warn().Err(err).Msg("error sending remote command")
		return fmt.Errorf("%w: %w", ErrPeerNotConnected, err)
	}

	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-result:
		if res.err != "" {
			return fmt.Errorf("%w: %s: %s", ErrRemoteCommandFailed, cmd.Name, res.err)
		}
		return nil
	case <-timer.C:
		log.Warn().Dur("timeout", timeout).Msg("remote command was not acknowledged")
		return fmt.Errorf("%w: %s after %s", ErrRemoteCallTimeout, cmd.Name, timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}
