package command

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"

	"github.com/MKhiriev/go-pair-link/internal/logger"
	"github.com/MKhiriev/go-pair-link/models"
)

// NameSendToRemote is the wrapper command that forwards another command to
// the peer.
const NameSendToRemote = "SendToRemote"

// Converter rewrites a command before it is dispatched. The context carries
// the causation chain of the command's ancestors.
type Converter interface {
	Convert(ctx context.Context, cmd models.Command) (models.Command, error)
}

// ConverterFunc adapts a function to [Converter].
type ConverterFunc func(ctx context.Context, cmd models.Command) (models.Command, error)

func (f ConverterFunc) Convert(ctx context.Context, cmd models.Command) (models.Command, error) {
	return f(ctx, cmd)
}

// Pipeline applies converters in order.
type Pipeline struct {
	converters []Converter
}

// NewPipeline constructs a pipeline running converters in the given order.
func NewPipeline(converters ...Converter) *Pipeline {
	return &Pipeline{converters: converters}
}

// Convert runs every converter; the first error stops the pipeline.
func (p *Pipeline) Convert(ctx context.Context, cmd models.Command) (models.Command, error) {
	var err error
	for _, c := range p.converters {
		if cmd, err = c.Convert(ctx, cmd); err != nil {
			return models.Command{}, err
		}
	}
	return cmd, nil
}

// Identity exposes the current role and workspace of the instance.
type Identity interface {
	Role() models.Role
	Workspace() models.Workspace
}

// IDGenerator issues unique command ids.
type IDGenerator interface {
	Generate() string
}

// TagConverter stamps the instance's role and workspace onto commands that
// carry no such tag.
type TagConverter struct {
	identity Identity
}

// NewTagConverter constructs a [TagConverter].
func NewTagConverter(identity Identity) *TagConverter {
	return &TagConverter{identity: identity}
}

func (c *TagConverter) Convert(_ context.Context, cmd models.Command) (models.Command, error) {
	if cmd.ExtraValue(models.ExtraRole) == "" {
		cmd = cmd.WithExtra(models.ExtraRole, string(c.identity.Role()))
	}
	if cmd.ExtraValue(models.ExtraWorkspace) == "" {
		cmd = cmd.WithExtra(models.ExtraWorkspace, string(c.identity.Workspace()))
	}
	return cmd, nil
}

// RoleRedirectConverter replaces a command tagged with another role by a
// [NameSendToRemote] wrapper. Commands without a role tag, or tagged with
// the instance's own role, pass unchanged.
type RoleRedirectConverter struct {
	identity Identity
	ids      IDGenerator
	logger   *logger.Logger
}

// NewRoleRedirectConverter constructs a [RoleRedirectConverter].
func NewRoleRedirectConverter(identity Identity, ids IDGenerator, log *logger.Logger) *RoleRedirectConverter {
	return &RoleRedirectConverter{
		identity: identity,
		ids:      ids,
		logger:   log.WithComponent("command/redirect"),
	}
}

func (c *RoleRedirectConverter) Convert(ctx context.Context, cmd models.Command) (models.Command, error) {
	target := cmd.ExtraValue(models.ExtraRole)
	own := c.identity.Role()
	if target == "" || models.Role(target) == own || cmd.Name == NameSendToRemote {
		return cmd, nil
	}

	// the peer dispatches cmd under the same ancestors; the wrapper is local
	ancestors := ChainFromContext(ctx)
	forwarded := cmd.WithExtra(models.ExtraCausation, ancestors.String())
	if len(ancestors.names) == 0 {
		delete(forwarded.Extra, models.ExtraCausation)
	}

	payload, err := json.Marshal(models.SendToRemotePayload{Command: forwarded})
	if err != nil {
		return models.Command{}, fmt.Errorf("error encoding %s payload: %w", NameSendToRemote, err)
	}

	wrapper := models.Command{
		ID:        c.ids.Generate(),
		Name:      NameSendToRemote,
		Payload:   payload,
		RequestID: cmd.RequestID,
		SessionID: cmd.SessionID,
		Extra:     maps.Clone(cmd.Extra),
	}

	c.logger.Debug().Str("func", "*RoleRedirectConverter.Convert").
		Str("command", cmd.Name).Str("command_id", cmd.ID).
		Str("target_role", target).Str("own_role", string(own)).
		Msg("command redirected to peer")

	return wrapper, nil
}
