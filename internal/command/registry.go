package command

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/MKhiriev/go-pair-link/models"
)

// Handler executes one command.
type Handler func(ctx context.Context, cmd models.Command) error

// Definition binds a stable command name to its handler.
type Definition struct {
	Name    string
	Handler Handler
}

// Registry maps command names to handlers. Names are validated for
// uniqueness when registered.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry registers every definition, failing on the first duplicate.
func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{handlers: make(map[string]Handler, len(defs))}
	for _, def := range defs {
		if err := r.Register(def); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds def. An empty name, a nil handler or an existing name is
// rejected.
func (r *Registry) Register(def Definition) error {
	if def.Name == "" || def.Handler == nil {
		return fmt.Errorf("%w: definition needs a name and a handler", ErrInvalidCommand)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.handlers[def.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateCommand, def.Name)
	}
	r.handlers[def.Name] = def.Handler
	return nil
}

// Lookup returns the handler of name or [ErrUnknownCommand].
func (r *Registry) Lookup(name string) (Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handlers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	return h, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
