package command

import (
	"context"
	"slices"
	"strings"
)

// Chain is the read-only list of ancestor command names of a dispatch.
type Chain struct {
	names []string
}

// ParseChain decodes the comma separated form produced by [Chain.String].
func ParseChain(s string) Chain {
	if s == "" {
		return Chain{}
	}
	return Chain{names: strings.Split(s, ",")}
}

// With returns a new chain extended by name.
func (c Chain) With(name string) Chain {
	names := make([]string, 0, len(c.names)+1)
	names = append(names, c.names...)
	return Chain{names: append(names, name)}
}

// Contains reports whether name is an ancestor.
func (c Chain) Contains(name string) bool {
	return slices.Contains(c.names, name)
}

// Names returns a copy of the ancestor names, oldest first.
func (c Chain) Names() []string {
	return slices.Clone(c.names)
}

func (c Chain) String() string {
	return strings.Join(c.names, ",")
}

type chainCtxKey struct{}

// WithChain stores c in ctx.
func WithChain(ctx context.Context, c Chain) context.Context {
	return context.WithValue(ctx, chainCtxKey{}, c)
}

// ChainFromContext returns the chain stored in ctx, or an empty chain.
func ChainFromContext(ctx context.Context) Chain {
	c, _ := ctx.Value(chainCtxKey{}).(Chain)
	return c
}
