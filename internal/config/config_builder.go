package config

import (
	"errors"
	"fmt"
	"os"

	"dario.cat/mergo"
)

// source is one layer of the merged configuration.
type source struct {
	name string
	cfg  *StructuredConfig
}

// configBuilder merges sources in the order they were added. A later source
// overrides the non-zero fields of the earlier ones.
type configBuilder struct {
	sources []source
	args    []string
	environ map[string]string
	err     error
}

func newConfigBuilder() *configBuilder {
	return &configBuilder{args: os.Args[1:]}
}

func (b *configBuilder) withArgs(args []string) *configBuilder {
	b.args = args
	return b
}

// withEnviron replaces the process environment as the env source.
func (b *configBuilder) withEnviron(environ map[string]string) *configBuilder {
	b.environ = environ
	return b
}

func (b *configBuilder) add(name string, cfg *StructuredConfig, err error) *configBuilder {
	if err != nil {
		b.err = errors.Join(b.err, fmt.Errorf("%s: %w", name, err))
		return b
	}
	b.sources = append(b.sources, source{name: name, cfg: cfg})
	return b
}

func (b *configBuilder) withEnv() *configBuilder {
	cfg, err := parseEnv(b.environ)
	return b.add("env", cfg, err)
}

func (b *configBuilder) withFlags() *configBuilder {
	cfg, err := parseFlags(b.args)
	return b.add("flags", cfg, err)
}

// withJSON loads the file named by the last source that set a path.
func (b *configBuilder) withJSON() *configBuilder {
	if b.err != nil {
		return b
	}

	path := b.jsonPath()
	if path == "" {
		return b
	}
	cfg, err := parseJSON(path)
	return b.add("json", cfg, err)
}

func (b *configBuilder) jsonPath() string {
	for i := len(b.sources) - 1; i >= 0; i-- {
		if path := b.sources[i].cfg.JSONFilePath; path != "" {
			return path
		}
	}
	return ""
}

func (b *configBuilder) build() (*StructuredConfig, error) {
	if b.err != nil {
		return nil, fmt.Errorf("error reading configuration: %w", b.err)
	}

	merged := new(StructuredConfig)
	for _, src := range b.sources {
		if err := mergo.Merge(merged, src.cfg, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("error merging %s configuration: %w", src.name, err)
		}
	}

	return merged, merged.validate()
}
