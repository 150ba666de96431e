package testutil

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/plugdef/internal/compiler"
	"github.com/vk/plugdef/internal/config"
	"github.com/vk/plugdef/internal/hcladapter"
	"github.com/vk/plugdef/internal/registry"
)

// Load parses in-memory files, ordered by name.
func Load(ctx context.Context, files map[string]string) (*config.Model, config.Converter, error) {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	sources := make([]hcladapter.Source, 0, len(names))
	for _, name := range names {
		sources = append(sources, hcladapter.Source{Filename: name, Content: []byte(files[name])})
	}
	return hcladapter.NewLoader().LoadSources(ctx, sources...)
}

// TryCompile loads and compiles files against a registry populated by modules.
func TryCompile(ctx context.Context, files map[string]string, modules ...registry.Module) (*compiler.Catalog, error) {
	model, converter, err := Load(ctx, files)
	if err != nil {
		return nil, err
	}
	reg := registry.New()
	for _, mod := range modules {
		mod.Register(reg)
	}
	if err := reg.Validate(ctx); err != nil {
		return nil, err
	}
	return compiler.New(reg, converter).CompileAll(ctx, model.Definitions)
}

// Compile is TryCompile for tests that expect success.
func Compile(t *testing.T, files map[string]string, modules ...registry.Module) *compiler.Catalog {
	t.Helper()
	ctx, _ := Context(t)
	catalog, err := TryCompile(ctx, files, modules...)
	require.NoError(t, err)
	return catalog
}

// MustPlugin returns the named plugin of a catalog.
func MustPlugin(t *testing.T, catalog *compiler.Catalog, name string) *compiler.Plugin {
	t.Helper()
	p, ok := catalog.Lookup(name)
	require.True(t, ok, "plugin %q was not compiled", name)
	return p
}
