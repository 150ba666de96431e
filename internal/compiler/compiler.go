package compiler

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/hcl/v2"
	"github.com/vk/plugdef/internal/config"
	"github.com/vk/plugdef/internal/ctxlog"
	"github.com/vk/plugdef/internal/host"
	"github.com/vk/plugdef/internal/registry"
	"github.com/vk/plugdef/internal/typeinfo"
)

// Compiler compiles definitions against a registry.
type Compiler struct {
	registry  *registry.Registry
	converter config.Converter
}

// New creates a compiler. The converter decodes literal factory arguments.
func New(reg *registry.Registry, converter config.Converter) *Compiler {
	return &Compiler{registry: reg, converter: converter}
}

// Catalog is the set of plugins compiled together, in definition order.
type Catalog struct {
	plugins []*Plugin
	byName  map[string]*Plugin
}

// Plugins returns every compiled plugin in definition order.
func (c *Catalog) Plugins() []*Plugin {
	return append([]*Plugin(nil), c.plugins...)
}

// Lookup finds a compiled plugin by name.
func (c *Catalog) Lookup(name string) (*Plugin, bool) {
	p, ok := c.byName[name]
	return p, ok
}

// Len is the number of compiled plugins.
func (c *Catalog) Len() int {
	return len(c.plugins)
}

// scope resolves plugin names: definitions compiled together first, then
// plugins registered in Go.
type scope struct {
	reg     *registry.Registry
	catalog map[string]*Plugin
}

func (s scope) plugin(name string) (host.Plugin, bool) {
	if p, ok := s.catalog[name]; ok {
		return p, true
	}
	return s.reg.Plugin(name)
}

// CompileAll compiles definitions that may refer to each other. Either every
// definition compiles or an error carrying all diagnostics is returned.
func (c *Compiler) CompileAll(ctx context.Context, defs []*config.Definition) (*Catalog, error) {
	logger := ctxlog.FromContext(ctx)
	catalog := &Catalog{byName: make(map[string]*Plugin, len(defs))}

	var diags hcl.Diagnostics
	for _, def := range defs {
		rng := def.Range
		if _, dup := catalog.byName[def.Name]; dup {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate plugin definition",
				Detail:   "A plugin named \"" + def.Name + "\" is defined more than once.",
				Subject:  &rng,
			})
			continue
		}
		if _, clash := c.registry.Plugin(def.Name); clash {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Plugin name already taken",
				Detail:   "A Go plugin named \"" + def.Name + "\" is already registered.",
				Subject:  &rng,
			})
			continue
		}
		p := newShell(def.Name)
		catalog.plugins = append(catalog.plugins, p)
		catalog.byName[def.Name] = p
	}

	sc := scope{reg: c.registry, catalog: catalog.byName}
	for _, def := range defs {
		p, ok := catalog.byName[def.Name]
		if !ok || p.compiled {
			continue
		}
		diags = append(diags, c.compileInto(ctx, p, def, sc)...)
	}
	if diags.HasErrors() {
		return nil, errors.Wrap(diags, "plugin compilation failed")
	}

	logger.Debug("Compiled plugin catalog.", "plugins", catalog.Len())
	return catalog, nil
}

// Compile compiles a single definition. Plugin references resolve against the
// registry only.
func (c *Compiler) Compile(ctx context.Context, def *config.Definition) (*Plugin, error) {
	p := newShell(def.Name)
	sc := scope{reg: c.registry, catalog: map[string]*Plugin{def.Name: p}}
	if diags := c.compileInto(ctx, p, def, sc); diags.HasErrors() {
		return nil, errors.Wrapf(diags, "failed to compile plugin %q", def.Name)
	}
	return p, nil
}

func newShell(name string) *Plugin {
	return &Plugin{name: name, id: typeinfo.NewIdentity(name)}
}

func (c *Compiler) compileInto(ctx context.Context, p *Plugin, def *config.Definition, sc scope) hcl.Diagnostics {
	logger := ctxlog.FromContext(ctx).With("plugin", def.Name)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Compiling plugin.", "entries", len(def.Entries))

	res := &resolver{reg: c.registry, converter: c.converter, scope: sc, ctx: ctx, self: p}

	build, diags := c.buildPass(ctx, res, def)
	finish, finishDiags := c.finishPass(ctx, res, def)
	diags = append(diags, finishDiags...)
	if diags.HasErrors() {
		return diags
	}

	p.logger = logger
	p.build = build.program
	p.finish = finish
	p.deps = build.deps
	p.subs = build.subs
	p.meta = c.metadataPass(ctx, res, def)
	p.suite = c.testPass(ctx, res, p, def)
	p.compiled = true

	logger.Debug("Plugin compiled.",
		"build_instructions", len(build.program),
		"finish_instructions", len(finish),
		"checks", len(p.suite.Checks),
	)
	return diags
}
