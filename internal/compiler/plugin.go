package compiler

import (
	"log/slog"

	"github.com/vk/plugdef/internal/conformance"
	"github.com/vk/plugdef/internal/depcheck"
	"github.com/vk/plugdef/internal/host"
	"github.com/vk/plugdef/internal/metadata"
	"github.com/vk/plugdef/internal/typeinfo"
)

// instruction is one step of a compiled program.
type instruction struct {
	desc string
	run  func(b host.Builder) error
}

// Plugin is a compiled plugin definition.
type Plugin struct {
	id       typeinfo.Identity
	name     string
	logger   *slog.Logger
	build    []instruction
	finish   []instruction
	deps     []host.Plugin
	subs     []pluginSource
	meta     *metadata.PluginMetadata
	suite    conformance.Suite
	compiled bool
}

var _ host.Plugin = (*Plugin)(nil)

// ID is the identity other plugins use to depend on this one.
func (p *Plugin) ID() typeinfo.Identity { return p.id }

// Name is the plugin name as written in its definition.
func (p *Plugin) Name() string { return p.name }

// Version returns the declared version, if any.
func (p *Plugin) Version() (string, bool) {
	if p.meta == nil || p.meta.Version == nil {
		return "", false
	}
	return *p.meta.Version, true
}

// Metadata returns the plugin description. It must not be modified.
func (p *Plugin) Metadata() *metadata.PluginMetadata { return p.meta }

// Conformance returns the generated checks. It is empty unless the definition
// opts in with generate_tests.
func (p *Plugin) Conformance() conformance.Suite { return p.suite }

// Dependencies returns the plugins named by depends_on, in order.
func (p *Plugin) Dependencies() []host.Plugin {
	return append([]host.Plugin(nil), p.deps...)
}

// Requirements returns the dependency set verified at the start of Build.
func (p *Plugin) Requirements() depcheck.Set { return requirementsOf(p.deps) }

// SubPlugins returns the plugins named by add_plugins, in order. Factory
// expressions are called to produce them; ones whose factory fails are left
// out.
func (p *Plugin) SubPlugins() []host.Plugin {
	out := make([]host.Plugin, 0, len(p.subs))
	for _, get := range p.subs {
		if sub, err := get(); err == nil {
			out = append(out, sub)
		}
	}
	return out
}

// UsesStates reports whether the plugin itself registers states or sub-states.
func (p *Plugin) UsesStates() bool {
	return p.meta != nil && (len(p.meta.States) > 0 || len(p.meta.SubStates) > 0)
}

// Program lists the build instructions, then the finish instructions.
func (p *Plugin) Program() []string {
	out := make([]string, 0, len(p.build)+len(p.finish))
	for _, ins := range p.build {
		out = append(out, ins.desc)
	}
	for _, ins := range p.finish {
		out = append(out, "finish: "+ins.desc)
	}
	return out
}

// Build runs the registration program. It stops at the first error, which is
// returned unchanged.
func (p *Plugin) Build(b host.Builder) error {
	return p.run("build", p.build, b)
}

// Finish runs the custom_finish hooks in declaration order.
func (p *Plugin) Finish(b host.Builder) error {
	return p.run("finish", p.finish, b)
}

func (p *Plugin) run(phase string, program []instruction, b host.Builder) error {
	if !p.compiled {
		panic("compiler: plugin " + p.name + " was used before it was compiled")
	}
	p.logger.Debug("Running plugin program.", "phase", phase, "instructions", len(program))
	for _, ins := range program {
		p.logger.Debug("Executing instruction.", "phase", phase, "op", ins.desc)
		if err := ins.run(b); err != nil {
			return err
		}
	}
	return nil
}
