package compiler

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/plugdef/internal/config"
	"github.com/vk/plugdef/internal/ctxlog"
	"github.com/vk/plugdef/internal/depcheck"
	"github.com/vk/plugdef/internal/grammar"
	"github.com/vk/plugdef/internal/host"
	"github.com/vk/plugdef/internal/typeinfo"
)

var scheduleKinds = map[grammar.Key]host.ScheduleKind{
	grammar.AddSystemsStartup:     host.Startup,
	grammar.AddSystemsUpdate:      host.Update,
	grammar.AddSystemsFixedUpdate: host.FixedUpdate,
	grammar.AddSystemsOnEnter:     host.OnEnter,
	grammar.AddSystemsOnExit:      host.OnExit,
}

// pluginSource yields the plugin an add_plugins expression stands for.
type pluginSource func() (host.Plugin, error)

// buildOutput is what the build pass produces for one definition.
type buildOutput struct {
	program []instruction
	deps    []host.Plugin
	subs    []pluginSource
}

// requirementsOf is the dependency set verified for deps.
func requirementsOf(deps []host.Plugin) depcheck.Set {
	set := make(depcheck.Set, 0, len(deps))
	for _, dep := range deps {
		set = append(set, depcheck.Requirement{Name: dep.Name(), ID: dep.ID()})
	}
	return set
}

// buildPass compiles the registration program. When the definition declares
// dependencies, verifying them is the first instruction.
func (c *Compiler) buildPass(ctx context.Context, res *resolver, def *config.Definition) (buildOutput, hcl.Diagnostics) {
	logger := ctxlog.FromContext(ctx)
	var program []instruction
	var deps []host.Plugin
	var subs []pluginSource
	var diags hcl.Diagnostics

	for _, entry := range def.Entries {
		logger.Debug("Build pass entry.", "key", entry.Key)
		var ins []instruction
		var entryDiags hcl.Diagnostics

		switch entry.Key {
		case grammar.Meta, grammar.GenerateTests, grammar.CustomFinish:
			continue

		case grammar.DependsOn:
			var found []host.Plugin
			found, entryDiags = res.dependencies(entry)
			deps = append(deps, found...)

		case grammar.InitResource:
			ins, entryDiags = typeInstructions(res, entry, "InitResource", host.Builder.InitResource)
		case grammar.AddMessage:
			ins, entryDiags = typeInstructions(res, entry, "AddMessage", host.Builder.AddMessage)
		case grammar.InitState:
			ins, entryDiags = typeInstructions(res, entry, "InitState", host.Builder.InitState)
		case grammar.AddSubState:
			ins, entryDiags = typeInstructions(res, entry, "AddSubState", host.Builder.AddSubState)
		case grammar.RegisterType:
			ins, entryDiags = typeInstructions(res, entry, "RegisterType", host.Builder.RegisterType)

		case grammar.InsertResource:
			ins, entryDiags = insertInstructions(res, entry)
		case grammar.AddPlugins:
			var found []pluginSource
			ins, found, entryDiags = pluginInstructions(res, entry)
			subs = append(subs, found...)

		case grammar.AddSystemsStartup, grammar.AddSystemsUpdate, grammar.AddSystemsFixedUpdate:
			ins, entryDiags = scheduleInstruction(res, entry, host.ScheduleFor(scheduleKinds[entry.Key]))
		case grammar.AddSystemsOnEnter, grammar.AddSystemsOnExit:
			ins, entryDiags = stateScheduleInstructions(res, entry, scheduleKinds[entry.Key])

		case grammar.CustomBuild:
			ins, entryDiags = hookInstruction(res, entry)

		default:
			rng := entry.Range
			entryDiags = hcl.Diagnostics{grammar.UnknownKey(string(entry.Key), &rng)}
		}

		diags = append(diags, entryDiags...)
		program = append(program, ins...)
	}

	if len(deps) > 0 {
		set := requirementsOf(deps)
		name := def.Name
		verify := instruction{
			desc: fmt.Sprintf("VerifyDependencies(%s)", joinNames(set.Names())),
			run:  func(b host.Builder) error { return depcheck.Verify(b, name, set) },
		}
		program = append([]instruction{verify}, program...)
	}
	return buildOutput{program: program, deps: deps, subs: subs}, diags
}

func (r *resolver) dependencies(entry config.Entry) ([]host.Plugin, hcl.Diagnostics) {
	refs, ok := entry.Value.(config.RefList)
	if !ok {
		return nil, wrongValue(entry)
	}
	var out []host.Plugin
	var diags hcl.Diagnostics
	for _, ref := range refs {
		if ref.Name == r.self.name {
			diags = append(diags, invalid("Plugin depends on itself", fmt.Sprintf("The plugin %q cannot depend on itself.", ref.Name), ref.Range))
			continue
		}
		p, pDiags := r.pluginRef(ref.Name, ref.Range)
		diags = append(diags, pDiags...)
		if p != nil {
			out = append(out, p)
		}
	}
	return out, diags
}

func typeInstructions(res *resolver, entry config.Entry, op string, call func(host.Builder, typeinfo.TypeInfo)) ([]instruction, hcl.Diagnostics) {
	refs, ok := entry.Value.(config.RefList)
	if !ok {
		return nil, wrongValue(entry)
	}
	var out []instruction
	var diags hcl.Diagnostics
	for _, ref := range refs {
		t, tDiags := res.typeRef(ref)
		diags = append(diags, tDiags...)
		if tDiags.HasErrors() {
			continue
		}
		out = append(out, instruction{
			desc: op + "(" + t.Name() + ")",
			run: func(b host.Builder) error {
				call(b, t)
				return nil
			},
		})
	}
	return out, diags
}

func insertInstructions(res *resolver, entry config.Entry) ([]instruction, hcl.Diagnostics) {
	exprs, ok := entry.Value.(config.ExprList)
	if !ok {
		return nil, wrongValue(entry)
	}
	var out []instruction
	var diags hcl.Diagnostics
	for _, e := range exprs {
		src, sDiags := res.resource(e)
		diags = append(diags, sDiags...)
		if sDiags.HasErrors() {
			continue
		}
		out = append(out, instruction{
			desc: "InsertResource(" + src.info.Name() + " = " + e.String() + ")",
			run: func(b host.Builder) error {
				v, err := src.produce()
				if err != nil {
					return err
				}
				b.InsertResource(src.info, v)
				return nil
			},
		})
	}
	return out, diags
}

func pluginInstructions(res *resolver, entry config.Entry) ([]instruction, []pluginSource, hcl.Diagnostics) {
	exprs, ok := entry.Value.(config.ExprList)
	if !ok {
		return nil, nil, wrongValue(entry)
	}
	var out []instruction
	var sources []pluginSource
	var diags hcl.Diagnostics
	for _, e := range exprs {
		get, pDiags := res.plugin(e)
		diags = append(diags, pDiags...)
		if pDiags.HasErrors() {
			continue
		}
		sources = append(sources, get)
		out = append(out, instruction{
			desc: "AddPlugins(" + e.String() + ")",
			run: func(b host.Builder) error {
				p, err := get()
				if err != nil {
					return err
				}
				return b.AddPlugins(p)
			},
		})
	}
	return out, sources, diags
}

func scheduleInstruction(res *resolver, entry config.Entry, schedule host.Schedule) ([]instruction, hcl.Diagnostics) {
	exprs, ok := entry.Value.(config.ExprList)
	if !ok {
		return nil, wrongValue(entry)
	}
	systems, diags := res.systems(exprs)
	if diags.HasErrors() {
		return nil, diags
	}
	return []instruction{addSystems(schedule, systems)}, diags
}

func stateScheduleInstructions(res *resolver, entry config.Entry, kind host.ScheduleKind) ([]instruction, hcl.Diagnostics) {
	arms, ok := entry.Value.(config.StateMap)
	if !ok {
		return nil, wrongValue(entry)
	}
	var out []instruction
	var diags hcl.Diagnostics
	for _, arm := range arms {
		state, sDiags := res.stateValue(arm.State)
		systems, sysDiags := res.systems(arm.Systems)
		diags = append(diags, sDiags...)
		diags = append(diags, sysDiags...)
		if sDiags.HasErrors() || sysDiags.HasErrors() {
			continue
		}
		out = append(out, addSystems(host.Schedule{Kind: kind, State: state}, systems))
	}
	return out, diags
}

func addSystems(schedule host.Schedule, systems []host.SystemConfig) instruction {
	names := make([]string, 0, len(systems))
	for _, s := range systems {
		names = append(names, s.Name)
	}
	return instruction{
		desc: "AddSystems(" + schedule.String() + ", " + joinNames(names) + ")",
		run: func(b host.Builder) error {
			b.AddSystems(schedule, systems...)
			return nil
		},
	}
}

func hookInstruction(res *resolver, entry config.Entry) ([]instruction, hcl.Diagnostics) {
	callable, ok := entry.Value.(config.Callable)
	if !ok {
		return nil, wrongValue(entry)
	}
	hook, diags := res.hook(callable.Ref)
	if diags.HasErrors() {
		return nil, diags
	}
	return []instruction{{desc: "Hook(" + callable.Name + ")", run: hook}}, nil
}

func wrongValue(entry config.Entry) hcl.Diagnostics {
	rng := entry.Range
	return hcl.Diagnostics{grammar.WrongShape(entry.Key, &rng)}
}

func joinNames(names []string) string {
	return strings.Join(names, ", ")
}
