package compiler

import (
	"context"
	"fmt"
	"reflect"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/plugdef/internal/config"
	"github.com/vk/plugdef/internal/host"
	"github.com/vk/plugdef/internal/registry"
	"github.com/vk/plugdef/internal/typeinfo"
)

// resolver binds the names of one definition to Go values.
type resolver struct {
	reg       *registry.Registry
	converter config.Converter
	scope     scope
	ctx       context.Context
	self      *Plugin
}

func unresolved(kind, name string, rng hcl.Range) *hcl.Diagnostic {
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  "Unknown " + kind,
		Detail:   fmt.Sprintf("No %s named %q is registered.", kind, name),
		Subject:  &rng,
	}
}

func invalid(summary, detail string, rng hcl.Range) *hcl.Diagnostic {
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   detail,
		Subject:  &rng,
	}
}

func (r *resolver) typeRef(ref config.Ref) (typeinfo.TypeInfo, hcl.Diagnostics) {
	t, ok := r.reg.Type(ref.Name)
	if !ok {
		return typeinfo.TypeInfo{}, hcl.Diagnostics{unresolved("type", ref.Name, ref.Range)}
	}
	return t, nil
}

// typeInfoFor names a Go type the way the registry knows it.
func (r *resolver) typeInfoFor(t reflect.Type) typeinfo.TypeInfo {
	if name, ok := r.reg.TypeName(t); ok {
		return typeinfo.FromType(name, t)
	}
	return typeinfo.FromType(t.String(), t)
}

func (r *resolver) pluginRef(name string, rng hcl.Range) (host.Plugin, hcl.Diagnostics) {
	p, ok := r.scope.plugin(name)
	if !ok {
		return nil, hcl.Diagnostics{unresolved("plugin", name, rng)}
	}
	return p, nil
}

// source produces a value each time a plugin is built.
type source struct {
	info    typeinfo.TypeInfo
	produce func() (any, error)
}

// resource resolves an insert_resource expression: a registered value, a
// factory without arguments, or a factory call.
func (r *resolver) resource(e config.Expr) (source, hcl.Diagnostics) {
	switch e.Kind {
	case config.ExprRef:
		if v, ok := r.reg.Value(e.Name); ok {
			return source{
				info:    r.typeInfoFor(reflect.TypeOf(v)),
				produce: func() (any, error) { return v, nil },
			}, nil
		}
		if _, ok := r.reg.Factory(e.Name); ok {
			return r.resource(config.Expr{Kind: config.ExprCall, Name: e.Name, Range: e.Range})
		}
		return source{}, hcl.Diagnostics{unresolved("value or factory", e.Name, e.Range)}

	case config.ExprCall:
		f, args, diags := r.factoryCall(e)
		if diags.HasErrors() {
			return source{}, diags
		}
		return source{
			info:    r.typeInfoFor(f.Out),
			produce: func() (any, error) { return f.Call(args) },
		}, nil
	}
	return source{}, hcl.Diagnostics{invalid(
		"Invalid resource expression",
		"A resource must be a registered value or a factory call, not a literal.",
		e.Range,
	)}
}

// plugin resolves an add_plugins expression: a plugin name or a call to a
// factory producing a host.Plugin.
func (r *resolver) plugin(e config.Expr) (func() (host.Plugin, error), hcl.Diagnostics) {
	switch e.Kind {
	case config.ExprRef:
		p, diags := r.pluginRef(e.Name, e.Range)
		if diags.HasErrors() {
			return nil, diags
		}
		return func() (host.Plugin, error) { return p, nil }, nil

	case config.ExprCall:
		f, args, diags := r.factoryCall(e)
		if diags.HasErrors() {
			return nil, diags
		}
		if !f.Out.Implements(reflect.TypeFor[host.Plugin]()) {
			return nil, hcl.Diagnostics{invalid(
				"Factory does not produce a plugin",
				fmt.Sprintf("The factory %q returns %s, which does not implement a plugin.", e.Name, f.Out),
				e.Range,
			)}
		}
		return func() (host.Plugin, error) {
			v, err := f.Call(args)
			if err != nil {
				return nil, err
			}
			return v.(host.Plugin), nil
		}, nil
	}
	return nil, hcl.Diagnostics{invalid("Invalid plugin expression", "A plugin must be a name or a factory call.", e.Range)}
}

// factoryCall resolves a call to a registered factory and binds its arguments.
// Literal arguments are decoded once, here.
func (r *resolver) factoryCall(e config.Expr) (*registry.Factory, []reflect.Value, hcl.Diagnostics) {
	f, ok := r.reg.Factory(e.Name)
	if !ok {
		return nil, nil, hcl.Diagnostics{unresolved("factory", e.Name, e.Range)}
	}
	if len(e.Args) != len(f.In) {
		return nil, nil, hcl.Diagnostics{invalid(
			"Wrong number of arguments",
			fmt.Sprintf("The factory %q takes %d arguments, but %d were given.", e.Name, len(f.In), len(e.Args)),
			e.Range,
		)}
	}

	var diags hcl.Diagnostics
	args := make([]reflect.Value, len(e.Args))
	for i, arg := range e.Args {
		want := f.In[i]
		switch arg.Kind {
		case config.ExprLiteral:
			v, err := r.converter.Decode(r.ctx, arg.Value, want)
			if err != nil {
				diags = append(diags, invalid("Invalid argument", fmt.Sprintf("Argument %d of %q: %s.", i+1, e.Name, err), arg.Range))
				continue
			}
			args[i] = v
		case config.ExprRef:
			v, ok := r.reg.Value(arg.Name)
			if !ok {
				diags = append(diags, unresolved("value", arg.Name, arg.Range))
				continue
			}
			rv := reflect.ValueOf(v)
			if !rv.Type().AssignableTo(want) {
				diags = append(diags, invalid("Invalid argument", fmt.Sprintf("Argument %d of %q must be %s, but %q is %s.", i+1, e.Name, want, arg.Name, rv.Type()), arg.Range))
				continue
			}
			args[i] = rv
		default:
			diags = append(diags, invalid("Invalid argument", "Factory arguments must be literals or registered values.", arg.Range))
		}
	}
	return f, args, diags
}

func (r *resolver) stateValue(e config.Expr) (host.StateValue, hcl.Diagnostics) {
	if e.Kind != config.ExprRef {
		return host.StateValue{}, hcl.Diagnostics{invalid("Invalid state value", "A state value must be a registered name such as GameState.Playing.", e.Range)}
	}
	v, ok := r.reg.Value(e.Name)
	if !ok {
		return host.StateValue{}, hcl.Diagnostics{unresolved("state value", e.Name, e.Range)}
	}
	return host.StateValue{Name: e.Name, Value: v}, nil
}

func (r *resolver) hook(ref config.Ref) (host.Hook, hcl.Diagnostics) {
	h, ok := r.reg.Hook(ref.Name)
	if !ok {
		return nil, hcl.Diagnostics{unresolved("hook", ref.Name, ref.Range)}
	}
	return h, nil
}
