package registry

import (
	"fmt"
	"reflect"

	"github.com/vk/plugdef/internal/host"
	"github.com/vk/plugdef/internal/typeinfo"
)

// RegisterType registers T under name. The first name a Go type is
// registered under is the one reported back by TypeName.
func RegisterType[T any](r *Registry, name string) typeinfo.TypeInfo {
	return r.RegisterReflectType(name, reflect.TypeFor[T]())
}

// RegisterReflectType is the non-generic form of RegisterType.
func (r *Registry) RegisterReflectType(name string, t reflect.Type) typeinfo.TypeInfo {
	if _, exists := r.types[name]; exists {
		panic(fmt.Sprintf("type with name '%s' already registered", name))
	}
	logRegistration("type", name)
	info := typeinfo.FromType(name, t)
	r.types[name] = info
	if _, named := r.typeNames[info.ID()]; !named {
		r.typeNames[info.ID()] = name
	}
	return info
}

// RegisterValue registers a ready-made value, such as a state value or a
// resource instance.
func (r *Registry) RegisterValue(name string, v any) {
	if v == nil {
		panic(fmt.Sprintf("value '%s' must not be nil", name))
	}
	if _, exists := r.values[name]; exists {
		panic(fmt.Sprintf("value with name '%s' already registered", name))
	}
	logRegistration("value", name)
	r.values[name] = v
}

// RegisterFactory registers a function that produces a resource. fn must have
// the form func(args...) T or func(args...) (T, error).
func (r *Registry) RegisterFactory(name string, fn any) {
	if _, exists := r.factories[name]; exists {
		panic(fmt.Sprintf("factory with name '%s' already registered", name))
	}
	f, err := newFactory(name, fn)
	if err != nil {
		panic(err.Error())
	}
	logRegistration("factory", name)
	r.factories[name] = f
}

// RegisterSystem registers a system function.
func (r *Registry) RegisterSystem(name string, fn any) {
	mustBeFunc("system", name, fn)
	if _, exists := r.systems[name]; exists {
		panic(fmt.Sprintf("system with name '%s' already registered", name))
	}
	logRegistration("system", name)
	r.systems[name] = fn
}

// RegisterCondition registers a run condition.
func (r *Registry) RegisterCondition(name string, fn any) {
	mustBeFunc("condition", name, fn)
	if _, exists := r.conditions[name]; exists {
		panic(fmt.Sprintf("condition with name '%s' already registered", name))
	}
	logRegistration("condition", name)
	r.conditions[name] = fn
}

// RegisterHook registers a custom_build or custom_finish hook.
func (r *Registry) RegisterHook(name string, hook host.Hook) {
	if hook == nil {
		panic(fmt.Sprintf("hook '%s' must not be nil", name))
	}
	if _, exists := r.hooks[name]; exists {
		panic(fmt.Sprintf("hook with name '%s' already registered", name))
	}
	logRegistration("hook", name)
	r.hooks[name] = hook
}

// RegisterPlugin registers a plugin implemented in Go under its own name.
func (r *Registry) RegisterPlugin(p host.Plugin) {
	name := p.Name()
	if _, exists := r.plugins[name]; exists {
		panic(fmt.Sprintf("plugin with name '%s' already registered", name))
	}
	logRegistration("plugin", name)
	r.plugins[name] = p
}

func mustBeFunc(kind, name string, fn any) {
	if fn == nil || reflect.TypeOf(fn).Kind() != reflect.Func {
		panic(fmt.Sprintf("%s '%s' must be a function, got %T", kind, name, fn))
	}
}
