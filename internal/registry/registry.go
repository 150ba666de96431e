package registry

import (
	"log/slog"
	"reflect"
	"sort"

	"github.com/vk/plugdef/internal/host"
	"github.com/vk/plugdef/internal/typeinfo"
)

// Module is the interface that all modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds every name-addressable Go value for a single application
// instance.
type Registry struct {
	types      map[string]typeinfo.TypeInfo
	typeNames  map[typeinfo.Identity]string
	values     map[string]any
	factories  map[string]*Factory
	systems    map[string]any
	conditions map[string]any
	hooks      map[string]host.Hook
	plugins    map[string]host.Plugin
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		types:      make(map[string]typeinfo.TypeInfo),
		typeNames:  make(map[typeinfo.Identity]string),
		values:     make(map[string]any),
		factories:  make(map[string]*Factory),
		systems:    make(map[string]any),
		conditions: make(map[string]any),
		hooks:      make(map[string]host.Hook),
		plugins:    make(map[string]host.Plugin),
	}
}

// Type looks up a registered type by name.
func (r *Registry) Type(name string) (typeinfo.TypeInfo, bool) {
	t, ok := r.types[name]
	return t, ok
}

// TypeName returns the name a Go type was first registered under.
func (r *Registry) TypeName(t reflect.Type) (string, bool) {
	name, ok := r.typeNames[typeinfo.IdentityFor(t)]
	return name, ok
}

// Value looks up a registered value.
func (r *Registry) Value(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Factory looks up a registered factory.
func (r *Registry) Factory(name string) (*Factory, bool) {
	f, ok := r.factories[name]
	return f, ok
}

// System looks up a registered system function.
func (r *Registry) System(name string) (any, bool) {
	fn, ok := r.systems[name]
	return fn, ok
}

// Condition looks up a registered run condition.
func (r *Registry) Condition(name string) (any, bool) {
	fn, ok := r.conditions[name]
	return fn, ok
}

// Hook looks up a registered hook.
func (r *Registry) Hook(name string) (host.Hook, bool) {
	h, ok := r.hooks[name]
	return h, ok
}

// Plugin looks up a plugin implemented in Go.
func (r *Registry) Plugin(name string) (host.Plugin, bool) {
	p, ok := r.plugins[name]
	return p, ok
}

// Names returns the sorted names registered in every namespace, keyed by
// namespace. It is used for diagnostics and tooling.
func (r *Registry) Names() map[string][]string {
	return map[string][]string{
		"type":      sortedKeys(r.types),
		"value":     sortedKeys(r.values),
		"factory":   sortedKeys(r.factories),
		"system":    sortedKeys(r.systems),
		"condition": sortedKeys(r.conditions),
		"hook":      sortedKeys(r.hooks),
		"plugin":    sortedKeys(r.plugins),
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func logRegistration(kind, name string) {
	slog.Debug("Registering "+kind+".", "name", name)
}
