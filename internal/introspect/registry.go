// Package introspect keeps a catalog of plugin metadata for runtime queries:
// which plugins are loaded, in which order, and which of them provide a given
// resource, message or state.
//
// A Registry is owned by a single goroutine and performs no locking.
package introspect

import (
	"iter"

	"github.com/vk/plugdef/internal/metadata"
	"github.com/vk/plugdef/internal/typeinfo"
)

// Describer is a plugin that can report its metadata.
type Describer interface {
	ID() typeinfo.Identity
	Metadata() *metadata.PluginMetadata
}

// Registry maps plugin identities to their metadata.
type Registry struct {
	plugins   map[typeinfo.Identity]*metadata.PluginMetadata
	loadOrder []typeinfo.Identity
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{plugins: make(map[typeinfo.Identity]*metadata.PluginMetadata)}
}

// Register records p. Registering the same plugin again changes nothing and
// returns false.
func (r *Registry) Register(p Describer) bool {
	id := p.ID()
	if _, exists := r.plugins[id]; exists {
		return false
	}
	r.plugins[id] = p.Metadata()
	r.loadOrder = append(r.loadOrder, id)
	return true
}

// Get returns the metadata registered for id.
func (r *Registry) Get(id typeinfo.Identity) (*metadata.PluginMetadata, bool) {
	m, ok := r.plugins[id]
	return m, ok
}

// IsRegistered reports whether id has been registered.
func (r *Registry) IsRegistered(id typeinfo.Identity) bool {
	_, ok := r.plugins[id]
	return ok
}

// Len is the number of registered plugins.
func (r *Registry) Len() int { return len(r.loadOrder) }

// IsEmpty reports whether nothing has been registered.
func (r *Registry) IsEmpty() bool { return len(r.loadOrder) == 0 }

// ListAll yields metadata in registration order.
func (r *Registry) ListAll() iter.Seq[*metadata.PluginMetadata] {
	return func(yield func(*metadata.PluginMetadata) bool) {
		for _, id := range r.loadOrder {
			if !yield(r.plugins[id]) {
				return
			}
		}
	}
}

// PluginNames returns plugin names in registration order.
func (r *Registry) PluginNames() []string {
	names := make([]string, 0, len(r.loadOrder))
	for m := range r.ListAll() {
		names = append(names, m.Name)
	}
	return names
}

// PluginsWithResource returns every plugin that declares resource t.
func (r *Registry) PluginsWithResource(t typeinfo.TypeInfo) []*metadata.PluginMetadata {
	return r.filter(func(m *metadata.PluginMetadata) bool { return m.HasResource(t) })
}

// PluginsWithMessage returns every plugin that declares message t.
func (r *Registry) PluginsWithMessage(t typeinfo.TypeInfo) []*metadata.PluginMetadata {
	return r.filter(func(m *metadata.PluginMetadata) bool { return m.HasMessage(t) })
}

// PluginsWithState returns every plugin that declares state t.
func (r *Registry) PluginsWithState(t typeinfo.TypeInfo) []*metadata.PluginMetadata {
	return r.filter(func(m *metadata.PluginMetadata) bool { return m.HasState(t) })
}

// FindByName returns a plugin with the given name. When several plugins share
// a name, which one is returned is unspecified.
func (r *Registry) FindByName(name string) (*metadata.PluginMetadata, bool) {
	for _, m := range r.plugins {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// TotalResources sums resource declarations over all plugins.
func (r *Registry) TotalResources() int {
	total := 0
	for _, m := range r.plugins {
		total += len(m.Resources)
	}
	return total
}

// TotalSystems sums system declarations over all plugins.
func (r *Registry) TotalSystems() int {
	total := 0
	for _, m := range r.plugins {
		total += m.TotalSystems()
	}
	return total
}

func (r *Registry) filter(keep func(*metadata.PluginMetadata) bool) []*metadata.PluginMetadata {
	var out []*metadata.PluginMetadata
	for m := range r.ListAll() {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}

// PluginsWithResourceOf is PluginsWithResource for a Go type.
func PluginsWithResourceOf[T any](r *Registry) []*metadata.PluginMetadata {
	return r.PluginsWithResource(typeinfo.Of[T]())
}

// PluginsWithMessageOf is PluginsWithMessage for a Go type.
func PluginsWithMessageOf[T any](r *Registry) []*metadata.PluginMetadata {
	return r.PluginsWithMessage(typeinfo.Of[T]())
}

// PluginsWithStateOf is PluginsWithState for a Go type.
func PluginsWithStateOf[T any](r *Registry) []*metadata.PluginMetadata {
	return r.PluginsWithState(typeinfo.Of[T]())
}
