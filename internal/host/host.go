package host

import (
	"github.com/vk/plugdef/internal/typeinfo"
)

// Builder is the registration surface a host exposes during plugin setup.
type Builder interface {
	// InitResource registers a default-constructed resource of type t.
	InitResource(t typeinfo.TypeInfo)
	// InsertResource registers value as the resource of type t.
	InsertResource(t typeinfo.TypeInfo, value any)
	// AddMessage registers a message channel.
	AddMessage(t typeinfo.TypeInfo)
	// AddPlugins builds each plugin in order. It stops at the first error.
	AddPlugins(plugins ...Plugin) error
	// InitState registers a top-level state machine.
	InitState(t typeinfo.TypeInfo)
	// AddSubState registers a state machine that lives inside another state.
	AddSubState(t typeinfo.TypeInfo)
	// RegisterType makes t available for reflection.
	RegisterType(t typeinfo.TypeInfo)
	// AddSystems schedules systems.
	AddSystems(schedule Schedule, systems ...SystemConfig)
	// IsPluginAdded reports whether a plugin with the identity has been built.
	IsPluginAdded(id typeinfo.Identity) bool
}

// Plugin is a unit of registration.
type Plugin interface {
	ID() typeinfo.Identity
	Name() string
	Build(b Builder) error
	Finish(b Builder) error
}

// Hook runs arbitrary registration code against a Builder.
type Hook func(b Builder) error
