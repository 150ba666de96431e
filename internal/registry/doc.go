// Package registry provides the central "glue" between plugin definitions and
// compiled Go code.
//
// The Registry stores mappings between the names used in definitions (e.g.
// "GameSettings" or "spawn_player") and the Go types, values, functions and
// plugins they stand for. Modules populate it at startup through the Module
// interface; the compiler resolves every name in a definition against it.
//
// Registration mistakes are programmer errors and panic. Validate performs a
// second pass over everything registered so that signature problems surface
// at startup instead of while a plugin is being built.
package registry
