// Package app contains the core application logic. It loads plugin
// definitions, compiles them against the modules built into the binary and
// runs the check, inspect and test operations, decoupled from any specific
// entrypoint like a CLI.
package app
