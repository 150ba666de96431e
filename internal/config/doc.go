// Package config defines the format-agnostic representation of plugin
// definitions, along with the core interfaces (Loader, Converter) for loading
// and interpreting them from various sources.
//
// A Definition is an ordered list of tagged entries. Nothing in this package
// interprets the entries; the compiler walks the same list once per pass.
// Concrete implementations of the interfaces, such as for HCL, are provided in
// separate packages.
package config
