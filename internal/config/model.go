package config

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/vk/plugdef/internal/grammar"
)

// Model holds every loaded definition in order of first appearance.
type Model struct {
	Definitions []*Definition
	// Warnings are non-fatal diagnostics gathered while loading.
	Warnings hcl.Diagnostics
}

// Lookup returns the definition with the given name, or nil.
func (m *Model) Lookup(name string) *Definition {
	for _, def := range m.Definitions {
		if def.Name == name {
			return def
		}
	}
	return nil
}

// Definition is one plugin definition.
type Definition struct {
	Name    string
	Range   hcl.Range
	Entries []Entry
}

// Entry is one configuration option as written.
type Entry struct {
	Key   grammar.Key
	Range hcl.Range
	Value Value
}

// Value is implemented by the entry payload types of this package.
type Value interface {
	isValue()
}

// Ref names a type, plugin or hook.
type Ref struct {
	Name  string
	Range hcl.Range
}

// RefList is a list of type or plugin names.
type RefList []Ref

// ExprList is a list of expressions.
type ExprList []Expr

// StateArm binds systems to one state value.
type StateArm struct {
	State   Expr
	Systems ExprList
	Range   hcl.Range
}

// StateMap lists arms in declaration order.
type StateMap []StateArm

// Callable references a registered hook.
type Callable struct {
	Ref
}

// MetaMap carries the fields given by one meta entry. A nil field was not given.
type MetaMap struct {
	Version     *string
	Description *string
}

// Flag is a single named boolean.
type Flag struct {
	Name  string
	Value bool
	Range hcl.Range
}

// TestFlags lists the flags of a generate_tests entry.
type TestFlags []Flag

// Enabled reports the value of a flag. A missing flag is false and the last
// occurrence wins.
func (f TestFlags) Enabled(name string) bool {
	enabled := false
	for _, flag := range f {
		if flag.Name == name {
			enabled = flag.Value
		}
	}
	return enabled
}

func (RefList) isValue()   {}
func (ExprList) isValue()  {}
func (StateMap) isValue()  {}
func (Callable) isValue()  {}
func (MetaMap) isValue()   {}
func (TestFlags) isValue() {}
