package typeinfo

import (
	"fmt"
	"reflect"
)

// Identity is an opaque, comparable token. It can be used as a map key.
type Identity struct {
	key any
}

// token backs identities that are not tied to a Go type.
type token struct {
	label string
}

// IdentityFor returns the identity of a Go type.
func IdentityFor(t reflect.Type) Identity {
	if t == nil {
		panic("typeinfo: IdentityFor called with nil type")
	}
	return Identity{key: t}
}

// IdentityOf returns the identity of T.
func IdentityOf[T any]() Identity {
	return IdentityFor(reflect.TypeFor[T]())
}

// NewIdentity allocates an identity that is equal only to itself. The label
// is used by String.
func NewIdentity(label string) Identity {
	return Identity{key: &token{label: label}}
}

// IsZero reports whether the identity was never assigned.
func (i Identity) IsZero() bool {
	return i.key == nil
}

// Type returns the Go type behind the identity, if there is one.
func (i Identity) Type() (reflect.Type, bool) {
	t, ok := i.key.(reflect.Type)
	return t, ok
}

func (i Identity) String() string {
	switch k := i.key.(type) {
	case nil:
		return "<none>"
	case reflect.Type:
		return k.String()
	case *token:
		return fmt.Sprintf("%s#%p", k.label, k)
	default:
		return fmt.Sprintf("%v", k)
	}
}

// TypeInfo describes a type a plugin declares. It is immutable.
type TypeInfo struct {
	name string
	id   func() Identity
}

// New captures T under the given display name.
func New[T any](name string) TypeInfo {
	return TypeInfo{
		name: name,
		id:   IdentityOf[T],
	}
}

// Of captures T using its Go type string as the name.
func Of[T any]() TypeInfo {
	return New[T](reflect.TypeFor[T]().String())
}

// FromType captures a reflect.Type under the given display name.
func FromType(name string, t reflect.Type) TypeInfo {
	id := IdentityFor(t)
	return FromIdentity(name, id)
}

// FromIdentity wraps an existing identity.
func FromIdentity(name string, id Identity) TypeInfo {
	return TypeInfo{
		name: name,
		id:   func() Identity { return id },
	}
}

// Name is the display name. It plays no part in equality.
func (t TypeInfo) Name() string {
	return t.name
}

// ID returns the identity. The zero TypeInfo has a zero identity.
func (t TypeInfo) ID() Identity {
	if t.id == nil {
		return Identity{}
	}
	return t.id()
}

// Equal compares by identity only.
func (t TypeInfo) Equal(other TypeInfo) bool {
	return t.ID() == other.ID()
}

func (t TypeInfo) String() string {
	return t.name
}

// Names returns the display names of infos, in order.
func Names(infos []TypeInfo) []string {
	out := make([]string, 0, len(infos))
	for _, info := range infos {
		out = append(out, info.name)
	}
	return out
}
