package config

import (
	"context"
	"reflect"

	"github.com/zclconf/go-cty/cty"
)

// Loader is the interface for a format-specific definition loader.
type Loader interface {
	// Load reads every definition reachable from paths, translates them into
	// the format-agnostic model, and returns a matching Converter.
	Load(ctx context.Context, paths ...string) (*Model, Converter, error)
}

// Converter binds literal configuration values to Go values.
type Converter interface {
	// Decode converts a literal into a value of the target Go type.
	Decode(ctx context.Context, val cty.Value, target reflect.Type) (reflect.Value, error)

	// ToCtyValue converts a native Go value into its cty.Value.
	ToCtyValue(v any) (cty.Value, error)
}
