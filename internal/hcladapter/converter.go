package hcladapter

import (
	"context"
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/vk/plugdef/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Converter is the HCL-specific implementation of the config.Converter interface.
type Converter struct{}

// NewConverter creates a new HCL converter.
func NewConverter() *Converter {
	return &Converter{}
}

var ctyValueType = reflect.TypeOf(cty.Value{})

// Decode converts a literal into a new value of the target type.
func (c *Converter) Decode(ctx context.Context, val cty.Value, target reflect.Type) (reflect.Value, error) {
	logger := ctxlog.FromContext(ctx).With("go_type", target.String())
	out := reflect.New(target).Elem()

	if target == ctyValueType {
		logger.Debug("Target is cty.Value, performing direct assignment.")
		out.Set(reflect.ValueOf(val))
		return out, nil
	}
	if !val.IsKnown() {
		return out, errors.Newf("cannot decode an unknown value into %s", target)
	}
	if val.IsNull() {
		logger.Debug("Null literal decodes to the zero value.")
		return out, nil
	}

	if target.Kind() == reflect.Interface {
		native, err := ctyToNative(val)
		if err != nil {
			return out, err
		}
		if native == nil {
			return out, nil
		}
		nv := reflect.ValueOf(native)
		if !nv.Type().AssignableTo(target) {
			return out, errors.Newf("value of type %s is not assignable to %s", nv.Type(), target)
		}
		out.Set(nv)
		return out, nil
	}

	impliedType, err := gocty.ImpliedType(out.Interface())
	if err != nil {
		return out, errors.Wrapf(err, "unable to infer cty type for %s", target)
	}
	converted, err := convert.Convert(val, impliedType)
	if err != nil {
		return out, errors.Wrapf(err, "cannot use %s as %s", val.Type().FriendlyName(), target)
	}
	if err := gocty.FromCtyValue(converted, out.Addr().Interface()); err != nil {
		return out, errors.Wrapf(err, "cannot decode into %s", target)
	}
	logger.Debug("Decoded literal.", "cty_type", val.Type().FriendlyName())
	return out, nil
}

// ToCtyValue converts a native Go value into its corresponding cty.Value.
func (c *Converter) ToCtyValue(v any) (cty.Value, error) {
	if v == nil {
		return cty.NilVal, nil
	}
	ty, err := gocty.ImpliedType(v)
	if err != nil {
		return cty.NilVal, errors.Wrap(err, "unable to infer cty.Type")
	}
	return gocty.ToCtyValue(v, ty)
}

// ctyToNative converts a value for an interface-typed target. Numbers become
// float64 and collections become []any or map[string]any.
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil
	case ty == cty.Number:
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, errors.Wrap(err, "could not convert number to float64")
		}
		return f, nil
	case ty == cty.Bool:
		return v.True(), nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, native)
		}
		return out, nil
	case ty.IsMapType() || ty.IsObjectType():
		out := make(map[string]any, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			k, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = native
		}
		return out, nil
	}
	return nil, errors.Newf("unsupported value type %s", ty.FriendlyName())
}
