package registry

import (
	"reflect"

	"github.com/cockroachdb/errors"
)

var errorType = reflect.TypeFor[error]()

// Factory is a registered resource constructor.
type Factory struct {
	Name string
	fn   reflect.Value
	// In lists the parameter types in order.
	In []reflect.Type
	// Out is the type of the produced resource.
	Out        reflect.Type
	returnsErr bool
}

func newFactory(name string, fn any) (*Factory, error) {
	if fn == nil {
		return nil, errors.Newf("factory '%s' must be a function, got <nil>", name)
	}
	v := reflect.ValueOf(fn)
	t := v.Type()
	if t.Kind() != reflect.Func {
		return nil, errors.Newf("factory '%s' must be a function, got %s", name, t)
	}
	if t.IsVariadic() {
		return nil, errors.Newf("factory '%s' must not be variadic", name)
	}

	f := &Factory{Name: name, fn: v}
	switch {
	case t.NumOut() == 1 && t.Out(0) != errorType:
	case t.NumOut() == 2 && t.Out(0) != errorType && t.Out(1) == errorType:
		f.returnsErr = true
	default:
		return nil, errors.Newf("factory '%s' must return T or (T, error), got %s", name, t)
	}
	f.Out = t.Out(0)
	for i := 0; i < t.NumIn(); i++ {
		f.In = append(f.In, t.In(i))
	}
	return f, nil
}

// Call invokes the factory. args must match In.
func (f *Factory) Call(args []reflect.Value) (any, error) {
	if len(args) != len(f.In) {
		return nil, errors.Newf("factory '%s' takes %d arguments, got %d", f.Name, len(f.In), len(args))
	}
	out := f.fn.Call(args)
	if f.returnsErr && !out[1].IsNil() {
		return nil, errors.Wrapf(out[1].Interface().(error), "factory '%s'", f.Name)
	}
	return out[0].Interface(), nil
}
