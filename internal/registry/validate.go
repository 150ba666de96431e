package registry

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/vk/plugdef/internal/ctxlog"
)

var boolType = reflect.TypeFor[bool]()

// Validate checks everything registered for consistency. It reports every
// problem at once.
func (r *Registry) Validate(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, name := range sortedKeys(r.conditions) {
		t := reflect.TypeOf(r.conditions[name])
		if t.NumOut() != 1 || t.Out(0) != boolType {
			errs = append(errs, fmt.Sprintf("condition '%s': must return exactly one bool, got %s", name, t))
		}
	}

	for _, name := range sortedKeys(r.factories) {
		f := r.factories[name]
		if f.Out.Kind() == reflect.Interface {
			logger.Warn("Factory returns an interface type; resources it produces are keyed by the interface.", "factory", name, "type", f.Out.String())
		}
		for i, in := range f.In {
			if in.Kind() == reflect.Func || in.Kind() == reflect.Chan {
				errs = append(errs, fmt.Sprintf("factory '%s', argument %d: %s cannot be written as a literal", name, i, in))
			}
		}
	}

	for _, name := range sortedKeys(r.types) {
		if _, clash := r.plugins[name]; clash {
			errs = append(errs, fmt.Sprintf("name '%s' is registered both as a type and as a plugin", name))
		}
	}

	if len(errs) > 0 {
		sort.Strings(errs)
		return errors.Newf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	logger.Debug("Registry validation passed.", "types", len(r.types), "systems", len(r.systems))
	return nil
}
