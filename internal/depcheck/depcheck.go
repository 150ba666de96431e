// Package depcheck verifies that the plugins a plugin depends on were added
// to the host before it.
package depcheck

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/vk/plugdef/internal/typeinfo"
)

// Presence answers whether a plugin has already been added.
type Presence interface {
	IsPluginAdded(id typeinfo.Identity) bool
}

// Requirement is one required predecessor plugin.
type Requirement struct {
	Name string
	ID   typeinfo.Identity
}

// Set is an ordered list of requirements. The empty set is always satisfied.
type Set []Requirement

// Names returns the requirement names in order.
func (s Set) Names() []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, r.Name)
	}
	return out
}

// MissingDependencyError reports the first required plugin that was absent.
type MissingDependencyError struct {
	RequiredBy string
	Missing    string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf(
		"plugin '%s' requires '%s' to be added first. Add '%s' before '%s' in your AddPlugins call.",
		e.RequiredBy, e.Missing, e.Missing, e.RequiredBy,
	)
}

// Verify checks requirements in order and reports the first one missing.
func Verify(p Presence, requiredBy string, set Set) error {
	for _, req := range set {
		if p.IsPluginAdded(req.ID) {
			continue
		}
		return errors.WithHintf(
			&MissingDependencyError{RequiredBy: requiredBy, Missing: req.Name},
			"call AddPlugins(%s) before AddPlugins(%s)", req.Name, requiredBy,
		)
	}
	return nil
}
