package conformance

import (
	"fmt"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vk/plugdef/internal/host"
	"github.com/vk/plugdef/internal/typeinfo"
)

// Check names.
const (
	CheckResources           = "resources"
	CheckMessages            = "messages"
	CheckStates              = "states"
	CheckMissingDependencies = "missing_dependencies"
)

// Host is a builder that can answer what has been registered on it.
type Host interface {
	host.Builder
	ContainsResource(t typeinfo.TypeInfo) bool
	ContainsMessage(t typeinfo.TypeInfo) bool
	ContainsState(t typeinfo.TypeInfo) bool
	// AddStateSupport installs whatever the host needs before states can be registered.
	AddStateSupport() error
	HasStateSupport() bool
}

// NewHost returns a fresh, empty host.
type NewHost func() Host

// Check is one generated check.
type Check struct {
	Name string
	Run  func(newHost NewHost) error
}

// Suite is the set of checks generated for one plugin.
type Suite struct {
	Plugin string
	Checks []Check
}

// Empty reports whether no check was generated.
func (s Suite) Empty() bool {
	return len(s.Checks) == 0
}

// Result is the outcome of one check.
type Result struct {
	Plugin string
	Check  string
	Err    error
}

// Passed reports whether the check succeeded.
func (r Result) Passed() bool { return r.Err == nil }

// RunAll runs every check and collects the results. A panicking check fails.
func (s Suite) RunAll(newHost NewHost) []Result {
	results := make([]Result, 0, len(s.Checks))
	for _, c := range s.Checks {
		results = append(results, Result{Plugin: s.Plugin, Check: c.Name, Err: runSafely(c, newHost)})
	}
	return results
}

// Run registers every check of the suite as a subtest named <Plugin>/<check>.
func Run(t *testing.T, s Suite, newHost NewHost) {
	t.Helper()
	for _, c := range s.Checks {
		t.Run(s.Plugin+"/"+c.Name, func(t *testing.T) {
			require.NoError(t, runSafely(c, newHost))
		})
	}
}

func runSafely(c Check, newHost NewHost) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("check %s panicked: %v", c.Name, r)
		}
	}()
	return c.Run(newHost)
}

// Subject is the plugin under test together with what the checks need to know
// about it.
type Subject struct {
	Plugin       host.Plugin
	Dependencies []host.Plugin
	// UsesStates is set when the plugin registers states, so hosts get state
	// support before the plugin is added.
	UsesStates bool
}

// needsStates reports whether the plugin, a plugin it adds or anything they
// depend on registers states.
func (s Subject) needsStates() bool {
	if s.UsesStates {
		return true
	}
	seen := make(map[typeinfo.Identity]bool)
	return anyUsesStates([]host.Plugin{s.Plugin}, seen) || anyUsesStates(s.Dependencies, seen)
}

func (s Subject) install(h Host, withDeps bool) error {
	if s.needsStates() && !h.HasStateSupport() {
		if err := h.AddStateSupport(); err != nil {
			return errors.Wrap(err, "failed to add state support")
		}
	}
	if withDeps {
		for _, dep := range s.Dependencies {
			if err := AddWithDependencies(h, dep); err != nil {
				return errors.Wrapf(err, "failed to add dependency %s", dep.Name())
			}
		}
	}
	return h.AddPlugins(s.Plugin)
}

// dependent is implemented by plugins that know what they depend on.
type dependent interface {
	Dependencies() []host.Plugin
}

// bundle is implemented by plugins that add other plugins while building.
type bundle interface {
	SubPlugins() []host.Plugin
}

// stateUser is implemented by plugins that know whether they register states.
type stateUser interface {
	UsesStates() bool
}

// anyUsesStates reports whether any plugin in ps, anything they add or anything
// they depend on registers states.
func anyUsesStates(ps []host.Plugin, seen map[typeinfo.Identity]bool) bool {
	for _, p := range ps {
		if seen[p.ID()] {
			continue
		}
		seen[p.ID()] = true
		if u, ok := p.(stateUser); ok && u.UsesStates() {
			return true
		}
		if d, ok := p.(dependent); ok && anyUsesStates(d.Dependencies(), seen) {
			return true
		}
		if b, ok := p.(bundle); ok && anyUsesStates(b.SubPlugins(), seen) {
			return true
		}
	}
	return false
}

// AddWithDependencies adds p after its transitive dependencies, skipping any
// plugin that is already present.
func AddWithDependencies(b host.Builder, p host.Plugin) error {
	return addWithDependencies(b, p, make(map[typeinfo.Identity]bool))
}

func addWithDependencies(b host.Builder, p host.Plugin, visiting map[typeinfo.Identity]bool) error {
	if b.IsPluginAdded(p.ID()) {
		return nil
	}
	if visiting[p.ID()] {
		return errors.Newf("dependency cycle through plugin '%s'", p.Name())
	}
	visiting[p.ID()] = true
	if d, ok := p.(dependent); ok {
		for _, dep := range d.Dependencies() {
			if err := addWithDependencies(b, dep, visiting); err != nil {
				return err
			}
		}
	}
	delete(visiting, p.ID())
	if b.IsPluginAdded(p.ID()) {
		return nil
	}
	return b.AddPlugins(p)
}

// ResourcesCheck asserts each resource exists after the plugin is added.
func ResourcesCheck(s Subject, resources []typeinfo.TypeInfo) Check {
	return presenceCheck(CheckResources, s, resources, "should initialize resource", Host.ContainsResource)
}

// MessagesCheck asserts each message channel exists after the plugin is added.
func MessagesCheck(s Subject, messages []typeinfo.TypeInfo) Check {
	return presenceCheck(CheckMessages, s, messages, "should register message", Host.ContainsMessage)
}

// StatesCheck installs state support, adds the plugin and asserts each state exists.
func StatesCheck(s Subject, states []typeinfo.TypeInfo) Check {
	s.UsesStates = true
	return presenceCheck(CheckStates, s, states, "should initialize state", Host.ContainsState)
}

func presenceCheck(name string, s Subject, types []typeinfo.TypeInfo, phrase string, has func(Host, typeinfo.TypeInfo) bool) Check {
	return Check{
		Name: name,
		Run: func(newHost NewHost) error {
			h := newHost()
			if err := s.install(h, true); err != nil {
				return err
			}
			var missing []string
			for _, t := range types {
				if !has(h, t) {
					missing = append(missing, fmt.Sprintf("%s %s: %s", s.Plugin.Name(), phrase, t.Name()))
				}
			}
			if len(missing) > 0 {
				return errors.Newf("%s", strings.Join(missing, "\n"))
			}
			return nil
		},
	}
}

// MissingDependenciesCheck adds only the plugin and expects it to refuse to build.
func MissingDependenciesCheck(s Subject) Check {
	return Check{
		Name: CheckMissingDependencies,
		Run: func(newHost NewHost) error {
			h := newHost()
			err := s.install(h, false)
			if err == nil {
				return errors.Newf("%s should fail to build when its dependencies are missing", s.Plugin.Name())
			}
			if !strings.Contains(err.Error(), "requires") {
				return errors.Wrapf(err, "%s failed to build, but not because of a missing dependency", s.Plugin.Name())
			}
			return nil
		},
	}
}
