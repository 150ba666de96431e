package conformance_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/plugdef/internal/conformance"
	"github.com/vk/plugdef/internal/host"
	"github.com/vk/plugdef/internal/memhost"
	"github.com/vk/plugdef/internal/typeinfo"
)

type (
	settings struct{}
	changed  struct{}
	mode     int
)

var (
	settingsType = typeinfo.New[settings]("Settings")
	changedType  = typeinfo.New[changed]("Changed")
	modeType     = typeinfo.New[mode]("Mode")
)

// stubPlugin builds from a closure and may declare dependencies.
type stubPlugin struct {
	id    typeinfo.Identity
	name  string
	deps  []host.Plugin
	build func(b host.Builder) error
}

func stub(name string, build func(b host.Builder) error, deps ...host.Plugin) *stubPlugin {
	return &stubPlugin{id: typeinfo.NewIdentity(name), name: name, deps: deps, build: build}
}

func (p *stubPlugin) ID() typeinfo.Identity       { return p.id }
func (p *stubPlugin) Name() string                { return p.name }
func (p *stubPlugin) Finish(host.Builder) error   { return nil }
func (p *stubPlugin) Dependencies() []host.Plugin { return p.deps }
func (p *stubPlugin) Build(b host.Builder) error {
	for _, dep := range p.deps {
		if !b.IsPluginAdded(dep.ID()) {
			return errors.Newf("plugin '%s' requires '%s' to be added first", p.name, dep.Name())
		}
	}
	if p.build == nil {
		return nil
	}
	return p.build(b)
}

func newHost() conformance.Host { return memhost.New() }

func TestChecks_PassForWellBehavedPlugin(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	base := stub("Base", nil)
	mid := stub("Mid", nil, base)
	p := stub("Game", func(b host.Builder) error {
		b.InitResource(settingsType)
		b.AddMessage(changedType)
		b.InitState(modeType)
		return nil
	}, mid)
	subject := conformance.Subject{Plugin: p, Dependencies: []host.Plugin{mid}, UsesStates: true}
	suite := conformance.Suite{Plugin: "Game", Checks: []conformance.Check{
		conformance.ResourcesCheck(subject, []typeinfo.TypeInfo{settingsType}),
		conformance.MessagesCheck(subject, []typeinfo.TypeInfo{changedType}),
		conformance.StatesCheck(subject, []typeinfo.TypeInfo{modeType}),
		conformance.MissingDependenciesCheck(subject),
	}}

	// --- Act ---
	results := suite.RunAll(newHost)

	// --- Assert ---
	require.Len(t, results, 4)
	var names []string
	for _, r := range results {
		names = append(names, r.Check)
		assert.True(t, r.Passed(), "%s: %v", r.Check, r.Err)
		assert.Equal(t, "Game", r.Plugin)
	}
	assert.Equal(t, []string{
		conformance.CheckResources, conformance.CheckMessages, conformance.CheckStates, conformance.CheckMissingDependencies,
	}, names)
	conformance.Run(t, suite, newHost)
}

func TestChecks_ReportFailures(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		check   func(s conformance.Subject) conformance.Check
		plugin  *stubPlugin
		message string
	}{
		{
			name: "resource not initialized",
			check: func(s conformance.Subject) conformance.Check {
				return conformance.ResourcesCheck(s, []typeinfo.TypeInfo{settingsType})
			},
			plugin:  stub("Lazy", nil),
			message: "Lazy should initialize resource: Settings",
		},
		{
			name: "message not registered",
			check: func(s conformance.Subject) conformance.Check {
				return conformance.MessagesCheck(s, []typeinfo.TypeInfo{changedType})
			},
			plugin:  stub("Lazy", nil),
			message: "Lazy should register message: Changed",
		},
		{
			name: "state not initialized",
			check: func(s conformance.Subject) conformance.Check {
				return conformance.StatesCheck(s, []typeinfo.TypeInfo{modeType})
			},
			plugin:  stub("Lazy", nil),
			message: "Lazy should initialize state: Mode",
		},
		{
			name:    "builds without its dependencies",
			check:   conformance.MissingDependenciesCheck,
			plugin:  stub("Careless", nil),
			message: "Careless should fail to build when its dependencies are missing",
		},
		{
			name:  "fails for another reason",
			check: conformance.MissingDependenciesCheck,
			plugin: stub("Flaky", func(host.Builder) error {
				return errors.New("disk full")
			}),
			message: "Flaky failed to build, but not because of a missing dependency",
		},
		{
			name:  "panicking build",
			check: conformance.MissingDependenciesCheck,
			plugin: stub("Panicky", func(b host.Builder) error {
				b.InitState(modeType)
				return nil
			}),
			message: "check missing_dependencies panicked",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			suite := conformance.Suite{Plugin: tc.plugin.Name(), Checks: []conformance.Check{
				tc.check(conformance.Subject{Plugin: tc.plugin}),
			}}

			// --- Act ---
			results := suite.RunAll(newHost)

			// --- Assert ---
			require.Len(t, results, 1)
			assert.False(t, results[0].Passed())
			assert.Contains(t, results[0].Err.Error(), tc.message)
		})
	}
}

func TestAddWithDependencies(t *testing.T) {
	t.Parallel()

	t.Run("adds transitive dependencies first and skips added plugins", func(t *testing.T) {
		t.Parallel()

		// --- Arrange ---
		base := stub("Base", nil)
		left := stub("Left", nil, base)
		right := stub("Right", nil, base)
		top := stub("Top", nil, left, right)
		app := memhost.New()

		// --- Act ---
		err := conformance.AddWithDependencies(app, top)

		// --- Assert ---
		require.NoError(t, err)
		assert.Equal(t, []string{"Base", "Left", "Right", "Top"}, app.Plugins())
		assert.NoError(t, conformance.AddWithDependencies(app, top))
	})

	t.Run("detects cycles", func(t *testing.T) {
		t.Parallel()

		a := stub("A", nil)
		b := stub("B", nil, a)
		a.deps = []host.Plugin{b}

		err := conformance.AddWithDependencies(memhost.New(), a)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "dependency cycle through plugin 'A'")
	})
}

func TestSuite_Empty(t *testing.T) {
	t.Parallel()

	assert.True(t, conformance.Suite{Plugin: "P"}.Empty())
	assert.False(t, conformance.Suite{Plugin: "P", Checks: []conformance.Check{{Name: "x"}}}.Empty())
}

// statefulPlugin registers a state machine and says so.
type statefulPlugin struct{ *stubPlugin }

func (statefulPlugin) UsesStates() bool { return true }

func TestChecks_AddStateSupportForStatefulDependencies(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	stateful := statefulPlugin{stub("Stateful", func(b host.Builder) error {
		b.InitState(modeType)
		return nil
	})}
	p := stub("Game", func(b host.Builder) error {
		b.InitResource(settingsType)
		return nil
	}, stateful)
	check := conformance.ResourcesCheck(
		conformance.Subject{Plugin: p, Dependencies: []host.Plugin{stateful}},
		[]typeinfo.TypeInfo{settingsType},
	)

	// --- Act ---
	err := check.Run(newHost)

	// --- Assert ---
	assert.NoError(t, err)
}

// bundlePlugin adds other plugins while building.
type bundlePlugin struct {
	*stubPlugin
	subs []host.Plugin
}

func (p bundlePlugin) SubPlugins() []host.Plugin { return p.subs }

func TestChecks_AddStateSupportForStatefulSubPlugins(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	stateful := statefulPlugin{stub("Stateful", func(b host.Builder) error {
		b.InitState(modeType)
		return nil
	})}
	p := bundlePlugin{subs: []host.Plugin{stateful}}
	p.stubPlugin = stub("Bundle", func(b host.Builder) error {
		b.InitResource(settingsType)
		return b.AddPlugins(stateful)
	})
	check := conformance.ResourcesCheck(conformance.Subject{Plugin: p}, []typeinfo.TypeInfo{settingsType})

	// --- Act ---
	err := check.Run(newHost)

	// --- Assert ---
	assert.NoError(t, err)
}

func TestChecks_KeepExistingStateSupport(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	h := memhost.New()
	require.NoError(t, h.AddStateSupport())
	p := statefulPlugin{stub("Stateful", func(b host.Builder) error {
		b.InitState(modeType)
		return nil
	})}
	check := conformance.StatesCheck(conformance.Subject{Plugin: p, UsesStates: true}, []typeinfo.TypeInfo{modeType})

	// --- Act ---
	err := check.Run(func() conformance.Host { return h })

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{"StatesPlugin", "Stateful"}, h.Plugins())
}
