package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/plugdef/internal/conformance"
	"github.com/vk/plugdef/internal/memhost"
	"github.com/vk/plugdef/internal/testutil"
	"github.com/vk/plugdef/internal/typeinfo"
)

func newMemHost() conformance.Host { return memhost.New() }

func checkNames(s conformance.Suite) []string {
	names := make([]string, 0, len(s.Checks))
	for _, c := range s.Checks {
		names = append(names, c.Name)
	}
	return names
}

func TestGenerateTests_Gating(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		hcl   string
		wants []string
	}{
		{
			name: "no generate_tests",
			hcl: `plugin "P" {
				init_resource = [GameSettings]
				add_message   = [ScoreChanged]
			}`,
			wants: []string{},
		},
		{
			name: "flags default to false",
			hcl: `plugin "P" {
				init_resource = [GameSettings]
				generate_tests {}
			}`,
			wants: []string{},
		},
		{
			name: "flag set with nothing to check",
			hcl: `plugin "P" {
				init_resource = [GameSettings]
				generate_tests {
					test_messages     = true
					test_states       = true
					test_dependencies = true
				}
			}`,
			wants: []string{},
		},
		{
			name: "resources and messages",
			hcl: `plugin "P" {
				generate_tests = { test_resources = true, test_messages = true }
				init_resource  = [GameSettings]
				add_message    = [ScoreChanged]
			}`,
			wants: []string{conformance.CheckResources, conformance.CheckMessages},
		},
		{
			name: "false flag disables a check",
			hcl: `plugin "P" {
				init_resource = [GameSettings]
				add_message   = [ScoreChanged]
				generate_tests {
					test_resources = false
					test_messages  = true
				}
			}`,
			wants: []string{conformance.CheckMessages},
		},
		{
			name: "entries after generate_tests are included",
			hcl: `plugin "P" {
				generate_tests {
					test_states = true
				}
				init_state = [GameState]
			}`,
			wants: []string{conformance.CheckStates},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			catalog := testutil.Compile(t, map[string]string{"p.hcl": tc.hcl}, testutil.NewFixtureModule())

			// --- Act ---
			suite := testutil.MustPlugin(t, catalog, "P").Conformance()

			// --- Assert ---
			assert.Equal(t, tc.wants, checkNames(suite))
			assert.Equal(t, "P", suite.Plugin)
		})
	}
}

func TestGenerateTests_SuitePassesOnMemHost(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{"game.hcl": `
		plugin "Base" {
			init_resource = [DebugInfo]
		}

		plugin "Mid" {
			depends_on = [Base]
		}

		plugin "Game" {
			depends_on = [Mid, External]

			generate_tests {
				test_resources    = true
				test_messages     = true
				test_states       = true
				test_dependencies = true
			}

			init_resource   = [GameSettings]
			insert_resource = [new_score(1)]
			add_message     = [ScoreChanged]
			init_state      = [GameState]
			add_sub_state   = [PauseState]
		}
	`}
	game := testutil.MustPlugin(t, testutil.Compile(t, files, testutil.NewFixtureModule()), "Game")
	suite := game.Conformance()

	// --- Act ---
	results := suite.RunAll(newMemHost)

	// --- Assert ---
	require.Len(t, results, 4)
	for _, r := range results {
		assert.True(t, r.Passed(), "%s/%s: %v", r.Plugin, r.Check, r.Err)
	}
	conformance.Run(t, suite, newMemHost)
}

func TestGenerateTests_ReportsMissingRegistration(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{"p.hcl": `
		plugin "P" {
			init_resource = [GameSettings]
			generate_tests {
				test_resources = true
			}
		}
	`}
	suite := testutil.MustPlugin(t, testutil.Compile(t, files, testutil.NewFixtureModule()), "P").Conformance()
	newHost := func() conformance.Host { return forgetfulHost{App: memhost.New()} }

	// --- Act ---
	results := suite.RunAll(newHost)

	// --- Assert ---
	require.Len(t, results, 1)
	require.Error(t, results[0].Err)
	assert.Contains(t, results[0].Err.Error(), "P should initialize resource: GameSettings")
}

// forgetfulHost never reports a resource as present.
type forgetfulHost struct {
	*memhost.App
}

func (forgetfulHost) ContainsResource(typeinfo.TypeInfo) bool { return false }

func TestGenerateTests_BundleOfStatefulPlugins(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		hcl  string
	}{
		{
			name: "sub-plugin declared first",
			hcl: `
				plugin "Core" {
					init_state = [GameState]
				}

				plugin "Bundle" {
					add_plugins   = [Core]
					init_resource = [GameSettings]
					add_message   = [ScoreChanged]
					generate_tests {
						test_resources = true
						test_messages  = true
					}
				}
			`,
		},
		{
			name: "sub-plugin declared later and nested",
			hcl: `
				plugin "Bundle" {
					add_plugins   = [Inner]
					init_resource = [GameSettings]
					add_message   = [ScoreChanged]
					generate_tests = { test_resources = true, test_messages = true }
				}

				plugin "Inner" {
					add_plugins = [Core]
				}

				plugin "Core" {
					add_sub_state = [PauseState]
					init_state    = [GameState]
				}
			`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			catalog := testutil.Compile(t, map[string]string{"bundle.hcl": tc.hcl}, testutil.NewFixtureModule())
			bundle := testutil.MustPlugin(t, catalog, "Bundle")

			// --- Act ---
			results := bundle.Conformance().RunAll(newMemHost)

			// --- Assert ---
			require.Len(t, results, 2)
			for _, r := range results {
				assert.NoError(t, r.Err, "%s/%s", r.Plugin, r.Check)
			}
			assert.False(t, bundle.UsesStates())
		})
	}
}

func TestPlugin_SubPlugins(t *testing.T) {
	t.Parallel()

	catalog := testutil.Compile(t, map[string]string{"p.hcl": `
		plugin "Bundle" {
			add_plugins = [Core, External]
		}

		plugin "Core" {}
	`}, testutil.NewFixtureModule())

	subs := testutil.MustPlugin(t, catalog, "Bundle").SubPlugins()

	require.Len(t, subs, 2)
	assert.Equal(t, "Core", subs[0].Name())
	assert.Equal(t, "External", subs[1].Name())
	assert.Empty(t, testutil.MustPlugin(t, catalog, "Core").SubPlugins())
}
