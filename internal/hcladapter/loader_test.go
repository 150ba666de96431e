package hcladapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/hcl/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/plugdef/internal/config"
	"github.com/vk/plugdef/internal/ctxlog"
	"github.com/vk/plugdef/internal/grammar"
	"github.com/zclconf/go-cty/cty"
)

func load(t *testing.T, sources ...Source) (*config.Model, error) {
	t.Helper()
	model, _, err := NewLoader().LoadSources(ctxlog.Discard(context.Background()), sources...)
	return model, err
}

func mustLoad(t *testing.T, content string) *config.Model {
	t.Helper()
	model, err := load(t, Source{Filename: "test.hcl", Content: []byte(content)})
	require.NoError(t, err)
	return model
}

func keys(def *config.Definition) []grammar.Key {
	out := make([]grammar.Key, 0, len(def.Entries))
	for _, e := range def.Entries {
		out = append(out, e.Key)
	}
	return out
}

func diagSummaries(t *testing.T, err error) []string {
	t.Helper()
	var diags hcl.Diagnostics
	require.True(t, errors.As(err, &diags), "expected diagnostics, got %v", err)
	out := make([]string, 0, len(diags))
	for _, d := range diags {
		out = append(out, d.Summary)
	}
	return out
}

// exprText renders expressions without their ranges for comparison.
func exprText(list config.ExprList) []string {
	out := make([]string, 0, len(list))
	for _, e := range list {
		out = append(out, e.String())
	}
	return out
}

func TestLoadSources_EntriesFollowSourceOrder(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	src := `
		plugin "Game" {
			depends_on    = [Core, physics.Plugin]
			add_message   = [ScoreChanged]
			meta {
				version = "1.0.0"
			}
			init_resource = [GameSettings]
			custom_build  = setup_hook
		}
	`

	// --- Act ---
	model := mustLoad(t, src)

	// --- Assert ---
	require.Len(t, model.Definitions, 1)
	def := model.Lookup("Game")
	require.NotNil(t, def)
	assert.Equal(t, []grammar.Key{
		grammar.DependsOn, grammar.AddMessage, grammar.Meta, grammar.InitResource, grammar.CustomBuild,
	}, keys(def))

	deps := def.Entries[0].Value.(config.RefList)
	assert.Equal(t, "Core", deps[0].Name)
	assert.Equal(t, "physics.Plugin", deps[1].Name)
	assert.Equal(t, "setup_hook", def.Entries[4].Value.(config.Callable).Name)
	assert.Empty(t, model.Warnings)
}

func TestLoadSources_FragmentsConcatenateInOrder(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	a := Source{Filename: "a.hcl", Content: []byte(`
		plugin "Game" { init_resource = [A, B, C] }
		plugin "Other" {}
	`)}
	b := Source{Filename: "b.hcl", Content: []byte(`plugin "Game" { init_resource = [D] }`)}

	// --- Act ---
	model, err := load(t, a, b)

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, model.Definitions, 2)
	assert.Equal(t, "Game", model.Definitions[0].Name)
	assert.Equal(t, "Other", model.Definitions[1].Name)

	var names []string
	for _, e := range model.Lookup("Game").Entries {
		for _, ref := range e.Value.(config.RefList) {
			names = append(names, ref.Name)
		}
	}
	assert.Equal(t, []string{"A", "B", "C", "D"}, names)
	assert.Nil(t, model.Lookup("Missing"))
}

func TestLoadSources_SystemExpressions(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	src := `
		plugin "P" {
			add_systems_update = [
				a,
				(b),
				chain(a, b, c),
				run_if(chain(a, b), in_state(GameState.Playing)),
				before(a, b),
			]
			insert_resource = [new_score(7), scaled("fast", 1.5, true, null)]
		}
	`

	// --- Act ---
	def := mustLoad(t, src).Lookup("P")

	// --- Assert ---
	systems := def.Entries[0].Value.(config.ExprList)
	want := []string{
		"a",
		"b",
		"chain(a, b, c)",
		"run_if(chain(a, b), in_state(GameState.Playing))",
		"before(a, b)",
	}
	if diff := cmp.Diff(want, exprText(systems)); diff != "" {
		t.Fatalf("system expressions mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, config.ExprCall, systems[3].Kind)
	assert.Equal(t, config.ExprRef, systems[3].Args[1].Args[0].Kind)

	resources := def.Entries[1].Value.(config.ExprList)
	assert.Equal(t, []string{"new_score(7)", `scaled("fast", 1.5, true, null)`}, exprText(resources))
	args := resources[1].Args
	assert.Equal(t, config.ExprLiteral, args[0].Kind)
	assert.True(t, args[0].Value.RawEquals(cty.StringVal("fast")))
	assert.True(t, args[3].Value.IsNull())
}

func TestLoadSources_StateMaps(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	src := `
		plugin "P" {
			add_systems_on_enter = {
				GameState.Playing  = [f, g]
				"GameState.Menu"   = [show_menu]
			}
			add_systems_on_exit = {}
		}
	`

	// --- Act ---
	def := mustLoad(t, src).Lookup("P")

	// --- Assert ---
	arms := def.Entries[0].Value.(config.StateMap)
	require.Len(t, arms, 2)
	assert.Equal(t, "GameState.Playing", arms[0].State.Name)
	assert.Equal(t, []string{"f", "g"}, exprText(arms[0].Systems))
	assert.Equal(t, "GameState.Menu", arms[1].State.Name)
	assert.Empty(t, def.Entries[1].Value.(config.StateMap))
}

func TestLoadSources_MetaForms(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	src := `
		plugin "P" {
			meta {
				version     = "2.0.1"
				description = "block form"
			}
			meta = { description = "object form" }
		}
	`

	// --- Act ---
	def := mustLoad(t, src).Lookup("P")

	// --- Assert ---
	require.Len(t, def.Entries, 2)
	first := def.Entries[0].Value.(config.MetaMap)
	require.NotNil(t, first.Version)
	assert.Equal(t, "2.0.1", *first.Version)
	second := def.Entries[1].Value.(config.MetaMap)
	assert.Nil(t, second.Version)
	require.NotNil(t, second.Description)
	assert.Equal(t, "object form", *second.Description)
}

func TestLoadSources_MetaWarnings(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	src := `
		plugin "P" {
			meta {
				version = "not-a-version"
				author  = "someone"
			}
		}
	`

	// --- Act ---
	model := mustLoad(t, src)

	// --- Assert ---
	var summaries []string
	for _, w := range model.Warnings {
		assert.Equal(t, hcl.DiagWarning, w.Severity)
		summaries = append(summaries, w.Summary)
	}
	assert.Equal(t, []string{"Version is not semantic", "Unknown meta field"}, summaries)
	meta := model.Lookup("P").Entries[0].Value.(config.MetaMap)
	require.NotNil(t, meta.Version)
	assert.Equal(t, "not-a-version", *meta.Version)
}

func TestLoadSources_TestFlags(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	src := `
		plugin "P" {
			generate_tests {
				test_resources = true
				test_messages  = false
			}
		}
	`

	// --- Act ---
	flags := mustLoad(t, src).Lookup("P").Entries[0].Value.(config.TestFlags)

	// --- Assert ---
	assert.True(t, flags.Enabled(grammar.TestResources))
	assert.False(t, flags.Enabled(grammar.TestMessages))
	assert.False(t, flags.Enabled(grammar.TestStates))
}

func TestLoadSources_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		files   []string
		summary string
	}{
		{name: "unknown option", files: []string{`plugin "P" { add_widgets = [A] }`}, summary: "Unknown plugin configuration option"},
		{name: "unknown block", files: []string{`plugin "P" {
			widgets {}
		}`}, summary: "Unknown plugin configuration option"},
		{name: "list option as block", files: []string{`plugin "P" {
			init_resource {}
		}`}, summary: `Invalid value for "init_resource"`},
		{name: "type list with call", files: []string{`plugin "P" { init_resource = [f(x)] }`}, summary: `Invalid value for "init_resource"`},
		{name: "type list not a list", files: []string{`plugin "P" { init_resource = A }`}, summary: `Invalid value for "init_resource"`},
		{name: "hook as list", files: []string{`plugin "P" { custom_build = [h] }`}, summary: `Invalid value for "custom_build"`},
		{name: "state map as list", files: []string{`plugin "P" { add_systems_on_enter = [a] }`}, summary: `Invalid value for "add_systems_on_enter"`},
		{name: "labelled meta block", files: []string{`plugin "P" {
			meta "x" {}
		}`}, summary: "Unexpected block label"},
		{name: "unknown test flag", files: []string{`plugin "P" {
			generate_tests { test_everything = true }
		}`}, summary: "Unknown test flag"},
		{name: "non-bool test flag", files: []string{`plugin "P" {
			generate_tests { test_resources = "yes" }
		}`}, summary: "Invalid test flag value"},
		{name: "non-string meta", files: []string{`plugin "P" {
			meta { version = [1] }
		}`}, summary: "Invalid meta value"},
		{name: "template expression", files: []string{`plugin "P" { insert_resource = [f("${x}")] }`}, summary: "Unsupported expression"},
		{name: "argument expansion", files: []string{`plugin "P" { add_systems_update = [chain(a...)] }`}, summary: "Unsupported argument expansion"},
		{name: "depends_on not first", files: []string{`plugin "P" {
			init_resource = [A]
			depends_on    = [Q]
		}`}, summary: "depends_on must come first"},
		{name: "depends_on first only in a later fragment", files: []string{
			`plugin "P" { init_resource = [A] }`,
			`plugin "P" { depends_on = [Q] }`,
		}, summary: "depends_on must come first"},
		{name: "duplicate generate_tests", files: []string{
			`plugin "P" {
				generate_tests {}
			}`,
			`plugin "P" {
				generate_tests = {}
			}`,
		}, summary: `Duplicate "generate_tests" option`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			sources := make([]Source, 0, len(tc.files))
			for i, f := range tc.files {
				sources = append(sources, Source{Filename: filepath.Join("defs", string(rune('a'+i))+".hcl"), Content: []byte(f)})
			}

			// --- Act ---
			model, err := load(t, sources...)

			// --- Assert ---
			require.Error(t, err)
			assert.Nil(t, model)
			assert.Contains(t, diagSummaries(t, err), tc.summary)
		})
	}
}

func TestLoadSources_UnknownOptionListsSupportedOptions(t *testing.T) {
	t.Parallel()

	_, err := load(t, Source{Filename: "p.hcl", Content: []byte(`plugin "P" { add_widgets = [A] }`)})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown plugin configuration option: add_widgets")
	assert.Contains(t, err.Error(), "Supported options: depends_on, meta, init_resource")
}

func TestLoadSources_RejectsOtherTopLevelContent(t *testing.T) {
	t.Parallel()

	_, err := load(t, Source{Filename: "p.hcl", Content: []byte(`
		widget "W" {}
	`)})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode HCL file p.hcl")
}

func TestLoadSources_SyntaxError(t *testing.T) {
	t.Parallel()

	_, err := load(t, Source{Filename: "broken.hcl", Content: []byte(`plugin "P" {`)})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse HCL file broken.hcl")
}

func TestLoadSources_RepeatedOptionInOneBlock(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	src := `plugin "P" {
  init_resource = [A, B, C]
  init_resource = [D]
}`

	// --- Act ---
	_, err := load(t, Source{Filename: "p.hcl", Content: []byte(src)})

	// --- Assert ---
	var diags hcl.Diagnostics
	require.True(t, errors.As(err, &diags))
	require.Len(t, diags, 1)
	assert.Equal(t, "Attribute redefined", diags[0].Summary)
	assert.Equal(t, 3, diags[0].Subject.Start.Line)
	assert.Contains(t, diags[0].Detail, `The argument "init_resource" was already set`)
	assert.Contains(t, diags[0].Detail, "repeat it in another plugin block with the same name")
}

func TestLoadSources_RepeatedOptionAcrossFragments(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	src := `plugin "P" {
  init_resource = [A, B, C]
}
plugin "P" {
  init_resource = [D]
}`

	// --- Act ---
	def := mustLoad(t, src).Lookup("P")

	// --- Assert ---
	require.Len(t, def.Entries, 2)
	var names []string
	for _, e := range def.Entries {
		for _, ref := range e.Value.(config.RefList) {
			names = append(names, ref.Name)
		}
	}
	assert.Equal(t, []string{"A", "B", "C", "D"}, names)
}

func TestLoad_DiscoversFilesInLexicalOrder(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	write := func(rel, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, rel), []byte(content), 0o644))
	}
	write("b.hcl", `plugin "P" { add_message = [Second] }`)
	write("a.hcl", `plugin "P" { add_message = [First] }`)
	write(filepath.Join("nested", "c.hcl"), `plugin "P" { add_message = [Third] }`)
	write("notes.txt", `plugin "Ignored" {}`)
	single := filepath.Join(dir, "a.hcl")

	// --- Act ---
	model, converter, err := NewLoader().Load(
		ctxlog.Discard(context.Background()),
		dir, single, filepath.Join(dir, "does-not-exist"),
	)

	// --- Assert ---
	require.NoError(t, err)
	require.NotNil(t, converter)
	require.Len(t, model.Definitions, 1)
	var names []string
	for _, e := range model.Definitions[0].Entries {
		names = append(names, e.Value.(config.RefList)[0].Name)
	}
	assert.Equal(t, []string{"First", "Second", "Third"}, names)
}
