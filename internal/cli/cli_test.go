package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/plugdef/internal/app"
)

const examplesPath = "../../examples/game"

func execute(t *testing.T, args ...string) (out, errOut string, err error) {
	t.Helper()
	outW, errW := &bytes.Buffer{}, &bytes.Buffer{}
	err = Execute(context.Background(), outW, errW, args)
	return pterm.RemoveColorFromString(outW.String()), errW.String(), err
}

func requireExitCode(t *testing.T, err error, code int) *ExitError {
	t.Helper()
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr), "expected *ExitError, got %T: %v", err, err)
	assert.Equal(t, code, exitErr.Code)
	return exitErr
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestExitError_Error(t *testing.T) {
	t.Parallel()

	err := &ExitError{Code: 2, Message: "bad flag"}

	assert.Equal(t, "bad flag", err.Error())
}

func TestExecute_Check(t *testing.T) {
	t.Parallel()

	// --- Act ---
	out, _, err := execute(t, "check", "--log-level", "error", examplesPath)

	// --- Assert ---
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Game")
	assert.Contains(t, out, "✓ Core")
	assert.Contains(t, out, "✓ Scoring")
}

func TestExecute_InspectJSON(t *testing.T) {
	t.Parallel()

	// --- Act ---
	out, _, err := execute(t, "inspect", "--format", "json", "--plugin", "Core", examplesPath)

	// --- Assert ---
	require.NoError(t, err)
	var views []app.PluginView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "Core", views[0].Name)
	assert.Equal(t, []string{"Settings", "Score", "Level"}, views[0].Resources)
	assert.Equal(t, []string{"GameState"}, views[0].States)
	assert.Equal(t, []string{"PauseMenu"}, views[0].SubStates)
}

func TestExecute_InspectRequires(t *testing.T) {
	t.Parallel()

	out, _, err := execute(t, "inspect", "--format", "json", "--requires", ">= 0.3, < 1", examplesPath)

	require.NoError(t, err)
	var views []app.PluginView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "Scoring", views[0].Name)
}

func TestExecute_Test(t *testing.T) {
	t.Parallel()

	out, _, err := execute(t, "test", examplesPath)

	require.NoError(t, err)
	assert.Contains(t, out, "PASS Core/resources")
	assert.Contains(t, out, "PASS Scoring/missing_dependencies")
}

func TestExecute_Help(t *testing.T) {
	t.Parallel()

	out, _, err := execute(t, "--help")

	require.NoError(t, err)
	assert.Contains(t, out, "plugdef compiles HCL plugin definitions")
	assert.Contains(t, out, "inspect")
}

func TestExecute_ConfigFile(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	abs, err := filepath.Abs(examplesPath)
	require.NoError(t, err)
	cfgPath := writeFile(t, "plugdef.yaml", "paths:\n  - "+abs+"\nformat: table\nlog-level: warn\n")

	// --- Act ---
	out, _, err := execute(t, "inspect", "--config", cfgPath)

	// --- Assert ---
	require.NoError(t, err)
	assert.Contains(t, out, "3 plugins, 4 resources, 7 systems")
}

func TestExecute_FlagOverridesConfigFile(t *testing.T) {
	t.Parallel()

	cfgPath := writeFile(t, "plugdef.yaml", "format: table\n")

	out, _, err := execute(t, "inspect", "--config", cfgPath, "--format", "yaml", "-p", "Game", examplesPath)

	require.NoError(t, err)
	assert.Contains(t, out, "- name: Game")
	assert.Contains(t, out, "sub_plugins:")
}

func TestExecute_EnvironmentVariables(t *testing.T) {
	// --- Arrange ---
	abs, err := filepath.Abs(examplesPath)
	require.NoError(t, err)
	t.Setenv("PLUGDEF_PATHS", abs)
	t.Setenv("PLUGDEF_FORMAT", "json")

	// --- Act ---
	out, _, err := execute(t, "inspect", "-p", "Scoring")

	// --- Assert ---
	require.NoError(t, err)
	var views []app.PluginView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "0.3.0", views[0].Version)
}

func TestExecute_UsageErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "unknown flag", args: []string{"check", "--nope", examplesPath}, wantErr: "unknown flag: --nope"},
		{name: "unknown command", args: []string{"frobnicate"}, wantErr: `unknown command "frobnicate" for "plugdef"`},
		{name: "no paths", args: []string{"check"}, wantErr: "at least one definition path is required"},
		{name: "bad format", args: []string{"inspect", "--format", "csv", examplesPath}, wantErr: `invalid format "csv"`},
		{name: "bad version constraint", args: []string{"inspect", "--requires", "about 1", examplesPath}, wantErr: `invalid version constraint "about 1"`},
		{name: "bad log level", args: []string{"check", "--log-level", "loud", examplesPath}, wantErr: `invalid log-level "loud"`},
		{name: "missing config file", args: []string{"check", "--config", "/does/not/exist.yaml", examplesPath}, wantErr: "failed to read config file"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, errOut, err := execute(t, tc.args...)

			exitErr := requireExitCode(t, err, ExitUsage)
			assert.Contains(t, exitErr.Message, tc.wantErr)
			assert.Contains(t, errOut, tc.wantErr)
		})
	}
}

func TestExecute_MissingPathsPrintsHint(t *testing.T) {
	t.Parallel()

	_, errOut, err := execute(t, "test")

	requireExitCode(t, err, ExitUsage)
	assert.Contains(t, errOut, "hint: pass .hcl files or directories as arguments")
}

func TestExecute_RendersDiagnostics(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	path := writeFile(t, "broken.hcl", `
plugin "Broken" {
  init_resource = [Nope]
}
`)

	// --- Act ---
	_, errOut, err := execute(t, "check", path)

	// --- Assert ---
	requireExitCode(t, err, ExitFailure)
	assert.Contains(t, errOut, "Error: Unknown type")
	assert.Contains(t, errOut, "broken.hcl line 3")
	assert.Contains(t, errOut, `No type named "Nope" is registered.`)
}

func TestExecute_BuildFailure(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	path := writeFile(t, "broken.hcl", `
plugin "Broken" {
  insert_resource = [high_scores(0)]
}
`)

	// --- Act ---
	out, errOut, err := execute(t, "check", path)

	// --- Assert ---
	exitErr := requireExitCode(t, err, ExitFailure)
	assert.Equal(t, "1 of 1 plugins failed to build", exitErr.Message)
	assert.Contains(t, out, "✗ Broken")
	assert.Contains(t, errOut, "Error: 1 of 1 plugins failed to build")
}

func TestExecute_UnknownPluginHint(t *testing.T) {
	t.Parallel()

	_, errOut, err := execute(t, "inspect", "-p", "Nope", examplesPath)

	requireExitCode(t, err, ExitFailure)
	assert.Contains(t, errOut, `Error: no plugin named "Nope"`)
	assert.Contains(t, errOut, "hint: known plugins: Game, Core, Scoring")
}
