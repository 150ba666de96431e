package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/plugdef/internal/typeinfo"
)

type gameSettings struct{}
type playerScore struct{}
type scoreChanged struct{}
type gameState int

func ptr(s string) *string { return &s }

func TestEmpty(t *testing.T) {
	t.Parallel()

	m := Empty("Nothing")

	assert.Equal(t, "Nothing", m.Name)
	assert.Nil(t, m.Version)
	assert.Nil(t, m.Description)
	assert.Zero(t, m.TotalSystems())
	assert.False(t, m.HasResource(typeinfo.Of[gameSettings]()))
	assert.False(t, m.DependsOn("Anything"))
}

func TestQueries_UseTypeIdentity(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	m := &PluginMetadata{
		Name:      "Game",
		Resources: []typeinfo.TypeInfo{typeinfo.New[gameSettings]("GameSettings")},
		Messages:  []typeinfo.TypeInfo{typeinfo.New[scoreChanged]("ScoreChanged")},
		States:    []typeinfo.TypeInfo{typeinfo.New[gameState]("GameState")},
	}

	// --- Assert ---
	assert.True(t, m.HasResource(typeinfo.New[gameSettings]("completely different name")))
	assert.False(t, m.HasResource(typeinfo.New[playerScore]("GameSettings")), "same name but another type")
	assert.True(t, HasResourceOf[gameSettings](m))
	assert.True(t, HasMessageOf[scoreChanged](m))
	assert.True(t, HasStateOf[gameState](m))
	assert.False(t, HasStateOf[scoreChanged](m))
}

func TestTotalSystems(t *testing.T) {
	t.Parallel()

	m := &PluginMetadata{Systems: Systems{
		Startup:      []string{"a"},
		Update:       []string{"b", "chain(c, d)"},
		FixedUpdate:  []string{"e"},
		OnEnterCount: 2,
		OnExitCount:  1,
	}}

	assert.Equal(t, 7, m.TotalSystems())
}

func TestDependsOn(t *testing.T) {
	t.Parallel()

	m := &PluginMetadata{Dependencies: []string{"Core", "Physics"}}
	assert.True(t, m.DependsOn("Physics"))
	assert.False(t, m.DependsOn("physics"))
}

func TestSatisfiesVersion(t *testing.T) {
	t.Parallel()

	m := &PluginMetadata{Name: "Game", Version: ptr("1.4.2")}

	ok, err := m.SatisfiesVersion(">= 1.2, < 2")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.SatisfiesVersion("^2")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = Empty("X").SatisfiesVersion(">= 1")
	assert.ErrorContains(t, err, "declares no version")

	_, err = (&PluginMetadata{Name: "Y", Version: ptr("banana")}).SemVer()
	assert.ErrorContains(t, err, "invalid version")
}
