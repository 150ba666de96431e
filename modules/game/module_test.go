package game

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/plugdef/internal/ctxlog"
	"github.com/vk/plugdef/internal/host"
	"github.com/vk/plugdef/internal/memhost"
	"github.com/vk/plugdef/internal/registry"
	"github.com/vk/plugdef/internal/typeinfo"
)

func TestModule_RegistersCleanly(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	r := registry.New()

	// --- Act ---
	(&Module{}).Register(r)

	// --- Assert ---
	require.NoError(t, r.Validate(ctxlog.Discard(context.Background())))
	_, ok := r.Type("GameState")
	assert.True(t, ok)
	_, ok = r.Factory("high_scores")
	assert.True(t, ok)
	_, ok = r.Plugin("Audio")
	assert.True(t, ok)
}

func TestNewHighScores(t *testing.T) {
	t.Parallel()

	scores, err := NewHighScores(3)
	require.NoError(t, err)
	assert.Equal(t, 3, cap(scores.Top))

	_, err = NewHighScores(0)
	assert.EqualError(t, err, "high score table size must be positive, got 0")
}

func TestAudioPlugin_Build(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	app := memhost.New()

	// --- Act ---
	err := app.AddPlugins(AudioPlugin{})

	// --- Assert ---
	require.NoError(t, err)
	assert.True(t, app.ContainsMessage(typeinfo.New[ScoreChanged]("ScoreChanged")))
	systems := app.Systems(host.ScheduleFor(host.Startup))
	require.Len(t, systems, 1)
	assert.Equal(t, "play_music", systems[0].Name)
}

func TestSeedScores(t *testing.T) {
	t.Parallel()

	app := memhost.New()

	require.NoError(t, SeedScores(app))

	got, ok := app.Resource(typeinfo.New[HighScores]("HighScores"))
	require.True(t, ok)
	assert.Equal(t, HighScores{Top: []int{100, 50, 10}}, got)
}
