package testutil

import (
	"github.com/cockroachdb/errors"
	"github.com/vk/plugdef/internal/host"
	"github.com/vk/plugdef/internal/registry"
	"github.com/vk/plugdef/internal/typeinfo"
)

// Fixture types registered by FixtureModule under their Go names.
type (
	GameSettings struct{ Volume int }
	PlayerScore  struct{ Value int }
	HighScore    struct{ Value int }
	ScoreChanged struct{ Delta int }
	PlayerDied   struct{}
	GameState    int
	PauseState   int
	DebugInfo    struct{ Verbose bool }
)

// GameState values.
const (
	Menu GameState = iota
	Playing
	GameOver
)

// SetDefaults gives InitResource a non-zero default.
func (s *GameSettings) SetDefaults() { s.Volume = 5 }

// ErrHookFailed is returned by the fail_build hook.
var ErrHookFailed = errors.New("hook failed on purpose")

// HookLog records hook invocations in order.
type HookLog struct {
	Calls []string
}

// ExternalPlugin is a plugin implemented directly in Go.
type ExternalPlugin struct{}

func (ExternalPlugin) ID() typeinfo.Identity { return typeinfo.IdentityOf[ExternalPlugin]() }
func (ExternalPlugin) Name() string          { return "External" }
func (ExternalPlugin) Build(b host.Builder) error {
	b.AddMessage(typeinfo.New[PlayerDied]("PlayerDied"))
	return nil
}
func (ExternalPlugin) Finish(host.Builder) error { return nil }

// LeveledPlugin is produced by the leveled_plugin factory.
type LeveledPlugin struct{ Level int }

func (LeveledPlugin) ID() typeinfo.Identity { return typeinfo.IdentityOf[LeveledPlugin]() }
func (LeveledPlugin) Name() string          { return "Leveled" }
func (p LeveledPlugin) Build(b host.Builder) error {
	b.InsertResource(typeinfo.New[HighScore]("HighScore"), HighScore{Value: p.Level})
	return nil
}
func (LeveledPlugin) Finish(host.Builder) error { return nil }

// FixtureModule registers a small game vocabulary.
type FixtureModule struct {
	Hooks *HookLog
}

// NewFixtureModule returns a module with a fresh hook log.
func NewFixtureModule() *FixtureModule {
	return &FixtureModule{Hooks: &HookLog{}}
}

// Register implements registry.Module.
func (m *FixtureModule) Register(r *registry.Registry) {
	registry.RegisterType[GameSettings](r, "GameSettings")
	registry.RegisterType[PlayerScore](r, "PlayerScore")
	registry.RegisterType[HighScore](r, "HighScore")
	registry.RegisterType[ScoreChanged](r, "ScoreChanged")
	registry.RegisterType[PlayerDied](r, "PlayerDied")
	registry.RegisterType[GameState](r, "GameState")
	registry.RegisterType[PauseState](r, "PauseState")
	registry.RegisterType[DebugInfo](r, "DebugInfo")

	r.RegisterValue("GameState.Menu", Menu)
	r.RegisterValue("GameState.Playing", Playing)
	r.RegisterValue("GameState.GameOver", GameOver)
	r.RegisterValue("verbose_debug", DebugInfo{Verbose: true})

	r.RegisterFactory("new_score", func(v int) PlayerScore { return PlayerScore{Value: v} })
	r.RegisterFactory("broken_score", func() (PlayerScore, error) { return PlayerScore{}, errors.New("score backend unavailable") })
	r.RegisterFactory("leveled_plugin", func(level int) LeveledPlugin { return LeveledPlugin{Level: level} })

	for _, name := range []string{"a", "b", "c", "setup", "spawn_player", "tick", "physics_step", "cleanup", "show_menu", "hide_menu", "start_music"} {
		r.RegisterSystem(name, func() {})
	}
	r.RegisterCondition("is_paused", func() bool { return false })

	r.RegisterHook("record_build", func(host.Builder) error {
		m.Hooks.Calls = append(m.Hooks.Calls, "record_build")
		return nil
	})
	r.RegisterHook("record_finish", func(host.Builder) error {
		m.Hooks.Calls = append(m.Hooks.Calls, "record_finish")
		return nil
	})
	r.RegisterHook("fail_build", func(host.Builder) error { return ErrHookFailed })

	r.RegisterPlugin(ExternalPlugin{})
}
