// Package game is the example vocabulary compiled into plugdef: the types,
// values, systems and hooks that the definitions under examples/ refer to.
package game

import (
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/vk/plugdef/internal/host"
	"github.com/vk/plugdef/internal/registry"
	"github.com/vk/plugdef/internal/typeinfo"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Settings is initialized with defaults by init_resource.
type Settings struct {
	Volume     int
	Difficulty string
}

// SetDefaults is called by hosts that construct resources.
func (s *Settings) SetDefaults() {
	s.Volume = 7
	s.Difficulty = "normal"
}

// Score is the running score of the current match.
type Score struct{ Points int }

// HighScores keeps the best scores, highest first.
type HighScores struct{ Top []int }

// Level describes the level being played.
type Level struct {
	Number int
	Name   string
}

// Messages.
type (
	ScoreChanged struct{ Delta int }
	MatchEnded   struct{ Winner string }
)

// State is the top-level game state.
type State int

const (
	Menu State = iota
	Playing
	GameOver
)

// PauseMenu is a sub-state of Playing.
type PauseMenu int

const (
	Resumed PauseMenu = iota
	Paused
)

// NewLevel builds a Level resource.
func NewLevel(number int, name string) Level {
	return Level{Number: number, Name: name}
}

// NewHighScores builds an empty high score table of the given size.
func NewHighScores(size int) (HighScores, error) {
	if size <= 0 {
		return HighScores{}, errors.Newf("high score table size must be positive, got %d", size)
	}
	return HighScores{Top: make([]int, 0, size)}, nil
}

// AudioPlugin is written directly in Go; definitions can depend on it or add it.
type AudioPlugin struct{}

var _ host.Plugin = AudioPlugin{}

func (AudioPlugin) ID() typeinfo.Identity { return typeinfo.IdentityOf[AudioPlugin]() }
func (AudioPlugin) Name() string          { return "Audio" }
func (AudioPlugin) Build(b host.Builder) error {
	b.AddMessage(typeinfo.New[ScoreChanged]("ScoreChanged"))
	b.AddSystems(host.ScheduleFor(host.Startup), host.SystemConfig{Name: "play_music", Func: PlayMusic})
	return nil
}
func (AudioPlugin) Finish(host.Builder) error { return nil }

// Systems. The host decides when they run; plugdef only wires them.
func SpawnBoard()   {}
func TickScore()    {}
func ApplyGravity() {}
func DrawHUD()      {}
func ShowMenu()     {}
func HideMenu()     {}
func PlayMusic()    {}
func SaveScores()   {}

// Run conditions.
func IsPaused() bool   { return false }
func HasPlayers() bool { return true }

// SeedScores inserts an initial high score table.
func SeedScores(b host.Builder) error {
	b.InsertResource(typeinfo.New[HighScores]("HighScores"), HighScores{Top: []int{100, 50, 10}})
	return nil
}

// AnnounceReady runs in the finish phase.
func AnnounceReady(host.Builder) error {
	slog.Debug("Game plugins finished building.")
	return nil
}

// Register registers the vocabulary with the registry.
func (m *Module) Register(r *registry.Registry) {
	registry.RegisterType[Settings](r, "Settings")
	registry.RegisterType[Score](r, "Score")
	registry.RegisterType[HighScores](r, "HighScores")
	registry.RegisterType[Level](r, "Level")
	registry.RegisterType[ScoreChanged](r, "ScoreChanged")
	registry.RegisterType[MatchEnded](r, "MatchEnded")
	registry.RegisterType[State](r, "GameState")
	registry.RegisterType[PauseMenu](r, "PauseMenu")

	r.RegisterValue("GameState.Menu", Menu)
	r.RegisterValue("GameState.Playing", Playing)
	r.RegisterValue("GameState.GameOver", GameOver)
	r.RegisterValue("PauseMenu.Resumed", Resumed)
	r.RegisterValue("PauseMenu.Paused", Paused)
	r.RegisterValue("starting_score", Score{Points: 0})

	r.RegisterFactory("level", NewLevel)
	r.RegisterFactory("high_scores", NewHighScores)

	r.RegisterSystem("spawn_board", SpawnBoard)
	r.RegisterSystem("tick_score", TickScore)
	r.RegisterSystem("apply_gravity", ApplyGravity)
	r.RegisterSystem("draw_hud", DrawHUD)
	r.RegisterSystem("show_menu", ShowMenu)
	r.RegisterSystem("hide_menu", HideMenu)
	r.RegisterSystem("play_music", PlayMusic)
	r.RegisterSystem("save_scores", SaveScores)

	r.RegisterCondition("is_paused", IsPaused)
	r.RegisterCondition("has_players", HasPlayers)

	r.RegisterHook("seed_scores", SeedScores)
	r.RegisterHook("announce_ready", AnnounceReady)

	r.RegisterPlugin(AudioPlugin{})
}
