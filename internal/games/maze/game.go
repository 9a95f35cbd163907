package maze

import (
	"math/rand"
	"time"

	"github.com/vovakirdan/mazehack/internal/core"
	"github.com/vovakirdan/mazehack/internal/games/maze/levels"
)

// Game adapts the session state machine to the platform loop: it owns the
// session, the RNG and the viewport, and queues effects for the platform.
type Game struct {
	levels       []levels.Level
	rules        Rules
	theme        Theme
	images       ImageSource
	rng          *rand.Rand
	session      Session
	effects      []Effect
	viewport     Viewport
	screenW      int
	screenH      int
	tickInterval time.Duration
}

// Option configures a Game.
type Option func(*Game)

// WithRules overrides the default rules.
func WithRules(r Rules) Option {
	return func(g *Game) { g.rules = r }
}

// WithTheme sets marker images and wall opacity.
func WithTheme(t Theme) Option {
	return func(g *Game) { g.theme = t }
}

// WithImages sets the source used for background and marker images.
func WithImages(src ImageSource) Option {
	return func(g *Game) { g.images = src }
}

// New creates a game over the given level list. The list must not be empty.
func New(lvls []levels.Level, opts ...Option) *Game {
	g := &Game{
		levels:       lvls,
		rules:        DefaultRules(),
		tickInterval: core.DefaultTickInterval,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.Reset(core.DefaultConfig())
	return g
}

// ID returns the game identifier used for score storage.
func (g *Game) ID() string {
	return "maze"
}

// Title returns the display name.
func (g *Game) Title() string {
	return "Maze Hack"
}

// Reset returns the game to the start screen.
func (g *Game) Reset(cfg core.RuntimeConfig) {
	g.rng = rand.New(rand.NewSource(cfg.Seed))
	if cfg.TickInterval > 0 {
		g.tickInterval = cfg.TickInterval
	}
	g.session = NewSession(g.levels)
	g.effects = nil
	g.Resize(cfg.ScreenW, cfg.ScreenH)
}

// Resize recomputes the viewport. The logical resolution is unchanged.
func (g *Game) Resize(screenW, screenH int) {
	g.screenW = screenW
	g.screenH = screenH
	g.viewport = NewViewport(screenW, screenH, g.rules.Width, g.rules.Height)
}

// Dispatch applies a single event and queues its effects.
func (g *Game) Dispatch(ev Event) {
	var effects []Effect
	g.session, effects = Advance(g.levels, g.rules, g.session, ev, g.rng)
	g.effects = append(g.effects, effects...)
}

// HandleInput applies one frame of input without advancing time.
func (g *Game) HandleInput(in core.InputFrame) {
	if in.Empty() {
		return
	}
	if g.session.Phase == PhaseEnd && (in.Has(core.ActionRestart) || in.Has(core.ActionConfirm)) {
		g.Dispatch(Restart{})
		return
	}

	if g.session.Phase == PhaseStart && len(in.Keys) == 0 && in.Has(core.ActionConfirm) {
		g.Dispatch(RemoteStart{})
		return
	}

	for _, k := range in.Keys {
		g.Dispatch(KeyPress{Code: k})
	}
}

// Tick advances the simulation by one period.
func (g *Game) Tick() {
	g.Dispatch(Tick{})
}

// Effects returns and clears the queued effects.
func (g *Game) Effects() []Effect {
	out := g.effects
	g.effects = nil
	return out
}

// State returns the platform-facing game state.
func (g *Game) State() core.GameState {
	return core.GameState{
		Score:    int(g.session.Tick),
		Running:  g.session.Phase == PhaseRunning,
		GameOver: g.session.Phase == PhaseEnd,
	}
}

// Session returns the current session.
func (g *Game) Session() Session {
	return g.session
}

// Phase returns the current phase.
func (g *Game) Phase() Phase {
	return g.session.Phase
}

// Levels returns the level list.
func (g *Game) Levels() []levels.Level {
	return g.levels
}

// Viewport returns the current viewport.
func (g *Game) Viewport() Viewport {
	return g.viewport
}

// TickInterval returns the simulation period.
func (g *Game) TickInterval() time.Duration {
	return g.tickInterval
}
