// Package maze implements the maze-traversal game: a dot moving at constant
// velocity, steered by randomized key bindings, that must reach each level's
// end marker without touching a wall or leaving the field.
//
// Game rules live in Advance, a transition function from (session, event)
// to (session, effects). The Game type adapts it to the platform loop.
package maze

import (
	"math/rand"

	"github.com/vovakirdan/mazehack/internal/core"
	"github.com/vovakirdan/mazehack/internal/games/maze/levels"
)

// Phase is the overall session phase.
type Phase int

const (
	PhaseStart   Phase = iota // idle, showing the start prompt
	PhaseRunning              // loop active
	PhaseEnd                  // all levels cleared
)

func (p Phase) String() string {
	switch p {
	case PhaseStart:
		return "start"
	case PhaseRunning:
		return "running"
	case PhaseEnd:
		return "end"
	default:
		return "unknown"
	}
}

// Cardinal unit vectors.
var (
	DirUp    = core.V(0, -1)
	DirDown  = core.V(0, 1)
	DirLeft  = core.V(-1, 0)
	DirRight = core.V(1, 0)
)

// Rules holds the fixed parameters of the simulation.
type Rules struct {
	Width, Height float64 // logical field size
	HitboxHalf    float64 // half-width of the square around the end coordinate
	KeyRateMin    float64 // key press cue playback rate range [min, max)
	KeyRateMax    float64
}

// DefaultRules returns the standard 1920×1080 rules.
func DefaultRules() Rules {
	return Rules{
		Width:      core.LogicalWidth,
		Height:     core.LogicalHeight,
		HitboxHalf: 50,
		KeyRateMin: 1.2,
		KeyRateMax: 1.6,
	}
}

// Player is the per-attempt player state.
type Player struct {
	Position  core.Vec
	Direction core.Vec
	Trail     []core.Vec // past positions, oldest first
}

// Session is the complete mutable state of one game.
type Session struct {
	Phase      Phase
	LevelIndex int
	Player     Player
	Keys       KeyMapping
	Tick       uint64 // running ticks in this run
	LevelTick  uint64 // running ticks in the current level
	Resets     int    // failures in this run
}

// NewSession returns a session in the start phase positioned on level 0.
func NewSession(lvls []levels.Level) Session {
	s := Session{Phase: PhaseStart}
	if len(lvls) > 0 {
		s.Player = freshPlayer(lvls[0])
	}
	return s
}

func freshPlayer(l levels.Level) Player {
	return Player{Position: l.Start, Direction: DirRight}
}

// Event is an input to Advance.
type Event interface {
	event()
}

// Tick advances the simulation by one fixed period.
type Tick struct{}

// KeyPress is a physical key press.
type KeyPress struct {
	Code core.KeyCode
}

// Restart returns a finished session to the start screen.
type Restart struct{}

// RemoteStart starts the game as if a key had been pressed on the start screen.
type RemoteStart struct{}

// RemoteReset abandons the current run and returns to the start screen.
type RemoteReset struct{}

func (Tick) event()        {}
func (KeyPress) event()    {}
func (Restart) event()     {}
func (RemoteStart) event() {}
func (RemoteReset) event() {}

// FailReason says why a level attempt was reset.
type FailReason string

const (
	FailWall   FailReason = "wall"
	FailBounds FailReason = "bounds"
)

// EffectKind enumerates side effects requested by a transition.
type EffectKind int

const (
	EffectStarted        EffectKind = iota // start -> running
	EffectLoadBackground                   // URL holds the level background
	EffectStartAmbient
	EffectStopAmbient
	EffectKeyPressCue // Rate holds the playback rate
	EffectLevelReset  // Reason holds the failure cause
	EffectLevelAdvanced
	EffectFinished
	EffectCompletionCue
	EffectRestarted // back on the start screen
)

func (k EffectKind) String() string {
	switch k {
	case EffectStarted:
		return "started"
	case EffectLoadBackground:
		return "load_background"
	case EffectStartAmbient:
		return "start_ambient"
	case EffectStopAmbient:
		return "stop_ambient"
	case EffectKeyPressCue:
		return "key_press_cue"
	case EffectLevelReset:
		return "level_reset"
	case EffectLevelAdvanced:
		return "level_advanced"
	case EffectFinished:
		return "finished"
	case EffectCompletionCue:
		return "completion_cue"
	case EffectRestarted:
		return "restarted"
	default:
		return "unknown"
	}
}

// Effect is a side effect for the platform to carry out.
type Effect struct {
	Kind      EffectKind
	Level     int     // level index the effect refers to
	URL       string  // EffectLoadBackground
	Rate      float64 // EffectKeyPressCue
	Reason    FailReason
	Ticks     uint64 // EffectLevelAdvanced: ticks spent on the cleared level; EffectFinished: run total
	Resets    int    // EffectFinished
	Direction core.Vec
}

// Advance applies ev to s and returns the next session and the effects the
// transition requests. rng is consumed for key shuffles and cue pitch.
//
// The returned session may share the trail's backing array with s, so the
// caller must treat s as consumed.
func Advance(lvls []levels.Level, rules Rules, s Session, ev Event, rng *rand.Rand) (Session, []Effect) {
	if len(lvls) == 0 {
		return s, nil
	}

	switch e := ev.(type) {
	case Tick:
		if s.Phase != PhaseRunning {
			return s, nil
		}
		return step(lvls, rules, s, rng)

	case KeyPress:
		switch s.Phase {
		case PhaseStart:
			return start(lvls, s, rng)
		case PhaseRunning:
			return steer(rules, s, e.Code, rng)
		}
		return s, nil

	case RemoteStart:
		if s.Phase == PhaseStart {
			return start(lvls, s, rng)
		}
		return s, nil

	case Restart:
		if s.Phase != PhaseEnd {
			return s, nil
		}
		return backToStart(lvls), []Effect{{Kind: EffectRestarted}}

	case RemoteReset:
		var effects []Effect
		if s.Phase == PhaseRunning {
			effects = append(effects, Effect{Kind: EffectStopAmbient})
		}
		effects = append(effects, Effect{Kind: EffectRestarted, Level: s.LevelIndex})
		return backToStart(lvls), effects
	}

	return s, nil
}

func backToStart(lvls []levels.Level) Session {
	return NewSession(lvls)
}

// start enters the running phase on the current level.
func start(lvls []levels.Level, s Session, rng *rand.Rand) (Session, []Effect) {
	idx := s.LevelIndex
	if idx < 0 || idx >= len(lvls) {
		idx = 0
	}

	s.Phase = PhaseRunning
	s.LevelIndex = idx
	s.Keys = RandomKeyMapping(rng)
	s.Player = freshPlayer(lvls[idx])
	s.Tick = 0
	s.LevelTick = 0
	s.Resets = 0

	return s, []Effect{
		{Kind: EffectStarted, Level: idx},
		{Kind: EffectStartAmbient},
		{Kind: EffectLoadBackground, Level: idx, URL: lvls[idx].Background},
	}
}

// steer applies a key press while running. Unmapped keys are ignored.
func steer(rules Rules, s Session, code core.KeyCode, rng *rand.Rand) (Session, []Effect) {
	dir, ok := s.Keys.Direction(code)
	if !ok {
		return s, nil
	}
	s.Player.Direction = dir
	rate := rules.KeyRateMin + rng.Float64()*(rules.KeyRateMax-rules.KeyRateMin)
	return s, []Effect{{Kind: EffectKeyPressCue, Level: s.LevelIndex, Rate: rate, Direction: dir}}
}

// step is one tick of the running loop.
func step(lvls []levels.Level, rules Rules, s Session, rng *rand.Rand) (Session, []Effect) {
	level := lvls[s.LevelIndex]
	from := s.Player.Position

	s.Tick++
	s.LevelTick++
	s.Player.Trail = append(s.Player.Trail, from)
	s.Player.Position = from.Add(s.Player.Direction.Scale(level.Speed))

	// Failure takes precedence over success. Both ends of the step are
	// checked so a position already inside a wall still fails.
	if reason, failed := collides(rules, level, from); failed {
		return reset(s, level, reason)
	}
	if reason, failed := collides(rules, level, s.Player.Position); failed {
		return reset(s, level, reason)
	}

	if core.Square(level.End.Pos(), rules.HitboxHalf).ContainsStrict(s.Player.Position) {
		return advanceLevel(lvls, s, rng)
	}

	return s, nil
}

// collides reports whether p hits a wall or leaves the field.
func collides(rules Rules, level levels.Level, p core.Vec) (FailReason, bool) {
	for _, w := range level.Walls {
		if w.ContainsStrict(p) {
			return FailWall, true
		}
	}
	if !core.InBounds(p, rules.Width, rules.Height) {
		return FailBounds, true
	}
	return "", false
}

func reset(s Session, level levels.Level, reason FailReason) (Session, []Effect) {
	s.Player = freshPlayer(level)
	s.Resets++
	return s, []Effect{{Kind: EffectLevelReset, Level: s.LevelIndex, Reason: reason}}
}

func advanceLevel(lvls []levels.Level, s Session, rng *rand.Rand) (Session, []Effect) {
	cleared := s.LevelIndex
	levelTicks := s.LevelTick

	if cleared >= len(lvls)-1 {
		s.Phase = PhaseEnd
		return s, []Effect{
			{Kind: EffectLevelAdvanced, Level: cleared, Ticks: levelTicks},
			{Kind: EffectFinished, Level: cleared, Ticks: s.Tick, Resets: s.Resets},
			{Kind: EffectCompletionCue},
			{Kind: EffectStopAmbient},
		}
	}

	next := cleared + 1
	s.LevelIndex = next
	s.LevelTick = 0
	s.Keys = RandomKeyMapping(rng)
	s.Player = freshPlayer(lvls[next])

	return s, []Effect{
		{Kind: EffectLevelAdvanced, Level: cleared, Ticks: levelTicks},
		{Kind: EffectLoadBackground, Level: next, URL: lvls[next].Background},
	}
}
