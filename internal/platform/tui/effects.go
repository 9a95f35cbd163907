package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/mazehack/internal/assets"
	"github.com/vovakirdan/mazehack/internal/events"
	"github.com/vovakirdan/mazehack/internal/games/maze"
	"github.com/vovakirdan/mazehack/internal/storage"
)

// AudioCues is the subset of the sound manager the game drives.
type AudioCues interface {
	PlayKeyPress(rate float64)
	StartAmbient()
	StopAmbient()
	PlayCompletion()
}

// silentAudio is used when no audio is configured.
type silentAudio struct{}

func (silentAudio) PlayKeyPress(float64) {}
func (silentAudio) StartAmbient() {}
func (silentAudio) StopAmbient() {}
func (silentAudio) PlayCompletion() {}

// RunStore persists finished runs.
type RunStore interface {
	SaveRun(r storage.Run) (string, error)
	SaveLevelTime(lt storage.LevelTime) (int64, error)
}

// Services are the side-effect targets of a game session. Nil fields are
// replaced with no-op implementations.
type Services struct {
	Store  RunStore
	Audio  AudioCues
	Images *assets.Cache
	Logger *log.Logger
	Player string // recorded with runs; the SSH user or local user name

	// Notifier is called from the update loop, once per event and in
	// event order. It must not block; put network sinks behind an
	// events.Queue.
	Notifier events.Notifier
}

func (s Services) withDefaults() Services {
	if s.Audio == nil {
		s.Audio = silentAudio{}
	}
	if s.Notifier == nil {
		s.Notifier = events.Nop{}
	}
	if s.Logger == nil {
		s.Logger = log.Default()
	}
	return s
}

// AssetLoadedMsg reports that a background or marker image finished loading.
type AssetLoadedMsg struct {
	Ref string
	Err error
}

// runState tracks persistence for the run in progress.
type runState struct {
	id          string
	levelResets int // failures on the current level
}

// dispatch carries out effects and returns commands for the asynchronous ones.
// Events are handed to the notifier here, in effect order.
func (m *Model) dispatch(effects []maze.Effect) []tea.Cmd {
	var cmds []tea.Cmd
	now := time.Now()

	for _, e := range effects {
		// A restart ends the run; its event still belongs to it.
		runID := m.run.id

		switch e.Kind {
		case maze.EffectStarted:
			m.run = runState{id: storage.NewRunID()}
			runID = m.run.id
			m.svc.Logger.Info("run started", "run", m.run.id, "player", m.svc.Player)
		case maze.EffectLoadBackground:
			if cmd := m.loadAsset(e.URL); cmd != nil {
				cmds = append(cmds, cmd)
			}
		case maze.EffectStartAmbient:
			m.svc.Audio.StartAmbient()
		case maze.EffectStopAmbient:
			m.svc.Audio.StopAmbient()
		case maze.EffectKeyPressCue:
			m.svc.Audio.PlayKeyPress(e.Rate)
		case maze.EffectCompletionCue:
			m.svc.Audio.PlayCompletion()
		case maze.EffectLevelReset:
			m.run.levelResets++
			m.svc.Logger.Debug("level reset", "level", e.Level+1, "reason", e.Reason)
		case maze.EffectLevelAdvanced:
			m.saveLevelTime(e)
			m.run.levelResets = 0
		case maze.EffectFinished:
			m.saveRun(e)
		case maze.EffectRestarted:
			m.run = runState{}
		}

		if ev, ok := events.FromEffect(e, m.game.Levels(), now); ok {
			ev.RunID = runID
			ev.Player = m.svc.Player
			if err := m.svc.Notifier.Notify(context.Background(), ev); err != nil {
				m.svc.Logger.Debug("event not delivered", "type", ev.Type, "err", err)
			}
		}
	}
	return cmds
}

func (m *Model) saveLevelTime(e maze.Effect) {
	if m.svc.Store == nil || m.run.id == "" {
		return
	}
	lt := storage.LevelTime{
		RunID:      m.run.id,
		LevelID:    m.game.Levels()[e.Level].ID,
		LevelIndex: e.Level,
		Ticks:      int64(e.Ticks),
		Resets:     m.run.levelResets,
	}
	if _, err := m.svc.Store.SaveLevelTime(lt); err != nil {
		m.svc.Logger.Warn("could not save level time", "err", err)
	}
}

func (m *Model) saveRun(e maze.Effect) {
	m.svc.Logger.Info("run finished", "run", m.run.id, "ticks", e.Ticks, "resets", e.Resets)
	if m.svc.Store == nil || m.run.id == "" {
		return
	}
	r := storage.Run{
		RunID:  m.run.id,
		Player: m.svc.Player,
		Ticks:  int64(e.Ticks),
		Resets: e.Resets,
		Levels: len(m.game.Levels()),
		TickMS: int(m.game.TickInterval() / time.Millisecond),
	}
	if _, err := m.svc.Store.SaveRun(r); err != nil {
		m.svc.Logger.Warn("could not save run", "err", err)
	}
}

// loadAsset starts loading ref and returns a command that reports when it
// is ready, so the frame can be redrawn.
func (m *Model) loadAsset(ref string) tea.Cmd {
	if m.svc.Images == nil || ref == "" {
		return nil
	}
	if _, state := m.svc.Images.Get(ref); state == assets.StateLoaded || state == assets.StateFailed {
		return nil
	}
	cache := m.svc.Images
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_, err := cache.Wait(ctx, ref)
		return AssetLoadedMsg{Ref: ref, Err: err}
	}
}
