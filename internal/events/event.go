// Package events defines the game events published to the broker and to
// spectators, and the Notifier interface both implement.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/vovakirdan/mazehack/internal/games/maze"
	"github.com/vovakirdan/mazehack/internal/games/maze/levels"
)

// Type names an event on the wire.
type Type string

const (
	TypeStarted       Type = "started"
	TypeSteer         Type = "steer"
	TypeLevelReset    Type = "level_reset"
	TypeLevelAdvanced Type = "level_advanced"
	TypeFinished      Type = "finished"
	TypeRestarted     Type = "restarted"
)

// Event is one game event. Fields that do not apply to a type are omitted.
type Event struct {
	Type    Type      `json:"type"`
	RunID   string    `json:"run_id,omitempty"`
	Player  string    `json:"player,omitempty"`
	Level   int       `json:"level"` // 1-indexed
	LevelID string    `json:"level_id,omitempty"`
	Ticks   uint64    `json:"ticks,omitempty"`
	Resets  int       `json:"resets,omitempty"`
	Reason  string    `json:"reason,omitempty"`
	DirX    float64   `json:"dir_x,omitempty"`
	DirY    float64   `json:"dir_y,omitempty"`
	At      time.Time `json:"at"`
}

// FromEffect converts a game effect into an event. Effects that only drive
// local presentation (audio cues, background loads) return false.
func FromEffect(e maze.Effect, lvls []levels.Level, at time.Time) (Event, bool) {
	ev := Event{Level: e.Level + 1, At: at}
	if e.Level >= 0 && e.Level < len(lvls) {
		ev.LevelID = lvls[e.Level].ID
	}

	switch e.Kind {
	case maze.EffectStarted:
		ev.Type = TypeStarted
	case maze.EffectKeyPressCue:
		ev.Type = TypeSteer
		ev.DirX, ev.DirY = e.Direction.X, e.Direction.Y
	case maze.EffectLevelReset:
		ev.Type = TypeLevelReset
		ev.Reason = string(e.Reason)
	case maze.EffectLevelAdvanced:
		ev.Type = TypeLevelAdvanced
		ev.Ticks = e.Ticks
	case maze.EffectFinished:
		ev.Type = TypeFinished
		ev.Ticks = e.Ticks
		ev.Resets = e.Resets
	case maze.EffectRestarted:
		ev.Type = TypeRestarted
	default:
		return Event{}, false
	}
	return ev, true
}

// Notifier receives game events.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// Nop discards every event.
type Nop struct{}

// Notify implements Notifier.
func (Nop) Notify(context.Context, Event) error { return nil }

// Fanout delivers each event to every notifier and joins their errors.
type Fanout []Notifier

// Notify implements Notifier.
func (f Fanout) Notify(ctx context.Context, ev Event) error {
	var errs []error
	for _, n := range f {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
