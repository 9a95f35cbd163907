package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vovakirdan/mazehack/internal/core"
	"github.com/vovakirdan/mazehack/internal/games/maze"
	"github.com/vovakirdan/mazehack/internal/games/maze/levels"
)

func TestFromEffect(t *testing.T) {
	lvls := []levels.Level{{ID: "a"}, {ID: "b"}}
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name   string
		effect maze.Effect
		want   Event
		ok     bool
	}{
		{
			name:   "started",
			effect: maze.Effect{Kind: maze.EffectStarted},
			want:   Event{Type: TypeStarted, Level: 1, LevelID: "a", At: at},
			ok:     true,
		},
		{
			name:   "steer",
			effect: maze.Effect{Kind: maze.EffectKeyPressCue, Level: 1, Rate: 1.3, Direction: core.V(0, -1)},
			want:   Event{Type: TypeSteer, Level: 2, LevelID: "b", DirY: -1, At: at},
			ok:     true,
		},
		{
			name:   "reset",
			effect: maze.Effect{Kind: maze.EffectLevelReset, Reason: maze.FailWall},
			want:   Event{Type: TypeLevelReset, Level: 1, LevelID: "a", Reason: "wall", At: at},
			ok:     true,
		},
		{
			name:   "finished",
			effect: maze.Effect{Kind: maze.EffectFinished, Level: 1, Ticks: 500, Resets: 3},
			want:   Event{Type: TypeFinished, Level: 2, LevelID: "b", Ticks: 500, Resets: 3, At: at},
			ok:     true,
		},
		{
			name:   "audio only",
			effect: maze.Effect{Kind: maze.EffectStartAmbient},
			ok:     false,
		},
		{
			name:   "background only",
			effect: maze.Effect{Kind: maze.EffectLoadBackground, URL: "x.png"},
			ok:     false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := FromEffect(tc.effect, lvls, at)
			if ok != tc.ok {
				t.Fatalf("ok = %v, expected %v", ok, tc.ok)
			}
			if ok && got != tc.want {
				t.Errorf("event = %+v, expected %+v", got, tc.want)
			}
		})
	}
}

type recorder struct {
	got []Event
	err error
}

func (r *recorder) Notify(_ context.Context, ev Event) error {
	r.got = append(r.got, ev)
	return r.err
}

func TestFanout(t *testing.T) {
	boom := errors.New("boom")
	a := &recorder{}
	b := &recorder{err: boom}
	f := Fanout{a, nil, b, Nop{}}

	err := f.Notify(context.Background(), Event{Type: TypeStarted})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, expected to wrap boom", err)
	}
	if len(a.got) != 1 || len(b.got) != 1 {
		t.Errorf("deliveries = %d/%d, expected 1/1", len(a.got), len(b.got))
	}
}
