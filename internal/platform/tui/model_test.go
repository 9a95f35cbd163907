package tui

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/mazehack/internal/broker"
	"github.com/vovakirdan/mazehack/internal/core"
	"github.com/vovakirdan/mazehack/internal/events"
	"github.com/vovakirdan/mazehack/internal/games/maze"
	"github.com/vovakirdan/mazehack/internal/games/maze/levels"
	"github.com/vovakirdan/mazehack/internal/storage"
)

type fakeAudio struct {
	keyPress, ambientOn, ambientOff, completion int
	rates                                       []float64
}

func (a *fakeAudio) PlayKeyPress(rate float64) {
	a.keyPress++
	a.rates = append(a.rates, rate)
}
func (a *fakeAudio) StartAmbient() { a.ambientOn++ }
func (a *fakeAudio) StopAmbient() { a.ambientOff++ }
func (a *fakeAudio) PlayCompletion() { a.completion++ }

type fakeStore struct {
	runs   []storage.Run
	levels []storage.LevelTime
}

func (s *fakeStore) SaveRun(r storage.Run) (string, error) {
	s.runs = append(s.runs, r)
	return r.RunID, nil
}

func (s *fakeStore) SaveLevelTime(lt storage.LevelTime) (int64, error) {
	s.levels = append(s.levels, lt)
	return int64(len(s.levels)), nil
}

type recorder struct {
	mu     sync.Mutex
	events []events.Event
	delays map[events.Type]time.Duration // simulated slow delivery
}

func (r *recorder) Notify(_ context.Context, ev events.Event) error {
	time.Sleep(r.delays[ev.Type])
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) last() events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return events.Event{}
	}
	return r.events[len(r.events)-1]
}

func (r *recorder) types() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Type, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

// shortLevel is cleared after four ticks: 150, 200, 250 (hitbox edge), 300.
func shortLevel() []levels.Level {
	return []levels.Level{{
		ID:    "short",
		Name:  "Short",
		Start: core.V(100, 540),
		End:   levels.EndCoords{X: 300, Y: 540},
		Speed: 50,
	}}
}

type harness struct {
	m     Model
	audio *fakeAudio
	store *fakeStore
	rec   *recorder
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{audio: &fakeAudio{}, store: &fakeStore{}, rec: &recorder{}}
	svc := Services{
		Store:    h.store,
		Audio:    h.audio,
		Notifier: h.rec,
		Logger:   log.New(io.Discard),
		Player:   "tester",
	}
	cfg := core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickInterval: time.Millisecond, Seed: 1}
	h.m = NewModel(maze.New(shortLevel()), svc, cfg)
	return h
}

// send applies msg and runs every resulting command except ticks, which
// the test delivers itself.
func (h *harness) send(msg tea.Msg) {
	next, cmd := h.m.Update(msg)
	h.m = next.(Model)
	runCmd(cmd)
}

func runCmd(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			runCmd(c)
		}
	}
}

func (h *harness) tick() {
	h.send(TickMsg{Gen: h.m.gen, At: time.Now()})
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestModelStartsOnAnyKey(t *testing.T) {
	h := newHarness(t)
	if h.m.ticking {
		t.Fatal("tick loop should not run on the start screen")
	}

	h.send(runeKey('x'))

	if h.m.game.Phase() != maze.PhaseRunning {
		t.Fatalf("phase = %v, want running", h.m.game.Phase())
	}
	if !h.m.ticking || h.m.gen != 1 {
		t.Errorf("ticking=%v gen=%d, want true/1", h.m.ticking, h.m.gen)
	}
	if h.audio.ambientOn != 1 {
		t.Errorf("ambient started %d times, want 1", h.audio.ambientOn)
	}
	if h.m.run.id == "" {
		t.Error("run id not assigned on start")
	}
}

func TestModelDropsStaleTicks(t *testing.T) {
	h := newHarness(t)
	h.send(runeKey('x'))

	h.send(TickMsg{Gen: h.m.gen - 1})
	if got := h.m.game.Session().Tick; got != 0 {
		t.Errorf("stale tick advanced the game to tick %d", got)
	}

	h.tick()
	if got := h.m.game.Session().Tick; got != 1 {
		t.Errorf("tick = %d, want 1", got)
	}
}

func TestModelFinishesRun(t *testing.T) {
	h := newHarness(t)
	h.send(runeKey('x'))
	for i := 0; i < 4; i++ {
		h.tick()
	}

	if h.m.game.Phase() != maze.PhaseEnd {
		t.Fatalf("phase = %v, want end", h.m.game.Phase())
	}
	if h.m.ticking {
		t.Error("tick loop still running after the end")
	}
	if h.audio.completion != 1 || h.audio.ambientOff != 1 {
		t.Errorf("completion=%d ambientOff=%d, want 1/1", h.audio.completion, h.audio.ambientOff)
	}

	if len(h.store.runs) != 1 {
		t.Fatalf("saved %d runs, want 1", len(h.store.runs))
	}
	run := h.store.runs[0]
	if run.Ticks != 4 || run.Player != "tester" || run.Levels != 1 || run.TickMS != 1 {
		t.Errorf("run = %+v", run)
	}
	if len(h.store.levels) != 1 || h.store.levels[0].LevelID != "short" || h.store.levels[0].RunID != run.RunID {
		t.Errorf("level times = %+v", h.store.levels)
	}

	// Further ticks from the old chain do nothing.
	gen := h.m.gen
	h.send(TickMsg{Gen: gen})
	if h.m.game.Session().Tick != 4 {
		t.Errorf("tick after end moved the game to %d", h.m.game.Session().Tick)
	}

	want := []events.Type{events.TypeStarted, events.TypeLevelAdvanced, events.TypeFinished}
	got := h.rec.types()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestProgramDeliversEventsInOrder(t *testing.T) {
	rec := &recorder{delays: map[events.Type]time.Duration{events.TypeLevelAdvanced: 30 * time.Millisecond}}
	queue := events.NewQueue(rec, log.New(io.Discard), 16, time.Second)
	svc := Services{Notifier: queue, Logger: log.New(io.Discard), Player: "tester"}
	cfg := core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickInterval: time.Millisecond, Seed: 1}
	m := NewModel(maze.New(shortLevel()), svc, cfg)

	p := tea.NewProgram(m,
		tea.WithoutRenderer(),
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
		tea.WithoutSignalHandler(),
	)
	done := make(chan error, 1)
	go func() {
		_, err := p.Run()
		done <- err
	}()

	p.Send(runeKey('x'))
	deadline := time.Now().Add(2 * time.Second)
	for len(rec.types()) < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	p.Quit()
	if err := <-done; err != nil {
		t.Fatalf("program exited with %v", err)
	}
	queue.Close()

	want := []events.Type{events.TypeStarted, events.TypeLevelAdvanced, events.TypeFinished}
	got := rec.types()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
}

func TestModelRestartAfterEnd(t *testing.T) {
	h := newHarness(t)
	h.send(runeKey('x'))
	for i := 0; i < 4; i++ {
		h.tick()
	}

	// Arrow keys on the end screen are ignored.
	h.send(tea.KeyMsg{Type: tea.KeyUp})
	if h.m.game.Phase() != maze.PhaseEnd {
		t.Fatalf("arrow key left the end screen")
	}

	finished := h.m.run.id
	h.send(runeKey('r'))
	if h.m.game.Phase() != maze.PhaseStart {
		t.Fatalf("phase = %v, want start", h.m.game.Phase())
	}
	if h.m.run.id != "" {
		t.Error("run id kept after restart")
	}
	if ev := h.rec.last(); ev.Type != events.TypeRestarted || ev.RunID != finished || finished == "" {
		t.Errorf("restart event = %+v, want restarted for run %q", ev, finished)
	}

	h.send(tea.KeyMsg{Type: tea.KeyDown})
	if !h.m.ticking || h.m.gen != 3 {
		t.Errorf("ticking=%v gen=%d, want a fresh chain", h.m.ticking, h.m.gen)
	}
}

func TestModelSteeringCue(t *testing.T) {
	h := newHarness(t)
	h.send(runeKey('x'))

	for _, k := range []tea.KeyType{tea.KeyUp, tea.KeyDown, tea.KeyLeft, tea.KeyRight} {
		h.send(tea.KeyMsg{Type: k})
	}
	h.send(runeKey('z')) // unmapped

	if h.audio.keyPress != 4 {
		t.Fatalf("key press cues = %d, want 4", h.audio.keyPress)
	}
	for _, r := range h.audio.rates {
		if r < 1.2 || r >= 1.6 {
			t.Errorf("rate %v outside [1.2,1.6)", r)
		}
	}
}

func TestModelRemoteControl(t *testing.T) {
	h := newHarness(t)

	h.send(ControlMsg{Command: broker.CommandStart})
	if h.m.game.Phase() != maze.PhaseRunning || !h.m.ticking {
		t.Fatalf("remote start: phase=%v ticking=%v", h.m.game.Phase(), h.m.ticking)
	}

	h.tick()
	h.send(ControlMsg{Command: broker.CommandReset})
	if h.m.game.Phase() != maze.PhaseStart || h.m.ticking {
		t.Fatalf("remote reset: phase=%v ticking=%v", h.m.game.Phase(), h.m.ticking)
	}
	if h.audio.ambientOff != 1 {
		t.Errorf("ambient stopped %d times, want 1", h.audio.ambientOff)
	}
}

func TestModelResizeKeepsSession(t *testing.T) {
	h := newHarness(t)
	h.send(runeKey('x'))
	h.tick()

	h.send(tea.WindowSizeMsg{Width: 160, Height: 46})

	if h.m.game.Phase() != maze.PhaseRunning || h.m.game.Session().Tick != 1 {
		t.Errorf("resize changed the session: %+v", h.m.game.Snapshot())
	}
	if h.m.screen.Width() != 160 || h.m.screen.Height() != 46 {
		t.Errorf("screen = %dx%d", h.m.screen.Width(), h.m.screen.Height())
	}
	if v := h.m.View(); v == "" {
		t.Error("empty view after resize")
	}
}

func TestModelQuit(t *testing.T) {
	h := newHarness(t)
	h.send(runeKey('x'))

	next, cmd := h.m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m := next.(Model)
	if !m.quitting || cmd == nil {
		t.Fatal("ctrl+c should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit command did not produce QuitMsg")
	}
	if m.View() != "" {
		t.Error("view should be empty after quit")
	}
	if h.audio.ambientOff != 1 {
		t.Error("ambient not stopped on quit")
	}
}
