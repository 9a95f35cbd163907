package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/mazehack/internal/broker"
	"github.com/vovakirdan/mazehack/internal/core"
	"github.com/vovakirdan/mazehack/internal/games/maze"
)

// ControlMsg carries a remote control command into the update loop.
type ControlMsg struct {
	Command broker.Command
}

// Model is the Bubble Tea model for one maze session.
type Model struct {
	game      *maze.Game
	screen    *core.Screen
	svc       Services
	config    core.RuntimeConfig
	keyMapper *KeyMapper
	palette   Palette
	run       runState

	// gen identifies the live tick chain. Bumping it orphans any tick
	// still in flight.
	gen     int
	ticking bool

	quitting bool
}

// NewModel creates a model for game and puts the game on the start screen.
func NewModel(game *maze.Game, svc Services, cfg core.RuntimeConfig) Model {
	// Use time-based seed if not specified
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = core.DefaultTickInterval
	}

	game.Reset(cfg)

	return Model{
		game:      game,
		screen:    core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		svc:       svc.withDefaults(),
		config:    cfg,
		keyMapper: NewKeyMapper(),
		palette:   NewPalette(nil),
	}
}

// WithRenderer returns m drawing its colors through r.
func (m Model) WithRenderer(r *lipgloss.Renderer) Model {
	m.palette = NewPalette(r)
	return m
}

// Init only sets the window title: the tick loop runs once a key starts
// the game.
func (m Model) Init() tea.Cmd {
	return tea.SetWindowTitle(m.game.Title())
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick(msg)

	case ControlMsg:
		return m.handleControl(msg)

	case AssetLoadedMsg:
		if msg.Err != nil {
			m.svc.Logger.Warn("asset unavailable", "ref", msg.Ref, "err", msg.Err)
		}
		return m, nil
	}

	return m, nil
}

// handleKey applies a key immediately. Steering must not wait for the next
// tick, and no tick runs on the start screen.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+s" {
		m.saveScreenshot()
		return m, nil
	}

	frame := core.NewInputFrame()
	if m.keyMapper.MapKeyToFrame(msg, &frame) {
		m.quitting = true
		m.ticking = false
		m.svc.Audio.StopAmbient()
		return m, tea.Quit
	}

	m.game.HandleInput(frame)
	return m, m.settle()
}

func (m Model) handleTick(msg TickMsg) (tea.Model, tea.Cmd) {
	if !m.ticking || msg.Gen != m.gen {
		return m, nil
	}

	m.game.Tick()
	cmd := m.settle()
	if m.ticking {
		cmd = tea.Batch(cmd, tickCmd(m.config.TickInterval, m.gen))
	}
	return m, cmd
}

func (m Model) handleControl(msg ControlMsg) (tea.Model, tea.Cmd) {
	switch msg.Command {
	case broker.CommandStart:
		m.game.Dispatch(maze.RemoteStart{})
	case broker.CommandReset:
		m.game.Dispatch(maze.RemoteReset{})
	default:
		return m, nil
	}
	m.svc.Logger.Info("remote command", "command", msg.Command)
	return m, m.settle()
}

// handleResize keeps the session; only the viewport changes.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.screen.Resize(msg.Width, msg.Height)
	m.game.Resize(msg.Width, msg.Height)
	return m, nil
}

// settle dispatches queued effects and starts or stops the tick chain to
// match the game phase.
func (m *Model) settle() tea.Cmd {
	cmds := m.dispatch(m.game.Effects())

	running := m.game.State().Running
	switch {
	case running && !m.ticking:
		m.gen++
		m.ticking = true
		cmds = append(cmds, tickCmd(m.config.TickInterval, m.gen))
	case !running && m.ticking:
		m.gen++
		m.ticking = false
	}

	return tea.Batch(cmds...)
}

// saveScreenshot writes the current frame as plain text.
func (m *Model) saveScreenshot() {
	m.game.Render(m.screen)

	dir := filepath.Join(os.Getenv("HOME"), ".mazehack", "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.svc.Logger.Warn("could not create screenshot dir", "err", err)
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", m.game.ID(), timestamp))
	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		m.svc.Logger.Warn("could not save screenshot", "err", err)
		return
	}
	m.svc.Logger.Info("screenshot saved", "path", path)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	m.game.Render(m.screen)
	return m.palette.Render(m.screen)
}

// NewProgram wraps m in a full-screen program. Extra options are appended.
func NewProgram(m Model, opts ...tea.ProgramOption) *tea.Program {
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	return tea.NewProgram(m, opts...)
}

// Run starts a full-screen program for m and blocks until it exits.
func Run(m Model, opts ...tea.ProgramOption) error {
	_, err := NewProgram(m, opts...).Run()
	return err
}
