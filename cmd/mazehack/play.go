package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/mazehack/internal/audio"
	"github.com/vovakirdan/mazehack/internal/broker"
	"github.com/vovakirdan/mazehack/internal/config"
	"github.com/vovakirdan/mazehack/internal/core"
	"github.com/vovakirdan/mazehack/internal/events"
	"github.com/vovakirdan/mazehack/internal/platform/tui"
	"github.com/vovakirdan/mazehack/internal/spectate"
	"github.com/vovakirdan/mazehack/internal/storage"
)

var (
	flagPlaySpectate bool
	flagNoSound      bool
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in this terminal",
	Long: `Start a game in this terminal.

Controls:
  Any key    - Start
  Arrows     - Steer (the mapping is shuffled every level)
  R/Enter    - Back to the start screen after the last level
  Ctrl+S     - Save a text screenshot to ~/.mazehack/screenshots
  Q/Ctrl+C   - Quit

With a broker configured, game events are published to <prefix>/events and
{"command": "start"} or {"command": "reset"} on <prefix>/control drives the
game remotely.

Examples:
  mazehack play
  mazehack play --levels ./my-levels
  mazehack play --broker tcp://localhost:1883 --spectate`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

func init() {
	playCmd.Flags().BoolVar(&flagPlaySpectate, "spectate", false, "Serve the websocket spectator feed while playing")
	playCmd.Flags().BoolVar(&flagNoSound, "no-sound", false, "Disable audio cues")
}

func runPlay(_ *cobra.Command, _ []string) {
	cfg, lvls := mustLoad()

	logger, logFile := newFileLogger(cfg.Log)
	defer logFile.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	images := newImageCache(cfg.Assets, logger)
	defer images.Close()

	if flagNoSound {
		cfg.Audio.Enabled = false
	}
	sound := audio.NewSoundManager(cfg.Audio, logger.WithPrefix("audio"))
	if err := sound.Initialize(); err != nil {
		logger.Warn("audio unavailable, playing silently", "err", err)
	}
	defer sound.Cleanup()

	// Open score storage
	var runs tui.RunStore
	store, err := storage.Open(config.ExpandHome(cfg.Storage.DB))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open scores database: %v\n", err)
		// Continue without storage - game still works
	} else {
		defer store.Close()
		runs = store
	}

	client := connectBroker(ctx, cfg.Broker, logger)
	if client != nil {
		defer client.Close()
	}

	var hub *spectate.Hub
	if flagPlaySpectate || cfg.Spectate.Enabled {
		hub = startSpectate(ctx, cfg.Spectate.Addr, logger)
	}

	queue := events.NewQueue(notifierFor(client, hub), logger, 0, 0)
	defer queue.Close()

	// Get terminal size
	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	rcfg := core.RuntimeConfig{
		ScreenW:      width,
		ScreenH:      height,
		TickInterval: cfg.Game.TickInterval(),
		Seed:         flagSeed,
	}

	model := tui.NewModel(gameFactory(cfg, lvls, images)(), tui.Services{
		Store:    runs,
		Audio:    sound,
		Notifier: queue,
		Images:   images,
		Logger:   logger,
		Player:   localPlayer(),
	}, rcfg)
	p := tui.NewProgram(model)

	if client != nil {
		publishStatus(ctx, client, broker.StatusIdle)
		if err := client.SubscribeControl(ctx, tui.ForwardControl(ctx, p, logger)); err != nil {
			logger.Warn("remote control unavailable", "err", err)
		}
	}

	logger.Info("game started", "levels", len(lvls), "difficulty", cfg.Game.Difficulty, "audio", sound.Active())
	_, runErr := p.Run()

	if hub != nil {
		logger.Info("spectator feed closing", "spectators", hub.Count())
	}

	if client != nil {
		publishStatus(ctx, client, broker.StatusIdle)
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", runErr)
		os.Exit(1)
	}
}

func publishStatus(ctx context.Context, client *broker.Client, status string) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	//nolint:errcheck // Best-effort status, the game runs without it
	client.PublishStatus(ctx, status)
}
