package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/mazehack/internal/config"
	"github.com/vovakirdan/mazehack/internal/events"
	"github.com/vovakirdan/mazehack/internal/platform/tui"
	"github.com/vovakirdan/mazehack/internal/spectate"
	"github.com/vovakirdan/mazehack/internal/storage"
)

var (
	flagSSHAddr      string
	flagHostKey      string
	flagIdleTimeout  int
	flagSpectate     bool
	flagSpectateAddr string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Maze Hack SSH server",
	Long: `Start an SSH server that allows users to connect and play.

Each SSH connection gets its own game with its own key mappings.
Runs are stored per-server (all users share the same leaderboard).
Audio cues are not played for remote sessions.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.mazehack/host_key

Examples:
  mazehack serve                           # Listen on :23234 with auto-generated key
  mazehack serve --ssh :2222               # Listen on port 2222
  mazehack serve --spectate                # Also stream events on ws://:8080/ws

Users can connect with:
  ssh localhost -p 23234`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
	serveCmd.Flags().BoolVar(&flagSpectate, "spectate", false, "Serve the websocket spectator feed")
	serveCmd.Flags().StringVar(&flagSpectateAddr, "spectate-addr", "", "Spectator feed address (default from config)")
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, lvls := mustLoad()
	logger := newLogger(os.Stderr, cfg.Log.Level, "mazehack")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	images := newImageCache(cfg.Assets, logger)
	defer images.Close()

	svc := tui.Services{
		Images: images,
		Logger: logger,
	}

	store, err := storage.Open(config.ExpandHome(cfg.Storage.DB))
	if err != nil {
		logger.Warn("could not open scores database", "error", err)
	} else {
		defer store.Close()
		svc.Store = store
	}

	// Sessions share one client, so none of them owns the retained status.
	cfg.Broker.SkipStatus = true
	client := connectBroker(ctx, cfg.Broker, logger)
	if client != nil {
		defer client.Close()
	}

	var hub *spectate.Hub
	if flagSpectate || cfg.Spectate.Enabled {
		addr := cfg.Spectate.Addr
		if flagSpectateAddr != "" {
			addr = flagSpectateAddr
		}
		hub = startSpectate(ctx, addr, logger)
	}
	queue := events.NewQueue(notifierFor(client, hub), logger, 0, 0)
	defer queue.Close()
	svc.Notifier = queue

	sshCfg := tui.DefaultSSHServerConfig()
	sshCfg.Address = flagSSHAddr
	sshCfg.HostKeyPath = flagHostKey
	sshCfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
	sshCfg.TickInterval = cfg.Game.TickInterval()

	server, err := tui.NewSSHServer(sshCfg, gameFactory(cfg, lvls, images), svc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Starting Maze Hack SSH server on %s (%d levels)\n", server.Addr(), len(lvls))
	fmt.Println("Press Ctrl+C to stop")

	err = server.ListenAndServe(ctx)
	if hub != nil {
		logger.Info("spectator feed closing", "spectators", hub.Count())
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
