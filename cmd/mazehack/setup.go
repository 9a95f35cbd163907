package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/vovakirdan/mazehack/internal/assets"
	"github.com/vovakirdan/mazehack/internal/broker"
	"github.com/vovakirdan/mazehack/internal/config"
	"github.com/vovakirdan/mazehack/internal/events"
	"github.com/vovakirdan/mazehack/internal/games/maze"
	"github.com/vovakirdan/mazehack/internal/games/maze/levels"
	"github.com/vovakirdan/mazehack/internal/spectate"
)

// loadConfig reads the config file and applies global flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}

	if flagLevels != "" {
		cfg.Game.Levels = flagLevels
	}
	if flagDBPath != "" {
		cfg.Storage.DB = flagDBPath
	}
	if flagLogFile != "" {
		cfg.Log.File = flagLogFile
	}
	if flagBroker != "" {
		cfg.Broker.URL = flagBroker
		cfg.Broker.Enabled = true
	}
	if flagDifficulty != "" {
		d, err := config.ParseDifficulty(flagDifficulty)
		if err != nil {
			return cfg, err
		}
		cfg.Game.Difficulty = d
	}
	return cfg, nil
}

// loadLevels loads the configured levels with difficulty applied.
func loadLevels(cfg config.Config) ([]levels.Level, error) {
	lvls, err := levels.Load(config.ExpandHome(cfg.Game.Levels))
	if err != nil {
		return nil, err
	}
	if len(lvls) == 0 {
		return nil, fmt.Errorf("levels: no levels loaded")
	}
	return config.ApplyDifficulty(lvls, cfg.Game.Difficulty), nil
}

func mustLoad() (config.Config, []levels.Level) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	lvls, err := loadLevels(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading levels: %v\n", err)
		os.Exit(1)
	}
	return cfg, lvls
}

// newLogger builds a logger writing to w at the configured level.
func newLogger(w io.Writer, level, prefix string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	if lvl, err := log.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	}
	return logger
}

// newFileLogger writes through a rotating file, since stdout belongs to the
// game while playing.
func newFileLogger(cfg config.LogConfig) (*log.Logger, io.Closer) {
	path := config.ExpandHome(cfg.File)
	if path == "" {
		return newLogger(io.Discard, cfg.Level, "mazehack"), io.NopCloser(nil)
	}
	//nolint:errcheck // lumberjack creates the file; the directory must exist
	os.MkdirAll(filepath.Dir(path), 0o755)

	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	}
	return newLogger(w, cfg.Level, "mazehack"), w
}

// newImageCache builds the shared asset cache.
func newImageCache(cfg config.AssetsConfig, logger *log.Logger) *assets.Cache {
	root := config.ExpandHome(cfg.Root)
	return assets.NewCache(root,
		assets.WithFetcher(assets.DefaultFetcher(root, cfg.Timeout)),
		assets.WithLogger(logger.WithPrefix("assets")),
		assets.WithMaxSize(cfg.MaxWidth, cfg.MaxHeight),
	)
}

// gameFactory returns a constructor for configured games.
func gameFactory(cfg config.Config, lvls []levels.Level, images *assets.Cache) func() *maze.Game {
	return func() *maze.Game {
		return maze.New(lvls,
			maze.WithRules(cfg.Game.Rules()),
			maze.WithTheme(cfg.Theme()),
			maze.WithImages(images),
		)
	}
}

// connectBroker dials the broker when enabled. A nil client means events
// are not published.
func connectBroker(ctx context.Context, cfg broker.Config, logger *log.Logger) *broker.Client {
	if !cfg.Enabled {
		return nil
	}
	client := broker.New(cfg, logger)

	ctx, cancel := context.WithTimeout(ctx, client.Config().Timeout)
	defer cancel()
	if err := client.Connect(ctx); err != nil {
		logger.Warn("broker unavailable, continuing without it", "url", cfg.URL, "err", err)
		client.Close()
		return nil
	}
	logger.Info("broker connected", "url", cfg.URL)
	return client
}

// startSpectate serves the websocket feed in the background until ctx ends.
func startSpectate(ctx context.Context, addr string, logger *log.Logger) *spectate.Hub {
	hub := spectate.NewHub(logger)
	go func() {
		if err := hub.ListenAndServe(ctx, addr); err != nil {
			logger.Error("spectator feed stopped", "err", err)
		}
	}()
	return hub
}

// notifierFor combines the configured event sinks.
func notifierFor(client *broker.Client, hub *spectate.Hub) events.Notifier {
	var out events.Fanout
	if client != nil {
		out = append(out, client)
	}
	if hub != nil {
		out = append(out, hub)
	}
	if len(out) == 0 {
		return events.Nop{}
	}
	return out
}

// localPlayer names the player for locally recorded runs.
func localPlayer() string {
	for _, k := range []string{"USER", "USERNAME", "LOGNAME"} {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return "player"
}
