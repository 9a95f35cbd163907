package main

import (
	"testing"

	"github.com/vovakirdan/mazehack/internal/config"
	"github.com/vovakirdan/mazehack/internal/events"
	"github.com/vovakirdan/mazehack/internal/games/maze/levels"
	"github.com/vovakirdan/mazehack/internal/spectate"
)

// isolate points the config search at empty directories and restores the
// global flags afterwards.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	saved := []string{flagConfig, flagLevels, flagDBPath, flagLogFile, flagBroker, flagDifficulty}
	t.Cleanup(func() {
		flagConfig, flagLevels, flagDBPath, flagLogFile, flagBroker, flagDifficulty =
			saved[0], saved[1], saved[2], saved[3], saved[4], saved[5]
	})
	flagConfig, flagLevels, flagDBPath, flagLogFile, flagBroker, flagDifficulty = "", "", "", "", "", ""
}

func TestLoadConfigFlagOverrides(t *testing.T) {
	isolate(t)
	flagBroker = "tcp://10.0.0.5:1883"
	flagDBPath = "/tmp/runs.db"
	flagLogFile = "/tmp/mh.log"
	flagDifficulty = "HARD"

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if !cfg.Broker.Enabled || cfg.Broker.URL != "tcp://10.0.0.5:1883" {
		t.Errorf("broker = %+v", cfg.Broker)
	}
	if cfg.Storage.DB != "/tmp/runs.db" || cfg.Log.File != "/tmp/mh.log" {
		t.Errorf("paths = %q %q", cfg.Storage.DB, cfg.Log.File)
	}
	if cfg.Game.Difficulty != config.DifficultyHard {
		t.Errorf("difficulty = %q", cfg.Game.Difficulty)
	}
}

func TestLoadConfigBadDifficulty(t *testing.T) {
	isolate(t)
	flagDifficulty = "nightmare"

	if _, err := loadConfig(); err == nil {
		t.Error("expected error for unknown difficulty")
	}
}

func TestLoadLevelsAppliesDifficulty(t *testing.T) {
	isolate(t)
	flagDifficulty = "easy"

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	got, err := loadLevels(cfg)
	if err != nil {
		t.Fatalf("loadLevels: %v", err)
	}
	base, err := levels.Default()
	if err != nil {
		t.Fatalf("levels.Default: %v", err)
	}
	if len(got) != len(base) {
		t.Fatalf("loaded %d levels, want %d", len(got), len(base))
	}
	for i := range got {
		if want := base[i].Speed * 0.75; got[i].Speed != want {
			t.Errorf("level %d speed = %v, want %v", i, got[i].Speed, want)
		}
	}
}

func TestNotifierFor(t *testing.T) {
	if _, ok := notifierFor(nil, nil).(events.Nop); !ok {
		t.Error("no sinks should give Nop")
	}

	hub := spectate.NewHub(nil)
	defer hub.Close()
	fan, ok := notifierFor(nil, hub).(events.Fanout)
	if !ok || len(fan) != 1 {
		t.Errorf("notifier = %#v, want a one-sink fanout", notifierFor(nil, hub))
	}
}

func TestLocalPlayer(t *testing.T) {
	t.Setenv("USER", "  trinity ")
	if got := localPlayer(); got != "trinity" {
		t.Errorf("localPlayer = %q", got)
	}

	t.Setenv("USER", "")
	t.Setenv("USERNAME", "")
	t.Setenv("LOGNAME", "")
	if got := localPlayer(); got != "player" {
		t.Errorf("fallback = %q", got)
	}
}
