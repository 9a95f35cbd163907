package tui

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/mazehack/internal/games/maze"
)

func TestNewSSHServerDefaults(t *testing.T) {
	cfg := SSHServerConfig{HostKeyPath: filepath.Join(t.TempDir(), "keys", "host_key")}
	newGame := func() *maze.Game { return maze.New(shortLevel()) }

	srv, err := NewSSHServer(cfg, newGame, Services{Audio: &fakeAudio{}, Logger: log.New(io.Discard)})
	if err != nil {
		t.Fatalf("NewSSHServer failed: %v", err)
	}

	def := DefaultSSHServerConfig()
	if srv.Addr() != def.Address {
		t.Errorf("Addr() = %q, expected %q", srv.Addr(), def.Address)
	}
	if srv.config.IdleTimeout != def.IdleTimeout || srv.config.TickInterval != def.TickInterval {
		t.Errorf("config = %+v, expected defaults", srv.config)
	}
	if srv.Active() != 0 {
		t.Errorf("Active() = %d before any session", srv.Active())
	}
	if _, ok := srv.svc.Audio.(silentAudio); !ok {
		t.Errorf("remote sessions should be silent, got %T", srv.svc.Audio)
	}
}
