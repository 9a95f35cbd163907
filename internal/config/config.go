// Package config provides YAML-based configuration loading for the game,
// its audio cues, broker connection, spectator feed and score storage.
package config

import (
	"time"

	"github.com/vovakirdan/mazehack/internal/audio"
	"github.com/vovakirdan/mazehack/internal/broker"
	"github.com/vovakirdan/mazehack/internal/games/maze"
)

// Config is the top-level configuration file.
type Config struct {
	Game     GameConfig     `yaml:"game"`
	Assets   AssetsConfig   `yaml:"assets"`
	Audio    audio.Config   `yaml:"audio"`
	Broker   broker.Config  `yaml:"broker"`
	Spectate SpectateConfig `yaml:"spectate"`
	Storage  StorageConfig  `yaml:"storage"`
	Log      LogConfig      `yaml:"log"`
}

// GameConfig contains simulation and presentation parameters.
type GameConfig struct {
	TickMS      int              `yaml:"tick_ms"`      // simulation period
	HitboxHalf  float64          `yaml:"hitbox_half"`  // end marker hitbox half-width, logical units
	KeyRateMin  float64          `yaml:"key_rate_min"` // key press cue playback rate range
	KeyRateMax  float64          `yaml:"key_rate_max"`
	WallOpacity float64          `yaml:"wall_opacity"` // 0 keeps walls invisible
	Difficulty  DifficultyPreset `yaml:"difficulty"`
	Levels      string           `yaml:"levels"` // file or directory; empty uses the bundled set
}

// AssetsConfig locates images.
type AssetsConfig struct {
	Root        string        `yaml:"root"` // base directory for relative and "/x.png" references
	StartMarker string        `yaml:"start_marker"`
	EndMarker   string        `yaml:"end_marker"`
	Timeout     time.Duration `yaml:"timeout"` // per-image fetch timeout
	MaxWidth    int           `yaml:"max_width"`  // decoded images are scaled to fit
	MaxHeight   int           `yaml:"max_height"`
}

// SpectateConfig configures the websocket spectator feed.
type SpectateConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// StorageConfig locates the score database.
type StorageConfig struct {
	DB string `yaml:"db"`
}

// LogConfig configures the play-mode log file.
type LogConfig struct {
	File       string `yaml:"file"`
	Level      string `yaml:"level"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// TickInterval returns the simulation period.
func (g GameConfig) TickInterval() time.Duration {
	if g.TickMS <= 0 {
		return 20 * time.Millisecond
	}
	return time.Duration(g.TickMS) * time.Millisecond
}

// Rules returns the game rules described by the config.
func (g GameConfig) Rules() maze.Rules {
	r := maze.DefaultRules()
	if g.HitboxHalf > 0 {
		r.HitboxHalf = g.HitboxHalf
	}
	if g.KeyRateMin > 0 && g.KeyRateMax > g.KeyRateMin {
		r.KeyRateMin = g.KeyRateMin
		r.KeyRateMax = g.KeyRateMax
	}
	return r
}

// Theme returns the render theme described by the config.
func (c Config) Theme() maze.Theme {
	return maze.Theme{
		StartMarker: c.Assets.StartMarker,
		EndMarker:   c.Assets.EndMarker,
		WallOpacity: c.Game.WallOpacity,
	}
}
