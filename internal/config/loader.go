package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/mazehack/internal/audio"
	"github.com/vovakirdan/mazehack/internal/broker"
)

//go:embed defaults/mazehack.yaml
var defaultYAML []byte

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Game: GameConfig{
			TickMS:     20,
			HitboxHalf: 50,
			KeyRateMin: 1.2,
			KeyRateMax: 1.6,
			Difficulty: DifficultyNormal,
		},
		Assets:   AssetsConfig{Timeout: 10 * time.Second, MaxWidth: 192, MaxHeight: 108},
		Audio:    audio.DefaultConfig(),
		Broker:   broker.DefaultConfig(),
		Spectate: SpectateConfig{Addr: ":8080"},
		Storage:  StorageConfig{DB: "~/.mazehack/scores.db"},
		Log: LogConfig{
			File:       "~/.mazehack/mazehack.log",
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
	}
}

// Load loads the configuration.
// Search order: customPath -> ~/.mazehack/config.yaml -> ./configs/mazehack.yaml -> embedded default.
// Files are decoded over the defaults, so partial files only override what they set.
func Load(customPath string) (Config, error) {
	cfg := Default()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("config: failed to read %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: failed to parse %s: %w", customPath, err)
		}
		return cfg, cfg.validate()
	}

	// Try user config directory
	if p := userConfigPath("config.yaml"); p != "" {
		if data, err := os.ReadFile(p); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err == nil {
				return cfg, cfg.validate()
			}
			cfg = Default()
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", "mazehack.yaml")); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err == nil {
			return cfg, cfg.validate()
		}
		cfg = Default()
	}

	// Use embedded default YAML
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		return Default(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.Game.TickMS < 0 {
		return fmt.Errorf("config: tick_ms must not be negative, got %d", c.Game.TickMS)
	}
	if c.Game.WallOpacity < 0 || c.Game.WallOpacity > 1 {
		return fmt.Errorf("config: wall_opacity must be in [0,1], got %v", c.Game.WallOpacity)
	}
	if c.Audio.Volume < 0 {
		return fmt.Errorf("config: audio volume must not be negative, got %v", c.Audio.Volume)
	}
	if _, err := ParseDifficulty(string(c.Game.Difficulty)); err != nil {
		return err
	}
	return nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".mazehack", filename)
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
