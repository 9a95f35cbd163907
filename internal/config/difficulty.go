package config

import (
	"fmt"
	"strings"

	"github.com/vovakirdan/mazehack/internal/games/maze/levels"
)

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
)

// ParseDifficulty validates a preset name. Empty means normal.
func ParseDifficulty(s string) (DifficultyPreset, error) {
	switch p := DifficultyPreset(strings.ToLower(s)); p {
	case "", DifficultyNormal:
		return DifficultyNormal, nil
	case DifficultyEasy, DifficultyHard:
		return p, nil
	default:
		return "", fmt.Errorf("config: unknown difficulty %q (easy, normal, hard)", s)
	}
}

// SpeedMultiplier returns the factor applied to every level's speed.
func SpeedMultiplier(preset DifficultyPreset) float64 {
	switch preset {
	case DifficultyEasy:
		return 0.75
	case DifficultyHard:
		return 1.5
	default:
		return 1.0
	}
}

// ApplyDifficulty returns a copy of lvls with speeds scaled for preset.
func ApplyDifficulty(lvls []levels.Level, preset DifficultyPreset) []levels.Level {
	k := SpeedMultiplier(preset)
	out := make([]levels.Level, len(lvls))
	copy(out, lvls)
	if k == 1 {
		return out
	}
	for i := range out {
		out[i].Speed *= k
	}
	return out
}
