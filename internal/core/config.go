package core

import "time"

// Logical resolution all gameplay math is performed in.
const (
	LogicalWidth  = 1920
	LogicalHeight = 1080
)

// DefaultTickInterval is the fixed simulation period.
const DefaultTickInterval = 20 * time.Millisecond

// RuntimeConfig contains configuration passed to the game at initialization.
type RuntimeConfig struct {
	ScreenW      int           // Screen width in characters
	ScreenH      int           // Screen height in characters
	TickInterval time.Duration // Simulation period (default 20ms)
	Seed         int64         // RNG seed for key mapping shuffles
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:      80,
		ScreenH:      24,
		TickInterval: DefaultTickInterval,
		Seed:         0, // 0 means use current time in platform layer
	}
}

// GameState represents the current state of a game as seen by the platform.
type GameState struct {
	Score    int  // Ticks spent in the current run
	Running  bool // Whether the simulation loop should be ticking
	GameOver bool // Whether the run has finished
}
