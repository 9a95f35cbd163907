package maze

// Snapshot captures the game state for determinism testing and spectators.
type Snapshot struct {
	Tick      uint64  `json:"tick"`
	Phase     string  `json:"phase"`
	Level     int     `json:"level"` // 1-indexed for display
	LevelID   string  `json:"level_id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	DirX      float64 `json:"dir_x"`
	DirY      float64 `json:"dir_y"`
	TrailLen  int     `json:"trail_len"`
	Resets    int     `json:"resets"`
	LevelTick uint64  `json:"level_tick"`
}

// Snapshot returns the current game snapshot.
func (g *Game) Snapshot() Snapshot {
	s := g.session
	return Snapshot{
		Tick:      s.Tick,
		Phase:     s.Phase.String(),
		Level:     s.LevelIndex + 1,
		LevelID:   g.levels[s.LevelIndex].ID,
		X:         s.Player.Position.X,
		Y:         s.Player.Position.Y,
		DirX:      s.Player.Direction.X,
		DirY:      s.Player.Direction.Y,
		TrailLen:  len(s.Player.Trail),
		Resets:    s.Resets,
		LevelTick: s.LevelTick,
	}
}
