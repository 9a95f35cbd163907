package maze

import (
	"math/rand"

	"github.com/vovakirdan/mazehack/internal/core"
)

// KeyMapping binds each semantic direction to one physical arrow key.
// A valid mapping uses each of core.ArrowKeys exactly once.
type KeyMapping struct {
	Up, Down, Left, Right core.KeyCode
}

// RandomKeyMapping shuffles the four arrow keys onto the four directions.
func RandomKeyMapping(rng *rand.Rand) KeyMapping {
	keys := core.ArrowKeys
	rng.Shuffle(len(keys), func(i, j int) {
		keys[i], keys[j] = keys[j], keys[i]
	})
	return KeyMapping{Up: keys[0], Down: keys[1], Left: keys[2], Right: keys[3]}
}

// Direction returns the unit vector bound to code.
func (m KeyMapping) Direction(code core.KeyCode) (core.Vec, bool) {
	if code == "" {
		return core.Vec{}, false
	}
	switch code {
	case m.Up:
		return DirUp, true
	case m.Down:
		return DirDown, true
	case m.Left:
		return DirLeft, true
	case m.Right:
		return DirRight, true
	}
	return core.Vec{}, false
}

// Valid reports whether m is a bijection over core.ArrowKeys.
func (m KeyMapping) Valid() bool {
	seen := make(map[core.KeyCode]bool, 4)
	for _, k := range []core.KeyCode{m.Up, m.Down, m.Left, m.Right} {
		if seen[k] {
			return false
		}
		seen[k] = true
	}
	for _, k := range core.ArrowKeys {
		if !seen[k] {
			return false
		}
	}
	return true
}
