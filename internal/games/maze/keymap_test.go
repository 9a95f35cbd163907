package maze

import (
	"math/rand"
	"testing"

	"github.com/vovakirdan/mazehack/internal/core"
)

func TestRandomKeyMappingIsBijection(t *testing.T) {
	seen := make(map[KeyMapping]bool)
	for seed := int64(0); seed < 500; seed++ {
		m := RandomKeyMapping(rand.New(rand.NewSource(seed)))
		if !m.Valid() {
			t.Fatalf("seed %d: mapping %+v is not a bijection", seed, m)
		}
		seen[m] = true
	}
	// 4! permutations should all show up over enough seeds
	if len(seen) != 24 {
		t.Errorf("saw %d distinct mappings, expected 24", len(seen))
	}
}

func TestKeyMappingDirection(t *testing.T) {
	m := KeyMapping{
		Up:    core.KeyArrowLeft,
		Down:  core.KeyArrowRight,
		Left:  core.KeyArrowDown,
		Right: core.KeyArrowUp,
	}

	tests := []struct {
		code core.KeyCode
		want core.Vec
		ok   bool
	}{
		{core.KeyArrowLeft, DirUp, true},
		{core.KeyArrowRight, DirDown, true},
		{core.KeyArrowDown, DirLeft, true},
		{core.KeyArrowUp, DirRight, true},
		{"KeyW", core.Vec{}, false},
		{"", core.Vec{}, false},
	}

	for _, tc := range tests {
		got, ok := m.Direction(tc.code)
		if ok != tc.ok || got != tc.want {
			t.Errorf("Direction(%q) = %v, %v; expected %v, %v", tc.code, got, ok, tc.want, tc.ok)
		}
	}
}

func TestKeyMappingValid(t *testing.T) {
	tests := []struct {
		name string
		m    KeyMapping
		want bool
	}{
		{"identity", KeyMapping{core.KeyArrowUp, core.KeyArrowDown, core.KeyArrowLeft, core.KeyArrowRight}, true},
		{"duplicate", KeyMapping{core.KeyArrowUp, core.KeyArrowUp, core.KeyArrowLeft, core.KeyArrowRight}, false},
		{"foreign key", KeyMapping{"KeyW", core.KeyArrowDown, core.KeyArrowLeft, core.KeyArrowRight}, false},
		{"zero", KeyMapping{}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.m.Valid(); got != tc.want {
				t.Errorf("Valid() = %v, expected %v", got, tc.want)
			}
		})
	}
}
