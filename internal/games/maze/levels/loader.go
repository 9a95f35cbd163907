// Package levels provides the static per-level configuration of the maze:
// walls, start/end coordinates, background asset and speed.
package levels

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vovakirdan/mazehack/internal/core"
	"github.com/vovakirdan/mazehack/internal/games/maze/levels/formats"
)

//go:embed default.yaml
var defaultLevelsYAML []byte

// EndCoords is the level's goal position and marker rotation in degrees.
type EndCoords struct {
	X, Y     float64
	Rotation float64
}

// Pos returns the goal position.
func (e EndCoords) Pos() core.Vec {
	return core.V(e.X, e.Y)
}

// Level is an immutable level definition in logical 1920×1080 units.
type Level struct {
	ID         string
	Name       string
	Walls      []core.Rect
	Start      core.Vec
	End        EndCoords
	Background string // asset reference: file path or URL
	Speed      float64
	FilePath   string
}

// Default returns the bundled level list.
func Default() ([]Level, error) {
	lvls, err := fromBytes(defaultLevelsYAML, "<embedded>")
	if err != nil {
		return nil, fmt.Errorf("levels: bundled data: %w", err)
	}
	return lvls, nil
}

// Load returns levels from path, which may be a bundle file or a directory
// of level files. An empty path yields the bundled levels.
func Load(path string) ([]Level, error) {
	if path == "" {
		return Default()
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("levels: %w", err)
	}
	if info.IsDir() {
		lvls, err := NewLoader(path).LoadAll()
		if err != nil {
			return nil, err
		}
		if len(lvls) == 0 {
			return nil, fmt.Errorf("levels: no level files in %s", path)
		}
		return lvls, nil
	}
	return NewLoader(filepath.Dir(path)).LoadFile(path)
}

// Loader handles loading levels from a directory.
type Loader struct {
	Root string
}

// NewLoader creates a new level loader.
func NewLoader(root string) *Loader {
	return &Loader{Root: root}
}

// LoadAll recursively scans and loads all level files.
// Returns levels sorted by ID for deterministic ordering.
func (l *Loader) LoadAll() ([]Level, error) {
	var levels []Level

	err := filepath.WalkDir(l.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if !isSupportedExtension(ext) {
			return nil
		}

		lvls, err := l.LoadFile(path)
		if err != nil {
			// Skip invalid files
			return nil
		}

		levels = append(levels, lvls...)
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("levels: walking directory %s: %w", l.Root, err)
	}

	sort.SliceStable(levels, func(i, j int) bool {
		return levels[i].ID < levels[j].ID
	})

	return levels, nil
}

// LoadFile loads every level in a single file, in file order.
func (l *Loader) LoadFile(path string) ([]Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("levels: reading file %s: %w", path, err)
	}

	lvls, err := fromBytes(data, path)
	if err != nil {
		return nil, fmt.Errorf("levels: parsing file %s: %w", path, err)
	}
	return lvls, nil
}

// Export encodes lvls as a bundle file that Load reads back unchanged.
func Export(lvls []Level) ([]byte, error) {
	out := make([]formats.YAMLLevel, len(lvls))
	for i, l := range lvls {
		walls := make([]formats.YAMLRect, len(l.Walls))
		for j, w := range l.Walls {
			walls[j] = formats.YAMLRect{X: w.X, Y: w.Y, Width: w.W, Height: w.H}
		}
		out[i] = formats.YAMLLevel{
			ID:              l.ID,
			Name:            l.Name,
			Walls:           walls,
			StartCoords:     formats.YAMLPoint{X: l.Start.X, Y: l.Start.Y},
			EndCoords:       formats.YAMLEnd{X: l.End.X, Y: l.End.Y, Rotation: l.End.Rotation},
			BackgroundImage: l.Background,
			Speed:           l.Speed,
		}
	}

	data, err := formats.EncodeYAML(out)
	if err != nil {
		return nil, fmt.Errorf("levels: export: %w", err)
	}
	return data, nil
}

func fromBytes(data []byte, path string) ([]Level, error) {
	parsed, err := formats.ParseYAML(data)
	if err != nil {
		return nil, err
	}
	if len(parsed) == 0 {
		return nil, fmt.Errorf("no levels defined")
	}

	out := make([]Level, 0, len(parsed))
	for i, p := range parsed {
		lvl := convert(p, i, path)
		if err := Validate(lvl); err != nil {
			return nil, fmt.Errorf("level %d (%s): %w", i, lvl.ID, err)
		}
		out = append(out, lvl)
	}
	return out, nil
}

func convert(p formats.YAMLLevel, index int, path string) Level {
	id := p.ID
	if id == "" {
		id = fmt.Sprintf("lvl%02d", index+1)
	}
	name := p.Name
	if name == "" {
		name = fmt.Sprintf("Level %d", index+1)
	}

	walls := make([]core.Rect, len(p.Walls))
	for i, w := range p.Walls {
		walls[i] = core.Rect{X: w.X, Y: w.Y, W: w.Width, H: w.Height}
	}

	return Level{
		ID:    id,
		Name:  name,
		Walls: walls,
		Start: core.V(p.StartCoords.X, p.StartCoords.Y),
		End: EndCoords{
			X:        p.EndCoords.X,
			Y:        p.EndCoords.Y,
			Rotation: normalizeDegrees(p.EndCoords.Rotation),
		},
		Background: p.BackgroundImage,
		Speed:      p.Speed,
		FilePath:   path,
	}
}

// Validate checks the invariants of a level record.
func Validate(l Level) error {
	if l.Speed <= 0 || math.IsNaN(l.Speed) || math.IsInf(l.Speed, 0) {
		return fmt.Errorf("speed must be positive and finite, got %v", l.Speed)
	}
	for i, w := range l.Walls {
		if w.W < 0 || w.H < 0 {
			return fmt.Errorf("wall %d has negative size %vx%v", i, w.W, w.H)
		}
	}
	if !core.InBounds(l.Start, core.LogicalWidth, core.LogicalHeight) {
		return fmt.Errorf("start (%v, %v) outside the field", l.Start.X, l.Start.Y)
	}
	if !core.InBounds(l.End.Pos(), core.LogicalWidth, core.LogicalHeight) {
		return fmt.Errorf("end (%v, %v) outside the field", l.End.X, l.End.Y)
	}
	return nil
}

func normalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// isSupportedExtension checks if extension is supported.
func isSupportedExtension(ext string) bool {
	for _, supported := range formats.FormatExtensions() {
		if ext == supported {
			return true
		}
	}
	return false
}
