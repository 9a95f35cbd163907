package maze

import (
	"fmt"
	"math"
	"time"

	"github.com/vovakirdan/mazehack/internal/assets"
	"github.com/vovakirdan/mazehack/internal/core"
	"github.com/vovakirdan/mazehack/internal/games/maze/levels"
)

// Marker sprite size in logical units.
const (
	markerW = 75.0
	markerH = 100.0
)

// backgroundRamp shades the background from dark to bright.
var backgroundRamp = []rune{' ', '░', '▒', '▓'}

// ImageSource resolves image references without blocking.
type ImageSource interface {
	Get(ref string) (*assets.Image, assets.State)
}

// Theme holds the render-time asset references and wall styling.
type Theme struct {
	StartMarker string  // image reference; empty uses the built-in glyph
	EndMarker   string  // image reference; empty uses the built-in arrow
	WallOpacity float64 // 0 leaves walls invisible
}

// Render draws the game into dst.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	if dst.Width() != g.screenW || dst.Height() != g.screenH {
		g.Resize(dst.Width(), dst.Height())
	}

	g.renderHUD(dst)

	switch g.session.Phase {
	case PhaseStart:
		g.renderOverlay(dst, "Press any button to start the hack", "Q to quit")
		return
	case PhaseEnd:
		g.renderOverlay(dst, "You've reached the endpoint!", "Press R to restart")
		return
	}

	level := g.levels[g.session.LevelIndex]
	g.renderBackground(dst, level.Background)
	g.renderWalls(dst, level)
	g.renderTrail(dst)
	g.renderPlayer(dst)
	g.renderStartMarker(dst, level.Start)
	g.renderEndMarker(dst, level.End)
}

func (g *Game) renderHUD(dst *core.Screen) {
	var hud string
	switch g.session.Phase {
	case PhaseRunning:
		level := g.levels[g.session.LevelIndex]
		hud = fmt.Sprintf(" HACK :: %s  Level %d/%d  Time %s  Resets %d",
			level.Name, g.session.LevelIndex+1, len(g.levels), g.elapsed(), g.session.Resets)
	case PhaseEnd:
		hud = fmt.Sprintf(" HACK :: complete  Time %s  Resets %d", g.elapsed(), g.session.Resets)
	default:
		hud = " HACK"
	}
	dst.DrawText(0, 0, hud, core.ColorBrightGreen)
}

func (g *Game) elapsed() string {
	d := g.tickInterval * time.Duration(g.session.Tick)
	return fmt.Sprintf("%02d:%05.2f", int(d.Minutes()), math.Mod(d.Seconds(), 60))
}

func (g *Game) renderBackground(dst *core.Screen, ref string) {
	if g.images == nil {
		return
	}
	img, state := g.images.Get(ref)
	if state != assets.StateLoaded {
		return
	}

	vp := g.viewport
	for y := vp.OffsetY; y < vp.OffsetY+vp.Rows; y++ {
		for x := vp.OffsetX; x < vp.OffsetX+vp.Cols; x++ {
			p := vp.CellCenter(x, y)
			lum := img.LumAt(p.X/vp.LogicalW, p.Y/vp.LogicalH)
			i := core.Clamp(int(lum*float64(len(backgroundRamp))), 0, len(backgroundRamp)-1)
			if i > 0 {
				dst.SetCell(x, y, backgroundRamp[i], core.ColorDarkGray)
			}
		}
	}
}

// renderWalls fills walls with the theme opacity. The default opacity is
// zero, so walls collide but are not drawn.
func (g *Game) renderWalls(dst *core.Screen, level levels.Level) {
	alpha := g.theme.WallOpacity
	if alpha <= 0 {
		return
	}
	fill := '▒'
	if alpha >= 0.5 {
		fill = '█'
	}

	vp := g.viewport
	for _, w := range level.Walls {
		x0, y0, x1, y1 := vp.CellsIn(w)
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				if w.ContainsStrict(vp.CellCenter(x, y)) {
					dst.SetCell(x, y, fill, core.ColorRed)
				}
			}
		}
	}
}

func (g *Game) renderTrail(dst *core.Screen) {
	for _, p := range g.session.Player.Trail {
		x, y := g.viewport.ToCell(p)
		if g.viewport.Contains(x, y) {
			dst.SetCell(x, y, '·', core.ColorTrail)
		}
	}
}

func (g *Game) renderPlayer(dst *core.Screen) {
	x, y := g.viewport.ToCell(g.session.Player.Position)
	if g.viewport.Contains(x, y) {
		dst.SetCell(x, y, '●', core.ColorPlayer)
	}
}

func (g *Game) renderStartMarker(dst *core.Screen, at core.Vec) {
	g.renderSprite(dst, g.theme.StartMarker, at, 0, '▓', core.ColorCyan, func(local core.Vec) bool {
		// Built-in start marker: a hollow frame
		return math.Abs(local.X) > markerW/4 || math.Abs(local.Y) > markerH/4
	})
}

func (g *Game) renderEndMarker(dst *core.Screen, end levels.EndCoords) {
	g.renderSprite(dst, g.theme.EndMarker, end.Pos(), end.Rotation, '█', core.ColorBrightYellow, func(local core.Vec) bool {
		// Built-in end marker: an arrow pointing up before rotation
		return math.Abs(local.X) <= (markerW/2)*(local.Y+markerH/2)/markerH
	})
}

// renderSprite draws a markerW×markerH sprite centered at center and rotated
// clockwise by deg. Each cell is mapped back into sprite space and sampled
// from the image, or from builtin when no image is configured. Pending and
// failed images draw nothing.
func (g *Game) renderSprite(dst *core.Screen, ref string, center core.Vec, deg float64,
	fill rune, color core.Color, builtin func(local core.Vec) bool,
) {
	var img *assets.Image
	if ref != "" {
		if g.images == nil {
			return
		}
		var state assets.State
		img, state = g.images.Get(ref)
		if state != assets.StateLoaded {
			return
		}
	}

	radius := math.Hypot(markerW/2, markerH/2)
	vp := g.viewport
	drawn := false
	x0, y0, x1, y1 := vp.CellsIn(core.Square(center, radius))

	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			local := vp.CellCenter(x, y).Add(center.Scale(-1)).Rotate(-deg)
			if math.Abs(local.X) > markerW/2 || math.Abs(local.Y) > markerH/2 {
				continue
			}

			var on bool
			if img != nil {
				on = img.AlphaAt((local.X+markerW/2)/markerW, (local.Y+markerH/2)/markerH) >= 0.5
			} else {
				on = builtin(local)
			}
			if on {
				dst.SetCell(x, y, fill, color)
				drawn = true
			}
		}
	}

	// Small viewports can miss every sample; keep the marker visible.
	if cx, cy := vp.ToCell(center); !drawn && vp.Contains(cx, cy) {
		dst.SetCell(cx, cy, fill, color)
	}
}

// renderOverlay draws a centered two-line message box.
func (g *Game) renderOverlay(dst *core.Screen, line1, line2 string) {
	w := dst.Width()
	h := dst.Height()

	maxLen := max(len([]rune(line1)), len([]rune(line2)))
	boxW := maxLen + 4
	boxH := 5
	boxX := (w - boxW) / 2
	boxY := (h - boxH) / 2

	for y := boxY; y < boxY+boxH; y++ {
		for x := boxX; x < boxX+boxW; x++ {
			isTopOrBottom := y == boxY || y == boxY+boxH-1
			isLeftOrRight := x == boxX || x == boxX+boxW-1
			switch {
			case isTopOrBottom && isLeftOrRight:
				dst.SetCell(x, y, '+', core.ColorGreen)
			case isTopOrBottom:
				dst.SetCell(x, y, '-', core.ColorGreen)
			case isLeftOrRight:
				dst.SetCell(x, y, '|', core.ColorGreen)
			default:
				dst.SetCell(x, y, ' ', core.ColorDefault)
			}
		}
	}

	dst.DrawTextCentered(boxY+1, line1, core.ColorBrightGreen)
	dst.DrawTextCentered(boxY+3, line2, core.ColorGray)
}
