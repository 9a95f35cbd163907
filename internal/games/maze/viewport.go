package maze

import (
	"math"

	"github.com/vovakirdan/mazehack/internal/core"
)

// cellAspect is the height/width ratio of a terminal cell.
const cellAspect = 2.0

// hudHeight is the number of rows reserved above the field.
const hudHeight = 1

// Viewport maps the logical field onto a rectangle of terminal cells.
// The field keeps its aspect ratio and is centered in the space below the HUD.
type Viewport struct {
	OffsetX, OffsetY int // top-left cell of the field
	Cols, Rows       int // field size in cells
	LogicalW         float64
	LogicalH         float64
}

// NewViewport fits a logicalW×logicalH field into a screenW×screenH terminal.
func NewViewport(screenW, screenH int, logicalW, logicalH float64) Viewport {
	availW := max(screenW, 1)
	availH := max(screenH-hudHeight, 1)

	// Field aspect measured in cells
	aspect := (logicalW / logicalH) * cellAspect

	cols, rows := availW, int(math.Round(float64(availW)/aspect))
	if rows > availH {
		rows = availH
		cols = int(math.Round(float64(availH) * aspect))
	}
	cols = core.Clamp(cols, 1, availW)
	rows = core.Clamp(rows, 1, availH)

	return Viewport{
		OffsetX:  (availW - cols) / 2,
		OffsetY:  hudHeight + (availH-rows)/2,
		Cols:     cols,
		Rows:     rows,
		LogicalW: logicalW,
		LogicalH: logicalH,
	}
}

// ToCell returns the screen cell containing logical point p.
// Points on the far edges map to the last row/column.
func (v Viewport) ToCell(p core.Vec) (int, int) {
	cx := int(math.Floor(p.X / v.LogicalW * float64(v.Cols)))
	cy := int(math.Floor(p.Y / v.LogicalH * float64(v.Rows)))
	if p.X == v.LogicalW {
		cx = v.Cols - 1
	}
	if p.Y == v.LogicalH {
		cy = v.Rows - 1
	}
	return v.OffsetX + cx, v.OffsetY + cy
}

// CellCenter returns the logical point at the center of screen cell (x, y).
func (v Viewport) CellCenter(x, y int) core.Vec {
	return core.V(
		(float64(x-v.OffsetX)+0.5)/float64(v.Cols)*v.LogicalW,
		(float64(y-v.OffsetY)+0.5)/float64(v.Rows)*v.LogicalH,
	)
}

// Contains reports whether screen cell (x, y) is part of the field.
func (v Viewport) Contains(x, y int) bool {
	return x >= v.OffsetX && x < v.OffsetX+v.Cols && y >= v.OffsetY && y < v.OffsetY+v.Rows
}

// CellsIn returns the screen cell range covering the logical rect r,
// clipped to the field. The range is [x0,x1)×[y0,y1).
func (v Viewport) CellsIn(r core.Rect) (x0, y0, x1, y1 int) {
	x0, y0 = v.ToCell(core.V(core.ClampF(r.X, 0, v.LogicalW), core.ClampF(r.Y, 0, v.LogicalH)))
	x1, y1 = v.ToCell(core.V(core.ClampF(r.Right(), 0, v.LogicalW), core.ClampF(r.Bottom(), 0, v.LogicalH)))
	return x0, y0, x1 + 1, y1 + 1
}
