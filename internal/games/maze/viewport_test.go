package maze

import (
	"testing"

	"github.com/vovakirdan/mazehack/internal/core"
)

func TestNewViewport(t *testing.T) {
	tests := []struct {
		name        string
		w, h        int
		wantCols    int
		wantRows    int
		wantOffsetX int
		wantOffsetY int
	}{
		{"exact fit", 160, 46, 160, 45, 0, 1},
		{"wide terminal", 200, 46, 160, 45, 20, 1},
		{"tall terminal", 100, 60, 100, 28, 0, 16},
		{"degenerate", 0, 0, 1, 1, 0, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			vp := NewViewport(tc.w, tc.h, core.LogicalWidth, core.LogicalHeight)
			if vp.Cols != tc.wantCols || vp.Rows != tc.wantRows {
				t.Errorf("size = %dx%d, expected %dx%d", vp.Cols, vp.Rows, tc.wantCols, tc.wantRows)
			}
			if vp.OffsetX != tc.wantOffsetX || vp.OffsetY != tc.wantOffsetY {
				t.Errorf("offset = (%d,%d), expected (%d,%d)", vp.OffsetX, vp.OffsetY, tc.wantOffsetX, tc.wantOffsetY)
			}
		})
	}
}

func TestViewportToCell(t *testing.T) {
	vp := NewViewport(160, 46, core.LogicalWidth, core.LogicalHeight)

	tests := []struct {
		p      core.Vec
		wx, wy int
	}{
		{core.V(0, 0), 0, 1},
		{core.V(1920, 1080), 159, 45},
		{core.V(11.9, 23.9), 0, 1},
		{core.V(13, 25), 1, 2},
		{core.V(960, 540), 80, 23},
	}

	for _, tc := range tests {
		x, y := vp.ToCell(tc.p)
		if x != tc.wx || y != tc.wy {
			t.Errorf("ToCell(%v) = (%d,%d), expected (%d,%d)", tc.p, x, y, tc.wx, tc.wy)
		}
		if !vp.Contains(x, y) {
			t.Errorf("cell (%d,%d) for %v is outside the field", x, y, tc.p)
		}
	}
}

func TestViewportCellCenterRoundTrip(t *testing.T) {
	vp := NewViewport(133, 41, core.LogicalWidth, core.LogicalHeight)
	for y := vp.OffsetY; y < vp.OffsetY+vp.Rows; y++ {
		for x := vp.OffsetX; x < vp.OffsetX+vp.Cols; x++ {
			gx, gy := vp.ToCell(vp.CellCenter(x, y))
			if gx != x || gy != y {
				t.Fatalf("round trip (%d,%d) -> (%d,%d)", x, y, gx, gy)
			}
		}
	}
}

func TestViewportCellsInClips(t *testing.T) {
	vp := NewViewport(160, 46, core.LogicalWidth, core.LogicalHeight)

	x0, y0, x1, y1 := vp.CellsIn(core.NewRect(-100, -100, 5000, 5000))
	if x0 != 0 || y0 != 1 || x1 != 160 || y1 != 46 {
		t.Errorf("CellsIn(oversized) = [%d,%d)x[%d,%d), expected the whole field", x0, x1, y0, y1)
	}

	x0, y0, x1, y1 = vp.CellsIn(core.NewRect(126, 252, 24, 48))
	if x0 != 10 || x1 != 13 || y0 != 11 || y1 != 14 {
		t.Errorf("CellsIn = [%d,%d)x[%d,%d), expected [10,13)x[11,14)", x0, x1, y0, y1)
	}
}
