package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/mazehack/internal/core"
)

// Palette maps core colors to styles for one output. SSH sessions need
// their own palette so color support is detected for the client terminal.
type Palette [16]lipgloss.Style

// ansi holds the 256-color code for each core color.
var ansi = map[core.Color]string{
	core.ColorRed:          "9",
	core.ColorGreen:        "2",
	core.ColorCyan:         "14",
	core.ColorWhite:        "15",
	core.ColorBrightGreen:  "10",
	core.ColorBrightYellow: "11",
	core.ColorGray:         "245",
	core.ColorDarkGray:     "238",
	core.ColorTrail:        "28",
	core.ColorPlayer:       "46",
}

// NewPalette builds styles with r. A nil renderer uses the process default.
func NewPalette(r *lipgloss.Renderer) Palette {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	var p Palette
	for i := range p {
		p[i] = r.NewStyle()
	}
	for c, code := range ansi {
		p[c] = r.NewStyle().Foreground(lipgloss.Color(code))
	}
	p[core.ColorPlayer] = p[core.ColorPlayer].Bold(true)
	return p
}

func (p *Palette) style(c core.Color) lipgloss.Style {
	if !c.Valid() {
		return p[core.ColorDefault]
	}
	return p[c]
}

// Render converts a Screen buffer to a styled string. Adjacent cells of the
// same color share one escape sequence.
func (p *Palette) Render(s *core.Screen) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	var run strings.Builder
	for y := range s.Height() {
		if y > 0 {
			sb.WriteByte('\n')
		}
		run.Reset()
		current := s.GetCell(0, y).Color
		for x := range s.Width() {
			cell := s.GetCell(x, y)
			if cell.Color != current {
				sb.WriteString(p.style(current).Render(run.String()))
				run.Reset()
				current = cell.Color
			}
			run.WriteRune(cell.Rune)
		}
		if run.Len() > 0 {
			sb.WriteString(p.style(current).Render(run.String()))
		}
	}
	return sb.String()
}
