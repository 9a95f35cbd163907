package tui

import (
	"io"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/mazehack/internal/core"
)

func TestPaletteRenderPlain(t *testing.T) {
	// A renderer on a non-terminal has no color support, so only runes remain.
	p := NewPalette(lipgloss.NewRenderer(io.Discard))

	s := core.NewScreen(5, 2)
	s.DrawText(0, 0, "ab", core.ColorGreen)
	s.SetCell(2, 0, 'c', core.ColorRed)
	s.SetCell(4, 1, 'z', core.Color(200))

	want := "abc  \n    z"
	if got := p.Render(s); got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
}

func TestPaletteUnknownColor(t *testing.T) {
	p := NewPalette(nil)
	if got := p.style(core.Color(99)).GetForeground(); got != p[core.ColorDefault].GetForeground() {
		t.Errorf("unknown color style foreground = %v", got)
	}
}
