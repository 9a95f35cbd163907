package core

// Color represents a foreground color for a screen cell. The platform maps
// each value to a terminal color; games only pick the role.
type Color uint8

// Colors used by the maze renderer.
const (
	ColorDefault      Color = iota
	ColorRed                // failure text
	ColorGreen              // walls, HUD
	ColorCyan               // start marker
	ColorWhite              // overlay text
	ColorBrightGreen        // titles
	ColorBrightYellow       // end marker
	ColorGray               // background shading
	ColorDarkGray           // dim background shading
	ColorTrail              // translucent player green
	ColorPlayer

	numColors
)

// Valid reports whether c is one of the defined colors.
func (c Color) Valid() bool {
	return c < numColors
}
