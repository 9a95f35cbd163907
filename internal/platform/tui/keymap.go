package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/mazehack/internal/core"
)

// KeyMapper translates Bubble Tea key messages to game input.
// This centralizes key bindings and makes them testable.
type KeyMapper struct{}

// NewKeyMapper creates a new key mapper with default bindings.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{}
}

// arrowCodes maps terminal arrow keys to physical key codes.
var arrowCodes = map[string]core.KeyCode{
	"up":    core.KeyArrowUp,
	"down":  core.KeyArrowDown,
	"left":  core.KeyArrowLeft,
	"right": core.KeyArrowRight,
}

// MapKey translates a key message. It returns the semantic action (may be
// ActionNone), the physical key code (empty for control keys) and whether
// the key is a quit request.
func (km *KeyMapper) MapKey(msg tea.KeyMsg) (action core.Action, code core.KeyCode, isQuit bool) {
	key := msg.String()

	// Global quit keys
	switch key {
	case "ctrl+c", "q":
		return core.ActionQuit, "", true
	}

	if c, ok := arrowCodes[key]; ok {
		return core.ActionNone, c, false
	}

	switch key {
	case "enter":
		return core.ActionConfirm, core.KeyCode(key), false
	case "r":
		return core.ActionRestart, core.KeyCode(key), false
	}

	// Any other key still counts as a press; the game decides whether it
	// means anything.
	return core.ActionNone, core.KeyCode(key), false
}

// MapKeyToFrame updates an input frame based on a key message.
// Returns true if the key was a quit request.
func (km *KeyMapper) MapKeyToFrame(msg tea.KeyMsg, frame *core.InputFrame) bool {
	action, code, isQuit := km.MapKey(msg)
	if isQuit {
		frame.Set(core.ActionQuit)
		return true
	}
	if action != core.ActionNone {
		frame.Set(action)
	}
	if code != "" {
		frame.Press(code)
	}
	return false
}
