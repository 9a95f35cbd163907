package core

// Action represents a semantic platform action, abstracted from physical key presses.
type Action int

const (
	ActionNone    Action = iota
	ActionConfirm        // Enter - confirm on start/end screens
	ActionRestart        // R key - restart after completion
	ActionQuit           // Q, Ctrl+C - exit game/session
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionConfirm:
		return "Confirm"
	case ActionRestart:
		return "Restart"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// KeyCode identifies a physical key, independent of what it means in-game.
// Steering keys use DOM-style code names.
type KeyCode string

const (
	KeyArrowUp    KeyCode = "ArrowUp"
	KeyArrowDown  KeyCode = "ArrowDown"
	KeyArrowLeft  KeyCode = "ArrowLeft"
	KeyArrowRight KeyCode = "ArrowRight"
)

// ArrowKeys is the fixed set of physical steering keys, in canonical order.
var ArrowKeys = [4]KeyCode{KeyArrowUp, KeyArrowDown, KeyArrowLeft, KeyArrowRight}

// InputFrame represents the input state for a single simulation tick.
type InputFrame struct {
	// Actions maps action types to whether they were triggered this frame.
	Actions map[Action]bool

	// Keys lists physical keys pressed this frame, in arrival order.
	Keys []KeyCode
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{
		Actions: make(map[Action]bool),
	}
}

// Set marks an action as triggered for this frame.
func (f *InputFrame) Set(a Action) {
	if f.Actions == nil {
		f.Actions = make(map[Action]bool)
	}
	f.Actions[a] = true
}

// Press records a physical key press for this frame.
func (f *InputFrame) Press(k KeyCode) {
	f.Keys = append(f.Keys, k)
}

// Has returns true if the given action was triggered this frame.
func (f InputFrame) Has(a Action) bool {
	if f.Actions == nil {
		return false
	}
	return f.Actions[a]
}

// Empty reports whether nothing happened this frame.
func (f InputFrame) Empty() bool {
	return len(f.Keys) == 0 && len(f.Actions) == 0
}

// Clear resets all actions and keys for the next frame.
func (f *InputFrame) Clear() {
	for k := range f.Actions {
		delete(f.Actions, k)
	}
	f.Keys = f.Keys[:0]
}
