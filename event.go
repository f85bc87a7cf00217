package lattice

// MouseButton identifies a mouse button in input events.
type MouseButton uint8

const (
	MouseButtonNone MouseButton = iota
	MouseButtonLeft
	MouseButtonRight
	MouseButtonMiddle
)

// Modifiers is a bitmask of modifier keys held during an event.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModControl
	ModAlt
	ModMeta
)

// Key identifies a non-character key. The driver maps platform key codes
// onto this set; widgets only ever see these.
type Key uint16

const (
	KeyNone Key = iota
	KeyEnter
	KeyEscape
	KeyBackspace
	KeyDelete
	KeyTab
	KeySpace
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
)

// GamepadButton identifies a gamepad button. Only the buttons widgets
// care about are named; the driver passes anything else through raw.
type GamepadButton uint8

const (
	GamepadNone GamepadButton = iota
	GamepadConfirm
	GamepadCancel
	GamepadUp
	GamepadDown
	GamepadLeft
	GamepadRight
)

// MouseEvent carries a pointer event. Pos is in normalized screen
// coordinates; Local is the fraction of the target node's own rect,
// so (0,0) is the node's top-left corner and (1,1) its bottom-right.
type MouseEvent struct {
	Pos    Vec2
	Local  Vec2
	Button MouseButton
	Mods   Modifiers
	Clicks int // 1 for click, 2 for double-click; 0 on move/press/release
}

// ScrollEvent carries a wheel event in whole scroll steps. Positive steps
// move the content up (revealing what lies below the window).
type ScrollEvent struct {
	Pos   Vec2
	Steps int
	Mods  Modifiers
}

// KeyEvent carries a key press delivered to the focused node.
type KeyEvent struct {
	Key    Key
	Mods   Modifiers
	Repeat bool
}

// GamepadEvent carries a gamepad button press delivered to the focused node.
type GamepadEvent struct {
	Button GamepadButton
}

// InputFrame is one tick's worth of raw device input. The manager consumes
// it in a fixed order: hover transitions first, then presses and releases,
// then key/char/gamepad input, then scroll.
type InputFrame struct {
	CursorPos Vec2
	Mods      Modifiers

	Pressed  []MouseButton
	Released []MouseButton

	Keys    []KeyEvent
	Chars   []rune
	Gamepad []GamepadButton

	// WheelSteps accumulates wheel movement for the tick, in whole steps.
	WheelSteps int
}
