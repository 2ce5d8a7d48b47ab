package core

type Button uint16

const (
	BUTTON_LEFT Button = iota
	BUTTON_RIGHT
	BUTTON_MIDDLE
	BUTTON_MAX_BUTTONS
)

// Key code definitions
type KeyCode uint16

const (
	KEY_BACKSPACE KeyCode = 0x08
	KEY_TAB       KeyCode = 0x09
	KEY_ENTER     KeyCode = 0x0D
	KEY_ESCAPE    KeyCode = 0x1B
	KEY_SPACE     KeyCode = 0x20
	KEY_LEFT      KeyCode = 0x25
	KEY_UP        KeyCode = 0x26
	KEY_RIGHT     KeyCode = 0x27
	KEY_DOWN      KeyCode = 0x28

	KEY_0 KeyCode = 0x30
	KEY_9 KeyCode = 0x39

	KEY_A KeyCode = 0x41
	KEY_B KeyCode = 0x42
	KEY_D KeyCode = 0x44
	KEY_E KeyCode = 0x45
	KEY_F KeyCode = 0x46
	KEY_M KeyCode = 0x4D
	KEY_P KeyCode = 0x50
	KEY_Q KeyCode = 0x51
	KEY_S KeyCode = 0x53
	KEY_W KeyCode = 0x57
	KEY_Z KeyCode = 0x5A

	KEY_NUMPAD0 KeyCode = 0x60
	KEY_NUMPAD9 KeyCode = 0x69

	KEY_F1  KeyCode = 0x70
	KEY_F12 KeyCode = 0x7B

	KEY_MAX_KEYS KeyCode = 0xFF
)

type keyboardState struct {
	Keys [KEY_MAX_KEYS]bool
}

type mouseState struct {
	X       uint16
	Y       uint16
	Buttons [BUTTON_MAX_BUTTONS]bool
}

// InputState keeps the current and previous frame input and turns changes
// into events.
type InputState struct {
	events           *EventSystem
	keyboardCurrent  keyboardState
	keyboardPrevious keyboardState
	mouseCurrent     mouseState
	mousePrevious    mouseState
}

func NewInputState(events *EventSystem) *InputState {
	return &InputState{events: events}
}

// Update copies the current state to the previous one. Call it last in a frame.
func (is *InputState) Update() {
	is.keyboardPrevious = is.keyboardCurrent
	is.mousePrevious = is.mouseCurrent
}

func (is *InputState) IsKeyDown(key KeyCode) bool {
	return is.keyboardCurrent.Keys[key]
}

func (is *InputState) IsKeyUp(key KeyCode) bool {
	return !is.keyboardCurrent.Keys[key]
}

func (is *InputState) WasKeyDown(key KeyCode) bool {
	return is.keyboardPrevious.Keys[key]
}

// KeyReleased reports a down to up transition during the last frame.
func (is *InputState) KeyReleased(key KeyCode) bool {
	return is.IsKeyUp(key) && is.WasKeyDown(key)
}

func (is *InputState) ProcessKey(key KeyCode, pressed bool) {
	if key >= KEY_MAX_KEYS || is.keyboardCurrent.Keys[key] == pressed {
		return
	}
	is.keyboardCurrent.Keys[key] = pressed

	code := EVENT_CODE_KEY_RELEASED
	if pressed {
		code = EVENT_CODE_KEY_PRESSED
	}
	is.events.Fire(EventContext{
		Type: code,
		Data: &KeyEvent{KeyCode: key},
	})
}

func (is *InputState) IsButtonDown(button Button) bool {
	return is.mouseCurrent.Buttons[button]
}

func (is *InputState) MousePosition() (int32, int32) {
	return int32(is.mouseCurrent.X), int32(is.mouseCurrent.Y)
}

func (is *InputState) ProcessButton(button Button, pressed bool) {
	if button >= BUTTON_MAX_BUTTONS || is.mouseCurrent.Buttons[button] == pressed {
		return
	}
	is.mouseCurrent.Buttons[button] = pressed

	code := EVENT_CODE_BUTTON_RELEASED
	if pressed {
		code = EVENT_CODE_BUTTON_PRESSED
	}
	is.events.Fire(EventContext{
		Type: code,
		Data: &MouseEvent{Button: button},
	})
}

func (is *InputState) ProcessMouseMove(x, y uint16) {
	if is.mouseCurrent.X == x && is.mouseCurrent.Y == y {
		return
	}
	is.mouseCurrent.X = x
	is.mouseCurrent.Y = y
	is.events.Fire(EventContext{
		Type: EVENT_CODE_MOUSE_MOVED,
		Data: &MouseEvent{PosX: x, PosY: y},
	})
}

func (is *InputState) ProcessMouseWheel(zDelta int8) {
	is.events.Fire(EventContext{
		Type: EVENT_CODE_MOUSE_WHEEL,
		Data: &MouseEvent{Scroll: zDelta},
	})
}
