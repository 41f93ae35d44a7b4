package zireael

// EventType tags the variant carried by an Event.
type EventType uint8

const (
	EventKey EventType = iota
	EventText
	EventMouse
	EventResize
	EventTick
	EventPaste
	EventUser
)

// Modifier is a bitset of held modifier keys.
type Modifier uint8

const (
	ModShift Modifier = 1 << iota
	ModAlt
	ModCtrl
)

// KeyCode enumerates the non-printable keys the parser recognizes.
type KeyCode uint16

const (
	KeyNone KeyCode = iota
	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyInsert
	KeyDelete
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyCtrlLetter // Code carries 'A'..'Z' in Rune; a control byte 0x01..0x1A
	KeyFocusIn
	KeyFocusOut
)

// MouseAction enumerates SGR mouse button actions.
type MouseAction uint8

const (
	MousePress MouseAction = iota
	MouseRelease
	MouseMove
	MouseDrag
	MouseWheelUp
	MouseWheelDown
)

// Event is a normalized, tagged-variant input event (spec.md §3). Only the
// field set matching Type is meaningful.
type Event struct {
	Type EventType
	TimeMs int64

	// KEY / TEXT
	Key  KeyCode
	Rune rune
	Mods Modifier

	// MOUSE
	MouseX, MouseY int
	MouseButton    uint8
	MouseAction    MouseAction

	// RESIZE
	Cols, Rows int

	// PASTE / USER: offset+length into the payload ring, borrowed until pop.
	PayloadOff uint32
	PayloadLen uint32
	UserTag    uint32
}

// coalescesWith reports whether two queued events of the same observable
// kind should collapse into one (spec.md §4.6 "Coalescing policy").
func (e Event) coalescesWith(o Event) bool {
	if e.Type != o.Type {
		return false
	}
	switch e.Type {
	case EventResize:
		return true
	case EventMouse:
		return (e.MouseAction == MouseMove || e.MouseAction == MouseDrag) &&
			(o.MouseAction == MouseMove || o.MouseAction == MouseDrag)
	default:
		return false
	}
}
