package host

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/phroun/direct-key-handler/keyboard"
)

// KeyboardSource captures raw stdin keystrokes through direct-key-handler,
// the teacher's own dependency for this concern (purfecterm's
// cli/input.go drives the same keyboard.Handler over stdin and converts
// its decoded key names back into bytes for a child PTY). Here the
// decoded bytes feed zireael's Engine.Poll instead, so the engine's input
// parser — which expects a raw VT byte stream, not named keys — still
// sees exactly the bytes a terminal would have sent.
type KeyboardSource struct {
	kbd *keyboard.Handler
	out chan []byte
}

// NewKeyboardSource starts a keyboard.Handler over in. ManageTerminal is
// false because the host Terminal returned by New already owns raw-mode
// enter/leave (EnterRaw/LeaveRaw); direct-key-handler must not also touch
// terminal modes.
func NewKeyboardSource(in *os.File) (*KeyboardSource, error) {
	manageTerminal := false
	s := &KeyboardSource{out: make(chan []byte, 64)}
	s.kbd = keyboard.New(keyboard.Options{
		InputReader:    in,
		ManageTerminal: &manageTerminal,
	})
	s.kbd.OnKey = func(key string) {
		b := keyNameToBytes(key)
		if len(b) == 0 {
			return
		}
		select {
		case s.out <- b:
		default:
			// Backpressure: the demo loop isn't keeping up: drop, the
			// way the engine's own event queue drops under pressure
			// rather than blocking the producer (spec.md §4.6).
		}
	}
	if err := s.kbd.Start(); err != nil {
		return nil, fmt.Errorf("host: start keyboard handler: %w", err)
	}
	return s, nil
}

// ReadTimeout returns the next decoded key's raw bytes, or a zero-length,
// nil-error result if none arrives before timeout — the same "poll again"
// contract as Terminal.ReadTimeout, so a host loop can use either
// interchangeably.
func (s *KeyboardSource) ReadTimeout(buf []byte, timeout time.Duration) (int, error) {
	select {
	case b := <-s.out:
		return copy(buf, b), nil
	case <-time.After(timeout):
		return 0, nil
	}
}

// Stop shuts down the underlying keyboard.Handler.
func (s *KeyboardSource) Stop() {
	s.kbd.Stop()
}

// keyNameToBytes converts a direct-key-handler key name back into the raw
// VT byte sequence zireael's input parser expects, the same mapping
// purfecterm's cli/input.go's keyToBytes/keyToBytesMap uses to turn a
// decoded key back into bytes for its child PTY.
func keyNameToBytes(key string) []byte {
	if b, ok := keyNameBytesTable[key]; ok {
		return b
	}

	if len(key) == 1 {
		return []byte(key)
	}

	if len(key) == 2 && key[0] == '^' {
		ch := key[1]
		switch {
		case ch >= 'A' && ch <= 'Z':
			return []byte{ch - 'A' + 1}
		case ch >= 'a' && ch <= 'z':
			return []byte{ch - 'a' + 1}
		case ch == '@':
			return []byte{0}
		case ch == '[':
			return []byte{27}
		case ch == '\\':
			return []byte{28}
		case ch == ']':
			return []byte{29}
		case ch == '^':
			return []byte{30}
		case ch == '_':
			return []byte{31}
		}
	}

	if strings.HasPrefix(key, "M-") && len(key) == 3 {
		return []byte{0x1b, key[2]}
	}

	if len(key) > 1 && key[0] != '^' && !strings.Contains(key, "-") {
		return []byte(key) // multi-byte UTF-8, no modifier
	}

	return nil
}

// keyNameBytesTable maps direct-key-handler's named keys to the VT byte
// sequences zireael's input parser recognizes (spec.md §4.5).
var keyNameBytesTable = map[string][]byte{
	"Enter":     {13},
	"Tab":       {9},
	"Backspace": {127},
	"Escape":    {27},

	"Up":    {0x1b, '[', 'A'},
	"Down":  {0x1b, '[', 'B'},
	"Right": {0x1b, '[', 'C'},
	"Left":  {0x1b, '[', 'D'},

	"C-Up":    {0x1b, '[', '1', ';', '5', 'A'},
	"C-Down":  {0x1b, '[', '1', ';', '5', 'B'},
	"C-Right": {0x1b, '[', '1', ';', '5', 'C'},
	"C-Left":  {0x1b, '[', '1', ';', '5', 'D'},
	"M-Up":    {0x1b, '[', '1', ';', '3', 'A'},
	"M-Down":  {0x1b, '[', '1', ';', '3', 'B'},
	"M-Right": {0x1b, '[', '1', ';', '3', 'C'},
	"M-Left":  {0x1b, '[', '1', ';', '3', 'D'},

	"Home":     {0x1b, '[', 'H'},
	"End":      {0x1b, '[', 'F'},
	"Insert":   {0x1b, '[', '2', '~'},
	"Delete":   {0x1b, '[', '3', '~'},
	"PageUp":   {0x1b, '[', '5', '~'},
	"PageDown": {0x1b, '[', '6', '~'},

	"F1":  {0x1b, 'O', 'P'},
	"F2":  {0x1b, 'O', 'Q'},
	"F3":  {0x1b, 'O', 'R'},
	"F4":  {0x1b, 'O', 'S'},
	"F5":  {0x1b, '[', '1', '5', '~'},
	"F6":  {0x1b, '[', '1', '7', '~'},
	"F7":  {0x1b, '[', '1', '8', '~'},
	"F8":  {0x1b, '[', '1', '9', '~'},
	"F9":  {0x1b, '[', '2', '0', '~'},
	"F10": {0x1b, '[', '2', '1', '~'},
	"F11": {0x1b, '[', '2', '3', '~'},
	"F12": {0x1b, '[', '2', '4', '~'},
}
