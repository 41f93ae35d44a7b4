package zireael

import "unicode/utf8"

type parserState uint8

const (
	stateGround parserState = iota
	stateESC
	stateCSIParam
	stateCSIIntermediate
	stateSS3
	stateOSC
	stateStringTerminator
)

const pendingCapacity = 64

// InputParser turns a stream of terminal input bytes into normalized
// Events, using the byte-level state machine in spec.md §4.5: ground,
// ESC, CSI-param, CSI-intermediate, SS3, OSC, string-terminator.
type InputParser struct {
	state parserState

	pending    [pendingCapacity]byte
	pendingLen int

	pasteCapturing bool
	pasteOverflow  bool
	pasteBuf       []byte
	pasteMaxBytes  int
	idlePolls      int

	escHeld bool // a bare ESC is pending, awaiting disambiguation

	queue *EventQueue
	cap   Capability
}

// NewInputParser creates a parser that posts recognized events to queue.
func NewInputParser(queue *EventQueue, cap Capability, pasteMaxBytes int) *InputParser {
	return &InputParser{queue: queue, cap: cap, pasteMaxBytes: pasteMaxBytes}
}

// ParseBytesPrefix consumes as many complete productions as data contains,
// buffering any trailing partial sequence in pending rather than guessing
// at its meaning (spec.md §4.5 "Prefix safety").
func (p *InputParser) ParseBytesPrefix(data []byte, timeMs int64) error {
	const op = "inputparser.parse_bytes_prefix"
	buf := make([]byte, 0, p.pendingLen+len(data))
	buf = append(buf, p.pending[:p.pendingLen]...)
	buf = append(buf, data...)

	consumed := 0
	for consumed < len(buf) {
		n, ok := p.step(buf[consumed:], timeMs)
		if !ok {
			break // incomplete production; leave the rest in pending
		}
		consumed += n
	}

	rem := buf[consumed:]
	if len(rem) > pendingCapacity {
		return newErr(KindLimit, op, "pending sequence exceeds capacity")
	}
	p.pendingLen = copy(p.pending[:], rem)
	if p.pendingLen > 0 {
		p.idlePolls++
	} else {
		p.idlePolls = 0
	}
	return nil
}

// IdleFlush clears any buffered pending bytes: a lone pending ESC becomes
// the Escape key, and any other pending partial sequence is discarded
// without producing events. It also force-completes a paste capture that
// has sat idle too long so it can never wedge the parser.
func (p *InputParser) IdleFlush(timeMs int64) {
	if p.pendingLen > 0 {
		if p.pendingLen == 1 && p.pending[0] == 0x1b {
			p.emitKey(KeyEscape, 0, timeMs)
		}
		p.pendingLen = 0
		p.idlePolls = 0
	}
	if p.pasteCapturing {
		p.idlePolls++
		if p.idlePolls > 8 {
			p.finishPaste(timeMs)
		}
	}
}

// step parses one production from the front of b, returning the number of
// bytes consumed. ok is false if b holds an incomplete production.
func (p *InputParser) step(b []byte, timeMs int64) (int, bool) {
	if p.pasteCapturing {
		return p.stepPasteCapture(b, timeMs)
	}

	c0 := b[0]
	switch {
	case c0 == 0x1b:
		return p.stepEscape(b, timeMs)
	case c0 < 0x20 || c0 == 0x7f:
		p.emitControl(c0, timeMs)
		return 1, true
	default:
		return p.stepText(b, timeMs)
	}
}

func (p *InputParser) stepText(b []byte, timeMs int64) (int, bool) {
	r, n := utf8.DecodeRune(b)
	if r == utf8.RuneError && n <= 1 {
		if !utf8.FullRune(b) {
			return 0, false
		}
		// invalid byte: consume it as a raw, undecodable control-less byte
		p.postEvent(Event{Type: EventText, Rune: utf8.RuneError, TimeMs: timeMs})
		return 1, true
	}
	p.postEvent(Event{Type: EventText, Rune: r, TimeMs: timeMs})
	return n, true
}

func (p *InputParser) emitControl(c byte, timeMs int64) {
	switch c {
	case '\r', '\n':
		p.emitKey(KeyEnter, 0, timeMs)
	case '\t':
		p.emitKey(KeyTab, 0, timeMs)
	case 0x7f, 0x08:
		p.emitKey(KeyBackspace, 0, timeMs)
	case 0x1b:
		p.emitKey(KeyEscape, 0, timeMs)
	default:
		if c >= 1 && c <= 26 {
			p.postEvent(Event{Type: EventKey, Key: KeyCtrlLetter, Rune: rune('A' + c - 1), Mods: ModCtrl, TimeMs: timeMs})
			return
		}
		p.postEvent(Event{Type: EventKey, Key: KeyNone, TimeMs: timeMs})
	}
}

func (p *InputParser) emitKey(k KeyCode, mods Modifier, timeMs int64) {
	p.postEvent(Event{Type: EventKey, Key: k, Mods: mods, TimeMs: timeMs})
}

func (p *InputParser) postEvent(e Event) {
	p.queue.push(e)
}

// stepEscape handles a byte stream beginning with ESC: either a standalone
// Escape key (disambiguated by idle-flush if nothing follows), ESC O
// (SS3), or ESC [ (CSI).
func (p *InputParser) stepEscape(b []byte, timeMs int64) (int, bool) {
	if len(b) < 2 {
		return 0, false // hold the bare ESC for disambiguation
	}
	switch b[1] {
	case '[':
		return p.stepCSI(b, timeMs)
	case 'O':
		return p.stepSS3(b, timeMs)
	case ']':
		return p.stepOSC(b, timeMs)
	default:
		// Unrecognized ESC sequence: treat as a bare Escape followed by
		// reprocessing the next byte in ground state.
		p.emitKey(KeyEscape, 0, timeMs)
		return 1, true
	}
}

func (p *InputParser) stepSS3(b []byte, timeMs int64) (int, bool) {
	if len(b) < 3 {
		return 0, false
	}
	switch b[2] {
	case 'A':
		p.emitKey(KeyUp, 0, timeMs)
	case 'B':
		p.emitKey(KeyDown, 0, timeMs)
	case 'C':
		p.emitKey(KeyRight, 0, timeMs)
	case 'D':
		p.emitKey(KeyLeft, 0, timeMs)
	case 'H':
		p.emitKey(KeyHome, 0, timeMs)
	case 'F':
		p.emitKey(KeyEnd, 0, timeMs)
	case 'P':
		p.emitKey(KeyF1, 0, timeMs)
	case 'Q':
		p.emitKey(KeyF2, 0, timeMs)
	case 'R':
		p.emitKey(KeyF3, 0, timeMs)
	case 'S':
		p.emitKey(KeyF4, 0, timeMs)
	}
	return 3, true
}

// stepCSI parses "ESC [" followed by parameter bytes (0x30-0x3f),
// intermediate bytes (0x20-0x2f), and a final byte (0x40-0x7e).
func (p *InputParser) stepCSI(b []byte, timeMs int64) (int, bool) {
	i := 2
	for i < len(b) && b[i] >= 0x30 && b[i] <= 0x3f {
		i++
	}
	if i >= len(b) {
		return 0, false
	}
	paramEnd := i
	for i < len(b) && b[i] >= 0x20 && b[i] <= 0x2f {
		i++
	}
	if i >= len(b) {
		return 0, false
	}
	final := b[i]
	if final < 0x40 || final > 0x7e {
		// malformed: consume through this byte and resync at ground
		return i + 1, true
	}
	params := b[2:paramEnd]
	n := i + 1
	p.dispatchCSI(params, final, timeMs)
	return n, true
}

func (p *InputParser) dispatchCSI(params []byte, final byte, timeMs int64) {
	if len(params) > 0 && params[0] == '<' {
		p.dispatchSGRMouse(params[1:], final, timeMs)
		return
	}
	if final == '~' {
		p.dispatchTilde(params, timeMs)
		return
	}
	switch final {
	case 'A':
		p.emitKey(KeyUp, csiModifiers(params), timeMs)
	case 'B':
		p.emitKey(KeyDown, csiModifiers(params), timeMs)
	case 'C':
		p.emitKey(KeyRight, csiModifiers(params), timeMs)
	case 'D':
		p.emitKey(KeyLeft, csiModifiers(params), timeMs)
	case 'H':
		p.emitKey(KeyHome, csiModifiers(params), timeMs)
	case 'F':
		p.emitKey(KeyEnd, csiModifiers(params), timeMs)
	case 'I':
		p.emitKey(KeyFocusIn, 0, timeMs)
	case 'O':
		p.emitKey(KeyFocusOut, 0, timeMs)
	case 'P':
		p.emitKey(KeyF1, csiModifiers(params), timeMs)
	case 'Q':
		p.emitKey(KeyF2, csiModifiers(params), timeMs)
	case 'R':
		p.emitKey(KeyF3, csiModifiers(params), timeMs)
	case 'S':
		p.emitKey(KeyF4, csiModifiers(params), timeMs)
	}
}

// dispatchTilde handles "ESC [ Pn ~" navigation/function keys and the
// bracketed-paste BEGIN/END markers (200~ / 201~).
func (p *InputParser) dispatchTilde(params []byte, timeMs int64) {
	n := firstCSIParam(params)
	switch n {
	case 200:
		if p.cap.BracketedPasteSupported {
			p.pasteCapturing = true
			p.pasteBuf = p.pasteBuf[:0]
			p.pasteOverflow = false
			p.idlePolls = 0
		}
		return
	case 2:
		p.emitKey(KeyInsert, 0, timeMs)
	case 3:
		p.emitKey(KeyDelete, 0, timeMs)
	case 5:
		p.emitKey(KeyPageUp, 0, timeMs)
	case 6:
		p.emitKey(KeyPageDown, 0, timeMs)
	case 15:
		p.emitKey(KeyF5, 0, timeMs)
	case 17:
		p.emitKey(KeyF6, 0, timeMs)
	case 18:
		p.emitKey(KeyF7, 0, timeMs)
	case 19:
		p.emitKey(KeyF8, 0, timeMs)
	case 20:
		p.emitKey(KeyF9, 0, timeMs)
	case 21:
		p.emitKey(KeyF10, 0, timeMs)
	case 23:
		p.emitKey(KeyF11, 0, timeMs)
	case 24:
		p.emitKey(KeyF12, 0, timeMs)
	}
}

// dispatchSGRMouse handles "ESC [ < b ; x ; y M|m".
func (p *InputParser) dispatchSGRMouse(params []byte, final byte, timeMs int64) {
	b, x, y := parseSGRMouseParams(params)
	action := MousePress
	switch {
	case final == 'm':
		action = MouseRelease
	case b&32 != 0 && b&3 == 3:
		action = MouseMove
	case b&32 != 0:
		action = MouseDrag
	case b&64 != 0 && b&1 == 0:
		action = MouseWheelUp
	case b&64 != 0:
		action = MouseWheelDown
	}
	p.postEvent(Event{Type: EventMouse, MouseX: x - 1, MouseY: y - 1, MouseButton: uint8(b & 3), MouseAction: action, TimeMs: timeMs})
}

func (p *InputParser) stepOSC(b []byte, timeMs int64) (int, bool) {
	// OSC body up to ST (ESC \) or BEL; not otherwise interpreted.
	for i := 2; i < len(b)-1; i++ {
		if b[i] == 0x07 {
			return i + 1, true
		}
		if b[i] == 0x1b && b[i+1] == '\\' {
			return i + 2, true
		}
	}
	return 0, false
}

func (p *InputParser) stepPasteCapture(b []byte, timeMs int64) (int, bool) {
	const end = "\x1b[201~"
	for i := 0; i+len(end) <= len(b); i++ {
		if string(b[i:i+len(end)]) == end {
			if !p.pasteOverflow {
				p.pasteBuf = append(p.pasteBuf, b[:i]...)
			}
			p.finishPaste(timeMs)
			return i + len(end), true
		}
	}
	if !p.pasteOverflow {
		if len(p.pasteBuf)+len(b) > p.pasteMaxBytes {
			p.pasteOverflow = true
			p.pasteBuf = p.pasteBuf[:0]
		} else {
			p.pasteBuf = append(p.pasteBuf, b...)
		}
	}
	return len(b), true
}

func (p *InputParser) finishPaste(timeMs int64) {
	p.pasteCapturing = false
	p.idlePolls = 0
	if p.pasteOverflow {
		p.pasteOverflow = false
		p.pasteBuf = p.pasteBuf[:0]
		return
	}
	_ = p.queue.PostPaste(p.pasteBuf)
	p.pasteBuf = p.pasteBuf[:0]
}

func firstCSIParam(params []byte) int {
	n := 0
	for _, c := range params {
		if c == ';' {
			break
		}
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	return n
}

func csiModifiers(params []byte) Modifier {
	parts := splitParams(params)
	if len(parts) < 2 {
		return 0
	}
	code := parts[1] - 1
	var m Modifier
	if code&1 != 0 {
		m |= ModShift
	}
	if code&2 != 0 {
		m |= ModAlt
	}
	if code&4 != 0 {
		m |= ModCtrl
	}
	return m
}

func splitParams(params []byte) []int {
	var out []int
	cur := 0
	started := false
	for _, c := range params {
		if c == ';' {
			out = append(out, cur)
			cur = 0
			started = false
			continue
		}
		if c >= '0' && c <= '9' {
			cur = cur*10 + int(c-'0')
			started = true
		}
	}
	if started || len(out) == 0 {
		out = append(out, cur)
	}
	return out
}

func parseSGRMouseParams(params []byte) (b, x, y int) {
	parts := splitParams(params)
	if len(parts) > 0 {
		b = parts[0]
	}
	if len(parts) > 1 {
		x = parts[1]
	}
	if len(parts) > 2 {
		y = parts[2]
	}
	return
}
