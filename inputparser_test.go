package zireael

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestParser() (*InputParser, *EventQueue) {
	q := NewEventQueue(64, 4096)
	return NewInputParser(q, DefaultCapability(), 1<<16), q
}

func TestInputParserPlainTextUTF8(t *testing.T) {
	p, q := newTestParser()
	require.NoError(t, p.ParseBytesPrefix([]byte("a€"), 0))

	ev, ok := q.Pop()
	require.True(t, ok)
	require.Equal(t, EventText, ev.Type)
	require.Equal(t, 'a', ev.Rune)

	ev, ok = q.Pop()
	require.True(t, ok)
	require.Equal(t, EventText, ev.Type)
	require.Equal(t, '€', ev.Rune)
}

func TestInputParserCtrlLetter(t *testing.T) {
	p, q := newTestParser()
	require.NoError(t, p.ParseBytesPrefix([]byte{0x03}, 0)) // Ctrl-C

	ev, ok := q.Pop()
	require.True(t, ok)
	require.Equal(t, KeyCtrlLetter, ev.Key)
	require.Equal(t, 'C', ev.Rune)
	require.Equal(t, ModCtrl, ev.Mods)
}

func TestInputParserArrowKeyCSI(t *testing.T) {
	p, q := newTestParser()
	require.NoError(t, p.ParseBytesPrefix([]byte("\x1b[A"), 0))

	ev, ok := q.Pop()
	require.True(t, ok)
	require.Equal(t, KeyUp, ev.Key)
}

func TestInputParserSGRMouseMove(t *testing.T) {
	p, q := newTestParser()
	require.NoError(t, p.ParseBytesPrefix([]byte("\x1b[<35;6;7M"), 0))

	ev, ok := q.Pop()
	require.True(t, ok)
	require.Equal(t, EventMouse, ev.Type)
	require.Equal(t, MouseMove, ev.MouseAction)
	require.Equal(t, 5, ev.MouseX) // 1-based on wire, 0-based in event
	require.Equal(t, 6, ev.MouseY)
}

func TestInputParserFocusEvents(t *testing.T) {
	p, q := newTestParser()
	require.NoError(t, p.ParseBytesPrefix([]byte("\x1b[I\x1b[O"), 0))

	ev, ok := q.Pop()
	require.True(t, ok)
	require.Equal(t, KeyFocusIn, ev.Key)
	ev, ok = q.Pop()
	require.True(t, ok)
	require.Equal(t, KeyFocusOut, ev.Key)
}

func TestInputParserBracketedPaste(t *testing.T) {
	p, q := newTestParser()
	require.NoError(t, p.ParseBytesPrefix([]byte("\x1b[200~hello, world\x1b[201~"), 0))

	ev, ok := q.Pop()
	require.True(t, ok)
	require.Equal(t, EventPaste, ev.Type)
	require.Equal(t, "hello, world", string(q.PastePayloadView(ev)))
}

// A split paste payload arriving across two ParseBytesPrefix calls (as a
// real read loop would deliver it) must still produce one PASTE event.
func TestInputParserBracketedPasteSplitAcrossReads(t *testing.T) {
	p, q := newTestParser()
	require.NoError(t, p.ParseBytesPrefix([]byte("\x1b[200~part one"), 0))
	require.NoError(t, p.ParseBytesPrefix([]byte(" and part two\x1b[201~"), 0))

	ev, ok := q.Pop()
	require.True(t, ok)
	require.Equal(t, EventPaste, ev.Type)
	require.Equal(t, "part one and part two", string(q.PastePayloadView(ev)))
}

// Prefix safety: a trailing partial CSI sequence is held in pending, not
// misinterpreted, and completes once the rest arrives.
func TestInputParserIncompleteSequenceHeldInPending(t *testing.T) {
	p, q := newTestParser()
	require.NoError(t, p.ParseBytesPrefix([]byte("\x1b["), 0))
	_, ok := q.Pop()
	require.False(t, ok, "an incomplete CSI prefix must not produce an event yet")

	require.NoError(t, p.ParseBytesPrefix([]byte("A"), 0))
	ev, ok := q.Pop()
	require.True(t, ok)
	require.Equal(t, KeyUp, ev.Key)
}

// ESC disambiguation: a bare ESC with no follow-up is held until an idle
// flush forces it to resolve as the Escape key (spec.md §4.5).
func TestInputParserBareEscResolvesOnIdleFlush(t *testing.T) {
	p, q := newTestParser()
	require.NoError(t, p.ParseBytesPrefix([]byte{0x1b}, 0))
	_, ok := q.Pop()
	require.False(t, ok, "a bare ESC must not resolve immediately")

	p.IdleFlush(0)
	ev, ok := q.Pop()
	require.True(t, ok)
	require.Equal(t, KeyEscape, ev.Key)
}

// A paste capture that never sees its end marker is force-flushed after a
// bounded number of idle polls so it can never wedge the parser.
func TestInputParserPasteForceFlushedAfterIdleTimeout(t *testing.T) {
	p, q := newTestParser()
	require.NoError(t, p.ParseBytesPrefix([]byte("\x1b[200~stuck"), 0))

	for i := 0; i < 9; i++ {
		p.IdleFlush(0)
	}

	ev, ok := q.Pop()
	require.True(t, ok)
	require.Equal(t, EventPaste, ev.Type)
	require.Equal(t, "stuck", string(q.PastePayloadView(ev)))
}
