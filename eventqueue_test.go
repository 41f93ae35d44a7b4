package zireael

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Scenario F (spec.md §8): RESIZE and MOUSE_MOVE/DRAG coalesce with the
// latest queued event of the same kind; everything else is appended.
// Coalescing replaces the queued event in place and is not counted by
// DroppedCount, which counts only events refused by a full queue.
func TestEventQueueCoalescesResizeAndMouseMove(t *testing.T) {
	q := NewEventQueue(16, 1024)

	q.push(Event{Type: EventResize, Cols: 80, Rows: 24})
	q.push(Event{Type: EventMouse, MouseAction: MouseMove, MouseX: 5, MouseY: 5})
	q.push(Event{Type: EventMouse, MouseAction: MouseMove, MouseX: 6, MouseY: 6})
	q.push(Event{Type: EventResize, Cols: 100, Rows: 30})
	q.push(Event{Type: EventMouse, MouseAction: MouseMove, MouseX: 7, MouseY: 7})

	ev, ok := q.Pop()
	require.True(t, ok)
	require.Equal(t, EventResize, ev.Type)
	require.Equal(t, 100, ev.Cols)
	require.Equal(t, 30, ev.Rows)

	ev, ok = q.Pop()
	require.True(t, ok)
	require.Equal(t, EventMouse, ev.Type)
	require.Equal(t, 7, ev.MouseX)
	require.Equal(t, 7, ev.MouseY)

	_, ok = q.Pop()
	require.False(t, ok)
}

func TestEventQueueFIFOOrderForNonCoalescingTypes(t *testing.T) {
	q := NewEventQueue(16, 1024)
	q.push(Event{Type: EventKey, Key: KeyEnter})
	q.push(Event{Type: EventText, Rune: 'a'})
	q.push(Event{Type: EventKey, Key: KeyTab})

	first, ok := q.Pop()
	require.True(t, ok)
	require.Equal(t, KeyEnter, first.Key)
	second, ok := q.Pop()
	require.True(t, ok)
	require.Equal(t, EventText, second.Type)
	third, ok := q.Pop()
	require.True(t, ok)
	require.Equal(t, KeyTab, third.Key)
}

func TestEventQueueDropsHeadWhenFullAndNoCoalesceTarget(t *testing.T) {
	q := NewEventQueue(2, 1024)
	q.push(Event{Type: EventKey, Key: KeyEnter})
	q.push(Event{Type: EventKey, Key: KeyTab})
	q.push(Event{Type: EventKey, Key: KeyEscape}) // queue full, drops KeyEnter

	require.Equal(t, uint64(1), q.DroppedCount())
	ev, ok := q.Pop()
	require.True(t, ok)
	require.Equal(t, KeyTab, ev.Key)
	ev, ok = q.Pop()
	require.True(t, ok)
	require.Equal(t, KeyEscape, ev.Key)
}

func TestEventQueueTryPushNoDropReturnsLimit(t *testing.T) {
	q := NewEventQueue(1, 1024)
	require.NoError(t, q.tryPushNoDrop(Event{Type: EventKey, Key: KeyEnter}))
	err := q.tryPushNoDrop(Event{Type: EventKey, Key: KeyTab})
	require.Error(t, err)
	var zerr *Error
	require.ErrorAs(t, err, &zerr)
	require.Equal(t, KindLimit, zerr.Kind)
}

// Scenario: payload-ring safety (spec.md §8 property 8) — views returned
// for distinct pending events never overlap and stay readable until pop.
func TestEventQueuePayloadViewsDistinctAndStableUntilPop(t *testing.T) {
	q := NewEventQueue(8, 64)
	require.NoError(t, q.PostUser(1, []byte("hello")))
	require.NoError(t, q.PostUser(2, []byte("world!")))

	ev1, ok := q.Peek()
	require.True(t, ok)
	require.Equal(t, EventUser, ev1.Type)
	view1 := q.UserPayloadView(ev1)
	require.Equal(t, "hello", string(view1))

	_, ok = q.Pop()
	require.True(t, ok)

	ev2, ok := q.Peek()
	require.True(t, ok)
	view2 := q.UserPayloadView(ev2)
	require.Equal(t, "world!", string(view2))
}

func TestEventQueuePostUserFailsWhenRingFull(t *testing.T) {
	q := NewEventQueue(8, 4)
	err := q.PostUser(1, []byte("toolong"))
	require.Error(t, err)
	var zerr *Error
	require.ErrorAs(t, err, &zerr)
	require.Equal(t, KindLimit, zerr.Kind)
}

func TestEventQueuePostUserNeverDropsExistingEvents(t *testing.T) {
	q := NewEventQueue(1, 64)
	require.NoError(t, q.PostUser(1, []byte("a")))
	err := q.PostUser(2, []byte("b"))
	require.Error(t, err)
	var zerr *Error
	require.ErrorAs(t, err, &zerr)
	require.Equal(t, KindLimit, zerr.Kind)

	ev, ok := q.Pop()
	require.True(t, ok)
	require.Equal(t, uint32(1), ev.UserTag)
}

// TestPayloadRingAllocFreeWraparound exercises the documented wraparound
// path: an allocation that does not fit the contiguous end-space wraps to
// offset 0 and records the skipped tail bytes as pad, which free()
// reclaims once head catches up to it (spec.md §4.6 "Payload ring").
func TestPayloadRingAllocFreeWraparound(t *testing.T) {
	r := newPayloadRing(8)

	offA, ok := r.alloc(6) // A: [0,6)
	require.True(t, ok)
	require.Equal(t, 0, offA)

	offB, ok := r.alloc(1) // B: [6,7), fits the remaining end-space
	require.True(t, ok)
	require.Equal(t, 6, offB)

	r.free(6) // free A; head=6, used=1

	offC, ok := r.alloc(3) // C: doesn't fit [7,8) end-space, wraps to 0
	require.True(t, ok)
	require.Equal(t, 0, offC, "wraparound allocation must land at offset 0")
	require.Equal(t, 1, r.padEnd, "the skipped tail byte at [7,8) is recorded as pad")

	r.free(1) // free B; head reaches cap-padEnd, reclaiming the pad
	require.Equal(t, 0, r.padEnd)
	require.Equal(t, 0, r.head)
	require.Equal(t, 3, r.used)

	_, ok = r.alloc(5) // only 8-3=5 bytes free; exactly fits
	require.True(t, ok)
	_, ok = r.alloc(1)
	require.False(t, ok, "ring has no remaining free space")
}
