package zireael

import (
	"runtime"
	"sync/atomic"
)

// spinlock is a single-word mutual-exclusion lock acquired by spinning with
// an occasional yield, per spec.md §5 ("guarded by a single spinlock with
// an occasional yield") rather than an OS mutex — the queue is expected to
// be held only for a handful of field updates at a time.
type spinlock struct {
	held atomic.Bool
}

func (l *spinlock) Lock() {
	spins := 0
	for !l.held.CompareAndSwap(false, true) {
		spins++
		if spins%64 == 0 {
			runtime.Gosched()
		}
	}
}

func (l *spinlock) Unlock() {
	l.held.Store(false)
}

// payloadRing is a single contiguous byte ring backing PASTE/USER event
// payloads, with explicit head/tail/used/padEnd bookkeeping (spec.md §4.6
// "Payload ring").
type payloadRing struct {
	buf    []byte
	head   int
	tail   int
	used   int
	padEnd int
}

func newPayloadRing(capacity int) *payloadRing {
	return &payloadRing{buf: make([]byte, capacity)}
}

// alloc reserves n contiguous bytes, preferring the space at the end of the
// ring; if that does not fit it wraps to 0 and records the unused tail-side
// bytes in padEnd. Returns the offset of the reserved region, or ok=false
// if there is not enough free space anywhere.
func (r *payloadRing) alloc(n int) (off int, ok bool) {
	if n == 0 {
		return r.tail, true
	}
	free := len(r.buf) - r.used
	if n > free {
		return 0, false
	}
	endSpace := len(r.buf) - r.tail
	if n <= endSpace {
		off = r.tail
		r.tail += n
		if r.tail == len(r.buf) {
			r.tail = 0
		}
		r.used += n
		return off, true
	}
	// Not enough room at the end: wrap, recording the skipped tail bytes
	// as pad so free() can reclaim them once head catches up.
	if n > r.head {
		return 0, false
	}
	r.padEnd = endSpace
	r.used += endSpace
	off = 0
	r.tail = n
	r.used += n
	return off, true
}

// free releases n bytes from the head of the ring (the oldest allocation).
func (r *payloadRing) free(n int) {
	r.head += n
	r.used -= n
	if r.head == len(r.buf)-r.padEnd && r.padEnd > 0 {
		r.used -= r.padEnd
		r.head = 0
		r.padEnd = 0
	}
	if r.used == 0 {
		r.head, r.tail, r.padEnd = 0, 0, 0
	}
}

func (r *payloadRing) view(off, n int) []byte {
	return r.buf[off : off+n]
}

// EventQueue is a bounded, lock-protected FIFO of events plus the
// variable-length payload ring backing PASTE/USER payloads (spec.md §3,
// §4.6).
type EventQueue struct {
	lock spinlock

	events      []Event
	payloadLens []int // payload length owned by the event at the same ring slot, 0 if none
	head        int
	count       int

	ring *payloadRing

	droppedCount uint64

	destroyStarted  atomic.Bool
	postUserInflight atomic.Int32
}

// NewEventQueue allocates a queue with room for capacity events and a
// payload ring of ringBytes bytes.
func NewEventQueue(capacity, ringBytes int) *EventQueue {
	return &EventQueue{
		events:      make([]Event, capacity),
		payloadLens: make([]int, capacity),
		ring:        newPayloadRing(ringBytes),
	}
}

func (q *EventQueue) slot(i int) int {
	return (q.head + i) % len(q.events)
}

// push attempts coalescing first; if no match and the queue is full, drops
// the head event (freeing its payload bytes and counting the drop), then
// stores the new event at the tail (spec.md §4.6).
func (q *EventQueue) push(e Event) {
	q.lock.Lock()
	defer q.lock.Unlock()
	q.pushLocked(e, 0)
}

func (q *EventQueue) pushLocked(e Event, payloadLen int) {
	for i := q.count - 1; i >= 0; i-- {
		idx := q.slot(i)
		if q.events[idx].coalescesWith(e) {
			q.events[idx] = e
			q.payloadLens[idx] = payloadLen
			return
		}
	}
	if q.count == len(q.events) {
		q.dropHeadLocked()
	}
	idx := q.slot(q.count)
	q.events[idx] = e
	q.payloadLens[idx] = payloadLen
	q.count++
}

func (q *EventQueue) dropHeadLocked() {
	if q.count == 0 {
		return
	}
	if n := q.payloadLens[q.head]; n > 0 {
		q.ring.free(n)
	}
	q.head = (q.head + 1) % len(q.events)
	q.count--
	q.droppedCount++
}

// tryPushNoDrop is push's non-dropping variant: returns LIMIT instead of
// evicting the head when the queue is full and no coalesce target exists.
func (q *EventQueue) tryPushNoDrop(e Event) error {
	const op = "eventqueue.try_push_no_drop"
	q.lock.Lock()
	defer q.lock.Unlock()
	for i := q.count - 1; i >= 0; i-- {
		idx := q.slot(i)
		if q.events[idx].coalescesWith(e) {
			q.events[idx] = e
			return nil
		}
	}
	if q.count == len(q.events) {
		return newErr(KindLimit, op, "event queue full")
	}
	idx := q.slot(q.count)
	q.events[idx] = e
	q.payloadLens[idx] = 0
	q.count++
	return nil
}

// PostUser is the one documented cross-thread entry point: it copies
// payload into the ring and enqueues a USER event, failing with LIMIT
// (never dropping an existing event) if the queue or ring lacks room.
func (q *EventQueue) PostUser(tag uint32, payload []byte) error {
	const op = "eventqueue.post_user"
	if q.destroyStarted.Load() {
		return newErr(KindUnsupported, op, "queue is being destroyed")
	}
	q.postUserInflight.Add(1)
	defer q.postUserInflight.Add(-1)

	q.lock.Lock()
	defer q.lock.Unlock()
	if q.count == len(q.events) {
		return newErr(KindLimit, op, "event queue full")
	}
	off, ok := q.ring.alloc(len(payload))
	if !ok {
		return newErr(KindLimit, op, "payload ring full")
	}
	copy(q.ring.view(off, len(payload)), payload)
	e := Event{Type: EventUser, UserTag: tag, PayloadOff: uint32(off), PayloadLen: uint32(len(payload))}
	idx := q.slot(q.count)
	q.events[idx] = e
	q.payloadLens[idx] = len(payload)
	q.count++
	return nil
}

// PostPaste preflights ring capacity, drops the head event if the queue is
// full, copies the payload, and enqueues a PASTE event.
func (q *EventQueue) PostPaste(payload []byte) error {
	const op = "eventqueue.post_paste"
	q.lock.Lock()
	defer q.lock.Unlock()
	off, ok := q.ring.alloc(len(payload))
	if !ok {
		return newErr(KindLimit, op, "payload ring full")
	}
	copy(q.ring.view(off, len(payload)), payload)
	e := Event{Type: EventPaste, PayloadOff: uint32(off), PayloadLen: uint32(len(payload))}
	q.pushLocked(e, len(payload))
	return nil
}

// Peek returns the event at the head of the queue without removing it.
func (q *EventQueue) Peek() (Event, bool) {
	q.lock.Lock()
	defer q.lock.Unlock()
	if q.count == 0 {
		return Event{}, false
	}
	return q.events[q.head], true
}

// Pop removes and returns the head event, freeing any payload bytes it
// owned.
func (q *EventQueue) Pop() (Event, bool) {
	q.lock.Lock()
	defer q.lock.Unlock()
	if q.count == 0 {
		return Event{}, false
	}
	e := q.events[q.head]
	if n := q.payloadLens[q.head]; n > 0 {
		q.ring.free(n)
	}
	q.head = (q.head + 1) % len(q.events)
	q.count--
	return e, true
}

// UserPayloadView returns a borrowed slice into the ring for a pending
// USER event, valid until that event is popped.
func (q *EventQueue) UserPayloadView(e Event) []byte {
	return q.ring.view(int(e.PayloadOff), int(e.PayloadLen))
}

// PastePayloadView returns a borrowed slice into the ring for a pending
// PASTE event, valid until that event is popped.
func (q *EventQueue) PastePayloadView(e Event) []byte {
	return q.ring.view(int(e.PayloadOff), int(e.PayloadLen))
}

// DroppedCount reports the number of events dropped by push/PostPaste due
// to a full queue.
func (q *EventQueue) DroppedCount() uint64 {
	q.lock.Lock()
	defer q.lock.Unlock()
	return q.droppedCount
}

// BeginDestroy sets the teardown flag and spins until every in-flight
// PostUser call has returned, per spec.md §5's teardown ordering.
func (q *EventQueue) BeginDestroy() {
	q.destroyStarted.Store(true)
	for q.postUserInflight.Load() > 0 {
		runtime.Gosched()
	}
}
