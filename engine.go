package zireael

// defaultQueueCapacity and defaultRingBytes size the engine's built-in
// event queue; pasteMaxBytes bounds a single bracketed-paste capture.
const (
	defaultQueueCapacity = 256
	defaultRingBytes     = 64 * 1024
	defaultPasteMaxBytes = 1 << 20
)

// Engine is the single-threaded core described in spec.md §5: it owns
// both framebuffers, the resource store, the event queue, the input
// parser, and the two bump-allocator arenas, and exposes the four
// top-level entry points (Submit, Present, Poll, Resize) plus the one
// cross-thread entry (PostUser).
type Engine struct {
	limits     Limits
	capability Capability
	tabWidth   int
	policy     WidthPolicy

	fbPrev *Framebuffer
	fbNext *Framebuffer
	store  *resourceStore
	cursor CursorState

	termState       TermState
	prevHashesValid bool
	diffScratch     DiffScratch

	queue  *EventQueue
	parser *InputParser

	frameArena      *arena
	persistentArena *arena

	destroyed bool
}

// EngineOptions configures a new Engine beyond dimensions and limits.
type EngineOptions struct {
	Capability Capability
	TabWidth   int
	Policy     WidthPolicy
}

// NewEngine allocates both framebuffers, the resource store, event queue,
// input parser, and arenas, and registers the engine for abnormal-
// termination restore (spec.md §9). Returns OOM if any allocation fails;
// no partial global state is left registered in that case.
func NewEngine(cols, rows int, limits Limits, opts EngineOptions) (*Engine, error) {
	const op = "engine.init"
	if err := limits.Validate(); err != nil {
		return nil, err
	}
	fbPrev, err := NewFramebuffer(cols, rows)
	if err != nil {
		return nil, wrapErr(KindOOM, op, "allocating fb_prev", err)
	}
	fbNext, err := NewFramebuffer(cols, rows)
	if err != nil {
		return nil, wrapErr(KindOOM, op, "allocating fb_next", err)
	}
	tabWidth := opts.TabWidth
	if tabWidth < 1 {
		tabWidth = 8
	}

	e := &Engine{
		limits:          limits,
		capability:      opts.Capability,
		tabWidth:        tabWidth,
		policy:          opts.Policy,
		fbPrev:          fbPrev,
		fbNext:          fbNext,
		store:           newResourceStore(int(limits.DLMaxStrings), int(limits.DLMaxBlobs)),
		cursor:          CursorState{Visible: true, Shape: CursorShapeBlock},
		termState:       InvalidateTermState(),
		queue:           NewEventQueue(defaultQueueCapacity, defaultRingBytes),
		frameArena:      newArena(int(limits.ArenaInitialBytes), int(limits.ArenaMaxTotalBytes)),
		persistentArena: newArena(int(limits.ArenaInitialBytes), int(limits.ArenaMaxTotalBytes)),
	}
	e.parser = NewInputParser(e.queue, opts.Capability, defaultPasteMaxBytes)
	globalRegistry.register(e)
	return e, nil
}

// Destroy releases the engine's buffers and drains in-flight PostUser
// calls before doing so, per spec.md §5's teardown ordering.
func (e *Engine) Destroy() {
	if e.destroyed {
		return
	}
	e.queue.BeginDestroy()
	globalRegistry.unregister(e)
	e.fbPrev.Release()
	e.fbNext.Release()
	e.persistentArena.release()
	e.frameArena.release()
	e.destroyed = true
}

// Submit validates and executes a drawlist against a staging copy of
// fb_next, committing only if execution succeeds (spec.md §5 "Draw
// submission stages into a copy").
func (e *Engine) Submit(buf []byte, version DLVersion) error {
	view, err := Validate(buf, version, e.limits)
	if err != nil {
		return err
	}
	staging := e.fbNext.clone()
	cursor := e.cursor
	opts := ExecOptions{TabWidth: e.tabWidth, Policy: e.policy, Limits: e.limits}
	if err := Execute(view, staging, e.store, &cursor, opts); err != nil {
		return err
	}
	e.fbNext = staging
	e.cursor = cursor
	return nil
}

// Present renders the diff between fb_prev and fb_next, returns the VT
// byte sequence to write, and on success swaps fb_prev/fb_next (spec.md
// §4.4, §5 "Present renders into an output buffer, writes in one flush,
// then swaps"). The returned slice is owned by the engine's per-frame
// arena and is valid only until the next Present call.
func (e *Engine) Present(desired *DesiredCursor) ([]byte, DiffStats, error) {
	e.frameArena.Reset()

	out, newState, stats, err := RenderDiff(e.fbPrev, e.fbNext, e.capability, e.termState, e.prevHashesValid, &e.diffScratch, desired, e.limits)
	if err != nil {
		return nil, DiffStats{}, err
	}

	buf, err := e.frameArena.alloc(len(out))
	if err != nil {
		return nil, DiffStats{}, err
	}
	copy(buf, out)

	e.termState = newState
	e.diffScratch.carryForward()
	e.prevHashesValid = true
	e.fbPrev, e.fbNext = e.fbNext, e.fbPrev
	return buf, stats, nil
}

// Resize grows or shrinks both framebuffers in place (preserving
// intersecting content per Framebuffer.Resize) and invalidates cached
// terminal state and row hashes, then posts a coalescible RESIZE event.
func (e *Engine) Resize(cols, rows int) error {
	if err := e.fbPrev.Resize(cols, rows); err != nil {
		return err
	}
	if err := e.fbNext.Resize(cols, rows); err != nil {
		return err
	}
	e.termState = InvalidateTermState()
	e.prevHashesValid = false
	e.queue.push(Event{Type: EventResize, Cols: cols, Rows: rows})
	return nil
}

// Poll feeds newly-read input bytes to the parser, which posts recognized
// events to the queue (spec.md §4.5).
func (e *Engine) Poll(data []byte, timeMs int64) error {
	return e.parser.ParseBytesPrefix(data, timeMs)
}

// IdleFlush forces any pending partial input sequence and any overdue
// paste capture to resolve (spec.md §4.5 "idle flush").
func (e *Engine) IdleFlush(timeMs int64) {
	e.parser.IdleFlush(timeMs)
}

// PopEvent removes and returns the next queued event, FIFO.
func (e *Engine) PopEvent() (Event, bool) {
	return e.queue.Pop()
}

// PeekEvent returns the next queued event without removing it.
func (e *Engine) PeekEvent() (Event, bool) {
	return e.queue.Peek()
}

// PostUser is the engine's one documented cross-thread entry point.
func (e *Engine) PostUser(tag uint32, payload []byte) error {
	return e.queue.PostUser(tag, payload)
}

// UserPayload and PastePayload borrow the payload-ring bytes for a pending
// USER/PASTE event; the view is valid only until that event is popped.
func (e *Engine) UserPayload(ev Event) []byte  { return e.queue.UserPayloadView(ev) }
func (e *Engine) PastePayload(ev Event) []byte { return e.queue.PastePayloadView(ev) }

// DefineString, DefineBlob, FreeString and FreeBlob expose the resource store directly for
// hosts that manage strings/blobs outside drawlist DEFINE/FREE commands
// (e.g. preloading static assets at startup).
func (e *Engine) DefineString(id uint32, data []byte) error { return e.store.defineString(id, data) }
func (e *Engine) DefineBlob(id uint32, data []byte) error   { return e.store.defineBlob(id, data) }
func (e *Engine) FreeString(id uint32) error                { return e.store.freeString(id) }
func (e *Engine) FreeBlob(id uint32) error                  { return e.store.freeBlob(id) }

// Cols and Rows report the engine's current framebuffer dimensions.
func (e *Engine) Cols() int { return e.fbNext.Cols() }
func (e *Engine) Rows() int { return e.fbNext.Rows() }
