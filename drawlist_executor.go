package zireael

// CursorState is the caller-visible cursor the executor commits to only on
// successful completion (spec.md §4.3: "intermediate SET_CURSOR effects
// must not be observable on failure").
type CursorState struct {
	X, Y    int
	Shape   CursorShape
	Visible bool
	Blink   bool
}

// ExecOptions carries the caller-supplied policy the executor needs beyond
// the view, destination framebuffer, resource store, and cursor.
type ExecOptions struct {
	TabWidth int
	Policy   WidthPolicy
	Limits   Limits
}

// Execute runs every command in view against dst, mutating store for
// DEFINE/FREE commands and committing to *cursor only on success. view
// must have been returned by a successful Validate call against the same
// version Execute is configured for.
//
// Execute first runs a preflight pass (spec.md §4.3) that resolves every
// resource reference against a clone of store and validates blob framing
// and RGBA sizes; a preflight failure leaves dst, store, and *cursor
// untouched. Only once preflight succeeds does Execute replay the
// commands for real — at that point every resource reference is already
// known to resolve, so the real pass cannot fail.
func Execute(view dlView, dst *Framebuffer, store *resourceStore, cursor *CursorState, opts ExecOptions) error {
	const op = "drawlist.execute"
	if dst == nil || store == nil || cursor == nil {
		return newErr(KindInvalidArgument, op, "nil destination, store, or cursor")
	}

	if err := preflight(view, store); err != nil {
		return err
	}

	ex := &executor{
		view:    view,
		dst:     dst,
		store:   store,
		cursor:  *cursor,
		painter: NewPainter(dst, int(opts.Limits.DLMaxClipDepth)),
		opts:    opts,
	}
	if err := ex.run(); err != nil {
		return err
	}
	*cursor = ex.cursor
	return nil
}

type executor struct {
	view    dlView
	dst     *Framebuffer
	store   *resourceStore
	cursor  CursorState
	painter *Painter
	opts    ExecOptions
}

func (ex *executor) run() error {
	pos := 0
	cb := ex.view.cmdBytes
	for pos < len(cb) {
		opcode := Opcode(leU16(cb[pos:]))
		size := leU32(cb[pos+4:])
		payload := cb[pos+cmdHeaderSize : pos+int(size)]
		if err := ex.dispatch(opcode, payload); err != nil {
			return err
		}
		pos += int(size)
	}
	return nil
}
