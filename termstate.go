package zireael

// TermState is a cache of what was last emitted to the terminal, carried
// frame to frame so the diff renderer can skip redundant CUP/SGR
// sequences. Resize invalidates it (spec.md §3).
type TermState struct {
	CursorX, CursorY int
	CursorVisible    bool
	CursorShape      CursorShape
	CursorBlink      bool

	styleKnown bool
	style      Style

	Valid bool
}

// InvalidateTermState returns a fresh, fully-unknown state, used after a
// resize or before the first frame.
func InvalidateTermState() TermState {
	return TermState{CursorShape: CursorShapeBlock, Valid: false}
}
