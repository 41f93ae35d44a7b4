package zireael

// DesiredCursor is the cursor state the caller wants visible after the
// frame, or nil to leave the cursor alone (spec.md §4.4).
type DesiredCursor struct {
	X, Y    int
	Shape   CursorShape
	Visible bool
	Blink   bool
}

// DiffScratch holds caller-owned, reusable scratch storage for RenderDiff's
// row hashes and dirty flags, so those are not reallocated per frame.
// RenderDiff still allocates its output writer, the returned byte slice,
// and its damage-rect lists on every call. Reset sizes it for cols x rows;
// the caller reuses the same DiffScratch across frames of the same
// dimensions.
type DiffScratch struct {
	PrevHashes []uint64
	NextHashes []uint64
	dirty []bool
}

// Reset (re)sizes the scratch buffers for the given row count. It does not
// clear PrevHashes: the caller is expected to carry them forward across
// frames when PrevHashesValid is true.
func (s *DiffScratch) Reset(rows int) {
	if cap(s.NextHashes) < rows {
		s.NextHashes = make([]uint64, rows)
	} else {
		s.NextHashes = s.NextHashes[:rows]
	}
	if cap(s.PrevHashes) < rows {
		grown := make([]uint64, rows)
		copy(grown, s.PrevHashes)
		s.PrevHashes = grown
	} else {
		s.PrevHashes = s.PrevHashes[:rows]
	}
	if cap(s.dirty) < rows {
		s.dirty = make([]bool, rows)
	} else {
		s.dirty = s.dirty[:rows]
	}
	for i := range s.dirty {
		s.dirty[i] = false
	}
}

// carryForward moves this frame's NextHashes into PrevHashes so the
// caller can pass prevHashesValid=true next call, after swapping fb_prev
// and fb_next (spec.md §4.4 step 1: "prev_hashes_valid ... lets us skip
// recomputing P's hashes across frames").
func (s *DiffScratch) carryForward() {
	s.PrevHashes, s.NextHashes = s.NextHashes, s.PrevHashes
}

// DiffStats reports what a RenderDiff call did, for instrumentation and
// test assertions (spec.md §4.4 "Stats").
type DiffStats struct {
	DirtyLines         int
	DirtyCells         int
	DamageRects        int
	DamageCells        int
	FullFrame          bool
	BytesEmitted       int
	ScrollOptAttempted bool
	ScrollOptHit       bool
	CollisionGuardHits int
	UsedSweepPath      bool
}

const (
	sweepBaseThreshold     = 0.35
	sweepWideThreshold     = 0.30
	sweepSmallThreshold    = 0.45
	sweepVeryDirtyThreshold = 0.25
	sweepWideCols          = 120
	sweepSmallRows         = 12
	sweepVeryDirtyFrac     = 0.75
)

// RenderDiff computes the minimal VT/ANSI byte sequence to transform a
// terminal last showing prev's content into next's content, per
// spec.md §4.4. On success it returns the bytes to write, the terminal
// state after writing them, and stats. On failure it returns a zeroed
// byte slice and state.
func RenderDiff(prev, next *Framebuffer, cap Capability, state TermState, prevHashesValid bool, scratch *DiffScratch, desired *DesiredCursor, limits Limits) ([]byte, TermState, DiffStats, error) {
	const op = "diffrenderer.render"
	if prev == nil || next == nil {
		return nil, TermState{}, DiffStats{}, newErr(KindInvalidArgument, op, "nil framebuffer")
	}
	if prev.Cols() != next.Cols() || prev.Rows() != next.Rows() {
		return nil, TermState{}, DiffStats{}, newErr(KindInvalidArgument, op, "framebuffer dimension mismatch")
	}

	rows, cols := next.Rows(), next.Cols()
	scratch.Reset(rows)
	var stats DiffStats

	if !prevHashesValid {
		for y := 0; y < rows; y++ {
			scratch.PrevHashes[y] = rowHash(prev, y)
		}
	}
	for y := 0; y < rows; y++ {
		scratch.NextHashes[y] = rowHash(next, y)
		if scratch.NextHashes[y] == scratch.PrevHashes[y] {
			if rowsEqual(prev, next, y) {
				scratch.dirty[y] = false
			} else {
				stats.CollisionGuardHits++
				scratch.dirty[y] = true
			}
		} else {
			scratch.dirty[y] = true
		}
		if scratch.dirty[y] {
			stats.DirtyLines++
		}
	}

	w := newVTWriter(int(limits.OutMaxBytesPerFrame))

	if cap.ScrollRegionSupported && rows >= 2 {
		stats.ScrollOptAttempted = true
		if plan, ok := detectScrollPlan(prev, next, scratch.PrevHashes, scratch.NextHashes); ok {
			stats.ScrollOptHit = true
			w.decstbm(plan.top, plan.bottom)
			if plan.down {
				w.scrollDown(plan.delta)
			} else {
				w.scrollUp(plan.delta)
			}
			w.decstbmReset()
			for y := plan.top; y <= plan.bottom; y++ {
				var srcY int
				if plan.down {
					srcY = y - plan.delta
				} else {
					srcY = y + plan.delta
				}
				if srcY >= plan.top && srcY <= plan.bottom {
					scratch.dirty[y] = false
				}
			}
		}
	}

	dirtyCount := 0
	for y := 0; y < rows; y++ {
		if scratch.dirty[y] {
			dirtyCount++
		}
	}
	threshold := sweepBaseThreshold
	if cols >= sweepWideCols {
		threshold = sweepWideThreshold
	}
	if rows <= sweepSmallRows {
		threshold = sweepSmallThreshold
	}
	if float64(dirtyCount) >= sweepVeryDirtyFrac*float64(rows) {
		threshold = sweepVeryDirtyThreshold
	}
	useSweep := rows == 0 || float64(dirtyCount)/float64(rows) >= threshold
	stats.UsedSweepPath = useSweep

	cursorKnown := state.Valid
	curX, curY := state.CursorX, state.CursorY
	styleKnown := state.styleKnown
	curStyle := state.style

	emitRow := func(y, lo, hi int) {
		x := lo
		for x <= hi {
			start, end, isRun := findDirtyRun(prev, next, y, x, hi)
			if !isRun {
				x = hi + 1
				break
			}
			writeSpan(w, next, cap, y, start, end, &cursorKnown, &curX, &curY, &styleKnown, &curStyle, &stats)
			x = end + 1
		}
	}

	if useSweep {
		for y := 0; y < rows; y++ {
			if !scratch.dirty[y] {
				continue
			}
			emitRow(y, 0, cols-1)
		}
	} else {
		rects, ok := buildDamageRects(prev, next, scratch.dirty, int(limits.DiffMaxDamageRects))
		if !ok {
			stats.FullFrame = true
			for y := 0; y < rows; y++ {
				emitRow(y, 0, cols-1)
			}
		} else {
			stats.DamageRects = len(rects)
			for _, r := range rects {
				stats.DamageCells += r.W * r.H
			}
			rowRange := walkDamageRowRange(rects, rows)
			for y := 0; y < rows; y++ {
				lo, hi, ok := rowRange(y)
				if !ok {
					continue
				}
				emitRow(y, lo, hi)
			}
		}
	}

	if desired != nil {
		dx, dy := clampInt(desired.X, 0, cols-1), clampInt(desired.Y, 0, rows-1)
		if !cursorKnown || curX != dx || curY != dy {
			w.cup(dx, dy)
		}
		if cap.CursorShapeSupported {
			w.cursorShape(desired.Shape, desired.Blink)
		}
		w.cursorVisible(desired.Visible)
		curX, curY = dx, dy
	}

	if w.truncated {
		return nil, TermState{}, DiffStats{}, newErr(KindLimit, op, "output buffer too small for frame")
	}

	out := []byte(w.buf.String())
	stats.BytesEmitted = len(out)

	newState := TermState{
		CursorX: curX, CursorY: curY,
		Valid:      true,
		styleKnown: styleKnown,
		style:      curStyle,
	}
	if desired != nil {
		newState.CursorShape = desired.Shape
		newState.CursorVisible = desired.Visible
		newState.CursorBlink = desired.Blink
	} else {
		newState.CursorShape = state.CursorShape
		newState.CursorVisible = state.CursorVisible
		newState.CursorBlink = state.CursorBlink
	}
	return out, newState, stats, nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// findDirtyRun locates the next contiguous dirty run at or after x within
// [x, hi] on row y, expanding to avoid splitting a wide glyph across the
// run boundary (spec.md §4.4 step 4).
func findDirtyRun(prev, next *Framebuffer, y, x, hi int) (start, end int, ok bool) {
	for x <= hi && !cellDiffers(prev, next, y, x) {
		x++
	}
	if x > hi {
		return 0, 0, false
	}
	start = x
	end = x
	for end+1 <= hi && cellDiffers(prev, next, y, end+1) {
		end++
	}
	if next.Cell(start, y).IsContinuation() && start > 0 {
		start--
	}
	if next.Cell(end, y).Width == 2 {
		end++
	}
	return start, end, true
}

// cellDiffers reports whether (x,y) itself changed, or its right neighbor
// is a continuation cell whose pairing changed (so a wide glyph edit is
// never half-emitted).
func cellDiffers(prev, next *Framebuffer, y, x int) bool {
	if !cellsEqual(prev.Cell(x, y), next.Cell(x, y)) {
		return true
	}
	if x+1 < next.Cols() && next.Cell(x+1, y).IsContinuation() {
		return !cellsEqual(prev.Cell(x+1, y), next.Cell(x+1, y))
	}
	return false
}

func writeSpan(w *vtWriter, next *Framebuffer, capa Capability, y, start, end int, cursorKnown *bool, curX, curY *int, styleKnown *bool, curStyle *Style, stats *DiffStats) {
	if !*cursorKnown || *curX != start || *curY != y {
		w.cup(start, y)
	}
	x := start
	for x <= end {
		c := next.Cell(x, y)
		if c.IsContinuation() {
			x++
			continue
		}
		ds := capa.downgrade(c.Style)
		w.sgrDelta(*styleKnown, *curStyle, ds, capa.ColorMode)
		*styleKnown = true
		*curStyle = ds
		w.writeString(c.GlyphString())
		stats.DirtyCells++
		x += int(c.Width)
	}
	*curX = x
	*curY = y
	*cursorKnown = true
}
