package zireael

// damageRect is a coalesced dirty rectangle. next reuses what would
// otherwise be unused padding to thread a per-row active list during the
// indexed walk (spec.md §4.4 step 3), instead of allocating a separate
// adjacency structure.
type damageRect struct {
	Rect
	next int // index into the damage-rect slice of the next rect active on the current row, -1 if none
}

// buildDamageRects computes each dirty row's bounding dirty-column range
// and coalesces consecutive rows sharing the same range into one
// rectangle. Rows with no dirty columns are skipped entirely. Returns
// (rects, ok) where ok is false if the coalesced count exceeds
// limits.DiffMaxDamageRects, signaling the caller to fall back to a
// full-frame redraw.
func buildDamageRects(prev, next *Framebuffer, dirty []bool, maxRects int) ([]damageRect, bool) {
	rows, cols := next.Rows(), next.Cols()
	var rects []damageRect

	y := 0
	for y < rows {
		if !dirty[y] {
			y++
			continue
		}
		lo, hi, any := rowDirtyRange(prev, next, y, cols)
		if !any {
			y++
			continue
		}
		top := y
		bottom := y
		for y+1 < rows && dirty[y+1] {
			nlo, nhi, nany := rowDirtyRange(prev, next, y+1, cols)
			if !nany || nlo != lo || nhi != hi {
				break
			}
			bottom = y + 1
			y++
		}
		rects = append(rects, damageRect{Rect: Rect{X: lo, Y: top, W: hi - lo + 1, H: bottom - top + 1}, next: -1})
		if len(rects) > maxRects {
			return nil, false
		}
		y++
	}
	return rects, true
}

func rowDirtyRange(prev, next *Framebuffer, y, cols int) (lo, hi int, any bool) {
	lo, hi = cols, -1
	for x := 0; x < cols; x++ {
		if !cellsEqual(prev.Cell(x, y), next.Cell(x, y)) {
			if x < lo {
				lo = x
			}
			if x > hi {
				hi = x
			}
		}
	}
	return lo, hi, hi >= lo
}

// walkDamageRowRange returns the dirty column range for row y according to
// the damage-rect list, using the indexed per-row activation walk
// described in spec.md §4.4 step 3: rectangles are threaded onto a
// per-row active list via their `next` field, activated at their top row
// and unlinked after their bottom row.
func walkDamageRowRange(rects []damageRect, rows int) func(y int) (lo, hi int, ok bool) {
	headByTop := make([]int, rows)
	for i := range headByTop {
		headByTop[i] = -1
	}
	for i := range rects {
		t := rects[i].Y
		rects[i].next = headByTop[t]
		headByTop[t] = i
	}

	active := -1
	return func(y int) (lo, hi int, ok bool) {
		for i := headByTop[y]; i != -1; {
			nxt := rects[i].next
			rects[i].next = active
			active = i
			i = nxt
		}

		lo, hi = 1<<30, -1
		prevIdx := -1
		i := active
		for i != -1 {
			r := rects[i].Rect
			if r.X < lo {
				lo = r.X
			}
			if r.Right()-1 > hi {
				hi = r.Right() - 1
			}
			nxt := rects[i].next
			if r.Bottom()-1 == y {
				if prevIdx == -1 {
					active = nxt
				} else {
					rects[prevIdx].next = nxt
				}
			} else {
				prevIdx = i
			}
			i = nxt
		}
		return lo, hi, hi >= lo
	}
}
