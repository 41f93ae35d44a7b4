package zireael

// scrollPlan describes a detected scroll-region optimization: rows
// [top, bottom] of N equal rows [top∓delta, bottom∓delta] of P, shifted by
// delta in the given direction.
type scrollPlan struct {
	top, bottom int
	delta       int
	down        bool // true: content moved down (emit SD); false: up (emit SU)
	movedLines  int
	movedCells  int
}

const (
	scrollMinMovedLines = 4
	scrollMinSavedCells = 256
	scrollMaxDelta      = 64
)

// detectScrollPlan searches for the best scroll-region optimization per
// spec.md §4.4 step 2: for each delta and direction, find the longest
// contiguous run where N[y] == P[y∓delta], then rank candidates by most
// moved cells, then most moved lines, then smallest delta, then smallest
// top, then smallest bottom, preferring up on a full tie.
func detectScrollPlan(prev, next *Framebuffer, prevHashes, nextHashes []uint64) (scrollPlan, bool) {
	rows, cols := next.Rows(), next.Cols()
	maxDelta := rows - 1
	if maxDelta > scrollMaxDelta {
		maxDelta = scrollMaxDelta
	}

	var best scrollPlan
	found := false

	for delta := 1; delta <= maxDelta; delta++ {
		for _, down := range []bool{false, true} {
			top, bottom, moved := bestRunForDelta(prev, next, prevHashes, nextHashes, delta, down, rows)
			if moved < scrollMinMovedLines {
				continue
			}
			movedCells := moved * cols
			if movedCells < scrollMinSavedCells {
				continue
			}
			cand := scrollPlan{top: top, bottom: bottom, delta: delta, down: down, movedLines: moved, movedCells: movedCells}
			if !found || better(cand, best) {
				best, found = cand, true
			}
		}
	}
	return best, found
}

// bestRunForDelta scans for the longest contiguous run of rows where
// N[y] equals P[y+delta] (down=false, content scrolled up) or P[y-delta]
// (down=true, content scrolled down), returning the run's [top,bottom] and
// its line count. Only one run is reported: the longest found.
func bestRunForDelta(prev, next *Framebuffer, prevHashes, nextHashes []uint64, delta int, down bool, rows int) (top, bottom, moved int) {
	bestLen := 0
	bestTop := 0
	runStart := -1

	for y := 0; y < rows; y++ {
		var srcY int
		if down {
			srcY = y - delta
		} else {
			srcY = y + delta
		}
		match := srcY >= 0 && srcY < rows && nextHashes[y] == prevHashes[srcY] && rowsEqualAcross(next, y, prev, srcY)
		if match {
			if runStart < 0 {
				runStart = y
			}
			if y-runStart+1 > bestLen {
				bestLen = y - runStart + 1
				bestTop = runStart
			}
		} else {
			runStart = -1
		}
	}
	return bestTop, bestTop + bestLen - 1, bestLen
}

func rowsEqualAcross(a *Framebuffer, ay int, b *Framebuffer, by int) bool {
	cols := a.Cols()
	for x := 0; x < cols; x++ {
		if !cellsEqual(a.Cell(x, ay), b.Cell(x, by)) {
			return false
		}
	}
	return true
}

// better reports whether a ranks strictly above b per the tie-break chain
// in spec.md §4.4 step 2.
func better(a, b scrollPlan) bool {
	if a.movedCells != b.movedCells {
		return a.movedCells > b.movedCells
	}
	if a.movedLines != b.movedLines {
		return a.movedLines > b.movedLines
	}
	if a.delta != b.delta {
		return a.delta < b.delta
	}
	if a.top != b.top {
		return a.top < b.top
	}
	if a.bottom != b.bottom {
		return a.bottom < b.bottom
	}
	if a.down != b.down {
		return !a.down // prefer up
	}
	return false
}
