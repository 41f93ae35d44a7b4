package zireael

// repairRow restores the wide-glyph continuation invariant on row y after
// a raw copy (e.g. during Resize). Walks left to right (spec.md §4.1):
//
//   - a continuation at x==0 becomes a space
//   - a continuation whose left neighbor is not a width-2 lead becomes a
//     space
//   - a width-2 lead at the last column, or whose right neighbor is not a
//     continuation, is replaced with U+FFFD at width 1 (and the displaced
//     right neighbor, if any, becomes a space)
func (fb *Framebuffer) repairRow(y int) {
	for x := 0; x < fb.cols; x++ {
		c := fb.Cell(x, y)
		switch c.Width {
		case 0:
			if x == 0 {
				fb.setCell(x, y, spaceCell(c.Style))
				continue
			}
			left := fb.Cell(x-1, y)
			if left.Width != 2 {
				fb.setCell(x, y, spaceCell(c.Style))
			}
		case 2:
			if x == fb.cols-1 {
				fb.setCell(x, y, replacementCell(c.Style))
				continue
			}
			right := fb.Cell(x+1, y)
			if right.Width != 0 {
				fb.setCell(x, y, replacementCell(c.Style))
				fb.setCell(x+1, y, spaceCell(right.Style))
			}
		}
	}
}

// checkInvariant reports the first (x, y) violating the wide-glyph
// continuation invariant, or violated=false if the framebuffer is sound. It
// exists for tests (spec.md §8 property 1) and is not used on any hot
// path.
func (fb *Framebuffer) checkInvariant() (x, y int, violated bool) {
	for row := 0; row < fb.rows; row++ {
		for col := 0; col < fb.cols; col++ {
			c := fb.Cell(col, row)
			switch c.Width {
			case 0:
				if col == 0 {
					return col, row, true
				}
				if fb.Cell(col-1, row).Width != 2 {
					return col, row, true
				}
			case 2:
				if col == fb.cols-1 {
					return col, row, true
				}
				if fb.Cell(col+1, row).Width != 0 {
					return col, row, true
				}
			}
		}
	}
	return 0, 0, false
}
