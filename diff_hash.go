package zireael

import "hash/fnv"

// rowHash computes a 64-bit FNV-1a hash over a row's cell storage, used as
// a cheap maybe-dirty signal before falling back to an exact compare
// (spec.md §4.4 step 1).
func rowHash(fb *Framebuffer, y int) uint64 {
	h := fnv.New64a()
	var buf [32]byte
	for x := 0; x < fb.Cols(); x++ {
		c := fb.Cell(x, y)
		n := 0
		buf[n] = c.glen
		n++
		buf[n] = c.Width
		n++
		n += putCell(buf[n:], c)
		h.Write(buf[:n])
		h.Write(c.glyph[:c.glen])
	}
	return h.Sum64()
}

// putCell encodes a cell's style into b, returning the number of bytes
// written. Glyph bytes are hashed separately by the caller.
func putCell(b []byte, c Cell) int {
	s := c.Style
	b[0] = s.FG.R
	b[1] = s.FG.G
	b[2] = s.FG.B
	b[3] = s.BG.R
	b[4] = s.BG.G
	b[5] = s.BG.B
	b[6] = s.Underline.R
	b[7] = s.Underline.G
	b[8] = s.Underline.B
	b[9] = byte(s.Attrs)
	if s.HasUL {
		b[10] = 1
	}
	b[11] = byte(s.Link)
	b[12] = byte(s.Link >> 8)
	b[13] = byte(s.Link >> 16)
	b[14] = byte(s.Link >> 24)
	return 15
}

// rowsEqual does an exact cell-by-cell compare, used as the collision
// guard when two rows hash equal (spec.md §4.4 step 1).
func rowsEqual(a, b *Framebuffer, y int) bool {
	cols := a.Cols()
	for x := 0; x < cols; x++ {
		if !cellsEqual(a.Cell(x, y), b.Cell(x, y)) {
			return false
		}
	}
	return true
}

func cellsEqual(a, b Cell) bool {
	if a.Width != b.Width || a.glen != b.glen {
		return false
	}
	if a.glyph != b.glyph {
		return false
	}
	return a.Style.equalVisual(b.Style)
}
