package zireael

// Cell is one column x one row of the framebuffer: a grapheme's bytes, its
// logical display width, and its style. Width 0 marks a continuation cell
// — the second half of a width-2 lead at the preceding column.
type Cell struct {
	glyph [GlyphMax]byte
	glen  uint8
	Width uint8 // 0 (continuation), 1, or 2
	Style Style
}

// Glyph returns the cell's grapheme bytes.
func (c Cell) Glyph() []byte { return c.glyph[:c.glen] }

// GlyphString returns the cell's grapheme as a string.
func (c Cell) GlyphString() string { return string(c.glyph[:c.glen]) }

// IsContinuation reports whether c is a width-0 continuation cell.
func (c Cell) IsContinuation() bool { return c.Width == 0 }

// spaceCell returns a width-1 space cell in the given style.
func spaceCell(style Style) Cell {
	var c Cell
	c.glyph[0] = ' '
	c.glen = 1
	c.Width = 1
	c.Style = style
	return c
}

// replacementCell returns a width-1 U+FFFD cell in the given style.
func replacementCell(style Style) Cell {
	var c Cell
	n := copy(c.glyph[:], string(replacementRune))
	c.glen = uint8(n)
	c.Width = 1
	c.Style = style
	return c
}

// continuationCell returns a width-0 cell carrying the lead's style (so
// capability downgrade / background fill of the continuation matches its
// lead without needing to look it up).
func continuationCell(leadStyle Style) Cell {
	var c Cell
	c.Width = 0
	c.Style = leadStyle
	return c
}

// makeGraphemeCell builds a cell from already-sanitized glyph bytes and a
// width of 1 or 2. Callers that have not sanitized must go through
// sanitizeGlyph first.
func makeGraphemeCell(glyph []byte, width int, style Style) Cell {
	var c Cell
	n := copy(c.glyph[:], glyph)
	c.glen = uint8(n)
	if width < 1 {
		width = 1
	}
	if width > 2 {
		width = 2
	}
	c.Width = uint8(width)
	c.Style = style
	return c
}
