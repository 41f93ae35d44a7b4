package zireael

// Painter is a transient handle over a Framebuffer with a caller-supplied
// fixed-capacity clip stack. It is the sole mutation surface for drawing
// primitives; callers never write framebuffer cells directly.
type Painter struct {
	fb   *Framebuffer
	clip *clipStack
}

// NewPainter opens a painter over fb with the given clip-stack capacity
// (number of additional pushes beyond the always-present full-bounds
// entry).
func NewPainter(fb *Framebuffer, clipCapacity int) *Painter {
	bounds := Rect{X: 0, Y: 0, W: fb.cols, H: fb.rows}
	return &Painter{fb: fb, clip: newClipStack(bounds, clipCapacity)}
}

// ClipTop returns the current effective clip rectangle.
func (p *Painter) ClipTop() Rect { return p.clip.top() }

// ClipDepth returns the current clip stack depth.
func (p *Painter) ClipDepth() int { return p.clip.depth() }

// PushClip intersects rect with the current clip and the framebuffer
// bounds, then pushes it.
func (p *Painter) PushClip(rect Rect) error { return p.clip.push(rect) }

// PopClip pops the clip stack; fails with LIMIT if only the initial
// full-bounds clip remains.
func (p *Painter) PopClip() error { return p.clip.pop() }

// writable reports whether (x, y) is inside both the framebuffer bounds
// and the current clip.
func (p *Painter) writable(x, y int) bool {
	return p.fb.inBounds(x, y) && p.clip.top().Contains(x, y)
}

// clearPairedNeighbor overwrites the cell paired with the one just
// overwritten at (x, y) so the wide-glyph invariant holds, per the locked
// clip exception (spec.md §4.1): this single neighbor write is allowed to
// land outside the current clip, never anything further.
func (p *Painter) clearPairedNeighbor(x, y int, was Cell) {
	switch was.Width {
	case 2:
		if p.fb.inBounds(x+1, y) && p.fb.Cell(x+1, y).Width == 0 {
			p.fb.setCell(x+1, y, spaceCell(was.Style))
		}
	case 0:
		if p.fb.inBounds(x-1, y) && p.fb.Cell(x-1, y).Width == 2 {
			p.fb.setCell(x-1, y, spaceCell(p.fb.Cell(x-1, y).Style))
		}
	}
}

// writeCell overwrites the cell at (x, y) with c, clearing whatever half
// of a wide glyph it displaces.
func (p *Painter) writeCell(x, y int, c Cell) {
	was := p.fb.Cell(x, y)
	p.fb.setCell(x, y, c)
	p.clearPairedNeighbor(x, y, was)
}

// FillRect fills the intersection of rect, the current clip, and the
// framebuffer bounds with width-1 space cells in style.
func (p *Painter) FillRect(rect Rect, style Style) {
	area := rect.Intersect(p.clip.top()).Intersect(Rect{X: 0, Y: 0, W: p.fb.cols, H: p.fb.rows})
	if area.Empty() {
		return
	}
	c := spaceCell(style)
	for y := area.Y; y < area.Bottom(); y++ {
		for x := area.X; x < area.Right(); x++ {
			p.writeCell(x, y, c)
		}
	}
}

// PutGrapheme places a single segmented grapheme at (x, y) with declared
// width in {1, 2}. Empty input is canonicalized to a space; invalid UTF-8
// or unsafe-control input is replaced with U+FFFD at width 1. If width==2
// but the second cell cannot be written (clip or bounds), the lead is
// rendered as U+FFFD at width 1 but the caller-visible cursor still
// advances by the requested logical width (spec.md §4.1).
func (p *Painter) PutGrapheme(x, y int, raw []byte, width int, style Style) (advance int) {
	glyph, sanitizedWidth := sanitizeGlyph(raw, WidthPolicyEmojiNarrow)
	if (width != 1 && width != 2) || !validGraphemeBytes(raw) {
		width = sanitizedWidth
	}

	if !p.writable(x, y) {
		return width
	}

	if width == 2 {
		if !p.writable(x+1, y) {
			p.writeCell(x, y, replacementCell(style))
			return 2
		}
		lead := makeGraphemeCell(glyph, 2, style)
		p.writeCell(x, y, lead)
		p.writeCell(x+1, y, continuationCell(style))
		return 2
	}

	p.writeCell(x, y, makeGraphemeCell(glyph, 1, style))
	return 1
}

// DrawTextBytes draws utf8 starting at (x, y), iterating grapheme
// clusters under policy and advancing by each cluster's logical width
// regardless of clipping, so layout stays stable across a clipped
// region. A single tab (U+0009) expands to spaces up to the next stop of
// tabWidth columns (tabWidth clamped to >= 1).
func (p *Painter) DrawTextBytes(x, y int, utf8Text string, style Style, policy WidthPolicy, tabWidth int) {
	if tabWidth < 1 {
		tabWidth = 1
	}
	cx := x
	emitRun := func(run string) {
		iterGraphemes(run, policy, func(_ int, glyph []byte, width int) {
			advance := p.PutGrapheme(cx, y, glyph, width, style)
			cx += advance
		})
	}

	start := 0
	for i, r := range utf8Text {
		if r != '\t' {
			continue
		}
		emitRun(utf8Text[start:i])
		next := ((cx-x)/tabWidth + 1) * tabWidth
		for cx-x < next {
			if p.writable(cx, y) {
				p.writeCell(cx, y, spaceCell(style))
			}
			cx++
		}
		start = i + len(string(r))
	}
	emitRun(utf8Text[start:])
}

// BlitRect copies the src rectangle to dst, both clipped to the
// framebuffer bounds and intersected with the current clip for the
// destination only (src is read directly from the framebuffer; writes go
// through the clip). Overlap is handled memmove-style: iteration runs in
// reverse along whichever axis would otherwise read cells it has already
// overwritten. Continuation cells are never written directly — copying a
// wide lead re-places it, which produces its paired continuation via
// writeCell.
func (p *Painter) BlitRect(dst Rect, src Rect) {
	w := min(dst.W, src.W)
	h := min(dst.H, src.H)
	if w <= 0 || h <= 0 {
		return
	}

	reverseY := dst.Y > src.Y
	reverseX := dst.Y == src.Y && dst.X > src.X

	ys := makeRange(h, reverseY)
	xs := makeRange(w, reverseX)

	for _, ry := range ys {
		srcY, dstY := src.Y+ry, dst.Y+ry
		for _, rx := range xs {
			srcX, dstX := src.X+rx, dst.X+rx
			if !p.fb.inBounds(srcX, srcY) {
				continue
			}
			cell := p.fb.Cell(srcX, srcY)
			if cell.IsContinuation() {
				continue // produced by re-placing its lead
			}
			if !p.writable(dstX, dstY) {
				continue
			}
			if cell.Width == 2 {
				if !p.fb.inBounds(srcX+1, srcY) || !p.writable(dstX+1, dstY) {
					p.writeCell(dstX, dstY, replacementCell(cell.Style))
					continue
				}
				p.writeCell(dstX, dstY, cell)
				p.writeCell(dstX+1, dstY, continuationCell(cell.Style))
				continue
			}
			p.writeCell(dstX, dstY, cell)
		}
	}
}

func makeRange(n int, reverse bool) []int {
	out := make([]int, n)
	for i := 0; i < n; i++ {
		if reverse {
			out[i] = n - 1 - i
		} else {
			out[i] = i
		}
	}
	return out
}
