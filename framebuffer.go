package zireael

import "math"

// maxDim is the largest cols/rows value that fits a positive signed
// 32-bit integer (spec.md §4.1).
const maxDim = math.MaxInt32

// Framebuffer is a cols x rows grid of cells in row-major layout. It owns
// its cell storage and link-interning table; it is never shared across
// goroutines (spec.md §5).
type Framebuffer struct {
	cols, rows int
	cells      []Cell
	links      *linkTable
}

// NewFramebuffer allocates a cols x rows grid of space cells in
// DefaultStyle. Both dimensions must be positive and fit a signed 32-bit
// integer.
func NewFramebuffer(cols, rows int) (*Framebuffer, error) {
	const op = "framebuffer.init"
	if cols <= 0 || rows <= 0 || cols > maxDim || rows > maxDim {
		return nil, newErr(KindLimit, op, "dimensions must be positive and fit int32")
	}
	fb := &Framebuffer{cols: cols, rows: rows, links: newLinkTable()}
	fb.cells = make([]Cell, cols*rows)
	fb.fillAll(spaceCell(DefaultStyle))
	return fb, nil
}

// Release drops the framebuffer's storage. Safe to call multiple times.
func (fb *Framebuffer) Release() {
	fb.cells = nil
	fb.links = nil
	fb.cols, fb.rows = 0, 0
}

// Cols returns the framebuffer's column count.
func (fb *Framebuffer) Cols() int { return fb.cols }

// Rows returns the framebuffer's row count.
func (fb *Framebuffer) Rows() int { return fb.rows }

func (fb *Framebuffer) idx(x, y int) int { return y*fb.cols + x }

// Cell returns a copy of the cell at (x, y). Out-of-bounds coordinates
// return the zero Cell.
func (fb *Framebuffer) Cell(x, y int) Cell {
	if x < 0 || x >= fb.cols || y < 0 || y >= fb.rows {
		return Cell{}
	}
	return fb.cells[fb.idx(x, y)]
}

// setCell writes a cell at (x, y). Callers outside this file must go
// through Painter, which enforces clip bounds; this is the unchecked
// primitive invariant-repair and the painter's internals use directly.
func (fb *Framebuffer) setCell(x, y int, c Cell) {
	fb.cells[fb.idx(x, y)] = c
}

func (fb *Framebuffer) inBounds(x, y int) bool {
	return x >= 0 && x < fb.cols && y >= 0 && y < fb.rows
}

func (fb *Framebuffer) fillAll(c Cell) {
	for i := range fb.cells {
		fb.cells[i] = c
	}
}

// Clear sets every cell to a width-1 space in style.
func (fb *Framebuffer) Clear(style Style) {
	fb.fillAll(spaceCell(style))
}

// LinkIntern interns (uri, id) into the framebuffer's link table.
func (fb *Framebuffer) LinkIntern(uri, id string) LinkHandle {
	return fb.links.intern(uri, id)
}

// LinkResolve resolves a handle previously returned by LinkIntern.
func (fb *Framebuffer) LinkResolve(h LinkHandle) (uri, id string, ok bool) {
	return fb.links.resolve(h)
}

// clone returns an independent deep copy of fb, used to stage a drawlist
// submission so a failed execute leaves fb untouched (spec.md §5).
func (fb *Framebuffer) clone() *Framebuffer {
	c := &Framebuffer{
		cols:  fb.cols,
		rows:  fb.rows,
		cells: append([]Cell(nil), fb.cells...),
		links: fb.links.clone(),
	}
	return c
}

// Resize allocates a new cols x rows grid, copies the intersecting region
// from the old grid, repairs per-row wide-glyph invariants on the new
// grid, and commits only if every allocation succeeds (spec.md §4.1,
// §5's no-partial-effects: on failure fb is untouched).
func (fb *Framebuffer) Resize(cols, rows int) error {
	const op = "framebuffer.resize"
	if cols <= 0 || rows <= 0 || cols > maxDim || rows > maxDim {
		return newErr(KindLimit, op, "dimensions must be positive and fit int32")
	}
	newCells := make([]Cell, cols*rows)
	for i := range newCells {
		newCells[i] = spaceCell(DefaultStyle)
	}

	minCols, minRows := cols, rows
	if fb.cols < minCols {
		minCols = fb.cols
	}
	if fb.rows < minRows {
		minRows = fb.rows
	}
	for y := 0; y < minRows; y++ {
		srcOff := y * fb.cols
		dstOff := y * cols
		copy(newCells[dstOff:dstOff+minCols], fb.cells[srcOff:srcOff+minCols])
	}

	// Commit before repair: repair operates on the new grid in place.
	fb.cells = newCells
	fb.cols, fb.rows = cols, rows
	fb.links = newLinkTable() // link handles do not survive a resize

	for y := 0; y < rows; y++ {
		fb.repairRow(y)
	}
	return nil
}
