package zireael

import (
	"fmt"
	"strconv"
	"strings"
)

// vtWriter accumulates VT/ANSI bytes into a caller-bounded buffer, failing
// closed (spec.md §4.4 step 7: "if the string builder ever truncated...
// return LIMIT with zeroed outputs").
type vtWriter struct {
	buf       strings.Builder
	max       int
	truncated bool
}

func newVTWriter(max int) *vtWriter {
	return &vtWriter{max: max}
}

func (w *vtWriter) writeString(s string) {
	if w.truncated {
		return
	}
	if w.buf.Len()+len(s) > w.max {
		w.truncated = true
		return
	}
	w.buf.WriteString(s)
}

// cup emits an absolute cursor position, 1-based (spec.md §6.3).
func (w *vtWriter) cup(x, y int) {
	w.writeString("\x1b[" + strconv.Itoa(y+1) + ";" + strconv.Itoa(x+1) + "H")
}

func (w *vtWriter) cursorVisible(visible bool) {
	if visible {
		w.writeString("\x1b[?25h")
	} else {
		w.writeString("\x1b[?25l")
	}
}

func (w *vtWriter) cursorShape(shape CursorShape, blink bool) {
	ps := 0
	switch shape {
	case CursorShapeBlock:
		ps = 1
	case CursorShapeUnderline:
		ps = 3
	case CursorShapeBar:
		ps = 5
	}
	if !blink {
		ps++
	}
	w.writeString(fmt.Sprintf("\x1b[%d q", ps))
}

func (w *vtWriter) decstbm(top, bottom int) {
	w.writeString(fmt.Sprintf("\x1b[%d;%dr", top+1, bottom+1))
}

func (w *vtWriter) decstbmReset() {
	w.writeString("\x1b[r")
}

func (w *vtWriter) scrollUp(n int) {
	w.writeString(fmt.Sprintf("\x1b[%dS", n))
}

func (w *vtWriter) scrollDown(n int) {
	w.writeString(fmt.Sprintf("\x1b[%dT", n))
}

// sgrDelta emits the minimal SGR sequence moving from "from" to "to",
// already capability-downgraded. A full reset ("0") is only emitted when
// from is unknown or an attribute must be cleared (spec.md §4.4 step 5).
func (w *vtWriter) sgrDelta(fromKnown bool, from, to Style, mode ColorMode) {
	var codes []string

	needsReset := !fromKnown
	if fromKnown {
		clearedAttr := from.Attrs&^to.Attrs != 0
		if clearedAttr {
			needsReset = true
		}
	}

	base := from
	if needsReset {
		codes = append(codes, "0")
		base = Style{}
	}

	if to.Attrs.Has(AttrBold) && !base.Attrs.Has(AttrBold) {
		codes = append(codes, "1")
	}
	if to.Attrs.Has(AttrItalic) && !base.Attrs.Has(AttrItalic) {
		codes = append(codes, "3")
	}
	if to.Attrs.Has(AttrUnderline) && !base.Attrs.Has(AttrUnderline) {
		codes = append(codes, "4")
	}
	if to.Attrs.Has(AttrReverse) && !base.Attrs.Has(AttrReverse) {
		codes = append(codes, "7")
	}
	if to.Attrs.Has(AttrStrikethrough) && !base.Attrs.Has(AttrStrikethrough) {
		codes = append(codes, "9")
	}

	if needsReset || base.FG != to.FG {
		codes = append(codes, fgCode(to.FG, mode))
	}
	if needsReset || base.BG != to.BG {
		codes = append(codes, bgCode(to.BG, mode))
	}

	if len(codes) == 0 {
		return
	}
	w.writeString("\x1b[" + strings.Join(codes, ";") + "m")
}

func fgCode(c RGB, mode ColorMode) string {
	switch mode {
	case ColorModeTrueColor:
		return fmt.Sprintf("38;2;%d;%d;%d", c.R, c.G, c.B)
	case ColorModeXterm256:
		return fmt.Sprintf("38;5;%d", nearestXterm256(c))
	default:
		return ansi16Code(c, true)
	}
}

func bgCode(c RGB, mode ColorMode) string {
	switch mode {
	case ColorModeTrueColor:
		return fmt.Sprintf("48;2;%d;%d;%d", c.R, c.G, c.B)
	case ColorModeXterm256:
		return fmt.Sprintf("48;5;%d", nearestXterm256(c))
	default:
		return ansi16Code(c, false)
	}
}

func ansi16Code(c RGB, fg bool) string {
	idx := int(nearestANSI16(c))
	bright := idx >= 8
	base := idx % 8
	var n int
	switch {
	case fg && !bright:
		n = 30 + base
	case fg && bright:
		n = 90 + base
	case !fg && !bright:
		n = 40 + base
	default:
		n = 100 + base
	}
	return strconv.Itoa(n)
}
