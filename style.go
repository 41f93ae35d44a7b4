package zireael

// Attr is a bitset of cell attributes.
type Attr uint8

const (
	AttrBold Attr = 1 << iota
	AttrItalic
	AttrUnderline
	AttrReverse
	AttrStrikethrough
)

// Has reports whether all bits in want are set in a.
func (a Attr) Has(want Attr) bool { return a&want == want }

// LinkHandle is an opaque, nonzero handle into a framebuffer's link
// interning table. Zero means "no link".
type LinkHandle uint32

// Style is the full visual style carried by a cell: background, foreground
// and underline colors, an attribute bitset, and a link reference.
type Style struct {
	FG        RGB
	BG        RGB
	Underline RGB
	HasUL     bool // true if Underline is explicit rather than defaulting to FG
	Attrs     Attr
	Link      LinkHandle
}

// DefaultStyle is the zero-value style: default colors, no attributes, no
// link.
var DefaultStyle = Style{}

// withAttrsMask returns a copy of s with Attrs ANDed against mask, dropping
// every attribute bit outside mask.
func (s Style) withAttrsMask(mask Attr) Style {
	s.Attrs &= mask
	return s
}

// equalVisual reports whether two styles render identically; it exists
// distinct from == because future fields (e.g. reserved padding mirrors in
// the wire format) must not affect equality.
func (s Style) equalVisual(o Style) bool {
	return s.FG == o.FG && s.BG == o.BG && s.Underline == o.Underline &&
		s.HasUL == o.HasUL && s.Attrs == o.Attrs && s.Link == o.Link
}
