package zireael

// ColorMode is the color representation the diff renderer is allowed to
// emit, downgraded deterministically from whatever the terminal reports.
type ColorMode uint8

const (
	ColorModeANSI16 ColorMode = iota
	ColorModeXterm256
	ColorModeTrueColor
)

// Capability describes what a terminal connection can accept, mirroring
// the host-probed fields a real terminal session reports (color depth,
// supported SGR attributes and control sequences) rather than anything the
// engine itself measures.
type Capability struct {
	ColorMode        ColorMode
	SGRAttrsSupported Attr
	CursorShapeSupported bool
	ScrollRegionSupported bool
	FocusEventsSupported  bool
	BracketedPasteSupported bool
}

// DefaultCapability assumes a modern truecolor xterm: every attribute and
// optional feature enabled.
func DefaultCapability() Capability {
	return Capability{
		ColorMode:             ColorModeTrueColor,
		SGRAttrsSupported:     AttrBold | AttrItalic | AttrUnderline | AttrReverse | AttrStrikethrough,
		CursorShapeSupported:  true,
		ScrollRegionSupported: true,
		FocusEventsSupported:  true,
		BracketedPasteSupported: true,
	}
}

// downgrade applies the capability's color mode and attribute mask to a
// style before it is compared or emitted (spec.md §4.4 "capability
// downgrade").
func (c Capability) downgrade(s Style) Style {
	out := s
	out.Attrs = s.Attrs & c.SGRAttrsSupported
	switch c.ColorMode {
	case ColorModeTrueColor:
		// no color change
	case ColorModeXterm256:
		out.FG = xterm256RGB(nearestXterm256(s.FG))
		out.BG = xterm256RGB(nearestXterm256(s.BG))
		if s.HasUL {
			out.Underline = xterm256RGB(nearestXterm256(s.Underline))
		}
	default: // ColorModeANSI16 and any unknown mode degrade to 16-color
		out.FG = ansi16Palette[nearestANSI16(s.FG)]
		out.BG = ansi16Palette[nearestANSI16(s.BG)]
		if s.HasUL {
			out.Underline = ansi16Palette[nearestANSI16(s.Underline)]
		}
	}
	return out
}
