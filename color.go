package zireael

import "github.com/lucasb-eyer/go-colorful"

// RGB is a 24-bit truecolor value. It is the only color representation
// framebuffer cells carry; downgrade to 256-color or ANSI-16 happens only
// in the diff renderer, against the capability in effect for that frame.
type RGB struct {
	R, G, B uint8
}

func (c RGB) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func (c RGB) distSquared(o RGB) float64 {
	return c.colorful().DistanceSquared(o.colorful())
}

// ansi16Palette holds the non-standard RGB values the source contract
// specifies for the 16 ANSI colors (spec.md §9: "treat these values as
// exact and part of the contract; do not substitute 'true' ANSI values").
var ansi16Palette = [16]RGB{
	{0, 0, 0},       // black
	{205, 0, 0},     // red
	{0, 205, 0},     // green
	{205, 205, 0},   // yellow
	{0, 0, 238},     // blue
	{205, 0, 205},   // magenta
	{0, 205, 205},   // cyan
	{229, 229, 229}, // white
	{127, 127, 127}, // bright black
	{255, 0, 0},     // bright red
	{0, 255, 0},     // bright green
	{255, 255, 0},   // bright yellow
	{92, 92, 255},   // bright blue
	{255, 0, 255},   // bright magenta
	{0, 255, 255},   // bright cyan
	{255, 255, 255}, // bright white
}

// Layout of the xterm-256 palette: the 6x6x6 cube occupies 16..231; the
// 24-step gray ramp occupies 232..255.
const (
	cubeBase = 16
	cubeStep = 40 // xterm's cube levels are 0,95,135,175,215,255 (uneven); see cubeLevels
	grayBase = 232
)

var cubeLevels = [6]uint8{0, 95, 135, 175, 215, 255}

func cubeLevelIndex(v uint8) int {
	// nearest of the 6 cube levels by absolute distance, tie to lower index
	best, bestD := 0, 256
	for i, lv := range cubeLevels {
		d := int(v) - int(lv)
		if d < 0 {
			d = -d
		}
		if d < bestD {
			best, bestD = i, d
		}
	}
	return best
}

// nearestXterm256 returns the xterm-256 palette index nearest to c by
// squared Euclidean distance in sRGB, choosing between the best cube entry
// and the best gray-ramp entry, tie-breaking on the smaller resulting
// index (spec.md §4.4).
func nearestXterm256(c RGB) uint8 {
	ri, gi, bi := cubeLevelIndex(c.R), cubeLevelIndex(c.G), cubeLevelIndex(c.B)
	cubeIdx := cubeBase + 36*ri + 6*gi + bi
	cubeRGB := RGB{cubeLevels[ri], cubeLevels[gi], cubeLevels[bi]}
	cubeDist := c.distSquared(cubeRGB)

	bestGray, bestGrayDist := 0, -1.0
	for i := 0; i < 24; i++ {
		level := uint8(8 + i*10)
		d := c.distSquared(RGB{level, level, level})
		if bestGrayDist < 0 || d < bestGrayDist {
			bestGray, bestGrayDist = i, d
		}
	}
	grayIdx := grayBase + bestGray

	if cubeDist < bestGrayDist {
		return uint8(cubeIdx)
	}
	if bestGrayDist < cubeDist {
		return uint8(grayIdx)
	}
	if cubeIdx <= grayIdx {
		return uint8(cubeIdx)
	}
	return uint8(grayIdx)
}

// nearestANSI16 returns the index (0..15) of the ansi16Palette entry
// nearest to c by squared Euclidean distance, tie-breaking on the smaller
// index (the canonical direction per spec.md §9's Open Question).
func nearestANSI16(c RGB) uint8 {
	best, bestDist := 0, -1.0
	for i, p := range ansi16Palette {
		d := c.distSquared(p)
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return uint8(best)
}

// xterm256RGB returns the RGB value an xterm-256 index renders as, used to
// re-quantize a style for equality comparison after capability downgrade.
func xterm256RGB(idx uint8) RGB {
	if idx >= grayBase {
		level := uint8(8 + (int(idx)-grayBase)*10)
		return RGB{level, level, level}
	}
	i := int(idx) - cubeBase
	ri, gi, bi := i/36, (i/6)%6, i%6
	return RGB{cubeLevels[ri], cubeLevels[gi], cubeLevels[bi]}
}
