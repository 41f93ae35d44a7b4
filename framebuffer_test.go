package zireael

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFramebufferInitRejectsNonPositiveDims(t *testing.T) {
	_, err := NewFramebuffer(0, 5)
	require.Error(t, err)
	require.True(t, isKind(err, KindLimit))

	_, err = NewFramebuffer(5, -1)
	require.Error(t, err)
	require.True(t, isKind(err, KindLimit))
}

func TestFramebufferClearIsAllSpaces(t *testing.T) {
	fb, err := NewFramebuffer(4, 3)
	require.NoError(t, err)
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			c := fb.Cell(x, y)
			require.Equal(t, uint8(1), c.Width)
			require.Equal(t, " ", c.GlyphString())
		}
	}
}

// Scenario C: place a wide glyph then overwrite its lead with a narrow
// glyph; the paired continuation must be cleared and the invariant must
// hold.
func TestWideGlyphOverwriteClearsContinuation(t *testing.T) {
	fb, err := NewFramebuffer(4, 1)
	require.NoError(t, err)
	p := NewPainter(fb, 8)

	adv := p.PutGrapheme(0, 0, []byte("漢"), 2, DefaultStyle) // 漢
	require.Equal(t, 2, adv)
	require.Equal(t, uint8(2), fb.Cell(0, 0).Width)
	require.Equal(t, uint8(0), fb.Cell(1, 0).Width)

	adv = p.PutGrapheme(0, 0, []byte("x"), 1, DefaultStyle)
	require.Equal(t, 1, adv)

	require.Equal(t, "x", fb.Cell(0, 0).GlyphString())
	require.Equal(t, uint8(1), fb.Cell(0, 0).Width)
	require.Equal(t, uint8(1), fb.Cell(1, 0).Width)
	require.Equal(t, " ", fb.Cell(1, 0).GlyphString())
	require.Equal(t, " ", fb.Cell(2, 0).GlyphString())
	require.Equal(t, " ", fb.Cell(3, 0).GlyphString())

	x, y, violated := fb.checkInvariant()
	require.Falsef(t, violated, "invariant violated at (%d,%d)", x, y)
}

func TestPutGraphemeWideAtRightEdgeFallsBackToReplacement(t *testing.T) {
	fb, err := NewFramebuffer(3, 1)
	require.NoError(t, err)
	p := NewPainter(fb, 4)

	adv := p.PutGrapheme(2, 0, []byte("漢"), 2, DefaultStyle)
	require.Equal(t, 2, adv) // caller cursor still advances by logical width
	require.Equal(t, uint8(1), fb.Cell(2, 0).Width)
	require.Equal(t, string(rune(0xFFFD)), fb.Cell(2, 0).GlyphString())

	_, _, violated := fb.checkInvariant()
	require.False(t, violated)
}

func TestPutGraphemeInvalidBytesReplaced(t *testing.T) {
	fb, err := NewFramebuffer(2, 1)
	require.NoError(t, err)
	p := NewPainter(fb, 4)

	p.PutGrapheme(0, 0, []byte{0x00}, 1, DefaultStyle)
	require.Equal(t, string(rune(0xFFFD)), fb.Cell(0, 0).GlyphString())

	p.PutGrapheme(1, 0, nil, 1, DefaultStyle)
	require.Equal(t, " ", fb.Cell(1, 0).GlyphString())
}

func TestResizeRepairsInvariantAfterSplittingWideGlyph(t *testing.T) {
	fb, err := NewFramebuffer(4, 1)
	require.NoError(t, err)
	p := NewPainter(fb, 4)
	p.PutGrapheme(2, 0, []byte("漢"), 2, DefaultStyle) // occupies cols 2,3

	require.NoError(t, fb.Resize(3, 1)) // truncates the continuation at col 3

	require.Equal(t, uint8(1), fb.Cell(2, 0).Width)
	require.Equal(t, string(rune(0xFFFD)), fb.Cell(2, 0).GlyphString())
	_, _, violated := fb.checkInvariant()
	require.False(t, violated)
}

func TestResizeFailureLeavesFramebufferIntact(t *testing.T) {
	fb, err := NewFramebuffer(4, 4)
	require.NoError(t, err)
	p := NewPainter(fb, 4)
	p.PutGrapheme(0, 0, []byte("x"), 1, DefaultStyle)

	before := append([]Cell(nil), fb.cells...)
	err = fb.Resize(-1, 4)
	require.Error(t, err)
	require.Equal(t, before, fb.cells)
}

// Property 1 (spec.md §8): the wide-glyph continuation invariant holds
// after every random sequence of draw operations.
func TestFramebufferInvariantHoldsUnderRandomOps(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	fb, err := NewFramebuffer(10, 6)
	require.NoError(t, err)
	p := NewPainter(fb, 8)

	glyphs := [][]byte{[]byte("a"), []byte("漢"), []byte("日"), {}, {0x00}}

	for i := 0; i < 5000; i++ {
		op := rng.Intn(4)
		x, y := rng.Intn(12)-1, rng.Intn(6)
		switch op {
		case 0:
			g := glyphs[rng.Intn(len(glyphs))]
			w := rng.Intn(2) + 1
			p.PutGrapheme(x, y, g, w, DefaultStyle)
		case 1:
			p.FillRect(Rect{X: x, Y: y, W: rng.Intn(5), H: rng.Intn(3)}, DefaultStyle)
		case 2:
			src := Rect{X: rng.Intn(10), Y: rng.Intn(6), W: rng.Intn(5) + 1, H: rng.Intn(3) + 1}
			dst := Rect{X: rng.Intn(10), Y: rng.Intn(6), W: src.W, H: src.H}
			p.BlitRect(dst, src)
		case 3:
			p.DrawTextBytes(x, y, "hi漢\tthere", DefaultStyle, WidthPolicyEmojiNarrow, 4)
		}
		rx, ry, violated := fb.checkInvariant()
		require.Falsef(t, violated, "iteration %d op %d: invariant violated at (%d,%d)", i, op, rx, ry)
	}
}

func TestClipPushPopDepthAndUnderflow(t *testing.T) {
	fb, err := NewFramebuffer(10, 10)
	require.NoError(t, err)
	p := NewPainter(fb, 2)

	require.NoError(t, p.PushClip(Rect{X: 1, Y: 1, W: 5, H: 5}))
	require.NoError(t, p.PushClip(Rect{X: 2, Y: 2, W: 3, H: 3}))
	require.Equal(t, 3, p.ClipDepth())

	err = p.PushClip(Rect{X: 0, Y: 0, W: 1, H: 1})
	require.Error(t, err)
	require.True(t, isKind(err, KindLimit))

	require.NoError(t, p.PopClip())
	require.NoError(t, p.PopClip())
	err = p.PopClip()
	require.Error(t, err)
	require.True(t, isKind(err, KindLimit))
}

func TestFillRectClampsToClipAndBounds(t *testing.T) {
	fb, err := NewFramebuffer(6, 6)
	require.NoError(t, err)
	p := NewPainter(fb, 4)
	require.NoError(t, p.PushClip(Rect{X: 1, Y: 1, W: 2, H: 2}))

	style := Style{FG: RGB{R: 9}}
	p.FillRect(Rect{X: 0, Y: 0, W: 6, H: 6}, style)

	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			inside := x >= 1 && x < 3 && y >= 1 && y < 3
			c := fb.Cell(x, y)
			if inside {
				require.Equal(t, style.FG, c.Style.FG, "cell (%d,%d) should be filled", x, y)
			} else {
				require.Equal(t, DefaultStyle, c.Style, "cell (%d,%d) must stay untouched", x, y)
			}
		}
	}
}

func isKind(err error, k Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == k
}
