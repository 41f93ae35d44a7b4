package zireael

import (
	"testing"

	"github.com/RtlZeroMemory/zireael/dlbuild"
	"github.com/stretchr/testify/require"
)

func testLimits() Limits {
	l := DefaultLimits()
	l.DLMaxClipDepth = 4
	return l
}

func TestValidateRejectsBadMagic(t *testing.T) {
	buf := make([]byte, 64)
	_, err := Validate(buf, DLVersion1, testLimits())
	require.Error(t, err)
	require.True(t, isKind(err, KindFormat))
}

func TestValidateRejectsVersionMismatch(t *testing.T) {
	var b dlbuild.Builder
	b.Clear()
	buf := b.Build()
	_, err := Validate(buf, DLVersion2, testLimits())
	require.Error(t, err)
	require.True(t, isKind(err, KindUnsupported))
}

func TestValidateAndExecuteClear(t *testing.T) {
	var b dlbuild.Builder
	b.Clear()
	view, err := Validate(b.Build(), DLVersion1, testLimits())
	require.NoError(t, err)

	fb, err := NewFramebuffer(5, 2)
	require.NoError(t, err)
	store := newResourceStore(16, 16)
	cursor := CursorState{}
	err = Execute(view, fb, store, &cursor, ExecOptions{TabWidth: 4, Policy: WidthPolicyEmojiNarrow, Limits: testLimits()})
	require.NoError(t, err)
}

// Round-trip: DEF_STRING(id, s) then DRAW_TEXT(id) then FREE_STRING(id)
// leaves the resource store empty and renders s verbatim (spec.md §8).
func TestDefineDrawFreeStringRoundTrip(t *testing.T) {
	var b dlbuild.Builder
	text := []byte("hi")
	id := b.InternString(text)
	b.DrawText(0, 0, id, uint32(len(text)), dlbuild.WireStyle{})
	b.FreeString(id)

	view, err := Validate(b.Build(), DLVersion1, testLimits())
	require.NoError(t, err)

	fb, err := NewFramebuffer(4, 1)
	require.NoError(t, err)
	store := newResourceStore(16, 16)
	cursor := CursorState{}
	require.NoError(t, Execute(view, fb, store, &cursor, ExecOptions{TabWidth: 4, Policy: WidthPolicyEmojiNarrow, Limits: testLimits()}))

	require.Equal(t, "h", fb.Cell(0, 0).GlyphString())
	require.Equal(t, "i", fb.Cell(1, 0).GlyphString())
	require.Equal(t, 0, store.totalBytes())

	_, lookupErr := store.lookupString(id)
	require.Error(t, lookupErr)
	require.True(t, isKind(lookupErr, KindFormat))
}

// Scenario D: clip depth exceeded at validation time, no commands after
// the failing PUSH_CLIP execute.
func TestValidateRejectsClipDepthExceeded(t *testing.T) {
	limits := testLimits()
	var b dlbuild.Builder
	for i := uint32(0); i < limits.DLMaxClipDepth+1; i++ {
		b.PushClip(0, 0, 5, 5)
	}
	_, err := Validate(b.Build(), DLVersion1, limits)
	require.Error(t, err)
	require.True(t, isKind(err, KindLimit))
}

func TestValidatePopClipUnderflow(t *testing.T) {
	var b dlbuild.Builder
	b.PopClip()
	_, err := Validate(b.Build(), DLVersion1, testLimits())
	require.Error(t, err)
	require.True(t, isKind(err, KindLimit))
}

func TestBlitRectRejectedOnUnsupportedVersion(t *testing.T) {
	var b dlbuild.Builder
	b.Version = 1
	b.BlitRect(0, 0, 2, 2, 1, 1)
	view, err := Validate(b.Build(), DLVersion1, testLimits())
	require.NoError(t, err) // validator accepts the opcode layout regardless of version

	fb, err := NewFramebuffer(5, 5)
	require.NoError(t, err)
	store := newResourceStore(4, 4)
	cursor := CursorState{}
	err = Execute(view, fb, store, &cursor, ExecOptions{TabWidth: 4, Policy: WidthPolicyEmojiNarrow, Limits: testLimits()})
	require.Error(t, err)
	require.True(t, isKind(err, KindUnsupported))
}

func TestBlitRectAcceptedOnVersion2(t *testing.T) {
	var b dlbuild.Builder
	b.Version = 2
	b.FillRect(0, 0, 2, 1, dlbuild.WireStyle{FGRGB: dlbuild.RGB(1, 2, 3)})
	b.BlitRect(0, 0, 2, 1, 2, 0)
	view, err := Validate(b.Build(), DLVersion2, testLimits())
	require.NoError(t, err)

	fb, err := NewFramebuffer(5, 1)
	require.NoError(t, err)
	store := newResourceStore(4, 4)
	cursor := CursorState{}
	require.NoError(t, Execute(view, fb, store, &cursor, ExecOptions{TabWidth: 4, Policy: WidthPolicyEmojiNarrow, Limits: testLimits()}))

	require.Equal(t, RGB{1, 2, 3}, fb.Cell(2, 0).Style.FG)
	require.Equal(t, RGB{1, 2, 3}, fb.Cell(3, 0).Style.FG)
}

// Preflight must reject a version-unsupported BLIT_RECT before any
// DEF_STRING mutation on the real store is observable (no-partial-effects,
// spec.md §7/§8 property 2).
func TestBlitRectVersionFailureLeavesStoreUntouched(t *testing.T) {
	var b dlbuild.Builder
	b.Version = 1
	text := []byte("x")
	id := b.InternString(text) // emits DEF_STRING before the failing BLIT_RECT
	b.BlitRect(0, 0, 1, 1, 1, 1)

	view, err := Validate(b.Build(), DLVersion1, testLimits())
	require.NoError(t, err)

	fb, err := NewFramebuffer(5, 5)
	require.NoError(t, err)
	store := newResourceStore(4, 4)
	cursor := CursorState{}
	err = Execute(view, fb, store, &cursor, ExecOptions{TabWidth: 4, Policy: WidthPolicyEmojiNarrow, Limits: testLimits()})
	require.Error(t, err)
	require.True(t, isKind(err, KindUnsupported))

	_, lookupErr := store.lookupString(id)
	require.Error(t, lookupErr, "store must be untouched: DEF_STRING must not have committed")
}

func TestSubmitFailureLeavesEngineFramebufferUntouched(t *testing.T) {
	e, err := NewEngine(4, 2, DefaultLimits(), EngineOptions{Capability: DefaultCapability(), TabWidth: 4})
	require.NoError(t, err)
	defer e.Destroy()

	before := append([]Cell(nil), e.fbNext.cells...)

	var b dlbuild.Builder
	b.DrawText(0, 0, 99, 1, dlbuild.WireStyle{}) // references an undefined string id

	err = e.Submit(b.Build(), DLVersion1)
	require.Error(t, err)
	require.Equal(t, before, e.fbNext.cells)
}

func TestResourceStoreLifecycle(t *testing.T) {
	s := newResourceStore(2, 2)
	require.NoError(t, s.defineString(1, []byte("abc")))
	require.Equal(t, 3, s.totalBytes())

	require.NoError(t, s.freeString(1))
	_, err := s.lookupString(1)
	require.Error(t, err)
	require.True(t, isKind(err, KindFormat))

	require.NoError(t, s.defineString(2, []byte("hi")))
	require.NoError(t, s.defineString(2, []byte("hello"))) // redefine updates bytes/accounting
	b, err := s.lookupString(2)
	require.NoError(t, err)
	require.Equal(t, "hello", string(b))
	require.Equal(t, 5, s.totalBytes())
}

func TestValidateRejectsTrailingBytes(t *testing.T) {
	var b dlbuild.Builder
	b.Clear()
	buf := b.Build()
	buf = append(buf, 0, 0, 0, 0) // extra 4-byte-aligned garbage past cmd section
	// total_size is left as built, so the header's total_size no longer
	// matches the buffer length and Validate rejects it as a format error.
	_, err := Validate(buf, DLVersion1, testLimits())
	require.Error(t, err)
	require.True(t, isKind(err, KindFormat))
}

func TestDrawCanvasRejectsMismatchedBlobSize(t *testing.T) {
	var b dlbuild.Builder
	blobID := b.InternBlob(make([]byte, 10)) // wrong size for a 2x2 RGBA canvas (needs 16)
	b.DrawCanvas(0, 0, 2, 2, blobID)

	view, err := Validate(b.Build(), DLVersion1, testLimits())
	require.NoError(t, err)

	fb, err := NewFramebuffer(5, 5)
	require.NoError(t, err)
	store := newResourceStore(4, 4)
	cursor := CursorState{}
	err = Execute(view, fb, store, &cursor, ExecOptions{TabWidth: 4, Policy: WidthPolicyEmojiNarrow, Limits: testLimits()})
	require.Error(t, err)
	require.True(t, isKind(err, KindFormat))
}
