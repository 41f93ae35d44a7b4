package zireael

import (
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// GlyphMax is the maximum byte length of a cell's glyph. It is sized to
// hold the common grapheme clusters (emoji ZWJ sequences, combining
// accents) a terminal UI draws into a single cell.
const GlyphMax = 16

// WidthPolicy controls how ambiguous-width code points (box drawing,
// most emoji presentation forms without an explicit VS16) are measured.
type WidthPolicy uint8

const (
	// WidthPolicyEmojiNarrow measures ambiguous-width runes as narrow (1
	// cell), matching legacy East Asian terminal defaults.
	WidthPolicyEmojiNarrow WidthPolicy = iota
	// WidthPolicyEmojiWide measures ambiguous-width runes as wide (2
	// cells), matching most modern terminal emulator defaults.
	WidthPolicyEmojiWide
)

var replacementRune = rune(0xFFFD)

// isUnsafeScalar reports whether r must never appear literally in a cell
// glyph: ASCII controls, DEL, and C1 controls (spec.md §3).
func isUnsafeScalar(r rune) bool {
	if r < 0x20 {
		return true
	}
	if r == 0x7F {
		return true
	}
	if r >= 0x80 && r < 0xA0 {
		return true
	}
	return false
}

// validGraphemeBytes reports whether b is valid UTF-8, non-empty, forms a
// single grapheme cluster, and contains no unsafe scalar.
func validGraphemeBytes(b []byte) bool {
	if len(b) == 0 || len(b) > GlyphMax {
		return false
	}
	if !utf8.Valid(b) {
		return false
	}
	gr := uniseg.NewGraphemes(string(b))
	if !gr.Next() {
		return false
	}
	clusterLen := len(gr.Str())
	if gr.Next() {
		return false // more than one cluster
	}
	if clusterLen != len(b) {
		return false
	}
	for _, r := range string(b) {
		if isUnsafeScalar(r) {
			return false
		}
	}
	return true
}

// graphemeWidth returns the logical cell width (1 or 2) of a single valid
// grapheme cluster under policy. Width is driven by the cluster's first
// scalar; combining marks never add width.
func graphemeWidth(cluster string, policy WidthPolicy) int {
	first, _ := utf8.DecodeRuneInString(cluster)
	if runewidth.IsAmbiguousWidth(first) {
		// Ambiguous-width base: resolve via policy.
		if policy == WidthPolicyEmojiWide {
			return 2
		}
		return 1
	}
	w := runewidth.RuneWidth(first)
	if w >= 2 {
		return 2
	}
	return 1
}

// sanitizeGlyph canonicalizes caller-supplied glyph bytes per spec.md
// §4.1's put_grapheme replacement policy: empty input becomes a space,
// invalid input becomes U+FFFD, both reported as width 1. Valid input is
// returned unchanged together with its policy-computed width.
func sanitizeGlyph(b []byte, policy WidthPolicy) (glyph []byte, width int) {
	if len(b) == 0 {
		return []byte(" "), 1
	}
	if !validGraphemeBytes(b) {
		return []byte(string(replacementRune)), 1
	}
	return b, graphemeWidth(string(b), policy)
}

// iterGraphemes calls fn once per grapheme cluster in s in order. fn
// receives the cluster's byte offset within s, its bytes, and its
// sanitized width. Iteration never stops early on invalid input: an
// invalid cluster (which uniseg still segments structurally even when it
// contains unsafe scalars) is replaced before fn sees it.
func iterGraphemes(s string, policy WidthPolicy, fn func(off int, glyph []byte, width int)) {
	gr := uniseg.NewGraphemes(s)
	off := 0
	for gr.Next() {
		cluster := gr.Str()
		glyph, width := sanitizeGlyph([]byte(cluster), policy)
		fn(off, glyph, width)
		off += len(cluster)
	}
}
