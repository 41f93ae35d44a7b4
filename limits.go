package zireael

// Limits bounds every caller-controllable capacity in the engine. All
// fields are supplied by the caller at create time; a zero value is
// invalid wherever a positive value is required (validated by Validate).
type Limits struct {
	DLMaxTotalBytes      uint32 // drawlist buffer length ceiling
	DLMaxCmds            uint32 // command count ceiling
	DLMaxStrings         uint32 // string span count ceiling
	DLMaxBlobs           uint32 // blob span count ceiling
	DLMaxClipDepth       uint32 // PUSH_CLIP nesting ceiling
	DLMaxTextRunSegments uint32 // segments per DRAW_TEXT_RUN blob
	DiffMaxDamageRects   uint32 // damage rectangle list cap
	OutMaxBytesPerFrame  uint32 // diff renderer output buffer size
	ArenaInitialBytes    uint32 // per-frame arena initial size
	ArenaMaxTotalBytes   uint32 // per-frame arena growth ceiling
}

// Validate checks that every limit required to be positive is nonzero.
func (l Limits) Validate() error {
	const op = "limits.validate"
	fields := []struct {
		name string
		val  uint32
	}{
		{"dl_max_total_bytes", l.DLMaxTotalBytes},
		{"dl_max_cmds", l.DLMaxCmds},
		{"dl_max_strings", l.DLMaxStrings},
		{"dl_max_blobs", l.DLMaxBlobs},
		{"dl_max_clip_depth", l.DLMaxClipDepth},
		{"dl_max_text_run_segments", l.DLMaxTextRunSegments},
		{"diff_max_damage_rects", l.DiffMaxDamageRects},
		{"out_max_bytes_per_frame", l.OutMaxBytesPerFrame},
		{"arena_initial_bytes", l.ArenaInitialBytes},
		{"arena_max_total_bytes", l.ArenaMaxTotalBytes},
	}
	for _, f := range fields {
		if f.val == 0 {
			return newErr(KindInvalidArgument, op, f.name+" must be nonzero")
		}
	}
	if l.ArenaMaxTotalBytes < l.ArenaInitialBytes {
		return newErr(KindInvalidArgument, op, "arena_max_total_bytes must be >= arena_initial_bytes")
	}
	return nil
}

// DefaultLimits returns a reasonable set of limits for tests and demos.
func DefaultLimits() Limits {
	return Limits{
		DLMaxTotalBytes:      1 << 20,
		DLMaxCmds:            1 << 16,
		DLMaxStrings:         1 << 14,
		DLMaxBlobs:           1 << 12,
		DLMaxClipDepth:       64,
		DLMaxTextRunSegments: 256,
		DiffMaxDamageRects:   512,
		OutMaxBytesPerFrame:  1 << 20,
		ArenaInitialBytes:    1 << 16,
		ArenaMaxTotalBytes:   1 << 22,
	}
}
