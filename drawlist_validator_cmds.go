package zireael

// validateOpcodePayload checks one command's payload layout: fixed field
// presence, reserved-zero fields, enum/bool ranges, nonzero IDs, and clip
// depth bookkeeping. It never touches the resource store or any
// framebuffer — those checks are deferred to the executor's preflight
// pass (spec.md §4.3), since they require resolving state that can span
// multiple drawlist submissions.
func validateOpcodePayload(op Opcode, p []byte, limits Limits, clipDepth *int) error {
	const errOp = "drawlist.validate.opcode"

	switch op {
	case OpClear:
		return expectSize(p, 0, errOp)

	case OpFillRect:
		if err := expectSize(p, 16+wireStyleSize, errOp); err != nil {
			return err
		}
		ws := decodeWireStyle(p[16:])
		return validateWireStyle(ws, errOp)

	case OpDrawText:
		if err := expectSize(p, 20+wireStyleSize+4, errOp); err != nil {
			return err
		}
		stringID := leU32(p[8:])
		if stringID == 0 {
			return newErr(KindFormat, errOp, "draw_text string_id must be nonzero")
		}
		ws := decodeWireStyle(p[20:])
		if err := validateWireStyle(ws, errOp); err != nil {
			return err
		}
		if leU32(p[20+wireStyleSize:]) != 0 {
			return newErr(KindFormat, errOp, "draw_text reserved0 must be zero")
		}
		return nil

	case OpPushClip:
		if err := expectSize(p, 16, errOp); err != nil {
			return err
		}
		*clipDepth++
		if *clipDepth-1 > int(limits.DLMaxClipDepth) {
			return newErr(KindLimit, errOp, "clip depth exceeds dl_max_clip_depth")
		}
		return nil

	case OpPopClip:
		if err := expectSize(p, 0, errOp); err != nil {
			return err
		}
		if *clipDepth <= 1 {
			return newErr(KindLimit, errOp, "pop_clip underflow")
		}
		*clipDepth--
		return nil

	case OpBlitRect:
		return expectSize(p, 24, errOp)

	case OpDrawTextRun:
		if err := expectSize(p, 16, errOp); err != nil {
			return err
		}
		blobID := leU32(p[8:])
		if blobID == 0 {
			return newErr(KindFormat, errOp, "draw_text_run blob_id must be nonzero")
		}
		if leU32(p[12:]) != 0 {
			return newErr(KindFormat, errOp, "draw_text_run reserved0 must be zero")
		}
		return nil

	case OpSetCursor:
		if err := expectSize(p, 12, errOp); err != nil {
			return err
		}
		x, y := leI32(p[0:]), leI32(p[4:])
		if x < -1 || y < -1 {
			return newErr(KindFormat, errOp, "set_cursor coordinates must be >= -1")
		}
		shape, visible, blink, pad := p[8], p[9], p[10], p[11]
		if !validCursorShape(shape) {
			return newErr(KindFormat, errOp, "set_cursor invalid shape")
		}
		if visible > 1 || blink > 1 {
			return newErr(KindFormat, errOp, "set_cursor boolean field out of range")
		}
		if pad != 0 {
			return newErr(KindFormat, errOp, "set_cursor reserved byte must be zero")
		}
		return nil

	case OpDrawCanvas:
		if err := expectSize(p, 24, errOp); err != nil {
			return err
		}
		blobID := leU32(p[16:])
		if blobID == 0 {
			return newErr(KindFormat, errOp, "draw_canvas blob_id must be nonzero")
		}
		if p[21] != 0 {
			return newErr(KindFormat, errOp, "draw_canvas flags must be zero")
		}
		if leU16(p[22:]) != 0 {
			return newErr(KindFormat, errOp, "draw_canvas reserved padding must be zero")
		}
		return nil

	case OpDrawImage:
		if err := expectSize(p, 32, errOp); err != nil {
			return err
		}
		blobID := leU32(p[16:])
		if blobID == 0 {
			return newErr(KindFormat, errOp, "draw_image blob_id must be nonzero")
		}
		zLayer := int8(p[26])
		if !validZLayer(zLayer) {
			return newErr(KindFormat, errOp, "draw_image invalid z_layer")
		}
		if leU32(p[28:]) != 0 {
			return newErr(KindFormat, errOp, "draw_image flags must be zero")
		}
		return nil

	case OpDefString, OpDefBlob:
		if err := expectSize(p, 8, errOp); err != nil {
			return err
		}
		if leU32(p[0:]) == 0 {
			return newErr(KindFormat, errOp, "define id must be nonzero")
		}
		return nil

	case OpFreeString, OpFreeBlob:
		if err := expectSize(p, 8, errOp); err != nil {
			return err
		}
		if leU32(p[0:]) == 0 {
			return newErr(KindFormat, errOp, "free id must be nonzero")
		}
		if leU32(p[4:]) != 0 {
			return newErr(KindFormat, errOp, "free reserved0 must be zero")
		}
		return nil

	default:
		return newErr(KindUnsupported, errOp, "unknown opcode")
	}
}

func expectSize(payload []byte, want int, op string) error {
	if len(payload) != want {
		return newErr(KindFormat, op, "unexpected payload size")
	}
	return nil
}

func validateWireStyle(ws wireStyle, op string) error {
	if ws.Reserved0 != 0 {
		return newErr(KindFormat, op, "style reserved0 must be zero")
	}
	const knownAttrs = uint32(AttrBold | AttrItalic | AttrUnderline | AttrReverse | AttrStrikethrough)
	if ws.Attrs&^knownAttrs != 0 {
		return newErr(KindFormat, op, "style attrs out of range")
	}
	return nil
}
