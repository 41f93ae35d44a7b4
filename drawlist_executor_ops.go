package zireael

func (ex *executor) dispatch(opcode Opcode, p []byte) error {
	switch opcode {
	case OpClear:
		ex.dst.Clear(DefaultStyle)
		return nil

	case OpFillRect:
		rect := Rect{X: int(leI32(p[0:])), Y: int(leI32(p[4:])), W: int(leI32(p[8:])), H: int(leI32(p[12:]))}
		style, err := ex.styleFromWire(decodeWireStyle(p[16:]))
		if err != nil {
			return err
		}
		ex.painter.FillRect(rect, style)
		return nil

	case OpDrawText:
		x, y := int(leI32(p[0:])), int(leI32(p[4:]))
		stringID, byteOff, byteLen := leU32(p[8:]), leU32(p[12:]), leU32(p[16:])
		text, err := ex.sliceResolvedString(stringID, byteOff, byteLen)
		if err != nil {
			return err
		}
		style, err := ex.styleFromWire(decodeWireStyle(p[20:]))
		if err != nil {
			return err
		}
		ex.painter.DrawTextBytes(x, y, text, style, ex.opts.Policy, ex.opts.TabWidth)
		return nil

	case OpPushClip:
		rect := Rect{X: int(leI32(p[0:])), Y: int(leI32(p[4:])), W: int(leI32(p[8:])), H: int(leI32(p[12:]))}
		return ex.painter.PushClip(rect)

	case OpPopClip:
		return ex.painter.PopClip()

	case OpBlitRect:
		if !ex.view.version.supportsBlit() {
			return newErr(KindUnsupported, "drawlist.execute.blit_rect", "blit_rect not enabled for this version")
		}
		src := Rect{X: int(leI32(p[0:])), Y: int(leI32(p[4:])), W: int(leI32(p[8:])), H: int(leI32(p[12:]))}
		dst := Rect{X: int(leI32(p[16:])), Y: int(leI32(p[20:])), W: src.W, H: src.H}
		ex.painter.BlitRect(dst, src)
		return nil

	case OpDrawTextRun:
		return ex.execDrawTextRun(p)

	case OpSetCursor:
		x, y := int(leI32(p[0:])), int(leI32(p[4:]))
		ex.cursor.X, ex.cursor.Y = x, y
		ex.cursor.Shape = CursorShape(p[8])
		ex.cursor.Visible = p[9] != 0
		ex.cursor.Blink = p[10] != 0
		return nil

	case OpDrawCanvas, OpDrawImage:
		// Image-protocol payload staging is an out-of-scope collaborator
		// (spec.md §1); the core only validates framing (preflight) and
		// reserves the destination cells as a blank rect so the diff
		// renderer still treats the region as owned/dirty.
		x, y := int(leI32(p[0:])), int(leI32(p[4:]))
		pxW, pxH := int(leU32(p[8:])), int(leU32(p[12:]))
		ex.painter.FillRect(Rect{X: x, Y: y, W: pxW, H: pxH}, DefaultStyle)
		return nil

	case OpDefString:
		id, spanIdx := leU32(p[0:]), leU32(p[4:])
		bytes, err := spanBytes(ex.view.stringSpans, ex.view.stringBytes, spanIdx, "drawlist.execute.def_string")
		if err != nil {
			return err
		}
		return ex.store.defineString(id, bytes)

	case OpDefBlob:
		id, spanIdx := leU32(p[0:]), leU32(p[4:])
		bytes, err := spanBytes(ex.view.blobSpans, ex.view.blobBytes, spanIdx, "drawlist.execute.def_blob")
		if err != nil {
			return err
		}
		return ex.store.defineBlob(id, bytes)

	case OpFreeString:
		return ex.store.freeString(leU32(p[0:]))

	case OpFreeBlob:
		return ex.store.freeBlob(leU32(p[0:]))

	default:
		return newErr(KindUnsupported, "drawlist.execute", "unknown opcode")
	}
}

func (ex *executor) execDrawTextRun(p []byte) error {
	x, y := int(leI32(p[0:])), int(leI32(p[4:]))
	blobID := leU32(p[8:])
	blob, err := ex.store.lookupBlob(blobID)
	if err != nil {
		return err
	}
	segCount := leU32(blob[0:])
	cx := x
	for i := uint32(0); i < segCount; i++ {
		off := 4 + int(i)*textRunSegmentBytes
		seg := blob[off : off+textRunSegmentBytes]
		style, err := ex.styleFromWire(decodeWireStyle(seg))
		if err != nil {
			return err
		}
		stringID, byteOff, byteLen := leU32(seg[wireStyleSize:]), leU32(seg[wireStyleSize+4:]), leU32(seg[wireStyleSize+8:])
		text, err := ex.sliceResolvedString(stringID, byteOff, byteLen)
		if err != nil {
			return err
		}
		startX := cx
		ex.painter.DrawTextBytes(startX, y, text, style, ex.opts.Policy, ex.opts.TabWidth)
		// Advance by the rendered width of this segment so the next
		// segment continues where this one left off.
		iterGraphemes(text, ex.opts.Policy, func(off int, _ []byte, w int) {
			if text[off] == '\t' {
				tw := ex.opts.TabWidth
				if tw < 1 {
					tw = 1
				}
				cx = startX + ((cx-startX)/tw+1)*tw
				return
			}
			cx += w
		})
	}
	return nil
}

// sliceResolvedString resolves stringID in the resource store and slices
// [byteOff, byteOff+byteLen) from it, matching the validated framing a
// successful preflight already confirmed exists.
func (ex *executor) sliceResolvedString(stringID, byteOff, byteLen uint32) (string, error) {
	const op = "drawlist.execute.resolve_string"
	full, err := ex.store.lookupString(stringID)
	if err != nil {
		return "", err
	}
	end := uint64(byteOff) + uint64(byteLen)
	if end > uint64(len(full)) {
		return "", newErr(KindFormat, op, "byte_off/byte_len out of range for string")
	}
	return string(full[byteOff:end]), nil
}

// styleFromWire converts a wire style to a runtime Style, interning any
// referenced link URI/ID strings into the destination framebuffer's link
// table (spec.md §4.3).
func (ex *executor) styleFromWire(ws wireStyle) (Style, error) {
	s := Style{
		FG:        rgbFromWire(ws.FGRGB),
		BG:        rgbFromWire(ws.BGRGB),
		Underline: rgbFromWire(ws.UnderlineRGB),
		HasUL:     ws.UnderlineRGB != 0,
		Attrs:     Attr(ws.Attrs),
	}
	if ws.LinkURIRef != 0 {
		uriBytes, err := ex.store.lookupString(ws.LinkURIRef)
		if err != nil {
			return Style{}, err
		}
		idText := ""
		if ws.LinkIDRef != 0 {
			idBytes, err := ex.store.lookupString(ws.LinkIDRef)
			if err != nil {
				return Style{}, err
			}
			idText = clampBytes(string(idBytes), LinkIDMaxBytes)
		}
		s.Link = ex.dst.LinkIntern(clampBytes(string(uriBytes), LinkURIMaxBytes), idText)
	}
	return s, nil
}
