package zireael

// preflight walks every command, applying DEFINE/FREE to a clone of store
// and resolving every resource reference a drawing command makes against
// that clone, without touching the real store, framebuffer, or cursor
// (spec.md §4.3). It validates RGBA blob sizes for DRAW_CANVAS and segment
// framing for DRAW_TEXT_RUN, and confirms DRAW_TEXT's string_id resolves.
func preflight(view dlView, store *resourceStore) error {
	const op = "drawlist.execute.preflight"
	staging := store.clone()

	pos := 0
	cb := view.cmdBytes
	for pos < len(cb) {
		opcode := Opcode(leU16(cb[pos:]))
		size := leU32(cb[pos+4:])
		p := cb[pos+cmdHeaderSize : pos+int(size)]

		switch opcode {
		case OpBlitRect:
			if !view.version.supportsBlit() {
				return newErr(KindUnsupported, op, "blit_rect not enabled for this version")
			}

		case OpDefString:
			id, spanIdx := leU32(p[0:]), leU32(p[4:])
			bytes, err := spanBytes(view.stringSpans, view.stringBytes, spanIdx, op)
			if err != nil {
				return err
			}
			if err := staging.defineString(id, bytes); err != nil {
				return err
			}

		case OpDefBlob:
			id, spanIdx := leU32(p[0:]), leU32(p[4:])
			bytes, err := spanBytes(view.blobSpans, view.blobBytes, spanIdx, op)
			if err != nil {
				return err
			}
			if err := staging.defineBlob(id, bytes); err != nil {
				return err
			}

		case OpFreeString:
			if err := staging.freeString(leU32(p[0:])); err != nil {
				return err
			}

		case OpFreeBlob:
			if err := staging.freeBlob(leU32(p[0:])); err != nil {
				return err
			}

		case OpDrawText:
			full, err := staging.lookupString(leU32(p[8:]))
			if err != nil {
				return err
			}
			if uint64(leU32(p[12:]))+uint64(leU32(p[16:])) > uint64(len(full)) {
				return newErr(KindFormat, op, "draw_text byte_off/byte_len out of range for string")
			}

		case OpDrawTextRun:
			blob, err := staging.lookupBlob(leU32(p[8:]))
			if err != nil {
				return err
			}
			if err := validateTextRunFraming(blob, staging, op); err != nil {
				return err
			}

		case OpDrawCanvas:
			pxW, pxH := leU32(p[8:]), leU32(p[12:])
			blob, err := staging.lookupBlob(leU32(p[16:]))
			if err != nil {
				return err
			}
			if uint64(len(blob)) != uint64(pxW)*uint64(pxH)*4 {
				return newErr(KindFormat, op, "draw_canvas blob size does not match px_width*px_height*4")
			}

		case OpDrawImage:
			if _, err := staging.lookupBlob(leU32(p[16:])); err != nil {
				return err
			}
		}

		pos += int(size)
	}
	return nil
}

const textRunSegmentBytes = wireStyleSize + 12 // style + string_id + byte_off + byte_len

func validateTextRunFraming(blob []byte, store *resourceStore, op string) error {
	if len(blob) < 4 {
		return newErr(KindFormat, op, "draw_text_run blob too small for seg_count")
	}
	segCount := leU32(blob[0:])
	want := 4 + int(segCount)*textRunSegmentBytes
	if want != len(blob) {
		return newErr(KindFormat, op, "draw_text_run blob framing mismatch")
	}
	for i := uint32(0); i < segCount; i++ {
		off := 4 + int(i)*textRunSegmentBytes
		seg := blob[off : off+textRunSegmentBytes]
		ws := decodeWireStyle(seg)
		if err := validateWireStyle(ws, op); err != nil {
			return err
		}
		stringID := leU32(seg[wireStyleSize:])
		if stringID == 0 {
			return newErr(KindFormat, op, "draw_text_run segment string_id must be nonzero")
		}
		full, err := store.lookupString(stringID)
		if err != nil {
			return err
		}
		if uint64(leU32(seg[wireStyleSize+4:]))+uint64(leU32(seg[wireStyleSize+8:])) > uint64(len(full)) {
			return newErr(KindFormat, op, "draw_text_run segment byte_off/byte_len out of range for string")
		}
	}
	return nil
}

func spanBytes(spans []span, pool []byte, idx uint32, op string) ([]byte, error) {
	if idx >= uint32(len(spans)) {
		return nil, newErr(KindFormat, op, "span index out of range")
	}
	s := spans[idx]
	return pool[s.Off : s.Off+s.Len], nil
}
