package zireael

// Validate parses and validates a drawlist buffer against limits and the
// single wire version the caller enabled at create time. It performs no
// side effects and returns a dlView bound to buf on success; buf must
// outlive the view (the view is only valid for the duration of the
// Execute call it is passed to).
func Validate(buf []byte, version DLVersion, limits Limits) (dlView, error) {
	const op = "drawlist.validate"

	if uint32(len(buf)) > limits.DLMaxTotalBytes {
		return dlView{}, newErr(KindLimit, op, "buffer exceeds dl_max_total_bytes")
	}
	if len(buf) < int(dlHeaderSize) {
		return dlView{}, newErr(KindFormat, op, "buffer shorter than header")
	}

	h := readHeader(buf)
	if h.Magic != dlMagic {
		return dlView{}, newErr(KindFormat, op, "bad magic")
	}
	if DLVersion(h.Version) != version {
		return dlView{}, newErr(KindUnsupported, op, "version mismatch")
	}
	if h.HeaderSize != dlHeaderSize {
		return dlView{}, newErr(KindFormat, op, "bad header_size")
	}
	if h.TotalSize != uint32(len(buf)) {
		return dlView{}, newErr(KindFormat, op, "total_size mismatch")
	}
	if h.Reserved0 != 0 {
		return dlView{}, newErr(KindFormat, op, "reserved0 must be zero")
	}
	if h.CmdCount > limits.DLMaxCmds {
		return dlView{}, newErr(KindLimit, op, "cmd count exceeds limit")
	}
	if h.StringsCount > limits.DLMaxStrings {
		return dlView{}, newErr(KindLimit, op, "string count exceeds limit")
	}
	if h.BlobsCount > limits.DLMaxBlobs {
		return dlView{}, newErr(KindLimit, op, "blob count exceeds limit")
	}

	offsets := []uint32{h.CmdOffset, h.StringsSpanOffset, h.StringsBytesOff, h.BlobsSpanOffset, h.BlobsBytesOff}
	lens := []uint32{h.CmdBytes, h.StringsCount * spanSize, h.StringsBytesLen, h.BlobsCount * spanSize, h.BlobsBytesLen}
	for i := range offsets {
		if !align4(offsets[i]) || !align4(lens[i]) {
			return dlView{}, newErr(KindFormat, op, "section not 4-byte aligned")
		}
	}
	if h.StringsCount == 0 && (h.StringsSpanOffset != 0 || h.StringsBytesOff != 0 || h.StringsBytesLen != 0) {
		return dlView{}, newErr(KindFormat, op, "zero string count must zero string section fields")
	}
	if h.BlobsCount == 0 && (h.BlobsSpanOffset != 0 || h.BlobsBytesOff != 0 || h.BlobsBytesLen != 0) {
		return dlView{}, newErr(KindFormat, op, "zero blob count must zero blob section fields")
	}

	type region struct{ lo, hi uint32 }
	regions := []region{{0, dlHeaderSize}}
	for i := range offsets {
		lo, ln := offsets[i], lens[i]
		hi := lo + ln
		if hi < lo || hi > uint32(len(buf)) {
			return dlView{}, newErr(KindFormat, op, "section out of buffer range")
		}
		if ln == 0 {
			continue
		}
		for _, r := range regions {
			if lo < r.hi && r.lo < hi {
				return dlView{}, newErr(KindFormat, op, "sections overlap")
			}
		}
		regions = append(regions, region{lo, hi})
	}

	stringSpans, err := readSpans(buf, h.StringsSpanOffset, h.StringsCount, h.StringsBytesLen, op)
	if err != nil {
		return dlView{}, err
	}
	blobSpans, err := readSpans(buf, h.BlobsSpanOffset, h.BlobsCount, h.BlobsBytesLen, op)
	if err != nil {
		return dlView{}, err
	}

	cmdBytes := buf[h.CmdOffset : h.CmdOffset+h.CmdBytes]
	if err := walkCommands(cmdBytes, int(h.CmdCount), limits); err != nil {
		return dlView{}, err
	}

	return dlView{
		buf:         buf,
		header:      h,
		version:     version,
		cmdBytes:    cmdBytes,
		stringSpans: stringSpans,
		stringBytes: buf[h.StringsBytesOff : h.StringsBytesOff+h.StringsBytesLen],
		blobSpans:   blobSpans,
		blobBytes:   buf[h.BlobsBytesOff : h.BlobsBytesOff+h.BlobsBytesLen],
	}, nil
}

func readSpans(buf []byte, off, count, payloadLen uint32, op string) ([]span, error) {
	spans := make([]span, count)
	for i := uint32(0); i < count; i++ {
		s := readSpan(buf, off+i*spanSize)
		end := s.Off + s.Len
		if end < s.Off || end > payloadLen {
			return nil, newErr(KindFormat, op, "span out of section range")
		}
		spans[i] = s
	}
	return spans, nil
}

// walkCommands validates the command stream structurally without
// resolving any resource-store content (spec.md §4.2 step 5). It never
// mutates state; a failure partway through means none of the commands are
// considered validated.
func walkCommands(cmdBytes []byte, declaredCount int, limits Limits) error {
	const op = "drawlist.validate.commands"
	pos := 0
	count := 0
	clipDepth := 1 // initial full-bounds clip, matching the painter's own accounting

	for pos < len(cmdBytes) {
		if len(cmdBytes)-pos < cmdHeaderSize {
			return newErr(KindFormat, op, "truncated command header")
		}
		opcode := Opcode(leU16(cmdBytes[pos:]))
		flags := leU16(cmdBytes[pos+2:])
		size := leU32(cmdBytes[pos+4:])

		if flags != 0 {
			return newErr(KindFormat, op, "command flags must be zero")
		}
		if size < uint32(cmdHeaderSize) || !align4(size) {
			return newErr(KindFormat, op, "bad command size")
		}
		if uint32(len(cmdBytes)-pos) < size {
			return newErr(KindFormat, op, "command exceeds command section")
		}

		payload := cmdBytes[pos+cmdHeaderSize : pos+int(size)]
		if err := validateOpcodePayload(opcode, payload, limits, &clipDepth); err != nil {
			return err
		}

		pos += int(size)
		count++
	}
	if pos != len(cmdBytes) {
		return newErr(KindFormat, op, "trailing bytes in command section")
	}
	if count != declaredCount {
		return newErr(KindFormat, op, "cmd count mismatch")
	}
	return nil
}

func leU16(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }
