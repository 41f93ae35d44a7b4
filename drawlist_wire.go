package zireael

import "encoding/binary"

// Wire format constants (spec.md §6.1).
const (
	dlMagic      uint32 = 0x4C44525A // 'ZRDL' little-endian
	dlHeaderSize uint32 = 64
)

// DLVersion enumerates the accepted drawlist wire versions. The engine is
// created with exactly one version enabled; validation rejects any other.
type DLVersion uint32

const (
	DLVersion1 DLVersion = 1 // base opcode set, no BLIT_RECT
	DLVersion2 DLVersion = 2 // adds BLIT_RECT
)

func (v DLVersion) supportsBlit() bool { return v >= DLVersion2 }

// dlHeader mirrors the 64-byte wire header. All integers are little-endian
// u32.
type dlHeader struct {
	Magic             uint32
	Version           uint32
	HeaderSize        uint32
	TotalSize         uint32
	CmdOffset         uint32
	CmdBytes          uint32
	CmdCount          uint32
	StringsSpanOffset uint32
	StringsCount      uint32
	StringsBytesOff   uint32
	StringsBytesLen   uint32
	BlobsSpanOffset   uint32
	BlobsCount        uint32
	BlobsBytesOff     uint32
	BlobsBytesLen     uint32
	Reserved0         uint32
}

const dlHeaderFieldCount = 16 // 16 x u32 == 64 bytes

func readHeader(buf []byte) dlHeader {
	u32 := func(off int) uint32 { return binary.LittleEndian.Uint32(buf[off:]) }
	var h dlHeader
	h.Magic = u32(0)
	h.Version = u32(4)
	h.HeaderSize = u32(8)
	h.TotalSize = u32(12)
	h.CmdOffset = u32(16)
	h.CmdBytes = u32(20)
	h.CmdCount = u32(24)
	h.StringsSpanOffset = u32(28)
	h.StringsCount = u32(32)
	h.StringsBytesOff = u32(36)
	h.StringsBytesLen = u32(40)
	h.BlobsSpanOffset = u32(44)
	h.BlobsCount = u32(48)
	h.BlobsBytesOff = u32(52)
	h.BlobsBytesLen = u32(56)
	h.Reserved0 = u32(60)
	return h
}

// span is a span-table entry: a byte range within a section's payload
// bytes.
type span struct {
	Off uint32
	Len uint32
}

func readSpan(buf []byte, off uint32) span {
	return span{
		Off: binary.LittleEndian.Uint32(buf[off:]),
		Len: binary.LittleEndian.Uint32(buf[off+4:]),
	}
}

const spanSize = 8

// dlView binds parsed offsets/lengths to a caller-owned buffer. It is
// produced only by a successful Validate and is required by Execute; it
// never outlives the buffer it was built from.
type dlView struct {
	buf     []byte
	header  dlHeader
	version DLVersion

	cmdBytes []byte

	stringSpans []span
	stringBytes []byte

	blobSpans []span
	blobBytes []byte
}

func align4(n uint32) bool { return n%4 == 0 }
