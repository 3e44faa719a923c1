package tre

import "fmt"

// Binary layout constants.
const (
	headerSize = 36 // fixed header size in bytes
	recordSize = 24 // fixed per-entry record size in bytes
	digestSize = 16 // MD5 digest size in the trailing digest block

	fileMagic   = 0x54524545 // "TREE"
	fileVersion = 0x30303035 // "0005"

	maxArchiveSize = 1 << 32 // offsets and sizes are u32
)

// CompressionMethod identifies how a block or entry payload is stored.
type CompressionMethod uint32

const (
	// None stores bytes verbatim.
	None CompressionMethod = 0
	// Zlib stores bytes as a zlib (deflate) stream.
	Zlib CompressionMethod = 2
)

func (m CompressionMethod) String() string {
	switch m {
	case None:
		return "none"
	case Zlib:
		return "zlib"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(m))
	}
}

func (m CompressionMethod) valid() bool {
	return m == None || m == Zlib
}

// header mirrors the 36-byte archive header.
type header struct {
	records           uint32
	recordStart       uint32
	recordCompression CompressionMethod
	recordCompressed  uint32
	nameCompression   CompressionMethod
	nameCompressed    uint32
	nameUncompressed  uint32
}

// record mirrors one 24-byte entry record.
type record struct {
	nameChecksum     uint32
	dataUncompressed uint32
	dataOffset       uint32
	dataCompression  CompressionMethod
	dataCompressed   uint32
	nameOffset       uint32
}

// EntryInfo describes one parsed archive entry.
type EntryInfo struct {
	// Name is the entry name as stored in the name block.
	Name string
	// NameChecksum is the CRC-32/BZIP2 checksum of Name, the entry's
	// primary lookup key.
	NameChecksum uint32
	// UncompressedSize is the payload size after decompression.
	UncompressedSize uint32
	// CompressedSize is the stored payload size in the data section.
	CompressedSize uint32
	// Offset is the absolute byte offset of the stored payload.
	Offset uint32
	// Method is the compression method of the stored payload.
	Method CompressionMethod
	// Digest is the MD5 digest of the stored payload bytes, checked on
	// every extraction.
	Digest [digestSize]byte
}

// IsCompressed reports whether the entry's payload is stored compressed.
func (e *EntryInfo) IsCompressed() bool {
	return e.Method != None
}
