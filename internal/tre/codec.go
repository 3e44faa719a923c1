package tre

import (
	"encoding/binary"
	"fmt"
)

// encodeHeader serializes h into a fixed 36-byte header.
func encodeHeader(h header) []byte {
	buf := make([]byte, headerSize)
	le := binary.LittleEndian
	le.PutUint32(buf[0:], fileMagic)
	le.PutUint32(buf[4:], fileVersion)
	le.PutUint32(buf[8:], h.records)
	le.PutUint32(buf[12:], h.recordStart)
	le.PutUint32(buf[16:], uint32(h.recordCompression))
	le.PutUint32(buf[20:], h.recordCompressed)
	le.PutUint32(buf[24:], uint32(h.nameCompression))
	le.PutUint32(buf[28:], h.nameCompressed)
	le.PutUint32(buf[32:], h.nameUncompressed)
	return buf
}

// decodeHeader parses the fixed archive header, rejecting unknown magic and
// version values before looking at anything else.
func decodeHeader(buf []byte) (header, error) {
	if len(buf) < headerSize {
		return header{}, fmt.Errorf("%w: header truncated at %d bytes", ErrCorruptIndex, len(buf))
	}
	le := binary.LittleEndian
	if le.Uint32(buf[0:]) != fileMagic {
		return header{}, ErrInvalidMagic
	}
	if le.Uint32(buf[4:]) != fileVersion {
		return header{}, fmt.Errorf("%w: %q", ErrUnsupportedVersion, string(buf[4:8]))
	}
	h := header{
		records:           le.Uint32(buf[8:]),
		recordStart:       le.Uint32(buf[12:]),
		recordCompression: CompressionMethod(le.Uint32(buf[16:])),
		recordCompressed:  le.Uint32(buf[20:]),
		nameCompression:   CompressionMethod(le.Uint32(buf[24:])),
		nameCompressed:    le.Uint32(buf[28:]),
		nameUncompressed:  le.Uint32(buf[32:]),
	}
	if !h.recordCompression.valid() {
		return header{}, fmt.Errorf("%w: record block compression %s", ErrCorruptIndex, h.recordCompression)
	}
	if !h.nameCompression.valid() {
		return header{}, fmt.Errorf("%w: name block compression %s", ErrCorruptIndex, h.nameCompression)
	}
	if h.recordStart < headerSize {
		return header{}, fmt.Errorf("%w: record block offset %d overlaps header", ErrCorruptIndex, h.recordStart)
	}
	return h, nil
}

// appendRecord serializes one 24-byte entry record onto dst.
func appendRecord(dst []byte, r record) []byte {
	var buf [recordSize]byte
	le := binary.LittleEndian
	le.PutUint32(buf[0:], r.nameChecksum)
	le.PutUint32(buf[4:], r.dataUncompressed)
	le.PutUint32(buf[8:], r.dataOffset)
	le.PutUint32(buf[12:], uint32(r.dataCompression))
	le.PutUint32(buf[16:], r.dataCompressed)
	le.PutUint32(buf[20:], r.nameOffset)
	return append(dst, buf[:]...)
}

// decodeRecords parses exactly count fixed-size records and validates that
// every referenced data range lies inside the data section, which spans
// [headerSize, dataEnd).
func decodeRecords(buf []byte, count, dataEnd uint32) ([]record, error) {
	if uint32(len(buf)) != count*recordSize {
		return nil, fmt.Errorf("%w: record block is %d bytes, want %d for %d records",
			ErrCorruptIndex, len(buf), count*recordSize, count)
	}
	le := binary.LittleEndian
	records := make([]record, count)
	for i := range records {
		p := i * recordSize
		r := record{
			nameChecksum:     le.Uint32(buf[p+0:]),
			dataUncompressed: le.Uint32(buf[p+4:]),
			dataOffset:       le.Uint32(buf[p+8:]),
			dataCompression:  CompressionMethod(le.Uint32(buf[p+12:])),
			dataCompressed:   le.Uint32(buf[p+16:]),
			nameOffset:       le.Uint32(buf[p+20:]),
		}
		if !r.dataCompression.valid() {
			return nil, &IndexError{Index: i, Reason: fmt.Sprintf("compression method %s", r.dataCompression)}
		}
		if r.dataCompression == None && r.dataCompressed != r.dataUncompressed {
			return nil, &IndexError{Index: i, Reason: fmt.Sprintf(
				"stored raw but sizes disagree (%d != %d)", r.dataCompressed, r.dataUncompressed)}
		}
		if r.dataOffset < headerSize || uint64(r.dataOffset)+uint64(r.dataCompressed) > uint64(dataEnd) {
			return nil, &IndexError{Index: i, Reason: fmt.Sprintf(
				"data range [%d, %d) outside data section [%d, %d)",
				r.dataOffset, uint64(r.dataOffset)+uint64(r.dataCompressed), headerSize, dataEnd)}
		}
		records[i] = r
	}
	return records, nil
}

// decodeNames splits the uncompressed name block into one NUL-terminated
// name per record, rejecting trailing bytes that no record references.
func decodeNames(buf []byte, records []record) ([]string, error) {
	names := make([]string, len(records))
	offset := uint32(0)
	for i, r := range records {
		if r.nameOffset != offset {
			return nil, &IndexError{Index: i, Reason: fmt.Sprintf(
				"name offset %d, want %d", r.nameOffset, offset)}
		}
		end := offset
		for end < uint32(len(buf)) && buf[end] != 0 {
			end++
		}
		if end >= uint32(len(buf)) {
			return nil, &IndexError{Index: i, Reason: "name block truncated"}
		}
		names[i] = string(buf[offset:end])
		offset = end + 1
	}
	if offset != uint32(len(buf)) {
		return nil, fmt.Errorf("%w: %d unreferenced bytes in name block", ErrCorruptIndex, uint32(len(buf))-offset)
	}
	return names, nil
}
