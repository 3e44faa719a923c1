package tre

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Archive is a parsed, read-only view over a TRE file. All metadata is
// materialized by Open; extractions only perform positioned reads against
// the underlying source, so one Archive may serve concurrent extractions.
type Archive struct {
	src     io.ReaderAt
	header  header
	entries []EntryInfo
	byName  map[string]int
	byHash  map[uint32]int
	closer  io.Closer
}

// Open parses the archive metadata from src. size is the total length of
// the source in bytes. The source is borrowed, not owned: the caller keeps
// responsibility for closing it.
func Open(src io.ReaderAt, size int64) (*Archive, error) {
	buf := make([]byte, headerSize)
	if _, err := readFullAt(src, buf, 0); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	h, err := decodeHeader(buf)
	if err != nil {
		return nil, err
	}
	// Header fields are untrusted; cap every metadata block against the
	// source size before sizing any buffer from them.
	if size >= 0 {
		need := int64(h.recordStart) + int64(h.recordCompressed) +
			int64(h.nameCompressed) + int64(h.records)*digestSize
		if need > size {
			return nil, fmt.Errorf("%w: metadata extends to byte %d, source is %d bytes",
				ErrCorruptIndex, need, size)
		}
	}

	records, err := readRecords(src, h)
	if err != nil {
		return nil, err
	}
	names, err := readNames(src, h, records)
	if err != nil {
		return nil, err
	}
	digests, err := readDigests(src, h, size)
	if err != nil {
		return nil, err
	}

	a := &Archive{
		src:     src,
		header:  h,
		entries: make([]EntryInfo, len(records)),
		byName:  make(map[string]int, len(records)),
		byHash:  make(map[uint32]int, len(records)),
	}
	for i, r := range records {
		if want := Checksum([]byte(names[i])); r.nameChecksum != want {
			return nil, &IndexError{Index: i, Reason: fmt.Sprintf(
				"name checksum %08x does not match %q (%08x)", r.nameChecksum, names[i], want)}
		}
		if prev, dup := a.byHash[r.nameChecksum]; dup {
			return nil, &IndexError{Index: i, Reason: fmt.Sprintf(
				"name checksum %08x collides with record %d", r.nameChecksum, prev)}
		}
		a.entries[i] = EntryInfo{
			Name:             names[i],
			NameChecksum:     r.nameChecksum,
			UncompressedSize: r.dataUncompressed,
			CompressedSize:   r.dataCompressed,
			Offset:           r.dataOffset,
			Method:           r.dataCompression,
			Digest:           digests[i],
		}
		a.byName[names[i]] = i
		a.byHash[r.nameChecksum] = i
	}
	return a, nil
}

// OpenFile opens path and parses it as a TRE archive. The returned Archive
// owns the file handle; release it with Close.
func OpenFile(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	a, err := Open(f, info.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	a.closer = f
	return a, nil
}

// Close releases the underlying file when the Archive was opened with
// OpenFile; it is a no-op otherwise.
func (a *Archive) Close() error {
	if a.closer == nil {
		return nil
	}
	err := a.closer.Close()
	a.closer = nil
	return err
}

// Len returns the number of entries in the archive.
func (a *Archive) Len() int {
	return len(a.entries)
}

// Entries returns the entry metadata in record order. The slice is a fresh
// copy on every call.
func (a *Archive) Entries() []EntryInfo {
	out := make([]EntryInfo, len(a.entries))
	copy(out, a.entries)
	return out
}

// ByName returns the metadata for the named entry.
func (a *Archive) ByName(name string) (EntryInfo, bool) {
	i, ok := a.byName[name]
	if !ok {
		return EntryInfo{}, false
	}
	return a.entries[i], true
}

// ByChecksum returns the metadata for the entry with the given name
// checksum.
func (a *Archive) ByChecksum(sum uint32) (EntryInfo, bool) {
	i, ok := a.byHash[sum]
	if !ok {
		return EntryInfo{}, false
	}
	return a.entries[i], true
}

// Extract returns the decompressed payload of the named entry.
func (a *Archive) Extract(name string) ([]byte, error) {
	i, ok := a.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrEntryNotFound, name)
	}
	return a.extract(i)
}

// ExtractChecksum returns the decompressed payload of the entry with the
// given name checksum.
func (a *Archive) ExtractChecksum(sum uint32) ([]byte, error) {
	i, ok := a.byHash[sum]
	if !ok {
		return nil, fmt.Errorf("%w: checksum %08x", ErrEntryNotFound, sum)
	}
	return a.extract(i)
}

// ExtractIndex returns the decompressed payload of the entry at index i in
// record order.
func (a *Archive) ExtractIndex(i int) ([]byte, error) {
	if i < 0 || i >= len(a.entries) {
		return nil, fmt.Errorf("%w: index %d", ErrEntryNotFound, i)
	}
	return a.extract(i)
}

func (a *Archive) extract(i int) ([]byte, error) {
	e := &a.entries[i]
	stored, err := a.readStored(e)
	if err != nil {
		return nil, err
	}
	// Digest check runs before decompression so corruption is caught
	// without spending time on inflate.
	if got := Digest(stored); got != e.Digest {
		return nil, &ChecksumError{Name: e.Name, Offset: e.Offset, Want: e.Digest, Got: got}
	}
	data, err := decompress(e.Method, stored, int(e.UncompressedSize))
	if err != nil {
		return nil, fmt.Errorf("entry %q: %w", e.Name, err)
	}
	return data, nil
}

// VerifyAll checks every entry's stored bytes against its recorded digest
// without decompressing or returning payloads. All failures are joined into
// the returned error.
func (a *Archive) VerifyAll() error {
	var errs []error
	for i := range a.entries {
		e := &a.entries[i]
		stored, err := a.readStored(e)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if got := Digest(stored); got != e.Digest {
			errs = append(errs, &ChecksumError{Name: e.Name, Offset: e.Offset, Want: e.Digest, Got: got})
		}
	}
	return errors.Join(errs...)
}

func (a *Archive) readStored(e *EntryInfo) ([]byte, error) {
	stored := make([]byte, e.CompressedSize)
	if _, err := readFullAt(a.src, stored, int64(e.Offset)); err != nil {
		return nil, fmt.Errorf("entry %q at offset %d: %w", e.Name, e.Offset, err)
	}
	return stored, nil
}

func readRecords(src io.ReaderAt, h header) ([]record, error) {
	block := make([]byte, h.recordCompressed)
	if _, err := readFullAt(src, block, int64(h.recordStart)); err != nil {
		return nil, fmt.Errorf("reading record block: %w", err)
	}
	raw, err := decompress(h.recordCompression, block, int(h.records)*recordSize)
	if err != nil {
		return nil, fmt.Errorf("record block: %w", err)
	}
	return decodeRecords(raw, h.records, h.recordStart)
}

func readNames(src io.ReaderAt, h header, records []record) ([]string, error) {
	block := make([]byte, h.nameCompressed)
	offset := int64(h.recordStart) + int64(h.recordCompressed)
	if _, err := readFullAt(src, block, offset); err != nil {
		return nil, fmt.Errorf("reading name block: %w", err)
	}
	raw, err := decompress(h.nameCompression, block, int(h.nameUncompressed))
	if err != nil {
		return nil, fmt.Errorf("name block: %w", err)
	}
	return decodeNames(raw, records)
}

func readDigests(src io.ReaderAt, h header, size int64) ([][digestSize]byte, error) {
	offset := int64(h.recordStart) + int64(h.recordCompressed) + int64(h.nameCompressed)
	if size >= 0 && offset+int64(h.records)*digestSize > size {
		return nil, fmt.Errorf("%w: digest block truncated", ErrCorruptIndex)
	}
	block := make([]byte, int(h.records)*digestSize)
	if _, err := readFullAt(src, block, offset); err != nil {
		return nil, fmt.Errorf("%w: reading digest block: %v", ErrCorruptIndex, err)
	}
	digests := make([][digestSize]byte, h.records)
	for i := range digests {
		copy(digests[i][:], block[i*digestSize:])
	}
	return digests, nil
}

func readFullAt(src io.ReaderAt, buf []byte, off int64) (int, error) {
	n, err := src.ReadAt(buf, off)
	if n == len(buf) {
		return n, nil
	}
	if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return n, err
}
