package tre

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// BuilderOptions configures how archive metadata blocks are stored.
type BuilderOptions struct {
	// RecordCompression is the method for the record block.
	RecordCompression CompressionMethod
	// NameCompression is the method for the name block.
	NameCompression CompressionMethod
}

// DefaultBuilderOptions compresses both metadata blocks, matching what the
// game's own archives use.
func DefaultBuilderOptions() BuilderOptions {
	return BuilderOptions{
		RecordCompression: Zlib,
		NameCompression:   Zlib,
	}
}

// pendingEntry holds one payload between Add and Finalize.
type pendingEntry struct {
	name     string
	checksum uint32            // CRC-32/BZIP2 of name
	content  [digestSize]byte  // MD5 of the uncompressed payload
	data     []byte
	method   CompressionMethod // ignored when auto
	auto     bool
}

// PendingEntry describes one entry accumulated by a Builder.
type PendingEntry struct {
	// Name is the entry name as it will appear in the name block.
	Name string
	// NameChecksum is the entry's lookup key.
	NameChecksum uint32
	// ContentDigest is the MD5 of the uncompressed payload, the entry's
	// content identity for deduplication decisions.
	ContentDigest [digestSize]byte
	// Size is the uncompressed payload size.
	Size int
}

// Builder accumulates named payloads and serializes them into a complete
// archive. Entries keep their insertion order; output is deterministic for
// a given sequence of Add calls. A Builder is single-writer: it must not be
// shared across goroutines without external locking.
type Builder struct {
	opts      BuilderOptions
	entries   []pendingEntry
	index     map[uint32]int // name checksum -> entries position
	finalized bool
}

// NewBuilder returns an empty Builder using opts. The zero BuilderOptions
// stores both metadata blocks raw.
func NewBuilder(opts BuilderOptions) *Builder {
	return &Builder{
		opts:  opts,
		index: make(map[uint32]int),
	}
}

// Len returns the number of pending entries.
func (b *Builder) Len() int {
	return len(b.entries)
}

// Pending returns metadata for every accumulated entry in insertion order.
func (b *Builder) Pending() []PendingEntry {
	out := make([]PendingEntry, len(b.entries))
	for i, e := range b.entries {
		out[i] = PendingEntry{
			Name:          e.name,
			NameChecksum:  e.checksum,
			ContentDigest: e.content,
			Size:          len(e.data),
		}
	}
	return out
}

// Add records a payload under name, choosing between raw and zlib storage
// by whichever is smaller at Finalize time. The bytes are copied.
func (b *Builder) Add(name string, data []byte) error {
	return b.add(name, data, Zlib, true)
}

// AddWithMethod records a payload with an explicit storage method. Zlib
// still falls back to raw storage when compression does not shrink the
// payload.
func (b *Builder) AddWithMethod(name string, data []byte, method CompressionMethod) error {
	if !method.valid() {
		return fmt.Errorf("%w: method %s", ErrCompression, method)
	}
	return b.add(name, data, method, false)
}

func (b *Builder) add(name string, data []byte, method CompressionMethod, auto bool) error {
	if b.finalized {
		return ErrBuilderFinalized
	}
	if name == "" || strings.ContainsRune(name, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	sum := Checksum([]byte(name))
	if prev, exists := b.index[sum]; exists {
		return fmt.Errorf("%w: %q collides with %q (checksum %08x)",
			ErrDuplicateEntry, name, b.entries[prev].name, sum)
	}
	payload := make([]byte, len(data))
	copy(payload, data)
	b.index[sum] = len(b.entries)
	b.entries = append(b.entries, pendingEntry{
		name:     name,
		checksum: sum,
		content:  Digest(payload),
		data:     payload,
		method:   method,
		auto:     auto,
	})
	return nil
}

// Remove drops a pending entry by name. Later entries keep their relative
// order.
func (b *Builder) Remove(name string) error {
	if b.finalized {
		return ErrBuilderFinalized
	}
	sum := Checksum([]byte(name))
	i, ok := b.index[sum]
	if !ok {
		return fmt.Errorf("%w: %q", ErrEntryNotFound, name)
	}
	b.entries = append(b.entries[:i], b.entries[i+1:]...)
	delete(b.index, sum)
	for j := i; j < len(b.entries); j++ {
		b.index[b.entries[j].checksum] = j
	}
	return nil
}

// checkDataEnd rejects a data section ending at or past 1<<32: the header
// stores the record block offset (which equals the data section end) as a
// u32, so the largest addressable end is 1<<32 - 1.
func checkDataEnd(end uint64) error {
	if end >= maxArchiveSize {
		return fmt.Errorf("%w: data section ends at %d", ErrSizeOverflow, end)
	}
	return nil
}

// Finalize lays out the data section in insertion order, builds the record,
// name and digest blocks, and returns the complete archive as one byte
// slice. The Builder rejects further mutation afterwards.
func (b *Builder) Finalize() ([]byte, error) {
	if b.finalized {
		return nil, ErrBuilderFinalized
	}

	var data, names, digests bytes.Buffer
	recordsRaw := make([]byte, 0, len(b.entries)*recordSize)
	offset := uint64(headerSize)

	for i := range b.entries {
		e := &b.entries[i]
		method := e.method
		if e.auto {
			method = Zlib
		}
		method, stored, err := compress(e.data, method)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", e.name, err)
		}
		recordsRaw = appendRecord(recordsRaw, record{
			nameChecksum:     e.checksum,
			dataUncompressed: uint32(len(e.data)),
			dataOffset:       uint32(offset),
			dataCompression:  method,
			dataCompressed:   uint32(len(stored)),
			nameOffset:       uint32(names.Len()),
		})
		names.WriteString(e.name)
		names.WriteByte(0)
		digest := Digest(stored)
		digests.Write(digest[:])
		data.Write(stored)
		offset += uint64(len(stored))
		if err := checkDataEnd(offset); err != nil {
			return nil, err
		}
	}

	recordBlock, err := compressBlock(recordsRaw, b.opts.RecordCompression)
	if err != nil {
		return nil, fmt.Errorf("record block: %w", err)
	}
	nameBlock, err := compressBlock(names.Bytes(), b.opts.NameCompression)
	if err != nil {
		return nil, fmt.Errorf("name block: %w", err)
	}

	h := header{
		records:           uint32(len(b.entries)),
		recordStart:       uint32(offset),
		recordCompression: b.opts.RecordCompression,
		recordCompressed:  uint32(len(recordBlock)),
		nameCompression:   b.opts.NameCompression,
		nameCompressed:    uint32(len(nameBlock)),
		nameUncompressed:  uint32(names.Len()),
	}

	out := make([]byte, 0, headerSize+data.Len()+len(recordBlock)+len(nameBlock)+digests.Len())
	out = append(out, encodeHeader(h)...)
	out = append(out, data.Bytes()...)
	out = append(out, recordBlock...)
	out = append(out, nameBlock...)
	out = append(out, digests.Bytes()...)

	b.finalized = true
	b.entries = nil
	return out, nil
}

// WriteFile finalizes the archive and writes it to path via a temporary
// file in the same directory, renamed into place only after a successful
// write, so a crash mid-write never corrupts an existing archive.
func (b *Builder) WriteFile(path string) error {
	out, err := b.Finalize()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
