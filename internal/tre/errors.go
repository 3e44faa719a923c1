package tre

import (
	"errors"
	"fmt"
)

// Sentinel errors for archive operations. Use errors.Is in callers.
var (
	// ErrInvalidMagic means the file does not start with the TRE magic.
	ErrInvalidMagic = errors.New("not a TRE archive: bad magic")
	// ErrUnsupportedVersion means the version field is not understood.
	ErrUnsupportedVersion = errors.New("unsupported TRE version")
	// ErrCorruptIndex means records, names or digests are structurally
	// inconsistent with the header.
	ErrCorruptIndex = errors.New("corrupt archive index")
	// ErrChecksumMismatch means an entry's stored bytes do not match the
	// recorded digest.
	ErrChecksumMismatch = errors.New("entry checksum mismatch")
	// ErrCompression means a stored payload could not be decompressed or
	// its decompressed size disagrees with the record.
	ErrCompression = errors.New("invalid compressed data")
	// ErrDuplicateEntry means an added name collides with an existing
	// entry's name checksum.
	ErrDuplicateEntry = errors.New("duplicate entry name")
	// ErrEntryNotFound means no entry matches the requested name or index.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrInvalidName means an entry name is empty or contains a NUL byte.
	ErrInvalidName = errors.New("invalid entry name")
	// ErrBuilderFinalized means the builder was used after Finalize.
	ErrBuilderFinalized = errors.New("builder already finalized")
	// ErrSizeOverflow means the archive would exceed 4 GiB of addressable
	// data.
	ErrSizeOverflow = errors.New("archive size exceeds uint32 limit")
)

// ChecksumError reports a digest mismatch for one entry. It matches
// ErrChecksumMismatch under errors.Is.
type ChecksumError struct {
	Name   string
	Offset uint32
	Want   [digestSize]byte
	Got    [digestSize]byte
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("entry %q at offset %d: checksum mismatch (want %x, got %x)",
		e.Name, e.Offset, e.Want, e.Got)
}

func (e *ChecksumError) Unwrap() error { return ErrChecksumMismatch }

// IndexError reports a structurally invalid record. It matches
// ErrCorruptIndex under errors.Is.
type IndexError struct {
	Index  int
	Reason string
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("record %d: %s", e.Index, e.Reason)
}

func (e *IndexError) Unwrap() error { return ErrCorruptIndex }
