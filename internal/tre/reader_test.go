package tre

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// compressedEntryArchive stores hello.txt as a zlib stream produced by a
// foreign writer, to prove extraction does not depend on our own encoder.
var compressedEntryArchive = []byte{
	// Header
	0x45, 0x45, 0x52, 0x54, 0x35, 0x30, 0x30, 0x30,
	0x01, 0x00, 0x00, 0x00,
	0x37, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00,
	0x18, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00,
	0x0A, 0x00, 0x00, 0x00,
	0x0A, 0x00, 0x00, 0x00,
	// Data (zlib "Hello World")
	0x78, 0x9C, 0xF3, 0x48, 0xCD, 0xC9, 0xC9, 0x57,
	0x08, 0xCF, 0x2F, 0xCA, 0x49, 0x01, 0x00, 0x18,
	0x0B, 0x04, 0x1D,
	// Records
	0xAA, 0x30, 0x7E, 0x52,
	0x0B, 0x00, 0x00, 0x00,
	0x24, 0x00, 0x00, 0x00,
	0x02, 0x00, 0x00, 0x00,
	0x13, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00,
	// Names
	0x68, 0x65, 0x6C, 0x6C, 0x6F, 0x2E, 0x74, 0x78, 0x74, 0x00,
	// Digests
	0xED, 0xCF, 0xD4, 0xB0, 0xFA, 0x56, 0xDA, 0x3B,
	0x9C, 0x65, 0x20, 0xFB, 0x8B, 0x79, 0x75, 0x61,
}

func openBytes(t *testing.T, buf []byte) *Archive {
	t.Helper()
	a, err := Open(bytes.NewReader(buf), int64(len(buf)))
	require.NoError(t, err)
	return a
}

func TestOpenEmpty(t *testing.T) {
	t.Parallel()

	a := openBytes(t, emptyArchive)
	assert.Equal(t, 0, a.Len())
	assert.Empty(t, a.Entries())
	assert.NoError(t, a.VerifyAll())
}

func TestOpenSingleRawEntry(t *testing.T) {
	t.Parallel()

	a := openBytes(t, singleEntryArchive)
	require.Equal(t, 1, a.Len())

	e, ok := a.ByName("hello.txt")
	require.True(t, ok)
	assert.Equal(t, uint32(0x527E30AA), e.NameChecksum)
	assert.Equal(t, uint32(36), e.Offset)
	assert.Equal(t, uint32(11), e.UncompressedSize)
	assert.Equal(t, None, e.Method)
	assert.False(t, e.IsCompressed())

	data, err := a.Extract("hello.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("Hello World"), data)
}

func TestOpenTwoRawEntries(t *testing.T) {
	t.Parallel()

	a := openBytes(t, twoEntryArchive)
	require.Equal(t, 2, a.Len())

	entries := a.Entries()
	assert.Equal(t, "hello.txt", entries[0].Name)
	assert.Equal(t, "world.txt", entries[1].Name)

	data, err := a.ExtractIndex(1)
	require.NoError(t, err)
	assert.Equal(t, []byte("World Hello"), data)

	data, err = a.ExtractChecksum(0x527E30AA)
	require.NoError(t, err)
	assert.Equal(t, []byte("Hello World"), data)
}

func TestExtractForeignCompressedEntry(t *testing.T) {
	t.Parallel()

	a := openBytes(t, compressedEntryArchive)
	e, ok := a.ByName("hello.txt")
	require.True(t, ok)
	assert.Equal(t, Zlib, e.Method)
	assert.True(t, e.IsCompressed())

	data, err := a.Extract("hello.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("Hello World"), data)
}

func TestExtractNotFound(t *testing.T) {
	t.Parallel()

	a := openBytes(t, singleEntryArchive)

	_, err := a.Extract("missing")
	assert.ErrorIs(t, err, ErrEntryNotFound)

	_, err = a.ExtractChecksum(0xDEADBEEF)
	assert.ErrorIs(t, err, ErrEntryNotFound)

	_, err = a.ExtractIndex(5)
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	payloads := map[string][]byte{
		"a.txt":         []byte("hello"),
		"b.txt":         []byte("world"),
		"c.dat":         bytes.Repeat([]byte{0}, 10000),
		"nested/d.bin":  {0x00, 0x01, 0x02, 0xFF},
		"empty.marker":  {},
		"texture/e.dds": bytes.Repeat([]byte("abcd"), 4096),
	}
	order := []string{"a.txt", "b.txt", "c.dat", "nested/d.bin", "empty.marker", "texture/e.dds"}

	b := NewBuilder(DefaultBuilderOptions())
	for _, name := range order {
		require.NoError(t, b.Add(name, payloads[name]))
	}
	out, err := b.Finalize()
	require.NoError(t, err)

	a := openBytes(t, out)
	require.Equal(t, len(order), a.Len())
	require.NoError(t, a.VerifyAll())

	for i, e := range a.Entries() {
		assert.Equal(t, order[i], e.Name, "entries keep insertion order")
	}
	for _, name := range order {
		data, err := a.Extract(name)
		require.NoError(t, err, name)
		assert.Equal(t, payloads[name], data, name)
	}
}

func TestScenario(t *testing.T) {
	t.Parallel()

	b := NewBuilder(DefaultBuilderOptions())
	require.NoError(t, b.Add("a.txt", []byte("hello")))
	require.NoError(t, b.Add("b.txt", []byte("world")))
	require.NoError(t, b.Add("c.dat", make([]byte, 10000)))
	out, err := b.Finalize()
	require.NoError(t, err)

	a := openBytes(t, out)
	assert.Equal(t, 3, a.Len())

	data, err := a.Extract("b.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("world"), data)

	// 10000 zero bytes compress well, so c.dat must be stored deflated
	// and still extract to the original payload.
	e, ok := a.ByName("c.dat")
	require.True(t, ok)
	assert.Equal(t, Zlib, e.Method)
	assert.Less(t, e.CompressedSize, e.UncompressedSize)

	data, err = a.Extract("c.dat")
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 10000), data)

	_, err = a.Extract("missing")
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestCorruptionDetection(t *testing.T) {
	t.Parallel()

	b := NewBuilder(DefaultBuilderOptions())
	require.NoError(t, b.Add("a.txt", []byte("hello")))
	require.NoError(t, b.Add("b.txt", []byte("world")))
	require.NoError(t, b.Add("c.dat", make([]byte, 10000)))
	out, err := b.Finalize()
	require.NoError(t, err)

	clean := openBytes(t, out)
	target, ok := clean.ByName("b.txt")
	require.True(t, ok)

	corrupted := append([]byte(nil), out...)
	corrupted[target.Offset] ^= 0x01

	a := openBytes(t, corrupted)

	_, err = a.Extract("b.txt")
	assert.ErrorIs(t, err, ErrChecksumMismatch)
	var cerr *ChecksumError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "b.txt", cerr.Name)
	assert.Equal(t, target.Offset, cerr.Offset)

	// The other entries stay extractable.
	data, err := a.Extract("a.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
	data, err = a.Extract("c.dat")
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 10000), data)

	err = a.VerifyAll()
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestOpenRejectsCorruptStructures(t *testing.T) {
	t.Parallel()

	// Truncated digest block.
	_, err := Open(bytes.NewReader(singleEntryArchive[:len(singleEntryArchive)-4]), int64(len(singleEntryArchive)-4))
	assert.ErrorIs(t, err, ErrCorruptIndex)

	// Record data range escaping the data section.
	overrun := append([]byte(nil), singleEntryArchive...)
	overrun[36+11+16] = 0xFF // compressed size field of the only record
	_, err = Open(bytes.NewReader(overrun), int64(len(overrun)))
	assert.ErrorIs(t, err, ErrCorruptIndex)

	// Name checksum disagreeing with the stored name.
	renamed := append([]byte(nil), singleEntryArchive...)
	renamed[36+11+24] = 'j' // first byte of "hello.txt" in the name block
	_, err = Open(bytes.NewReader(renamed), int64(len(renamed)))
	assert.ErrorIs(t, err, ErrCorruptIndex)
}

func TestOpenRejectsOversizedMetadataClaims(t *testing.T) {
	t.Parallel()

	// A record block size far past the end of the source must fail
	// before any buffer is sized from the header field.
	big := append([]byte(nil), singleEntryArchive...)
	binary.LittleEndian.PutUint32(big[20:], 0x7FFFFFFF)
	_, err := Open(bytes.NewReader(big), int64(len(big)))
	assert.ErrorIs(t, err, ErrCorruptIndex)

	// Same for an entry count whose digest block could not fit.
	many := append([]byte(nil), singleEntryArchive...)
	binary.LittleEndian.PutUint32(many[8:], 0x10000000)
	_, err = Open(bytes.NewReader(many), int64(len(many)))
	assert.ErrorIs(t, err, ErrCorruptIndex)
}

func TestConcurrentExtraction(t *testing.T) {
	t.Parallel()

	b := NewBuilder(DefaultBuilderOptions())
	require.NoError(t, b.Add("a.txt", []byte("hello")))
	require.NoError(t, b.Add("c.dat", bytes.Repeat([]byte{7}, 4096)))
	out, err := b.Finalize()
	require.NoError(t, err)

	a := openBytes(t, out)

	done := make(chan error, 16)
	for i := 0; i < 16; i++ {
		name := "a.txt"
		if i%2 == 0 {
			name = "c.dat"
		}
		go func(name string) {
			_, err := a.Extract(name)
			done <- err
		}(name)
	}
	for i := 0; i < 16; i++ {
		assert.NoError(t, <-done)
	}
}
