package tre

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecksum(t *testing.T) {
	t.Parallel()

	// 0xFC891918 is the CRC-32/BZIP2 check value for "123456789".
	assert.Equal(t, uint32(0xFC891918), Checksum([]byte("123456789")))
	assert.Equal(t, uint32(0x00000000), Checksum(nil))

	// Name checksums as stored by the game's own archives.
	assert.Equal(t, uint32(0x527E30AA), Checksum([]byte("hello.txt")))
	assert.Equal(t, uint32(0xD8B06EDE), Checksum([]byte("world.txt")))
}

func TestDigest(t *testing.T) {
	t.Parallel()

	assert.Equal(t, [16]byte{
		0xD4, 0x1D, 0x8C, 0xD9, 0x8F, 0x00, 0xB2, 0x04,
		0xE9, 0x80, 0x09, 0x98, 0xEC, 0xF8, 0x42, 0x7E,
	}, Digest(nil))

	assert.Equal(t, [16]byte{
		0xB1, 0x0A, 0x8D, 0xB1, 0x64, 0xE0, 0x75, 0x41,
		0x05, 0xB7, 0xA9, 0x9B, 0xE7, 0x2E, 0x3F, 0xE5,
	}, Digest([]byte("Hello World")))
}
