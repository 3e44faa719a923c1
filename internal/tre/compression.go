package tre

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// deflate compresses data as a zlib stream at the default level. The level
// is fixed so that identical input always yields identical output.
func deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, zlib.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// compress encodes data with the requested method. Zlib falls back to None
// when compression does not shrink the payload, so stored size never exceeds
// the original; the returned method reflects what was actually stored.
func compress(data []byte, method CompressionMethod) (CompressionMethod, []byte, error) {
	switch method {
	case None:
		return None, data, nil
	case Zlib:
		packed, err := deflate(data)
		if err != nil {
			return None, nil, err
		}
		if len(packed) >= len(data) {
			return None, data, nil
		}
		return Zlib, packed, nil
	default:
		return None, nil, fmt.Errorf("%w: method %s", ErrCompression, method)
	}
}

// decompress inverts compress, failing if the method is unrecognized or the
// decompressed length disagrees with expectedSize.
func decompress(method CompressionMethod, stored []byte, expectedSize int) ([]byte, error) {
	switch method {
	case None:
		if len(stored) != expectedSize {
			return nil, fmt.Errorf("%w: raw block is %d bytes, want %d", ErrCompression, len(stored), expectedSize)
		}
		out := make([]byte, expectedSize)
		copy(out, stored)
		return out, nil
	case Zlib:
		zr, err := zlib.NewReader(bytes.NewReader(stored))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCompression, err)
		}
		defer zr.Close()
		out := make([]byte, expectedSize)
		if _, err := io.ReadFull(zr, out); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCompression, err)
		}
		// The stream must end exactly at expectedSize.
		var extra [1]byte
		if n, _ := zr.Read(extra[:]); n != 0 {
			return nil, fmt.Errorf("%w: inflated size exceeds recorded %d bytes", ErrCompression, expectedSize)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: method %s", ErrCompression, method)
	}
}

// compressBlock encodes a metadata block (records or names) with an explicit
// method, without the store-if-not-smaller fallback: block compression is a
// caller choice recorded in the header.
func compressBlock(data []byte, method CompressionMethod) ([]byte, error) {
	switch method {
	case None:
		return data, nil
	case Zlib:
		return deflate(data)
	default:
		return nil, fmt.Errorf("%w: method %s", ErrCompression, method)
	}
}
