// Package stf reads and writes STF string table files, which map string
// identifiers to localized UTF-16 text.
//
// Layout (little-endian): a 0x0000ABCD magic, a flag byte, the next free
// id, and an entry count, followed by a value table (id, 0xFFFFFFFF
// marker, UTF-16 code units) and a name table (id, ASCII name bytes).
// Names and values are joined by id.
package stf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"unicode/utf16"
)

const magic = 0x0000ABCD

// ErrInvalidTable means the data does not parse as a string table.
var ErrInvalidTable = errors.New("invalid string table")

// StringTable maps entry names to their localized text.
type StringTable map[string]string

// Decode parses a string table from data.
func Decode(data []byte) (StringTable, error) {
	c := cursor{data: data}

	if m, err := c.uint32(); err != nil {
		return nil, err
	} else if m != magic {
		return nil, fmt.Errorf("%w: magic %08x", ErrInvalidTable, m)
	}
	if _, err := c.uint8(); err != nil { // flag
		return nil, err
	}
	if _, err := c.uint32(); err != nil { // next free id
		return nil, err
	}
	count, err := c.uint32()
	if err != nil {
		return nil, err
	}

	values := make(map[uint32]string, count)
	for i := uint32(0); i < count; i++ {
		id, err := c.uint32()
		if err != nil {
			return nil, err
		}
		if _, err := c.uint32(); err != nil { // 0xFFFFFFFF marker
			return nil, err
		}
		runes, err := c.uint32()
		if err != nil {
			return nil, err
		}
		// Claimed counts are untrusted: reserve the raw bytes first so an
		// oversized count fails the bounds check instead of allocating.
		raw, err := c.take(int(runes) * 2)
		if err != nil {
			return nil, err
		}
		units := make([]uint16, runes)
		for j := range units {
			units[j] = binary.LittleEndian.Uint16(raw[2*j:])
		}
		values[id] = string(utf16.Decode(units))
	}

	table := make(StringTable, count)
	for i := uint32(0); i < count; i++ {
		id, err := c.uint32()
		if err != nil {
			return nil, err
		}
		size, err := c.uint32()
		if err != nil {
			return nil, err
		}
		name, err := c.take(int(size))
		if err != nil {
			return nil, err
		}
		if value, ok := values[id]; ok {
			table[string(name)] = value
		}
	}

	return table, nil
}

// Encode serializes the table. Entries are written in sorted name order
// with ids assigned sequentially, so output is deterministic.
func Encode(table StringTable) []byte {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	le := binary.LittleEndian
	var scratch [4]byte

	u32 := func(v uint32) {
		le.PutUint32(scratch[:], v)
		buf.Write(scratch[:])
	}

	u32(magic)
	buf.WriteByte(0)
	u32(uint32(len(names)) + 1)
	u32(uint32(len(names)))

	for i, name := range names {
		u32(uint32(i) + 1)
		u32(0xFFFFFFFF)
		units := utf16.Encode([]rune(table[name]))
		u32(uint32(len(units)))
		for _, u := range units {
			le.PutUint16(scratch[:2], u)
			buf.Write(scratch[:2])
		}
	}
	for i, name := range names {
		u32(uint32(i) + 1)
		u32(uint32(len(name)))
		buf.WriteString(name)
	}

	return buf.Bytes()
}

// cursor is a bounds-checked reader over a byte slice.
type cursor struct {
	data []byte
	pos  int
}

func (c *cursor) take(n int) ([]byte, error) {
	if n < 0 || c.pos+n > len(c.data) {
		return nil, fmt.Errorf("%w: truncated at byte %d", ErrInvalidTable, c.pos)
	}
	out := c.data[c.pos : c.pos+n]
	c.pos += n
	return out, nil
}

func (c *cursor) uint8() (uint8, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *cursor) uint32() (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}
