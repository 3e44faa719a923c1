package tre

import "crypto/md5"

// CRC-32/BZIP2: polynomial 0x04C11DB7, MSB-first, init and xorout 0xFFFFFFFF.
// hash/crc32 only implements reflected variants, so the table lives here.
var crcTable = makeCRCTable()

func makeCRCTable() [256]uint32 {
	var t [256]uint32
	for i := range t {
		c := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if c&0x80000000 != 0 {
				c = c<<1 ^ 0x04C11DB7
			} else {
				c <<= 1
			}
		}
		t[i] = c
	}
	return t
}

// Checksum computes the CRC-32/BZIP2 digest of data. Entry name checksums
// are this digest over the literal name bytes.
func Checksum(data []byte) uint32 {
	c := uint32(0xFFFFFFFF)
	for _, b := range data {
		c = c<<8 ^ crcTable[byte(c>>24)^b]
	}
	return ^c
}

// Digest computes the MD5 digest of data. The archive trailer stores one
// digest per entry over its stored bytes; the builder also uses it over the
// uncompressed payload as the entry's content identity.
func Digest(data []byte) [digestSize]byte {
	return md5.Sum(data)
}
