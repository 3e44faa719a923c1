// Package tre reads and writes TRE resource archives, the container format
// used to ship game assets (textures, datatables, scripts) as named blobs
// inside a single file.
//
// On-disk layout, all integers little-endian:
//
//	| Section     | Content                                              |
//	|-------------|------------------------------------------------------|
//	| Header      | magic "TREE", version "0005", record count, offsets  |
//	| DataSection | stored (raw or zlib) bytes of every entry            |
//	| RecordBlock | one 24-byte record per entry, optionally zlib'd      |
//	| NameBlock   | NUL-terminated entry names, optionally zlib'd        |
//	| DigestBlock | 16-byte MD5 of each entry's stored bytes             |
//
// Each record carries a CRC-32/BZIP2 checksum of the entry's literal name,
// which doubles as the entry's lookup key, the uncompressed and stored sizes,
// the compression method, the absolute data offset, and the offset of the
// name inside the name block.
//
// An Archive parses the header, records, names and digests once on open and
// then serves extractions with independent positioned reads, so a single
// Archive is safe for concurrent extraction. A Builder accumulates named
// payloads in insertion order and serializes a complete archive on Finalize;
// building the same entries in the same order always produces identical
// bytes.
package tre
