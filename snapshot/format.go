// Package snapshot provides point-in-time dump and restore of a ledger
// to a blob store.
//
// File layout:
//
//	header (12 bytes): magic, version, codec, level, reserved
//	payload: account table, compressed per the header codec
//	trailer (4 bytes): CRC32 of the encoded payload
//
// The account table is a uint64 count followed by fixed-prefix records
// (address, owner, balance, data length, data), addresses in ascending
// order so the same ledger always encodes to the same bytes.
package snapshot

import (
	"errors"
	"hash/crc32"
)

const (
	// MagicNumber identifies punchgo snapshot files (ASCII: "PGS0").
	MagicNumber = 0x50475330
	// Version is the current file format version.
	Version = 0x0001

	headerLen  = 12
	trailerLen = 4
)

// Compression codec ids, stored in the header flags field.
const (
	CodecNone uint16 = 0
	CodecZstd uint16 = 1
	CodecLZ4  uint16 = 2
)

var (
	ErrInvalidMagic   = errors.New("snapshot: invalid magic number")
	ErrInvalidVersion = errors.New("snapshot: unsupported version")
	ErrInvalidCodec   = errors.New("snapshot: unknown compression codec")
	ErrChecksum       = errors.New("snapshot: checksum mismatch")
	ErrTruncated      = errors.New("snapshot: truncated file")
)

// CRC32 uses the IEEE polynomial. Fast, hardware-accelerated, and
// good enough for detecting storage corruption; it is not a tamper
// seal.
var crcTable = crc32.MakeTable(crc32.IEEE)

// Header is the fixed-size prefix of every snapshot file.
type Header struct {
	Magic   uint32
	Version uint16
	Codec   uint16 // compression codec id
	Level   uint8  // codec-specific compression level
}

// Validate checks that the header describes a snapshot this package
// can read.
func (h Header) Validate() error {
	if h.Magic != MagicNumber {
		return ErrInvalidMagic
	}
	if h.Version != Version {
		return ErrInvalidVersion
	}
	switch h.Codec {
	case CodecNone, CodecZstd, CodecLZ4:
		return nil
	default:
		return ErrInvalidCodec
	}
}
