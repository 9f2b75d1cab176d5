// Package punchcard implements the packed record layout at the core of
// punchgo: a fixed 48-byte header followed by a variable-length bitset,
// one bit per claimable slot.
//
// The package operates zero-copy: Header and Bits are views over a
// caller-owned byte buffer, split once at construction into two
// non-overlapping regions. Because record bytes arrive from untrusted
// storage, FromBytes re-validates every structural invariant on each
// reconstruction; there is no unchecked path from raw bytes to a
// Punchcard.
//
// Record layout (little-endian):
//
//	offset 0,  32 bytes: authority address
//	offset 32,  8 bytes: capacity (uint64)
//	offset 40,  8 bytes: claimed (uint64)
//	offset 48,  N bytes: bitset, N = ceil(capacity/8), bit i at byte i/8 mask 1<<(i%8)
package punchcard
