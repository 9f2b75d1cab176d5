package punchcard

import (
	"encoding/binary"
	"math"
)

// Address is a 32-byte identity, matching the address width of the
// backing ledger.
type Address [32]byte

const (
	// HeaderLen is the fixed size of the record header in bytes.
	HeaderLen = 48

	authorityOffset = 0
	capacityOffset  = 32
	claimedOffset   = 40
)

// bitsetLen returns ceil(capacity/8), or false if the computation would
// wrap around uint64.
func bitsetLen(capacity uint64) (uint64, bool) {
	if capacity > math.MaxUint64-7 {
		return 0, false
	}
	return (capacity + 7) / 8, true
}

// Space returns the total record size in bytes required to store a
// punchcard with the given capacity: HeaderLen + ceil(capacity/8).
//
// It returns ErrInvalidCapacity if either the bitset length or the total
// would overflow uint64. Space is total over all inputs and has no side
// effects.
func Space(capacity uint64) (uint64, error) {
	n, ok := bitsetLen(capacity)
	if !ok || n > math.MaxUint64-HeaderLen {
		return 0, ErrInvalidCapacity
	}
	return HeaderLen + n, nil
}

// Header is a zero-copy view over the first HeaderLen bytes of a record.
// All multi-byte fields are little-endian.
type Header struct {
	b []byte // exactly HeaderLen bytes
}

// Authority returns the address permitted to claim slots.
func (h Header) Authority() (a Address) {
	copy(a[:], h.b[authorityOffset:authorityOffset+32])
	return a
}

// SetAuthority records the claiming authority.
func (h Header) SetAuthority(a Address) {
	copy(h.b[authorityOffset:authorityOffset+32], a[:])
}

// Capacity returns the fixed slot count.
func (h Header) Capacity() uint64 {
	return binary.LittleEndian.Uint64(h.b[capacityOffset : capacityOffset+8])
}

// SetCapacity writes the slot count. Capacity is fixed at creation and
// never mutated afterward.
func (h Header) SetCapacity(v uint64) {
	binary.LittleEndian.PutUint64(h.b[capacityOffset:capacityOffset+8], v)
}

// Claimed returns the number of slots claimed so far.
func (h Header) Claimed() uint64 {
	return binary.LittleEndian.Uint64(h.b[claimedOffset : claimedOffset+8])
}

// SetClaimed writes the claimed count.
func (h Header) SetClaimed(v uint64) {
	binary.LittleEndian.PutUint64(h.b[claimedOffset:claimedOffset+8], v)
}
