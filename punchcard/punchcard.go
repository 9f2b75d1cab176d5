package punchcard

import "fmt"

// Punchcard binds a Header view and a Bits view over one contiguous
// record buffer. The buffer is split exactly once at HeaderLen; the two
// views cover disjoint regions and never re-alias the same bytes.
//
// A Punchcard is only obtained through FromBytes (validated) or
// Initialize (freshly written), so holding one implies the structural
// invariants held at construction time. Mutations go through Claim,
// which preserves them.
type Punchcard struct {
	Header Header
	Bits   Bits
}

// split divides a record buffer into header and bitset regions. It only
// checks that the header fits; bitset length validation is FromBytes's
// job (Initialize sizes the buffer itself).
func split(data []byte) (Header, []byte, error) {
	if len(data) < HeaderLen {
		return Header{}, nil, fmt.Errorf("%w: %d bytes, want at least %d", ErrInvalidRecordData, len(data), HeaderLen)
	}
	return Header{b: data[:HeaderLen]}, data[HeaderLen:], nil
}

// FromBytes constructs a validated Punchcard view over data.
//
// This is the sole gate through which raw external bytes become a
// trusted view; every operation on an existing record must pass through
// it. It fails with ErrInvalidRecordData if the buffer is shorter than
// the header, if the bitset region length does not equal
// ceil(capacity/8) for the capacity recorded in the header (truncated,
// oversized, or mismatched buffers), or if claimed exceeds capacity.
func FromBytes(data []byte) (Punchcard, error) {
	header, bits, err := split(data)
	if err != nil {
		return Punchcard{}, err
	}

	capacity := header.Capacity()
	want, ok := bitsetLen(capacity)
	if !ok {
		return Punchcard{}, fmt.Errorf("%w: capacity %d not representable", ErrInvalidRecordData, capacity)
	}
	if uint64(len(bits)) != want {
		return Punchcard{}, fmt.Errorf("%w: bitset length %d, want %d for capacity %d", ErrInvalidRecordData, len(bits), want, capacity)
	}
	if claimed := header.Claimed(); claimed > capacity {
		return Punchcard{}, fmt.Errorf("%w: claimed %d exceeds capacity %d", ErrInvalidRecordData, claimed, capacity)
	}

	return Punchcard{Header: header, Bits: Bits{b: bits}}, nil
}

// Initialize writes a fresh record into data: authority and capacity
// set, claimed zero, bitset zeroed. data must be exactly
// Space(capacity) bytes.
func Initialize(data []byte, authority Address, capacity uint64) (Punchcard, error) {
	space, err := Space(capacity)
	if err != nil {
		return Punchcard{}, err
	}
	if uint64(len(data)) != space {
		return Punchcard{}, fmt.Errorf("%w: buffer length %d, want %d for capacity %d", ErrInvalidRecordData, len(data), space, capacity)
	}

	header, bits, err := split(data)
	if err != nil {
		return Punchcard{}, err
	}
	header.SetAuthority(authority)
	header.SetCapacity(capacity)
	header.SetClaimed(0)
	clear(bits)

	return Punchcard{Header: header, Bits: Bits{b: bits}}, nil
}

// Claim transitions slot index from unclaimed to claimed and increments
// the claimed count. It fails with ErrAlreadyClaimed, mutating nothing,
// if the bit is already set. The reverse transition does not exist.
//
// Callers must ensure index < capacity before calling; Claim itself only
// consults the bit.
func (p Punchcard) Claim(index uint64) error {
	if p.Bits.Get(index) {
		return fmt.Errorf("%w: index %d", ErrAlreadyClaimed, index)
	}
	p.Bits.Set(index)
	p.Header.SetClaimed(p.Header.Claimed() + 1)
	return nil
}

// Full reports whether every slot has been claimed. A full record is
// eligible for reclamation by the lifecycle layer.
func (p Punchcard) Full() bool {
	return p.Header.Claimed() == p.Header.Capacity()
}
