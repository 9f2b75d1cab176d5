package punchgo

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Instruction wire format, compatible with the original borsh encoding:
// a 1-byte enum tag followed by the variant payload, little-endian.
//
//	Create: [0x00][capacity:8]
//	Claim:  [0x01][count:4][indices:count*8]
//
// Payloads must be exact-length; trailing bytes are rejected.
const (
	tagCreate = 0x00
	tagClaim  = 0x01
)

// Instruction is a decoded operation payload.
type Instruction interface {
	isInstruction()
}

// CreateInstruction allocates and initializes a new punchcard record.
type CreateInstruction struct {
	Capacity uint64
}

func (CreateInstruction) isInstruction() {}

// ClaimInstruction claims an ordered batch of slot indices.
type ClaimInstruction struct {
	Indices []uint64
}

func (ClaimInstruction) isInstruction() {}

// DecodeInstruction parses an instruction payload. Malformed payloads
// (unknown tag, truncated fields, trailing bytes) fail with
// ErrInvalidInstructionData.
func DecodeInstruction(data []byte) (Instruction, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidInstructionData)
	}

	tag, body := data[0], data[1:]
	switch tag {
	case tagCreate:
		if len(body) != 8 {
			return nil, fmt.Errorf("%w: create payload is %d bytes, want 8", ErrInvalidInstructionData, len(body))
		}
		return CreateInstruction{Capacity: binary.LittleEndian.Uint64(body)}, nil

	case tagClaim:
		if len(body) < 4 {
			return nil, fmt.Errorf("%w: claim payload is %d bytes, want at least 4", ErrInvalidInstructionData, len(body))
		}
		count := binary.LittleEndian.Uint32(body)
		body = body[4:]
		if uint64(len(body)) != uint64(count)*8 {
			return nil, fmt.Errorf("%w: claim payload carries %d bytes for %d indices", ErrInvalidInstructionData, len(body), count)
		}
		indices := make([]uint64, count)
		for i := range indices {
			indices[i] = binary.LittleEndian.Uint64(body[i*8:])
		}
		return ClaimInstruction{Indices: indices}, nil

	default:
		return nil, fmt.Errorf("%w: unknown tag %#x", ErrInvalidInstructionData, tag)
	}
}

// EncodeInstruction serializes an instruction to its wire form.
func EncodeInstruction(inst Instruction) ([]byte, error) {
	switch inst := inst.(type) {
	case CreateInstruction:
		buf := make([]byte, 9)
		buf[0] = tagCreate
		binary.LittleEndian.PutUint64(buf[1:], inst.Capacity)
		return buf, nil

	case ClaimInstruction:
		if len(inst.Indices) > math.MaxUint32 {
			return nil, fmt.Errorf("%w: %d indices exceed the wire limit", ErrInvalidInstructionData, len(inst.Indices))
		}
		buf := make([]byte, 5+len(inst.Indices)*8)
		buf[0] = tagClaim
		binary.LittleEndian.PutUint32(buf[1:], uint32(len(inst.Indices)))
		for i, index := range inst.Indices {
			binary.LittleEndian.PutUint64(buf[5+i*8:], index)
		}
		return buf, nil

	default:
		return nil, fmt.Errorf("%w: unsupported instruction %T", ErrInvalidInstructionData, inst)
	}
}
