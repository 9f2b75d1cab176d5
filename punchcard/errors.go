package punchcard

import "errors"

var (
	// ErrInvalidRecordData indicates a buffer that is not a well-formed
	// punchcard record: too short for the header, a bitset region whose
	// length does not match the header capacity, or a claimed count
	// exceeding capacity. Structural corruption is never retried; it means
	// the buffer does not represent a punchcard at all.
	ErrInvalidRecordData = errors.New("invalid punchcard record data")

	// ErrInvalidCapacity is returned when the storage size for a capacity
	// cannot be represented (the bitset length or total size computation
	// would overflow).
	ErrInvalidCapacity = errors.New("invalid capacity")

	// ErrAlreadyClaimed is returned when claiming a slot whose bit is
	// already set. The record is left unchanged.
	ErrAlreadyClaimed = errors.New("slot already claimed")
)
