package punchgo

import "errors"

// Host-boundary errors: detected before the punchcard core runs, or
// while driving the ledger. Ledger failures (ErrAccountNotFound,
// ErrInsufficientFunds, ...) propagate unchanged.
var (
	// ErrNotEnoughAccounts is returned when an invocation supplies fewer
	// accounts than the instruction requires.
	ErrNotEnoughAccounts = errors.New("not enough accounts")

	// ErrMissingSignature is returned when a required signer account is
	// not marked as having signed.
	ErrMissingSignature = errors.New("missing required signature")

	// ErrIncorrectProgram is returned when the target record is not owned
	// by this program, a defense against parsing unrelated account data.
	ErrIncorrectProgram = errors.New("record not owned by program")

	// ErrInvalidInstructionData is returned when an instruction payload
	// cannot be decoded.
	ErrInvalidInstructionData = errors.New("invalid instruction data")
)

// Domain errors surfaced by claim processing. Structural corruption is
// reported separately as punchcard.ErrInvalidRecordData, and capacity
// overflow at creation as punchcard.ErrInvalidCapacity; both pass
// through verbatim.
var (
	// ErrInvalidAuthority is returned when the signing identity does not
	// match the authority recorded in the punchcard header.
	ErrInvalidAuthority = errors.New("invalid authority")

	// ErrIndexOutOfBounds is returned when a claim index is not below the
	// record capacity.
	ErrIndexOutOfBounds = errors.New("claim index out of bounds")
)
