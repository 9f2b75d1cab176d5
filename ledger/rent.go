package ledger

import "math"

// Rent is the deposit policy for account storage: an account must hold
// at least MinimumBalance for its data size, and the deposit is
// returned when the account is closed.
type Rent struct {
	// BaseFee is charged per account regardless of size.
	BaseFee uint64
	// FeePerByte is charged per data byte.
	FeePerByte uint64
}

// DefaultRent is the policy used when a store is not configured with an
// explicit one.
var DefaultRent = Rent{
	BaseFee:    890880,
	FeePerByte: 6960,
}

// MinimumBalance returns the deposit required for an account of the
// given data size. On arithmetic overflow it saturates at MaxUint64,
// which no funder can pay, so oversized allocations fail at the debit.
func (r Rent) MinimumBalance(size uint64) uint64 {
	if r.FeePerByte != 0 && size > (math.MaxUint64-r.BaseFee)/r.FeePerByte {
		return math.MaxUint64
	}
	return r.BaseFee + size*r.FeePerByte
}
