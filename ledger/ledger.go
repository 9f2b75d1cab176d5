package ledger

import (
	"context"
	"encoding/hex"
	"errors"
)

var (
	// ErrAccountNotFound is returned when an address has no account.
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountExists is returned when creating an account at an address
	// that already holds one.
	ErrAccountExists = errors.New("account already exists")

	// ErrInsufficientFunds is returned when a debit exceeds the payer's
	// balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrAccountTooLarge is returned when a requested account size cannot
	// be allocated.
	ErrAccountTooLarge = errors.New("account size too large")

	// ErrStoreClosed is returned when operations are attempted on a
	// closed store.
	ErrStoreClosed = errors.New("ledger store is closed")
)

// Address is a 32-byte account key.
type Address [32]byte

// String returns the hex encoding of the address.
func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// Account is one ledger record: an owner program, a deposit balance
// funding its storage, and an opaque data buffer.
type Account struct {
	Owner   Address
	Balance uint64
	Data    []byte
}

// Store is transactional access to accounts.
//
// Implementations must serialize Execute calls with respect to each
// other and commit a transaction's effects atomically: if fn returns an
// error, no mutation becomes visible.
type Store interface {
	// Execute runs fn against a transaction and commits its effects if fn
	// returns nil. Any error from fn aborts the transaction unchanged and
	// is returned verbatim.
	Execute(ctx context.Context, fn func(tx *Tx) error) error

	// View runs fn read-only against the current committed state of the
	// account at addr. fn must not retain the account or its data.
	View(ctx context.Context, addr Address, fn func(acct *Account) error) error

	// Balance returns the committed balance of addr.
	Balance(ctx context.Context, addr Address) (uint64, error)

	// Exists reports whether an account exists at addr.
	Exists(ctx context.Context, addr Address) (bool, error)
}
