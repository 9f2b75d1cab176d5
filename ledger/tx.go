package ledger

import (
	"fmt"
	"math"
)

// txBackend reads committed account state for a transaction.
type txBackend interface {
	// load returns a private copy of the committed account at addr.
	load(addr Address) (*Account, bool)
}

// Tx is a copy-on-write transaction over a Store. Reads pull private
// copies of committed accounts; writes stay local until the store
// commits them as one unit. A Tx is only valid inside the Execute call
// that produced it and must not be used from other goroutines.
type Tx struct {
	backend txBackend
	rent    Rent

	// touched maps addresses to their transaction-local state. A nil
	// entry marks deletion at commit.
	touched map[Address]*Account
}

func newTx(backend txBackend, rent Rent) *Tx {
	return &Tx{
		backend: backend,
		rent:    rent,
		touched: make(map[Address]*Account),
	}
}

func (tx *Tx) lookup(addr Address) (*Account, bool) {
	if acct, ok := tx.touched[addr]; ok {
		return acct, acct != nil
	}
	acct, ok := tx.backend.load(addr)
	if !ok {
		return nil, false
	}
	tx.touched[addr] = acct
	return acct, true
}

// Account returns the transaction-local state of addr. Mutations to the
// returned account (including its Data) become visible only at commit.
func (tx *Tx) Account(addr Address) (*Account, error) {
	acct, ok := tx.lookup(addr)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
	}
	return acct, nil
}

// Exists reports whether addr holds an account in this transaction's
// view.
func (tx *Tx) Exists(addr Address) bool {
	_, ok := tx.lookup(addr)
	return ok
}

// CreateAccount allocates a zeroed account of the given data size at
// addr, owned by owner, funded by debiting funder the rent minimum for
// that size. It fails if addr already holds an account, if the size is
// not allocatable, or if funder cannot cover the deposit.
func (tx *Tx) CreateAccount(addr, owner Address, size uint64, funder Address) error {
	if tx.Exists(addr) {
		return fmt.Errorf("%w: %s", ErrAccountExists, addr)
	}
	if size > math.MaxInt {
		return fmt.Errorf("%w: %d bytes", ErrAccountTooLarge, size)
	}

	deposit := tx.rent.MinimumBalance(size)
	payer, err := tx.Account(funder)
	if err != nil {
		return err
	}
	if payer.Balance < deposit {
		return fmt.Errorf("%w: deposit %d, funder %s holds %d", ErrInsufficientFunds, deposit, funder, payer.Balance)
	}

	payer.Balance -= deposit
	tx.touched[addr] = &Account{
		Owner:   owner,
		Balance: deposit,
		Data:    make([]byte, size),
	}
	return nil
}

// Transfer moves amount from one account's balance to another's.
func (tx *Tx) Transfer(from, to Address, amount uint64) error {
	src, err := tx.Account(from)
	if err != nil {
		return err
	}
	if src.Balance < amount {
		return fmt.Errorf("%w: transfer %d, %s holds %d", ErrInsufficientFunds, amount, from, src.Balance)
	}
	dst, err := tx.Account(to)
	if err != nil {
		return err
	}

	src.Balance -= amount
	dst.Balance += amount
	return nil
}

// Credit adds amount to an account's balance, creating a system-owned
// account if none exists. Used to seed funders.
func (tx *Tx) Credit(addr Address, amount uint64) {
	acct, ok := tx.lookup(addr)
	if !ok {
		acct = &Account{}
		tx.touched[addr] = acct
	}
	acct.Balance += amount
}

// Close deletes the account at addr, reclaiming its storage. Any
// remaining balance is forfeited; callers transfer the deposit out
// first.
func (tx *Tx) Close(addr Address) error {
	if !tx.Exists(addr) {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
	}
	tx.touched[addr] = nil
	return nil
}
