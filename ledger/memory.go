package ledger

import (
	"context"
	"errors"
	"sync"
)

// MemoryStore is an in-memory Store. A single mutex serializes all
// transactions, standing in for the per-record mutual exclusion the
// original host environment provided. Thread-safe.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[Address]*Account
	rent     Rent
	closed   bool
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithRent overrides the deposit policy (default DefaultRent).
func WithRent(rent Rent) MemoryStoreOption {
	return func(s *MemoryStore) {
		s.rent = rent
	}
}

// NewMemoryStore creates an empty in-memory account store.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		accounts: make(map[Address]*Account),
		rent:     DefaultRent,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// load implements txBackend. Callers hold s.mu.
func (s *MemoryStore) load(addr Address) (*Account, bool) {
	acct, ok := s.accounts[addr]
	if !ok {
		return nil, false
	}
	data := make([]byte, len(acct.Data))
	copy(data, acct.Data)
	return &Account{Owner: acct.Owner, Balance: acct.Balance, Data: data}, true
}

// Execute implements Store. The transaction runs under the store lock;
// effects of fn are committed together on success and discarded
// entirely on error.
func (s *MemoryStore) Execute(ctx context.Context, fn func(tx *Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	tx := newTx(s, s.rent)
	if err := fn(tx); err != nil {
		return err
	}

	for addr, acct := range tx.touched {
		if acct == nil {
			delete(s.accounts, addr)
			continue
		}
		s.accounts[addr] = acct
	}
	return nil
}

// View implements Store.
func (s *MemoryStore) View(ctx context.Context, addr Address, fn func(acct *Account) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrStoreClosed
	}

	acct, ok := s.accounts[addr]
	if !ok {
		return ErrAccountNotFound
	}
	return fn(acct)
}

// Balance implements Store.
func (s *MemoryStore) Balance(ctx context.Context, addr Address) (uint64, error) {
	var balance uint64
	err := s.View(ctx, addr, func(acct *Account) error {
		balance = acct.Balance
		return nil
	})
	return balance, err
}

// Exists implements Store.
func (s *MemoryStore) Exists(ctx context.Context, addr Address) (bool, error) {
	err := s.View(ctx, addr, func(*Account) error { return nil })
	if errors.Is(err, ErrAccountNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Accounts returns a deep copy of all committed accounts, for snapshot
// and inspection tooling.
func (s *MemoryStore) Accounts(ctx context.Context) (map[Address]Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	out := make(map[Address]Account, len(s.accounts))
	for addr, acct := range s.accounts {
		data := make([]byte, len(acct.Data))
		copy(data, acct.Data)
		out[addr] = Account{Owner: acct.Owner, Balance: acct.Balance, Data: data}
	}
	return out, nil
}

// Restore replaces the store's contents with the given accounts, used
// when loading a snapshot.
func (s *MemoryStore) Restore(ctx context.Context, accounts map[Address]Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	s.accounts = make(map[Address]*Account, len(accounts))
	for addr, acct := range accounts {
		data := make([]byte, len(acct.Data))
		copy(data, acct.Data)
		s.accounts[addr] = &Account{Owner: acct.Owner, Balance: acct.Balance, Data: data}
	}
	return nil
}

// Close marks the store closed; subsequent operations fail with
// ErrStoreClosed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
