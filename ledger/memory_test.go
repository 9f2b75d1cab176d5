package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addr(b byte) Address {
	var a Address
	a[0] = b
	return a
}

func fund(t *testing.T, store *MemoryStore, a Address, amount uint64) {
	t.Helper()
	require.NoError(t, store.Execute(context.Background(), func(tx *Tx) error {
		tx.Credit(a, amount)
		return nil
	}))
}

func TestMemoryStore_CreateAccount(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	funder, record, owner := addr(1), addr(2), addr(3)
	fund(t, store, funder, 1<<40)

	err := store.Execute(ctx, func(tx *Tx) error {
		return tx.CreateAccount(record, owner, 64, funder)
	})
	require.NoError(t, err)

	deposit := DefaultRent.MinimumBalance(64)

	balance, err := store.Balance(ctx, record)
	require.NoError(t, err)
	assert.Equal(t, deposit, balance)

	funderBalance, err := store.Balance(ctx, funder)
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<40)-deposit, funderBalance)

	require.NoError(t, store.View(ctx, record, func(acct *Account) error {
		assert.Equal(t, owner, acct.Owner)
		assert.Len(t, acct.Data, 64)
		return nil
	}))
}

func TestMemoryStore_CreateAccount_Existing(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	funder, record := addr(1), addr(2)
	fund(t, store, funder, 1<<40)

	require.NoError(t, store.Execute(ctx, func(tx *Tx) error {
		return tx.CreateAccount(record, addr(3), 8, funder)
	}))

	err := store.Execute(ctx, func(tx *Tx) error {
		return tx.CreateAccount(record, addr(3), 8, funder)
	})
	require.ErrorIs(t, err, ErrAccountExists)
}

func TestMemoryStore_CreateAccount_InsufficientFunds(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	funder, record := addr(1), addr(2)
	fund(t, store, funder, 1) // far below rent minimum

	err := store.Execute(ctx, func(tx *Tx) error {
		return tx.CreateAccount(record, addr(3), 64, funder)
	})
	require.ErrorIs(t, err, ErrInsufficientFunds)

	exists, err := store.Exists(ctx, record)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryStore_ExecuteRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	funder := addr(1)
	fund(t, store, funder, 1000)

	sentinel := errors.New("abort")
	err := store.Execute(ctx, func(tx *Tx) error {
		acct, err := tx.Account(funder)
		require.NoError(t, err)
		acct.Balance = 0
		tx.Credit(addr(9), 5)
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	// Nothing from the aborted transaction is visible.
	balance, err := store.Balance(ctx, funder)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), balance)

	exists, err := store.Exists(ctx, addr(9))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryStore_TransferAndClose(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	funder, record := addr(1), addr(2)
	fund(t, store, funder, 1<<40)

	require.NoError(t, store.Execute(ctx, func(tx *Tx) error {
		return tx.CreateAccount(record, addr(3), 8, funder)
	}))
	deposit := DefaultRent.MinimumBalance(8)

	before, err := store.Balance(ctx, funder)
	require.NoError(t, err)

	require.NoError(t, store.Execute(ctx, func(tx *Tx) error {
		if err := tx.Transfer(record, funder, deposit); err != nil {
			return err
		}
		return tx.Close(record)
	}))

	after, err := store.Balance(ctx, funder)
	require.NoError(t, err)
	assert.Equal(t, before+deposit, after)

	exists, err := store.Exists(ctx, record)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryStore_TransferInsufficient(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	fund(t, store, addr(1), 10)
	fund(t, store, addr(2), 0)

	err := store.Execute(ctx, func(tx *Tx) error {
		return tx.Transfer(addr(1), addr(2), 11)
	})
	require.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestMemoryStore_MutationIsCopyOnWrite(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	funder, record := addr(1), addr(2)
	fund(t, store, funder, 1<<40)
	require.NoError(t, store.Execute(ctx, func(tx *Tx) error {
		return tx.CreateAccount(record, addr(3), 4, funder)
	}))

	var leaked []byte
	require.NoError(t, store.Execute(ctx, func(tx *Tx) error {
		acct, err := tx.Account(record)
		require.NoError(t, err)
		acct.Data[0] = 0xFF
		leaked = acct.Data
		return nil
	}))

	// Writes through a stale transaction pointer do not reach the store.
	leaked[1] = 0xEE
	require.NoError(t, store.View(ctx, record, func(acct *Account) error {
		assert.Equal(t, byte(0xFF), acct.Data[0])
		assert.Zero(t, acct.Data[1])
		return nil
	}))
}

func TestMemoryStore_SnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	fund(t, store, addr(1), 123)
	require.NoError(t, store.Execute(ctx, func(tx *Tx) error {
		tx.Credit(addr(2), 7)
		return nil
	}))

	accounts, err := store.Accounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 2)

	restored := NewMemoryStore()
	require.NoError(t, restored.Restore(ctx, accounts))

	balance, err := restored.Balance(ctx, addr(1))
	require.NoError(t, err)
	assert.Equal(t, uint64(123), balance)
}

func TestMemoryStore_Closed(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Close())

	err := store.Execute(ctx, func(*Tx) error { return nil })
	require.ErrorIs(t, err, ErrStoreClosed)

	_, err = store.Balance(ctx, addr(1))
	require.ErrorIs(t, err, ErrStoreClosed)
}

func TestRent_MinimumBalance(t *testing.T) {
	rent := Rent{BaseFee: 100, FeePerByte: 10}
	assert.Equal(t, uint64(100), rent.MinimumBalance(0))
	assert.Equal(t, uint64(200), rent.MinimumBalance(10))

	// Monotonic in size.
	prev := uint64(0)
	for _, size := range []uint64{0, 1, 48, 1024, 1 << 30} {
		got := DefaultRent.MinimumBalance(size)
		assert.GreaterOrEqual(t, got, prev)
		prev = got
	}

	// Overflow saturates to an unpayable deposit.
	assert.Equal(t, uint64(1<<64-1), rent.MinimumBalance(1<<63))
}
