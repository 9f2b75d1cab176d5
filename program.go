package punchgo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hupe1980/punchgo/ledger"
	"github.com/hupe1980/punchgo/punchcard"
)

// AccountMeta describes one account supplied to an invocation: its
// address, whether its holder signed the request, and whether the
// invocation may mutate it.
type AccountMeta struct {
	Address  ledger.Address
	Signer   bool
	Writable bool
}

// Program dispatches punchcard instructions against a ledger store.
//
// A Program is identified by a 32-byte address recorded as the owner of
// every punchcard account it creates; claim operations refuse records
// owned by anyone else. All methods are safe for concurrent use; the
// store serializes mutating invocations.
type Program struct {
	id      ledger.Address
	store   ledger.Store
	logger  *Logger
	metrics MetricsCollector
}

// New creates a Program with the given identity over store.
func New(id ledger.Address, store ledger.Store, opts ...Option) *Program {
	o := options{
		logger:  NewLogger(nil),
		metrics: NoopMetricsCollector{},
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Program{
		id:      id,
		store:   store,
		logger:  o.logger.WithComponent("program"),
		metrics: o.metrics,
	}
}

// ID returns the program identity.
func (p *Program) ID() ledger.Address {
	return p.id
}

// Process decodes an instruction payload and executes it against the
// supplied accounts inside one ledger transaction. Any error aborts the
// invocation with no persisted effect.
func (p *Program) Process(ctx context.Context, accounts []AccountMeta, payload []byte) error {
	inst, err := DecodeInstruction(payload)
	if err != nil {
		return err
	}

	switch inst := inst.(type) {
	case CreateInstruction:
		return p.create(ctx, accounts, inst.Capacity)
	case ClaimInstruction:
		return p.claim(ctx, accounts, inst.Indices)
	default:
		return fmt.Errorf("%w: unsupported instruction %T", ErrInvalidInstructionData, inst)
	}
}

// Create allocates and initializes a punchcard record, a convenience
// wrapper over Process. Accounts: [funder (signer), record (signer,
// fresh), system reference].
func (p *Program) Create(ctx context.Context, accounts []AccountMeta, capacity uint64) error {
	return p.create(ctx, accounts, capacity)
}

// Claim claims an ordered batch of slot indices, a convenience wrapper
// over Process. Accounts: [authority (signer), record].
func (p *Program) Claim(ctx context.Context, accounts []AccountMeta, indices []uint64) error {
	return p.claim(ctx, accounts, indices)
}

func (p *Program) create(ctx context.Context, accounts []AccountMeta, capacity uint64) (err error) {
	start := time.Now()
	defer func() {
		p.metrics.RecordCreate(time.Since(start), err)
	}()

	if len(accounts) < 3 {
		return ErrNotEnoughAccounts
	}
	funder, record := accounts[0], accounts[1]

	if !funder.Signer {
		return fmt.Errorf("%w: funder %s", ErrMissingSignature, funder.Address)
	}
	// The record keypair signs to prove the address is fresh and
	// controlled by the creator.
	if !record.Signer {
		return fmt.Errorf("%w: record %s", ErrMissingSignature, record.Address)
	}

	// Capacity overflow is an ordinary recoverable error, checked before
	// any allocation.
	space, err := punchcard.Space(capacity)
	if err != nil {
		return err
	}

	err = p.store.Execute(ctx, func(tx *ledger.Tx) error {
		if err := tx.CreateAccount(record.Address, p.id, space, funder.Address); err != nil {
			return err
		}
		acct, err := tx.Account(record.Address)
		if err != nil {
			return err
		}
		_, err = punchcard.Initialize(acct.Data, punchcard.Address(funder.Address), capacity)
		return err
	})
	if err != nil {
		return err
	}

	p.logger.Debug("created punchcard",
		slog.String("record", record.Address.String()),
		slog.Uint64("capacity", capacity),
		slog.Uint64("space", space),
	)
	return nil
}

func (p *Program) claim(ctx context.Context, accounts []AccountMeta, indices []uint64) (err error) {
	start := time.Now()
	defer func() {
		p.metrics.RecordClaim(len(indices), time.Since(start), err)
	}()

	if len(accounts) < 2 {
		return ErrNotEnoughAccounts
	}
	authority, record := accounts[0], accounts[1]

	if !authority.Signer {
		return fmt.Errorf("%w: authority %s", ErrMissingSignature, authority.Address)
	}

	var reclaimed uint64
	err = p.store.Execute(ctx, func(tx *ledger.Tx) error {
		acct, err := tx.Account(record.Address)
		if err != nil {
			return err
		}
		if acct.Owner != p.id {
			return fmt.Errorf("%w: %s", ErrIncorrectProgram, record.Address)
		}

		card, err := punchcard.FromBytes(acct.Data)
		if err != nil {
			return err
		}
		if card.Header.Authority() != punchcard.Address(authority.Address) {
			return fmt.Errorf("%w: record %s", ErrInvalidAuthority, record.Address)
		}

		capacity := card.Header.Capacity()
		for _, index := range indices {
			if index >= capacity {
				return fmt.Errorf("%w: index %d, capacity %d", ErrIndexOutOfBounds, index, capacity)
			}
			if err := card.Claim(index); err != nil {
				return err
			}
		}

		if !card.Full() {
			return nil
		}

		// Fully punched: return the deposit, erase the record, and release
		// its storage.
		reclaimed = acct.Balance
		if err := tx.Transfer(record.Address, authority.Address, acct.Balance); err != nil {
			return err
		}
		clear(acct.Data)
		return tx.Close(record.Address)
	})
	if err != nil {
		return err
	}

	p.logger.Debug("claimed slots",
		slog.String("record", record.Address.String()),
		slog.Int("count", len(indices)),
	)
	if reclaimed > 0 {
		p.metrics.RecordReclaim(reclaimed)
		p.logger.Info("punchcard fully claimed, storage reclaimed",
			slog.String("record", record.Address.String()),
			slog.Uint64("deposit", reclaimed),
		)
	}
	return nil
}
