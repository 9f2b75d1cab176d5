package punchgo

import (
	"context"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/hupe1980/punchgo/ledger"
	"github.com/hupe1980/punchgo/punchcard"
)

// Summary is a read-only view of one punchcard record's state.
type Summary struct {
	Authority ledger.Address
	Capacity  uint64
	Claimed   uint64
	// ClaimedSet holds the claimed slot indices.
	ClaimedSet *roaring64.Bitmap
	// Deposit is the balance currently held against the record.
	Deposit uint64
}

// Inspect reads the punchcard record at addr without mutating it. It
// fails with ErrIncorrectProgram if the account is not owned by this
// program, and with punchcard.ErrInvalidRecordData if the stored bytes
// are not a well-formed punchcard.
func (p *Program) Inspect(ctx context.Context, addr ledger.Address) (Summary, error) {
	var summary Summary
	err := p.store.View(ctx, addr, func(acct *ledger.Account) error {
		if acct.Owner != p.id {
			return fmt.Errorf("%w: %s", ErrIncorrectProgram, addr)
		}
		card, err := punchcard.FromBytes(acct.Data)
		if err != nil {
			return err
		}
		summary = Summary{
			Authority:  ledger.Address(card.Header.Authority()),
			Capacity:   card.Header.Capacity(),
			Claimed:    card.Header.Claimed(),
			ClaimedSet: card.ClaimedSet(),
			Deposit:    acct.Balance,
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}
	return summary, nil
}
