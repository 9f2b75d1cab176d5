package snapshot

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"math"

	"github.com/hupe1980/punchgo/ledger"
	"github.com/hupe1980/punchgo/punchcard"
)

// Read decodes a snapshot file, verifying the header, the payload
// checksum, and the structure of the account table.
func Read(ctx context.Context, r io.Reader) (map[ledger.Address]ledger.Account, Header, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, Header{}, fmt.Errorf("snapshot: read: %w", err)
	}
	if len(raw) < headerLen+trailerLen {
		return nil, Header{}, ErrTruncated
	}

	hdr := Header{
		Magic:   binary.LittleEndian.Uint32(raw[0:4]),
		Version: binary.LittleEndian.Uint16(raw[4:6]),
		Codec:   binary.LittleEndian.Uint16(raw[6:8]),
		Level:   raw[8],
	}
	if err := hdr.Validate(); err != nil {
		return nil, hdr, err
	}

	payload := raw[headerLen : len(raw)-trailerLen]
	want := binary.LittleEndian.Uint32(raw[len(raw)-trailerLen:])
	if got := crc32.Checksum(payload, crcTable); got != want {
		return nil, hdr, fmt.Errorf("%w: got %08x, want %08x", ErrChecksum, got, want)
	}

	dec, err := newDecompressor(hdr.Codec, bytes.NewReader(payload))
	if err != nil {
		return nil, hdr, err
	}
	defer dec.Close()

	accounts, err := readAccounts(ctx, dec)
	if err != nil {
		return nil, hdr, err
	}
	return accounts, hdr, nil
}

func readAccounts(ctx context.Context, r io.Reader) (map[ledger.Address]ledger.Account, error) {
	var count [8]byte
	if _, err := io.ReadFull(r, count[:]); err != nil {
		return nil, fmt.Errorf("snapshot: read account count: %w", err)
	}
	n := binary.LittleEndian.Uint64(count[:])
	if n > math.MaxInt {
		return nil, fmt.Errorf("snapshot: account count %d out of range", n)
	}

	accounts := make(map[ledger.Address]ledger.Account, n)
	var rec [80]byte
	for i := uint64(0); i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if _, err := io.ReadFull(r, rec[:]); err != nil {
			return nil, fmt.Errorf("snapshot: read account %d: %w", i, err)
		}

		var addr ledger.Address
		copy(addr[:], rec[0:32])
		var acct ledger.Account
		copy(acct.Owner[:], rec[32:64])
		acct.Balance = binary.LittleEndian.Uint64(rec[64:72])

		size := binary.LittleEndian.Uint64(rec[72:80])
		if size > math.MaxInt {
			return nil, fmt.Errorf("snapshot: account %s data length %d out of range", addr, size)
		}
		if size > 0 {
			acct.Data = make([]byte, size)
			if _, err := io.ReadFull(r, acct.Data); err != nil {
				return nil, fmt.Errorf("snapshot: read account %s data: %w", addr, err)
			}
		}

		if _, dup := accounts[addr]; dup {
			return nil, fmt.Errorf("snapshot: duplicate account %s", addr)
		}
		accounts[addr] = acct
	}

	// The table must consume the payload exactly.
	var trailing [1]byte
	if _, err := r.Read(trailing[:]); err != io.EOF {
		return nil, fmt.Errorf("snapshot: trailing bytes after account table")
	}
	return accounts, nil
}

// VerifyPunchcards checks that every account owned by programID holds
// structurally valid punchcard data. It returns the number of records
// checked and the first structural error found.
func VerifyPunchcards(accounts map[ledger.Address]ledger.Account, programID ledger.Address) (int, error) {
	checked := 0
	for addr, acct := range accounts {
		if acct.Owner != programID {
			continue
		}
		if _, err := punchcard.FromBytes(acct.Data); err != nil {
			return checked, fmt.Errorf("snapshot: account %s: %w", addr, err)
		}
		checked++
	}
	return checked, nil
}
