package snapshot

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
	"sort"

	"github.com/hupe1980/punchgo/ledger"
)

// WriterOptions configures snapshot encoding.
type WriterOptions struct {
	// Codec selects the payload compression (CodecNone, CodecZstd,
	// CodecLZ4).
	Codec uint16

	// Level is the codec-specific compression level. 0 means the
	// codec's default.
	Level uint8
}

// Write encodes accounts to w as a snapshot file.
//
// The account table is sorted by address, so identical ledgers encode
// to identical bytes regardless of map iteration order.
func Write(ctx context.Context, w io.Writer, accounts map[ledger.Address]ledger.Account, opts WriterOptions) error {
	hdr := Header{
		Magic:   MagicNumber,
		Version: Version,
		Codec:   opts.Codec,
		Level:   opts.Level,
	}
	if err := hdr.Validate(); err != nil {
		return err
	}

	var buf [headerLen]byte
	binary.LittleEndian.PutUint32(buf[0:4], hdr.Magic)
	binary.LittleEndian.PutUint16(buf[4:6], hdr.Version)
	binary.LittleEndian.PutUint16(buf[6:8], hdr.Codec)
	buf[8] = hdr.Level
	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("snapshot: write header: %w", err)
	}

	cw := &checksumWriter{w: w, hash: crc32.New(crcTable)}
	enc, err := newCompressor(hdr.Codec, hdr.Level, cw)
	if err != nil {
		return err
	}

	if err := writeAccounts(ctx, enc, accounts); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("snapshot: flush payload: %w", err)
	}

	binary.LittleEndian.PutUint32(buf[0:4], cw.hash.Sum32())
	if _, err := w.Write(buf[:trailerLen]); err != nil {
		return fmt.Errorf("snapshot: write trailer: %w", err)
	}
	return nil
}

func writeAccounts(ctx context.Context, w io.Writer, accounts map[ledger.Address]ledger.Account) error {
	addrs := make([]ledger.Address, 0, len(accounts))
	for addr := range accounts {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool {
		return string(addrs[i][:]) < string(addrs[j][:])
	})

	var count [8]byte
	binary.LittleEndian.PutUint64(count[:], uint64(len(addrs)))
	if _, err := w.Write(count[:]); err != nil {
		return fmt.Errorf("snapshot: write account count: %w", err)
	}

	// addr 32 + owner 32 + balance 8 + data len 8
	var rec [80]byte
	for _, addr := range addrs {
		if err := ctx.Err(); err != nil {
			return err
		}

		acct := accounts[addr]
		copy(rec[0:32], addr[:])
		copy(rec[32:64], acct.Owner[:])
		binary.LittleEndian.PutUint64(rec[64:72], acct.Balance)
		binary.LittleEndian.PutUint64(rec[72:80], uint64(len(acct.Data)))
		if _, err := w.Write(rec[:]); err != nil {
			return fmt.Errorf("snapshot: write account %s: %w", addr, err)
		}
		if _, err := w.Write(acct.Data); err != nil {
			return fmt.Errorf("snapshot: write account %s data: %w", addr, err)
		}
	}
	return nil
}

// checksumWriter passes writes through while keeping a running CRC32
// of everything written.
type checksumWriter struct {
	w    io.Writer
	hash hash.Hash32
}

func (cw *checksumWriter) Write(p []byte) (int, error) {
	cw.hash.Write(p) //nolint:errcheck // hash.Hash never errors
	return cw.w.Write(p)
}
