package snapshot

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/punchgo/blobstore"
	"github.com/hupe1980/punchgo/ledger"
	"github.com/hupe1980/punchgo/punchcard"
)

func testAddr(b byte) ledger.Address {
	var a ledger.Address
	for i := range a {
		a[i] = b
	}
	return a
}

func testAccounts(t *testing.T) map[ledger.Address]ledger.Account {
	t.Helper()

	programID := testAddr(0xAA)
	authority := testAddr(0xBB)

	space, err := punchcard.Space(100)
	require.NoError(t, err)
	data := make([]byte, space)
	card, err := punchcard.Initialize(data, punchcard.Address(authority), 100)
	require.NoError(t, err)
	require.NoError(t, card.Claim(5))
	require.NoError(t, card.Claim(42))

	return map[ledger.Address]ledger.Account{
		testAddr(0x01): {Owner: ledger.Address{}, Balance: 10_000_000_000},
		testAddr(0x02): {Owner: programID, Balance: 1_500_000, Data: data},
		testAddr(0x03): {Owner: ledger.Address{}, Balance: 42},
	}
}

func TestWriteRead_RoundTrip(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		codec uint16
		level uint8
	}{
		{name: "none", codec: CodecNone},
		{name: "zstd", codec: CodecZstd},
		{name: "zstd level 5", codec: CodecZstd, level: 5},
		{name: "lz4", codec: CodecLZ4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accounts := testAccounts(t)

			var buf bytes.Buffer
			err := Write(ctx, &buf, accounts, WriterOptions{Codec: tt.codec, Level: tt.level})
			require.NoError(t, err)

			got, hdr, err := Read(ctx, &buf)
			require.NoError(t, err)
			assert.Equal(t, uint32(MagicNumber), hdr.Magic)
			assert.Equal(t, tt.codec, hdr.Codec)
			assert.Equal(t, accounts, got)
		})
	}
}

func TestWrite_Deterministic(t *testing.T) {
	ctx := context.Background()
	accounts := testAccounts(t)

	var a, b bytes.Buffer
	require.NoError(t, Write(ctx, &a, accounts, WriterOptions{Codec: CodecNone}))
	require.NoError(t, Write(ctx, &b, accounts, WriterOptions{Codec: CodecNone}))
	assert.Equal(t, a.Bytes(), b.Bytes())
}

func TestRead_RejectsCorruption(t *testing.T) {
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, Write(ctx, &buf, testAccounts(t), WriterOptions{Codec: CodecNone}))
	good := buf.Bytes()

	t.Run("flipped payload byte", func(t *testing.T) {
		bad := bytes.Clone(good)
		bad[headerLen+10] ^= 0xFF
		_, _, err := Read(ctx, bytes.NewReader(bad))
		require.ErrorIs(t, err, ErrChecksum)
	})

	t.Run("bad magic", func(t *testing.T) {
		bad := bytes.Clone(good)
		bad[0] = 0x00
		_, _, err := Read(ctx, bytes.NewReader(bad))
		require.ErrorIs(t, err, ErrInvalidMagic)
	})

	t.Run("bad version", func(t *testing.T) {
		bad := bytes.Clone(good)
		bad[4], bad[5] = 0xFF, 0xFF
		_, _, err := Read(ctx, bytes.NewReader(bad))
		require.ErrorIs(t, err, ErrInvalidVersion)
	})

	t.Run("unknown codec", func(t *testing.T) {
		bad := bytes.Clone(good)
		bad[6], bad[7] = 0xFF, 0xFF
		_, _, err := Read(ctx, bytes.NewReader(bad))
		require.ErrorIs(t, err, ErrInvalidCodec)
	})

	t.Run("truncated", func(t *testing.T) {
		_, _, err := Read(ctx, bytes.NewReader(good[:headerLen]))
		require.ErrorIs(t, err, ErrTruncated)
	})
}

func TestVerifyPunchcards(t *testing.T) {
	programID := testAddr(0xAA)
	accounts := testAccounts(t)

	checked, err := VerifyPunchcards(accounts, programID)
	require.NoError(t, err)
	assert.Equal(t, 1, checked)

	// Corrupt the record so claimed exceeds capacity.
	acct := accounts[testAddr(0x02)]
	card, err := punchcard.FromBytes(acct.Data)
	require.NoError(t, err)
	card.Header.SetClaimed(card.Header.Capacity() + 1)

	_, err = VerifyPunchcards(accounts, programID)
	require.ErrorIs(t, err, punchcard.ErrInvalidRecordData)
}

func newTestManager(t *testing.T) (*Manager, *blobstore.MemoryStore, *ledger.MemoryStore) {
	t.Helper()

	blobs := blobstore.NewMemoryStore()
	store := ledger.NewMemoryStore()

	// A deterministic clock so snapshot names are stable and ordered.
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	mgr := NewManager(blobs, ManagerOptions{
		Writer: WriterOptions{Codec: CodecZstd},
		Clock: func() time.Time {
			now = now.Add(time.Second)
			return now
		},
	})
	return mgr, blobs, store
}

func seedLedger(t *testing.T, store *ledger.MemoryStore) {
	t.Helper()
	require.NoError(t, store.Execute(context.Background(), func(tx *ledger.Tx) error {
		tx.Credit(testAddr(0x01), 10_000_000_000)
		tx.Credit(testAddr(0x02), 500)
		return nil
	}))
}

func TestManager_SaveLoad(t *testing.T) {
	ctx := context.Background()
	mgr, _, store := newTestManager(t)
	seedLedger(t, store)

	name, err := mgr.Save(ctx, store)
	require.NoError(t, err)
	assert.Contains(t, name, snapshotPrefix)

	restored := ledger.NewMemoryStore()
	require.NoError(t, mgr.Load(ctx, name, restored))

	balance, err := restored.Balance(ctx, testAddr(0x01))
	require.NoError(t, err)
	assert.Equal(t, uint64(10_000_000_000), balance)
}

func TestManager_Manifest(t *testing.T) {
	ctx := context.Background()
	mgr, _, store := newTestManager(t)
	seedLedger(t, store)

	name, err := mgr.Save(ctx, store)
	require.NoError(t, err)

	manifest, err := mgr.Manifest(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, ManifestVersion, manifest.Version)
	assert.Equal(t, name, manifest.Name)
	assert.Equal(t, CodecZstd, manifest.Codec)
	assert.Equal(t, 2, manifest.Accounts)
	assert.Positive(t, manifest.SizeBytes)

	// Pruning a snapshot removes its manifest too.
	_, err = mgr.Save(ctx, store)
	require.NoError(t, err)
	_, err = mgr.Prune(ctx, 1)
	require.NoError(t, err)
	_, err = mgr.Manifest(ctx, name)
	require.Error(t, err)
}

func TestManager_LoadLatest(t *testing.T) {
	ctx := context.Background()
	mgr, blobs, store := newTestManager(t)
	seedLedger(t, store)

	first, err := mgr.Save(ctx, store)
	require.NoError(t, err)

	require.NoError(t, store.Execute(ctx, func(tx *ledger.Tx) error {
		tx.Credit(testAddr(0x03), 777)
		return nil
	}))
	second, err := mgr.Save(ctx, store)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	restored := ledger.NewMemoryStore()
	name, err := mgr.LoadLatest(ctx, restored)
	require.NoError(t, err)
	assert.Equal(t, second, name)

	balance, err := restored.Balance(ctx, testAddr(0x03))
	require.NoError(t, err)
	assert.Equal(t, uint64(777), balance)

	// Without the CURRENT pointer the newest listed snapshot wins.
	require.NoError(t, blobs.Delete(ctx, CurrentName))
	name, err = mgr.LoadLatest(ctx, ledger.NewMemoryStore())
	require.NoError(t, err)
	assert.Equal(t, second, name)
}

func TestManager_LoadLatest_Empty(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	_, err := mgr.LoadLatest(context.Background(), ledger.NewMemoryStore())
	require.ErrorIs(t, err, ErrNoSnapshots)
}

func TestManager_Prune(t *testing.T) {
	ctx := context.Background()
	mgr, _, store := newTestManager(t)
	seedLedger(t, store)

	var names []string
	for range 5 {
		name, err := mgr.Save(ctx, store)
		require.NoError(t, err)
		names = append(names, name)
	}

	deleted, err := mgr.Prune(ctx, 2)
	require.NoError(t, err)
	assert.ElementsMatch(t, names[:3], deleted)

	left, err := mgr.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, names[3:], left)

	// Already within retention.
	deleted, err = mgr.Prune(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, deleted)
}

func TestThrottle_LimitsConcurrentJobs(t *testing.T) {
	ctx := context.Background()
	th := NewThrottle(ThrottleConfig{MaxConcurrentJobs: 1})

	require.NoError(t, th.Acquire(ctx))

	blocked, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	require.Error(t, th.Acquire(blocked))

	th.Release()
	require.NoError(t, th.Acquire(ctx))
	th.Release()
}

func TestThrottle_IOPassthrough(t *testing.T) {
	ctx := context.Background()
	th := NewThrottle(ThrottleConfig{IOLimitBytesPerSec: 1 << 20})

	var buf bytes.Buffer
	w := th.Writer(ctx, &buf)
	_, err := w.Write([]byte("payload"))
	require.NoError(t, err)
	assert.Equal(t, "payload", buf.String())

	r := th.Reader(ctx, bytes.NewReader([]byte("payload")))
	got := make([]byte, 7)
	_, err = r.Read(got)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got)
}
