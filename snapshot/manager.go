package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/punchgo/blobstore"
	"github.com/hupe1980/punchgo/ledger"
)

const (
	// CurrentName is the pointer blob naming the latest snapshot.
	CurrentName = "CURRENT"

	snapshotPrefix = "snapshot-"
	snapshotExt    = ".pgs"
)

// ErrNoSnapshots is returned by LoadLatest when the store holds no
// snapshots.
var ErrNoSnapshots = errors.New("snapshot: no snapshots found")

// Snapshotter can dump its full account state.
type Snapshotter interface {
	Accounts(ctx context.Context) (map[ledger.Address]ledger.Account, error)
}

// Restorer can replace its account state wholesale.
type Restorer interface {
	Restore(ctx context.Context, accounts map[ledger.Address]ledger.Account) error
}

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	// Writer configures snapshot encoding.
	Writer WriterOptions

	// Throttle bounds concurrent jobs and IO. Nil means unlimited.
	Throttle *Throttle

	// Clock supplies snapshot timestamps. Defaults to time.Now.
	Clock func() time.Time
}

// Manager saves, loads, lists, and prunes snapshots in a blob store.
//
// Snapshot names embed a UTC timestamp, so lexicographic order is
// chronological order. After each save the CURRENT pointer blob is
// updated to the new name.
type Manager struct {
	blobs    blobstore.BlobStore
	throttle *Throttle
	writer   WriterOptions
	clock    func() time.Time
}

// NewManager creates a snapshot manager over blobs.
func NewManager(blobs blobstore.BlobStore, opts ManagerOptions) *Manager {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Manager{
		blobs:    blobs,
		throttle: opts.Throttle,
		writer:   opts.Writer,
		clock:    clock,
	}
}

// Save dumps src to a new snapshot blob and returns its name.
func (m *Manager) Save(ctx context.Context, src Snapshotter) (string, error) {
	if err := m.throttle.Acquire(ctx); err != nil {
		return "", err
	}
	defer m.throttle.Release()

	accounts, err := src.Accounts(ctx)
	if err != nil {
		return "", fmt.Errorf("snapshot: dump ledger: %w", err)
	}

	now := m.clock().UTC()
	name := snapshotPrefix + now.Format("20060102T150405.000000000") + snapshotExt

	blob, err := m.blobs.Create(ctx, name)
	if err != nil {
		return "", fmt.Errorf("snapshot: create %s: %w", name, err)
	}
	cw := &countingWriter{w: m.throttle.Writer(ctx, blob)}
	if err := Write(ctx, cw, accounts, m.writer); err != nil {
		_ = blob.Close()
		return "", err
	}
	if err := blob.Close(); err != nil {
		return "", fmt.Errorf("snapshot: commit %s: %w", name, err)
	}

	if err := writeManifest(ctx, m.blobs, Manifest{
		Version:   ManifestVersion,
		Name:      name,
		CreatedAt: now,
		Codec:     m.writer.Codec,
		Level:     m.writer.Level,
		Accounts:  len(accounts),
		SizeBytes: cw.n,
	}); err != nil {
		return "", err
	}

	if err := m.blobs.Put(ctx, CurrentName, []byte(name)); err != nil {
		return "", fmt.Errorf("snapshot: update %s: %w", CurrentName, err)
	}
	return name, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// Load restores dst from the named snapshot.
func (m *Manager) Load(ctx context.Context, name string, dst Restorer) error {
	if err := m.throttle.Acquire(ctx); err != nil {
		return err
	}
	defer m.throttle.Release()

	blob, err := m.blobs.Open(ctx, name)
	if err != nil {
		return fmt.Errorf("snapshot: open %s: %w", name, err)
	}
	defer blob.Close()

	accounts, _, err := Read(ctx, m.throttle.Reader(ctx, blob))
	if err != nil {
		return err
	}
	return dst.Restore(ctx, accounts)
}

// LoadLatest restores dst from the snapshot named by the CURRENT
// pointer, falling back to the newest listed snapshot when the pointer
// is missing.
func (m *Manager) LoadLatest(ctx context.Context, dst Restorer) (string, error) {
	name, err := m.currentName(ctx)
	if err != nil {
		return "", err
	}
	return name, m.Load(ctx, name, dst)
}

func (m *Manager) currentName(ctx context.Context) (string, error) {
	blob, err := m.blobs.Open(ctx, CurrentName)
	if err == nil {
		defer blob.Close()
		data, err := blobstore.ReadAll(blob)
		if err != nil {
			return "", fmt.Errorf("snapshot: read %s: %w", CurrentName, err)
		}
		name := strings.TrimSpace(string(data))
		if name != "" {
			return name, nil
		}
	} else if !errors.Is(err, blobstore.ErrNotFound) {
		return "", fmt.Errorf("snapshot: open %s: %w", CurrentName, err)
	}

	names, err := m.List(ctx)
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", ErrNoSnapshots
	}
	return names[len(names)-1], nil
}

// List returns all snapshot names, oldest first.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	names, err := m.blobs.List(ctx, snapshotPrefix)
	if err != nil {
		return nil, fmt.Errorf("snapshot: list: %w", err)
	}
	kept := names[:0]
	for _, name := range names {
		if strings.HasSuffix(name, snapshotExt) {
			kept = append(kept, name)
		}
	}
	sort.Strings(kept)
	return kept, nil
}

// Prune deletes all but the newest keep snapshots and returns the
// names it deleted. Deletes run in parallel.
func (m *Manager) Prune(ctx context.Context, keep int) ([]string, error) {
	if keep < 0 {
		keep = 0
	}

	names, err := m.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(names) <= keep {
		return nil, nil
	}
	victims := names[:len(names)-keep]

	g, ctx := errgroup.WithContext(ctx)
	for _, name := range victims {
		g.Go(func() error {
			if err := m.blobs.Delete(ctx, name); err != nil {
				return fmt.Errorf("snapshot: delete %s: %w", name, err)
			}
			if err := m.blobs.Delete(ctx, manifestName(name)); err != nil {
				return fmt.Errorf("snapshot: delete manifest for %s: %w", name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return victims, nil
}
