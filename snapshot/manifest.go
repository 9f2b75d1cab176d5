package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hupe1980/punchgo/blobstore"
)

// ManifestVersion is the current manifest schema version.
const ManifestVersion = 1

const manifestExt = ".json"

// Manifest describes one snapshot without requiring the snapshot blob
// itself to be opened. It is stored as a JSON sidecar named
// "<snapshot>.json".
type Manifest struct {
	Version   int       `json:"version"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Codec     uint16    `json:"codec"`
	Level     uint8     `json:"level"`
	Accounts  int       `json:"accounts"`
	SizeBytes int64     `json:"size_bytes"`
}

func manifestName(snapshotName string) string {
	return snapshotName + manifestExt
}

func writeManifest(ctx context.Context, blobs blobstore.BlobStore, m Manifest) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("snapshot: encode manifest: %w", err)
	}
	if err := blobs.Put(ctx, manifestName(m.Name), buf.Bytes()); err != nil {
		return fmt.Errorf("snapshot: write manifest for %s: %w", m.Name, err)
	}
	return nil
}

// Manifest returns the manifest for the named snapshot.
func (m *Manager) Manifest(ctx context.Context, name string) (Manifest, error) {
	blob, err := m.blobs.Open(ctx, manifestName(name))
	if err != nil {
		return Manifest{}, fmt.Errorf("snapshot: open manifest for %s: %w", name, err)
	}
	defer blob.Close()

	data, err := blobstore.ReadAll(blob)
	if err != nil {
		return Manifest{}, fmt.Errorf("snapshot: read manifest for %s: %w", name, err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return Manifest{}, fmt.Errorf("snapshot: decode manifest for %s: %w", name, err)
	}
	return manifest, nil
}
