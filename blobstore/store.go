package blobstore

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations must return an error that satisfies
// errors.Is(err, ErrNotFound).
var ErrNotFound = errors.New("blob not found")

// BlobStore is an abstraction for storing snapshot blobs.
type BlobStore interface {
	// Open opens an existing blob for reading.
	Open(ctx context.Context, name string) (Blob, error)

	// Create creates a new blob for streaming writes. The blob becomes
	// visible when the returned writer is closed without error.
	Create(ctx context.Context, name string) (WritableBlob, error)

	// Put writes a blob in one call, replacing any existing blob of the
	// same name.
	Put(ctx context.Context, name string, data []byte) error

	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the names of all blobs with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read handle to a stored blob.
type Blob interface {
	io.ReadCloser

	// Size returns the blob size in bytes.
	Size() int64
}

// Mappable is an optional interface for Blobs whose content is available
// as a byte slice without copying. The slice is valid until Close.
type Mappable interface {
	Bytes() ([]byte, error)
}

// WritableBlob is a write handle to a blob under construction.
type WritableBlob interface {
	io.WriteCloser

	// Sync forces buffered data to stable storage where the backend
	// supports it.
	Sync() error
}

// ReadAll reads a blob's full content, using zero-copy access when the
// backend supports it.
func ReadAll(blob Blob) ([]byte, error) {
	if m, ok := blob.(Mappable); ok {
		data, err := m.Bytes()
		if err == nil {
			// Callers own the returned slice; the mapping dies with the blob.
			out := make([]byte, len(data))
			copy(out, data)
			return out, nil
		}
	}
	return io.ReadAll(blob)
}
