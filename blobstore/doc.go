// Package blobstore abstracts the storage that holds ledger snapshots.
//
// A snapshot is written once as a single named blob and read back whole,
// so the interface is deliberately small: Put/Create to write, Open to
// read, Delete and List for retention management. Backends:
//
//   - MemoryStore: in-memory, for tests.
//   - LocalStore: local filesystem, atomic rename on write, mmap on read.
//   - s3.Store: Amazon S3 (optionally with a DynamoDB commit pointer for
//     safe concurrent writers).
//   - minio.Store: MinIO and other S3-compatible object stores.
package blobstore
