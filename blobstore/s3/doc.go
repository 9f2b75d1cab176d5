// Package s3 implements blobstore.BlobStore on Amazon S3.
//
// Snapshots are immutable, so plain S3 semantics suffice for single
// writers. For deployments with multiple snapshot writers, CommitStore
// layers a DynamoDB-backed commit pointer over the blob store: the
// "CURRENT" name resolves through a conditional write, giving the
// compare-and-swap that S3 itself lacks.
package s3
