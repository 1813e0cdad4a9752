package domain

import "context"

// BlobStore is the object-store dependency of the core: one bucket holding
// many small tabular files. A blob written must be visible to a subsequent
// List within the same process; no stronger guarantees are assumed.
type BlobStore interface {
	// List returns the names of every blob in the bucket.
	List(ctx context.Context) ([]string, error)

	// Fetch returns the raw contents of a named blob.
	Fetch(ctx context.Context, name string) ([]byte, error)

	// Write stores data under the given name, replacing any existing blob.
	Write(ctx context.Context, name string, data []byte) error
}
