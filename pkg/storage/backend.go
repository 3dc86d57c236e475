package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("storage: key not found")

// BlobStore abstracts where analysis artifacts live. Reports and run
// history are written through this interface so a local directory and
// an S3 bucket are interchangeable.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	// Append adds data to the end of an existing blob, creating it if
	// missing. Used for line-oriented ledgers.
	Append(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
}
