package storage

import (
	"context"
	"io"
)

// PutInput describes one blob upload.
type PutInput struct {
	Key         string
	Reader      io.Reader
	Size        int64
	ContentType string
	Tags        map[string]string
}

// Store is the narrow blob-store interface the service consumes. Blobs are
// addressed by key; the store owns URL construction.
type Store interface {
	Put(ctx context.Context, in PutInput) error
	Remove(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	PublicURL(key string) string
}
