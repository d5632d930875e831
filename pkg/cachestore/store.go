package cachestore

import (
	"context"
	"time"
)

// Entry is a previously computed response body stored under a normalized path.
type Entry struct {
	Key       string
	Body      []byte
	MediaType string
	UpdatedAt int64
}

// Store is the read side of the response cache.
type Store interface {
	Lookup(ctx context.Context, key string) (*Entry, bool, error)
}

// Writer is implemented by stores that the external cache writer can fill.
type Writer interface {
	Put(ctx context.Context, key string, body []byte, mediaType string) (*Entry, error)
	Delete(ctx context.Context, key string) error
}

// Pruner drops entries that were not refreshed within maxAge.
type Pruner interface {
	Prune(ctx context.Context, maxAge time.Duration) (int64, error)
}
