package domain

import "context"

// RemotePort streams pages of raw records from the append-only store
type RemotePort interface {
	ListAll(ctx context.Context, after uint64, fn func(items []StoreItem) error) error
}

// MirrorPort is the durable local cache of fetched records. Single writer:
// one pipeline run owns the mirror at a time
type MirrorPort interface {
	// MaxID returns the highest cached record ID; ok false when empty
	MaxID(ctx context.Context) (id uint64, ok bool, err error)

	// PutBatch persists a fetched page; idempotent per record ID
	PutBatch(ctx context.Context, recs []MirrorRecord) error

	// All streams the cached records in ID order
	All(ctx context.Context, fn func(rec MirrorRecord) error) error

	// Count returns the number of cached records
	Count(ctx context.Context) (int, error)
}

// PublisherPort atomically writes one named output document
type PublisherPort interface {
	WriteDoc(name string, v any, compact bool) error
}
