// Package filestore is the object storage layer behind the object source.
//
// Providers implement Store; callers depend only on this package.
//
//	cfg := filestore.DefaultConfig("localhost:9000", "minioadmin", "minioadmin")
//	store, err := minio.New(ctx, cfg)
//	if err != nil { ... }
//	defer store.Close()
//
//	obj, err := store.GetObject(ctx, "exports", "events.json")
package filestore

import "context"

// Store is the read-only interface all object storage providers implement.
type Store interface {
	// Ping verifies the storage backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any held resources.
	Close() error

	// ListObjects returns the objects under prefix in bucket, ordered by key.
	// Virtual directory entries are never returned.
	ListObjects(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)

	// GetObject opens a streaming handle to the object at key inside bucket.
	// The caller MUST call Object.Close() after reading.
	GetObject(ctx context.Context, bucket, key string) (Object, error)
}
