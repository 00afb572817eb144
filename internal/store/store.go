// Package store provides the persistent key-value backends used for
// conversation history and user settings. Persistence is best-effort:
// a corrupt blob is treated identically to "no value".
package store

import "context"

// KV is a minimal persistent key-value store. Values are opaque blobs;
// serialization is the caller's concern.
type KV interface {
	// Get returns the stored value. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Put stores the value, replacing any previous one.
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the backing resources.
	Close() error
}
