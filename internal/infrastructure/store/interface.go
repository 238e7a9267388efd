package store

import "context"

// Backend is the raw key-value layer under a Store. Values are the serialized bytes
// exactly as they are persisted; a Backend never interprets them.
type Backend interface {
	// Get returns the stored value and whether the key exists
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key, replacing any previous value
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys lists all keys of the profile in lexical order
	Keys(ctx context.Context) ([]string, error)

	// Usage returns the space used by the profile (keys plus values)
	Usage(ctx context.Context) (int64, error)

	Close() error
}
