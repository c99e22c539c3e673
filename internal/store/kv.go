// Package store provides the durable key-value capability the
// conversation layer persists into. Every implementation supports
// per-key TTL with lazy expiry: an expired key behaves exactly like
// one that never existed.
package store

import (
	"context"
	"time"
)

// KV is the minimal contract for a TTL key-value store.
type KV interface {
	// Get returns the value for key, or ok=false when the key is
	// absent or expired.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set writes value under key with the given TTL, replacing any
	// previous value and its TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Del removes key and reports whether it existed.
	Del(ctx context.Context, key string) (existed bool, err error)

	// Expire resets the TTL of an existing key without touching its
	// value; it reports false when the key is absent.
	Expire(ctx context.Context, key string, ttl time.Duration) (ok bool, err error)
}
