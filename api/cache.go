package api

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when a key is absent or has expired.
var ErrNotFound = errors.New("cache: key not found")

/*
Cache defines the PUBLIC API that request handlers and the memoizer use.
This is a contract that guarantees certain behaviors, without exposing internals.
Sharding, eviction, expiration, and locking are all hidden behind this interface.

Every method takes a context so the in-memory cache can later be replaced by a
remote backend without touching call sites. The in-memory implementation never
blocks and never observes cancellation.
*/
type Cache interface {

	/*
		Get retrieves the value associated with the given key.

		BEHAVIOR:
		-------------------
		1. If the key exists in cache and is NOT expired:
		   - Return the value (cache hit)

		2. If the key does NOT exist or is expired:
		   - Expired entries are removed as a side effect
		   - Return ErrNotFound (cache miss)

		The returned value is shared with the cache; treat it as read-only.
	*/
	Get(ctx context.Context, key string) (any, error)

	/*
		Set stores a key-value pair in the cache.

		BEHAVIOR:
		---------
		- Overwriting an existing key never evicts anything
		- Inserting a new key into a full cache evicts exactly one entry first
		- The entry's TTL starts now
	*/
	Set(ctx context.Context, key string, value any) error

	/*
		Remove deletes a key from the cache immediately.
		Removing a non-existing key is safe.
	*/
	Remove(ctx context.Context, key string) error

	// Clear removes every entry.
	Clear(ctx context.Context) error

	// Size returns the number of stored entries, including expired entries that
	// have not been reclaimed yet. Size does not imply freshness.
	Size(ctx context.Context) int
}
