// This file defines how cache entries expire over time.

package expiration

import (
	"time"

	"github.com/krisalay/memo-cache/types"
)

/*
Strategy is the interface that all expiration rules must follow. Instead of hard-coding
expiration logic into the cache, we define a strategy so expiration behavior can be swapped easily.
*/
type Strategy interface {

	// IsExpired checks if the entry is expired at now.
	IsExpired(*types.CacheEntry, time.Time) bool

	// OnWrite is called whenever a cache entry is written or overwritten.
	OnWrite(*types.CacheEntry, time.Time)
}
