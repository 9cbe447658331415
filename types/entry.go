package types

import "time"

// CacheEntry is one stored value and the moment it was written.
// The cache owns Value once stored; callers must treat what Get returns as read-only.
type CacheEntry struct {
	Key        string
	Value      any
	InsertedAt time.Time
}
