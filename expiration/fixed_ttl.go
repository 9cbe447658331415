package expiration

import (
	"time"

	"github.com/krisalay/memo-cache/types"
)

/*
FixedTTL implements "expire after write" with one TTL for every entry.

An entry is valid for reads iff now - InsertedAt < TTL. Reads never extend
an entry's life; only a new write does. A zero TTL makes every entry stale
on its first read.
*/
type FixedTTL struct {
	TTL time.Duration
}

// IsExpired reports whether the entry has outlived the TTL.
func (f *FixedTTL) IsExpired(ent *types.CacheEntry, now time.Time) bool {
	return now.Sub(ent.InsertedAt) >= f.TTL
}

// OnWrite stamps the entry with its insertion time.
func (f *FixedTTL) OnWrite(ent *types.CacheEntry, now time.Time) {
	ent.InsertedAt = now
}
