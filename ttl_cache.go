package cache

import (
	"time"

	"github.com/krisalay/memo-cache/engine"
	"github.com/krisalay/memo-cache/eviction"
	"github.com/krisalay/memo-cache/expiration"
	"github.com/krisalay/memo-cache/types"
)

/*
TTLCache is the single-owner cache core: a key → entry map with a maximum entry
count and one TTL shared by every entry.

Expiry is lazy. Nothing sweeps the map in the background; an expired entry is
reclaimed when it is read, or when it happens to be the eviction victim.

TTLCache is NOT safe for concurrent use. ShardedCache wraps it with a lock;
use NewTTLCache directly only when a single goroutine owns the cache.
*/
type TTLCache struct {
	capacity int
	ttl      time.Duration
	entries  map[string]*types.CacheEntry
	policy   eviction.Policy
	engine   *engine.CacheEngine
}

// NewTTLCache builds a standalone FIFO cache. It rejects capacity <= 0 and ttl < 0.
func NewTTLCache(capacity int, ttl time.Duration, opts ...Option) (*TTLCache, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := validate(capacity, ttl, 1); err != nil {
		return nil, err
	}
	policy, err := eviction.NewEvictionPolicy(o.eviction)
	if err != nil {
		return nil, newConfigError("eviction", o.eviction, ErrInvalidEviction)
	}
	eng := engine.NewCacheEngine(&expiration.FixedTTL{TTL: ttl}, o.metrics, o.logger, o.now)
	return newTTLCache(capacity, ttl, policy, eng), nil
}

func newTTLCache(capacity int, ttl time.Duration, policy eviction.Policy, eng *engine.CacheEngine) *TTLCache {
	return &TTLCache{
		capacity: capacity,
		ttl:      ttl,
		entries:  make(map[string]*types.CacheEntry, capacity),
		policy:   policy,
		engine:   eng,
	}
}

/*
Get returns the value stored under key if it is still fresh.

BEHAVIOR:
---------
- Fresh entry: hit, the eviction policy is told about the read
- Expired entry: removed from the map and the policy, reported absent
- Missing entry: reported absent
*/
func (c *TTLCache) Get(key string) (any, bool) {
	ent, ok := c.entries[key]
	if !ok {
		c.engine.Metrics.Miss()
		return nil, false
	}

	if c.engine.IsExpired(ent) {
		c.delete(key)
		c.engine.OnExpire(key)
		c.engine.Metrics.Miss()
		return nil, false
	}

	c.engine.Metrics.Hit()
	c.policy.OnGet(key)
	return ent.Value, true
}

/*
Set inserts or overwrites key.

BEHAVIOR:
---------
- New key in a full cache: exactly one entry is evicted first (with the
  default policy, the one with the oldest insertion time, expired or not)
- Existing key: overwritten in place, nothing is evicted, size is unchanged
- Either way the entry's insertion time becomes now
*/
func (c *TTLCache) Set(key string, value any) {
	ent, exists := c.entries[key]

	if !exists && len(c.entries) >= c.capacity {
		if victim, ok := c.policy.Evict(); ok {
			delete(c.entries, victim)
			c.engine.OnEvict(victim)
		}
	}

	if !exists {
		ent = &types.CacheEntry{Key: key}
		c.entries[key] = ent
	}
	ent.Value = value
	c.engine.OnWrite(ent)
	c.policy.OnPut(key)
}

// Remove deletes key and reports whether it was present.
func (c *TTLCache) Remove(key string) bool {
	if _, ok := c.entries[key]; !ok {
		return false
	}
	c.delete(key)
	return true
}

// Clear removes every entry.
func (c *TTLCache) Clear() {
	clear(c.entries)
	c.policy.Reset()
}

// Size counts stored entries, including expired ones not yet reclaimed.
func (c *TTLCache) Size() int {
	return len(c.entries)
}

// Capacity returns the maximum number of entries.
func (c *TTLCache) Capacity() int {
	return c.capacity
}

// TTL returns the uniform time-to-live.
func (c *TTLCache) TTL() time.Duration {
	return c.ttl
}

func (c *TTLCache) delete(key string) {
	delete(c.entries, key)
	c.policy.Remove(key)
}

func validate(capacity int, ttl time.Duration, shards int) error {
	if capacity <= 0 {
		return newConfigError("capacity", capacity, ErrInvalidCapacity)
	}
	if ttl < 0 {
		return newConfigError("ttl", ttl, ErrInvalidTTL)
	}
	if shards <= 0 || shards > capacity {
		return newConfigError("shards", shards, ErrInvalidShards)
	}
	return nil
}
