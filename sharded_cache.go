package cache

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/krisalay/memo-cache/api"
	"github.com/krisalay/memo-cache/config"
	"github.com/krisalay/memo-cache/engine"
	"github.com/krisalay/memo-cache/eviction"
	"github.com/krisalay/memo-cache/expiration"
	"github.com/krisalay/memo-cache/shard"
)

var (
	_ api.Cache   = (*ShardedCache)(nil)
	_ shard.Store = (*TTLCache)(nil)
)

/*
ShardedCache is the concurrency-safe cache that request handlers share.
This struct is the orchestrator that connects:
- shards (each a locked TTLCache)
- the shard selector
- the engine (expiration, metrics, logging, clock)

Every operation locks exactly one shard for one in-memory step and then releases it.
Operations on the same key are linearizable; nothing is ordered across keys.
*/
type ShardedCache struct {
	// shards are the actual storage units. Each shard is an independent mini-cache.
	shards []*shard.Shard

	// engine contains the "rules" of the cache: TTL, metrics, logging, clock.
	engine *engine.CacheEngine

	// selector decides which shard a key should go to.
	selector shard.Selector

	capacity int
	ttl      time.Duration
}

/*
NewCache creates a cache holding at most capacity entries, each living for
ttlSeconds after it was written.

Configuration errors are reported here rather than on first use:
capacity must be positive and ttlSeconds must not be negative. A ttlSeconds of
zero is accepted and makes every entry stale on its first read.
*/
func NewCache(capacity, ttlSeconds int, opts ...Option) (*ShardedCache, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	ttl := time.Duration(ttlSeconds) * time.Second
	if err := validate(capacity, ttl, o.shards); err != nil {
		return nil, err
	}

	eng := engine.NewCacheEngine(&expiration.FixedTTL{TTL: ttl}, o.metrics, o.logger, o.now)

	s := make([]*shard.Shard, o.shards)
	for i := range s {
		// Each shard gets its own eviction policy instance and a share of the capacity.
		policy, err := eviction.NewEvictionPolicy(o.eviction)
		if err != nil {
			return nil, newConfigError("eviction", o.eviction, ErrInvalidEviction)
		}
		s[i] = shard.NewShard(newTTLCache(shardCapacity(capacity, o.shards, i), ttl, policy, eng))
	}

	eng.Logger.Info("cache created",
		zap.Int("capacity", capacity),
		zap.Duration("ttl", ttl),
		zap.Int("shards", o.shards),
		zap.String("eviction", string(o.eviction)),
	)

	return &ShardedCache{
		shards:   s,
		engine:   eng,
		selector: shard.HashSelector{},
		capacity: capacity,
		ttl:      ttl,
	}, nil
}

// NewFromConfig builds a cache from loaded configuration. Options passed here
// override the configured shard count and eviction policy.
func NewFromConfig(cfg config.Cache, opts ...Option) (*ShardedCache, error) {
	base := []Option{
		WithShards(cfg.Shards),
		WithEviction(eviction.PolicyType(cfg.Eviction)),
	}
	return NewCache(cfg.Capacity, cfg.TTLSeconds, append(base, opts...)...)
}

// shardCapacity splits capacity across n shards, giving the remainder to the first shards.
func shardCapacity(capacity, n, i int) int {
	per := capacity / n
	if i < capacity%n {
		per++
	}
	return per
}

// Get returns api.ErrNotFound when key is absent or expired.
func (c *ShardedCache) Get(_ context.Context, key string) (any, error) {
	v, ok := c.selector.Select(key, c.shards).Get(key)
	if !ok {
		return nil, api.ErrNotFound
	}
	return v, nil
}

func (c *ShardedCache) Set(_ context.Context, key string, value any) error {
	c.selector.Select(key, c.shards).Set(key, value)
	return nil
}

func (c *ShardedCache) Remove(_ context.Context, key string) error {
	c.selector.Select(key, c.shards).Remove(key)
	return nil
}

// Clear empties every shard, one lock at a time. A concurrent Set may land in a
// shard that has already been cleared.
func (c *ShardedCache) Clear(_ context.Context) error {
	for _, sh := range c.shards {
		sh.Clear()
	}
	return nil
}

// Size sums the shard sizes, one lock at a time.
func (c *ShardedCache) Size(_ context.Context) int {
	n := 0
	for _, sh := range c.shards {
		n += sh.Size()
	}
	return n
}

// Capacity returns the configured maximum number of entries across all shards.
func (c *ShardedCache) Capacity() int {
	return c.capacity
}

// TTL returns the uniform time-to-live.
func (c *ShardedCache) TTL() time.Duration {
	return c.ttl
}
