package engine

import (
	"time"

	"go.uber.org/zap"

	"github.com/krisalay/memo-cache/expiration"
	"github.com/krisalay/memo-cache/types"
)

/*
CacheEngine is the "brain" of the cache system.
It is responsible for the "behavior" of the cache, NOT storage.
This acts as the policy layer.

It decides:
- When data is expired
- What time it is (so tests can drive the clock)
- How metrics are recorded
- What gets logged

It does NOT:
- Store data
- Handle sharding
- Handle locking
- Decide eviction order

One engine is shared by every shard of a cache, so all of its fields must be safe
for concurrent use.
*/
type CacheEngine struct {

	// Expiration controls when a cache entry should be considered "too old".
	// If this is nil, entries never expire based on time.
	Expiration expiration.Strategy

	// Metrics is how we keep track of what the cache is doing.
	Metrics types.Metrics

	// Logger receives debug events for evictions and expiries.
	Logger *zap.Logger

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

/*
NewCacheEngine creates a CacheEngine.
Nil metrics, logger, or clock are replaced with no-op / wall-clock defaults.
*/
func NewCacheEngine(
	exp expiration.Strategy,
	metrics types.Metrics,
	logger *zap.Logger,
	now func() time.Time,
) *CacheEngine {

	if metrics == nil {
		metrics = types.NoopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}

	return &CacheEngine{
		Expiration: exp,
		Metrics:    metrics,
		Logger:     logger,
		Now:        now,
	}
}

/*
IsExpired checks whether a cache entry is expired right now.
Returns false if no expiration strategy is configured.
*/
func (e *CacheEngine) IsExpired(ent *types.CacheEntry) bool {
	return e.Expiration != nil &&
		e.Expiration.IsExpired(ent, e.Now())
}

/*
OnWrite is called whenever something is written to the cache.
It stamps the entry with the current time through the expiration strategy.
*/
func (e *CacheEngine) OnWrite(ent *types.CacheEntry) {
	now := e.Now()
	if e.Expiration != nil {
		e.Expiration.OnWrite(ent, now)
		return
	}
	ent.InsertedAt = now
}

// OnExpire records that a stale entry was reclaimed on access.
func (e *CacheEngine) OnExpire(key string) {
	e.Metrics.Expire()
	e.Logger.Debug("cache entry expired", zap.String("key", key))
}

// OnEvict records that a live entry was pushed out by capacity pressure.
func (e *CacheEngine) OnEvict(key string) {
	e.Metrics.Eviction()
	e.Logger.Debug("cache entry evicted", zap.String("key", key))
}
