package cache

import (
	"time"

	"go.uber.org/zap"

	"github.com/krisalay/memo-cache/eviction"
	"github.com/krisalay/memo-cache/types"
)

type options struct {
	shards   int
	eviction eviction.PolicyType
	metrics  types.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// Option customizes a cache built by NewCache.
type Option func(*options)

func defaultOptions() options {
	return options{
		shards:   1,
		eviction: eviction.FIFO,
	}
}

// WithShards splits the cache into n independently locked shards.
// Capacity is divided between them and eviction order is kept per shard,
// so only n == 1 gives exact cache-wide oldest-first eviction.
func WithShards(n int) Option {
	return func(o *options) { o.shards = n }
}

// WithEviction selects the eviction policy. The default is eviction.FIFO.
func WithEviction(p eviction.PolicyType) Option {
	return func(o *options) { o.eviction = p }
}

func WithMetrics(m types.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock replaces time.Now. Used by tests to step time deterministically.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}
