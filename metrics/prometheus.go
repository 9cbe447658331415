// Package metrics exports cache events as Prometheus counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/krisalay/memo-cache/types"
)

var _ types.Metrics = (*Prometheus)(nil)

// Prometheus implements types.Metrics with one counter per cache event.
type Prometheus struct {
	Hits      prometheus.Counter
	Misses    prometheus.Counter
	Evictions prometheus.Counter
	Expired   prometheus.Counter
}

// NewPrometheus creates the counters under namespace and registers them on reg.
// Passing a fresh prometheus.NewRegistry() keeps tests and multiple caches apart.
func NewPrometheus(reg prometheus.Registerer, namespace string) *Prometheus {
	factory := promauto.With(reg)

	return &Prometheus{
		Hits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Total number of cache lookups that found a fresh entry",
		}),
		Misses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Total number of cache lookups that found nothing usable",
		}),
		Evictions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_evictions_total",
			Help:      "Total number of entries removed to stay within capacity",
		}),
		Expired: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_expired_total",
			Help:      "Total number of expired entries reclaimed on access",
		}),
	}
}

func (p *Prometheus) Hit()      { p.Hits.Inc() }
func (p *Prometheus) Miss()     { p.Misses.Inc() }
func (p *Prometheus) Eviction() { p.Evictions.Inc() }
func (p *Prometheus) Expire()   { p.Expired.Inc() }
