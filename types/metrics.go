package types

// This file defines how the cache reports what it is doing.

/*
Metrics is an interface that defines what the cache wants to measure.
Each method represents an event in the cache lifecycle. The cache will call these methods whenever something happens.
*/
type Metrics interface {

	// Hit is called when a Get finds a live entry.
	Hit()

	// Miss is called when a Get finds nothing, or finds an entry that has just expired.
	Miss()

	// Eviction is called when a key is removed because the cache is full and needs space.
	Eviction()

	// Expire is called when a key is removed because it has passed its TTL.
	Expire()
}

/*
NoopMetrics is a "do nothing" implementation of Metrics.

It lets the engine call metric hooks unconditionally, so callers that do not
care about metrics never have to pass one in.
*/
type NoopMetrics struct{}

func (NoopMetrics) Hit()      {}
func (NoopMetrics) Miss()     {}
func (NoopMetrics) Eviction() {}
func (NoopMetrics) Expire()   {}
