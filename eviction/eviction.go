package eviction

import "fmt"

/*
This file defines how the cache decides what to remove when it runs out of space.
*/

/*
Policy is the interface that all eviction strategies must follow.

The cache does NOT care how eviction works internally.
It only calls these methods, always while holding the owning shard's lock,
so implementations do not need their own synchronization.
*/
type Policy interface {

	// OnGet is called whenever a live key is read from the cache.
	//
	// FIFO ignores this. LRU moves the key to the most recently used position.
	OnGet(string)

	// OnPut is called whenever a key is written, both for new keys and overwrites.
	//
	// A write stamps the entry with a fresh insertion time, so every policy
	// treats the key as the newest one afterwards.
	OnPut(string)

	// Remove is called when a key leaves the cache for a reason other than
	// eviction (expiry or explicit removal).
	Remove(string)

	// Evict is called when the cache is FULL and needs space.
	//
	// It returns the key that should be evicted and stops tracking it.
	// The cache will then actually remove it from storage.
	// ok is false when the policy tracks no keys; "" is a valid key.
	Evict() (key string, ok bool)

	// Reset drops all tracked keys.
	Reset()

	// Len returns the number of tracked keys.
	Len() int
}

// PolicyType is a simple identifier for supported eviction strategies.
type PolicyType string

const (
	// FIFO evicts the entry with the oldest insertion time, regardless of reads.
	// This is the default: TTL already bounds staleness, so recency is not tracked.
	FIFO PolicyType = "fifo"

	// LRU (Least Recently Used) evicts the key that has not been read or written
	// for the longest time. Opt-in only.
	LRU PolicyType = "lru"
)

// NewEvictionPolicy is a small factory function.
// Given a PolicyType, it creates the correct eviction policy.
func NewEvictionPolicy(t PolicyType) (Policy, error) {
	switch t {
	case FIFO, "":
		return newFIFO(), nil
	case LRU:
		return newLRU(), nil
	default:
		return nil, fmt.Errorf("unknown eviction policy %q", t)
	}
}
