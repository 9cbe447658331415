package shard

/*
This file defines what a shard stores its data in.

A Store is the single-owner cache core: a TTL-aware map with a capacity bound.
It is NOT safe for concurrent use on its own. The Shard that owns it serializes
every call with its mutex.
*/

// Store is the interface used by a shard to store and retrieve cache entries.
type Store interface {

	// Get returns the live value for key. Expired entries are removed and reported absent.
	Get(string) (any, bool)

	// Set inserts or overwrites an entry, evicting one entry first if the store is full.
	Set(string, any)

	// Remove deletes an entry and reports whether it was present.
	Remove(string) bool

	// Clear removes every entry.
	Clear()

	// Size returns how many entries are stored, including expired ones not yet reclaimed.
	Size() int
}
