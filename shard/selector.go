package shard

import "github.com/cespare/xxhash/v2"

/*
This file decides HOW a cache key is assigned to a shard.
If every request went to the same shard, that shard would become a bottleneck.
*/

/*
Selector is the interface that decides which shard should handle a given key.
The cache does not care HOW this decision is made. Different strategies can be plugged in.
A selector must always map the same key to the same shard.
*/
type Selector interface {
	Select(string, []*Shard) *Shard
}

// HashSelector picks a shard by xxhash of the key modulo the shard count.
type HashSelector struct{}

func (HashSelector) Select(key string, shards []*Shard) *Shard {
	if len(shards) == 1 {
		return shards[0]
	}
	return shards[xxhash.Sum64String(key)%uint64(len(shards))]
}
