package shard

import "sync"

/*
This file defines what a "Shard" is. A shard is a small, independent piece of the cache.
Instead of having: One big cache and one big lock
We split the cache into many shards. Each shard:
- Holds some portion of the data
- Has its own capacity and eviction order
- Has its own lock

A lock is only ever held for one in-memory operation on one shard.
*/

type Shard struct {
	mu    sync.Mutex
	store Store
}

func NewShard(store Store) *Shard {
	return &Shard{store: store}
}

func (s *Shard) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Get(key)
}

func (s *Shard) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Set(key, value)
}

func (s *Shard) Remove(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Remove(key)
}

func (s *Shard) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Clear()
}

func (s *Shard) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Size()
}
