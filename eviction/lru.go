// This file implements LRU eviction.

package eviction

import "container/list"

// lru keeps keys in a doubly-linked list ordered by last use.
// Front is the most recently used key, back is the least recently used.
type lru struct {
	order *list.List
	elems map[string]*list.Element
}

func newLRU() *lru {
	return &lru{
		order: list.New(),
		elems: make(map[string]*list.Element),
	}
}

// OnGet marks a key as most recently used.
func (l *lru) OnGet(k string) {
	if el, ok := l.elems[k]; ok {
		l.order.MoveToFront(el)
	}
}

// OnPut adds a new key at the front, or moves an existing one there.
func (l *lru) OnPut(k string) {
	if el, ok := l.elems[k]; ok {
		l.order.MoveToFront(el)
		return
	}
	l.elems[k] = l.order.PushFront(k)
}

// Evict removes the least recently used key, which always sits at the back.
func (l *lru) Evict() (string, bool) {
	el := l.order.Back()
	if el == nil {
		return "", false
	}
	k := l.order.Remove(el).(string)
	delete(l.elems, k)
	return k, true
}

func (l *lru) Remove(k string) {
	if el, ok := l.elems[k]; ok {
		l.order.Remove(el)
		delete(l.elems, k)
	}
}

func (l *lru) Reset() {
	l.order.Init()
	clear(l.elems)
}

func (l *lru) Len() int {
	return l.order.Len()
}
