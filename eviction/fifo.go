// This file implements insertion-time (FIFO) eviction.

package eviction

import "container/list"

type fifo struct {
	// order keeps keys by insertion time.
	// The front of the list is the oldest write.
	order *list.List

	// elems finds a key's list element in O(1).
	elems map[string]*list.Element
}

func newFIFO() *fifo {
	return &fifo{
		order: list.New(),
		elems: make(map[string]*list.Element),
	}
}

// OnGet is a no-op. Reads never change insertion time.
func (f *fifo) OnGet(string) {}

// OnPut records a write. A new key goes to the back of the queue. An overwritten key
// is re-stamped by the cache, so it moves to the back as well.
func (f *fifo) OnPut(k string) {
	if el, ok := f.elems[k]; ok {
		f.order.MoveToBack(el)
		return
	}
	f.elems[k] = f.order.PushBack(k)
}

// Evict removes and returns the key with the oldest insertion time.
// Keys written at the same instant leave in the order they were written.
func (f *fifo) Evict() (string, bool) {
	el := f.order.Front()
	if el == nil {
		return "", false
	}
	k := f.order.Remove(el).(string)
	delete(f.elems, k)
	return k, true
}

// Remove stops tracking a key that left the cache without being evicted.
func (f *fifo) Remove(k string) {
	if el, ok := f.elems[k]; ok {
		f.order.Remove(el)
		delete(f.elems, k)
	}
}

func (f *fifo) Reset() {
	f.order.Init()
	clear(f.elems)
}

func (f *fifo) Len() int {
	return f.order.Len()
}
