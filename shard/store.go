package shard

import (
	"sync/atomic"

	"github.com/bookedbarber/dashcache/types"
)

/*
This file defines how data is actually stored inside a shard. This is NOT a
normal map.
- Reads should be very fast
- Reads should NOT require locks
- Writes are less frequent and can afford extra work

To achieve this, we use a technique called: "Copy-On-Write" (COW)
*/

// Store is the interface used by a shard to store and retrieve cache entries.
type Store interface {

	// Get retrieves an entry by key.
	Get(key string) (*types.Entry, bool)

	// Put inserts or replaces an entry.
	Put(key string, ent *types.Entry)

	// Delete removes an entry.
	Delete(key string)

	// Range calls fn for every entry in a consistent snapshot of the store.
	// Iteration stops when fn returns false.
	Range(fn func(key string, ent *types.Entry) bool)

	// Len returns how many entries are stored.
	Len() int64

	// Bytes returns the total SizeBytes of all stored entries.
	Bytes() int64
}

/*
cowStore is a Copy-On-Write implementation of Store.

- Readers always see an immutable snapshot
- Writers create a NEW copy of the map
- The new map replaces the old one atomically

This gives us lock-free reads and a very simple concurrency model. The byte
counter makes the memory budget checkable in O(1) on every insert.
*/
type cowStore struct {

	// data holds the actual map[string]*Entry behind an atomic.Value so the
	// whole map can be swapped without readers taking a lock.
	data atomic.Value // stores map[string]*types.Entry

	// size and bytes are kept separate so we don't need to walk the map on
	// every budget check.
	size  atomic.Int64
	bytes atomic.Int64
}

func NewCOWStore() *cowStore {
	s := &cowStore{}
	s.data.Store(make(map[string]*types.Entry))
	return s
}

// Get retrieves an entry from the store.
func (s *cowStore) Get(key string) (*types.Entry, bool) {
	m := s.data.Load().(map[string]*types.Entry)
	ent, ok := m[key]
	return ent, ok
}

/*
Put inserts or updates an entry. This is where copy-on-write happens:

1. Load the current map
2. Create a NEW map and copy all existing entries
3. Add the new entry
4. Atomically replace the old map
5. Update size and byte counters
*/
func (s *cowStore) Put(key string, ent *types.Entry) {
	old := s.data.Load().(map[string]*types.Entry)

	n := make(map[string]*types.Entry, len(old)+1)
	var bytes int64
	for k, v := range old {
		if k == key {
			continue // replaced below
		}
		n[k] = v
		bytes += v.SizeBytes
	}
	n[key] = ent
	bytes += ent.SizeBytes

	s.data.Store(n)
	s.size.Store(int64(len(n)))
	s.bytes.Store(bytes)
}

// Delete removes an entry from the store. Just like Put, this uses copy-on-write.
func (s *cowStore) Delete(key string) {
	old := s.data.Load().(map[string]*types.Entry)
	if _, ok := old[key]; !ok {
		return
	}

	n := make(map[string]*types.Entry, len(old))
	var bytes int64
	for k, v := range old {
		if k == key {
			continue
		}
		n[k] = v
		bytes += v.SizeBytes
	}

	s.data.Store(n)
	s.size.Store(int64(len(n)))
	s.bytes.Store(bytes)
}

// Range iterates over the snapshot current at call time.
func (s *cowStore) Range(fn func(key string, ent *types.Entry) bool) {
	m := s.data.Load().(map[string]*types.Entry)
	for k, v := range m {
		if !fn(k, v) {
			return
		}
	}
}

// Len returns how many entries are in the store.
func (s *cowStore) Len() int64 {
	return s.size.Load()
}

// Bytes returns the summed stored size of all entries.
func (s *cowStore) Bytes() int64 {
	return s.bytes.Load()
}
