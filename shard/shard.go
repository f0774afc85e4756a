package shard

import (
	"sync"

	"github.com/bookedbarber/dashcache/eviction"
)

/*
This file defines what a "Shard" is. A shard is a small, independent piece of
the cache. Instead of one big map and one big lock, the cache is split into
shards. Each shard:
- Holds some portion of the data and of the byte budget
- Has its own eviction policy instance
- Has its own lock for writes

A single-shard cache is the faithful rendition of the per-session dashboard
store (one flat map); more shards trade the global eviction ordering for write
concurrency.
*/

type Shard struct {

	// Store holds the actual key → entry data for this shard. It is a
	// copy-on-write store that allows lock-free reads.
	Store Store

	// Eviction controls which keys should be removed when this shard runs out
	// of its slice of the byte budget. Each shard has its OWN policy instance
	// to avoid shared state.
	Eviction eviction.Policy

	// Mu protects write operations on this shard. Reads are lock-free.
	Mu sync.Mutex
}

func New(ev eviction.Policy) *Shard {
	return &Shard{
		Store:    NewCOWStore(),
		Eviction: ev,
	}
}
