package shard

import "hash/fnv"

/*
This file decides HOW a cache key is assigned to a shard. Shard selection is
about load balancing and avoiding hot spots under concurrency.
*/

// Selector is the interface that decides which shard should handle a given key.
// Different strategies can be plugged in.
type Selector interface {
	Select(key string, shards []*Shard) *Shard
}

// HashSelector routes a key to a shard by FNV hash. FNV is a fast,
// non-cryptographic hash commonly used for this kind of routing.
type HashSelector struct{}

func hash(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}

// Select chooses the shard for a given key.
func (HashSelector) Select(key string, shards []*Shard) *Shard {
	if len(shards) == 1 {
		return shards[0]
	}
	return shards[int(hash(key))%len(shards)]
}
