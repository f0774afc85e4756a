package eviction

/*
This file defines how the cache decides what to remove when it runs out of
byte budget.
*/

import (
	"time"

	"github.com/bookedbarber/dashcache/types"
)

/*
Policy is the interface that all eviction strategies must follow.

The cache does NOT care how eviction works internally.
It only calls these methods.

Policies track sizes and priorities themselves so that Evict can free an exact
amount of space without consulting the store.
*/
type Policy interface {

	// OnGet is called whenever a key is read from the cache.
	//
	// Recency-based strategies need to know what was accessed recently;
	// frequency-based ones count accesses.
	OnGet(key string)

	// OnPut is called whenever a key is added to (or replaced in) the cache.
	//
	// This lets the eviction policy track insertion order, byte size and
	// priority metadata for the key.
	OnPut(key string, size int64, pri types.Priority)

	// Remove is called when a key is explicitly removed from the cache
	// (cleared or expired, not evicted). This cleans up internal bookkeeping.
	Remove(key string)

	// Evict is called when the cache needs space. The policy picks victims in
	// its own order until the cumulative freed size reaches spaceNeeded, and
	// returns their keys. The cache then actually removes them from storage.
	//
	// Fewer bytes may be freed if the tracked entries run out first.
	Evict(spaceNeeded int64) []string
}

// PolicyType is a simple identifier for supported eviction strategies.
type PolicyType string

const (
	// PriorityLRU evicts by an eviction score: last access time plus a weight
	// step per priority level. The default for dashboard data, where pinned
	// high-priority panels must outlive cold low-priority ones.
	PriorityLRU PolicyType = "PRIORITY_LRU"

	// LRU (Least Recently Used): evicts the key that has NOT been accessed
	// for the longest time, ignoring priority.
	LRU PolicyType = "LRU"

	// LFU (Least Frequently Used): evicts the key that has been accessed the
	// fewest times. Works well when some dashboard panels are consistently hot.
	LFU PolicyType = "LFU"
)

// Config carries the tunables shared by eviction policies.
type Config struct {

	// WeightStep is how far into the future one priority level pushes an
	// entry's eviction score. The constant is a heuristic, so it is exposed
	// as a knob rather than hard-coded.
	WeightStep time.Duration

	// Now supplies timestamps for recency tracking. Defaults to time.Now.
	Now func() time.Time
}

const defaultWeightStep = time.Hour

func (c Config) withDefaults() Config {
	if c.WeightStep <= 0 {
		c.WeightStep = defaultWeightStep
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// NewPolicy is a small factory function.
// Given a PolicyType, it creates the correct eviction policy.
func NewPolicy(t PolicyType, cfg Config) Policy {
	cfg = cfg.withDefaults()
	switch t {
	case PriorityLRU, "":
		return newPriorityLRU(cfg)
	case LRU:
		return newLRU(cfg)
	case LFU:
		return newLFU()
	default:
		panic("unknown eviction policy")
	}
}
