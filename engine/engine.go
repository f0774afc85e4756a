package engine

import (
	"context"
	"time"

	"github.com/bookedbarber/dashcache/expiration"
	"github.com/bookedbarber/dashcache/prefetch"
	"github.com/bookedbarber/dashcache/types"
	"github.com/bookedbarber/dashcache/writepolicy"
)

/*
CacheEngine is the "brain" of the cache system.
It is responsible for the "behavior" of the cache, NOT storage.
This acts as the policy layer.

It decides:
- When data is expired
- How timestamps are updated on reads/writes
- When the prefetch hook is notified
- How data is loaded on cache miss
- How writes are propagated to the snapshot tier

It does NOT:
- Store data
- Handle sharding
- Handle locking
- Decide eviction order
*/
type CacheEngine struct {

	// Expiration controls when a cache entry should be considered too old.
	// If this is nil, entries never expire based on time.
	Expiration expiration.Strategy

	// Prefetch is an optional hook that runs when data is read, feeding
	// access patterns to the prefetch scheduler without blocking the read.
	// If nil, no prefetch signal is emitted.
	Prefetch prefetch.Hook

	// Loader is how the cache talks to the outside world when it does NOT
	// have the data: the snapshot tier, the BookedBarber API, or both chained.
	// This enables read-through caching.
	Loader types.Loader

	// WritePolicy decides what happens when data is written to the cache:
	// write-through or write-back to the snapshot tier.
	// If nil, cache writes stay only in memory.
	WritePolicy writepolicy.WritePolicy

	// Metrics is how we keep track of what the cache is doing.
	// Hits, misses, evictions, expirations, prefetches.
	Metrics types.Metrics

	// Now supplies wall-clock time. Tests substitute a fake clock here.
	Now func() time.Time
}

// NewCacheEngine creates a CacheEngine.
func NewCacheEngine(
	exp expiration.Strategy,
	pf prefetch.Hook,
	loader types.Loader,
	writePolicy writepolicy.WritePolicy,
	metrics types.Metrics,
) *CacheEngine {

	// Ensure metrics is always non-nil.
	// This avoids defensive nil checks throughout the codebase.
	if metrics == nil {
		metrics = types.NoopMetrics{}
	}

	return &CacheEngine{
		Expiration:  exp,
		Prefetch:    pf,
		Loader:      loader,
		WritePolicy: writePolicy,
		Metrics:     metrics,
		Now:         time.Now,
	}
}

// IsExpired checks whether a cache entry is expired right now.
// Returns false if no expiration strategy is configured.
func (e *CacheEngine) IsExpired(ent *types.Entry) bool {
	return e.Expiration != nil &&
		e.Expiration.IsExpired(ent, e.Now())
}

/*
OnRead is called every time the cache successfully returns a value.

This is where read-related behavior lives:
- Update timestamps per the expiration strategy
- Count the hit on the entry
- Notify the prefetch scheduler
*/
func (e *CacheEngine) OnRead(key string, ent *types.Entry) {
	now := e.Now()

	ent.HitCount++

	if e.Expiration != nil {
		e.Expiration.OnAccess(ent, now)
	} else {
		ent.LastAccessedAt = now
	}

	// The hook is best-effort and must never slow down the read path.
	if e.Prefetch != nil {
		e.Prefetch.OnRead(key, ent)
	}
}

/*
OnWrite is called whenever something is written to the cache.

raw is the uncompressed payload: the snapshot tier stores payloads as given so
a warm restart reads them back without knowing the compression settings.
*/
func (e *CacheEngine) OnWrite(ctx context.Context, ent *types.Entry, raw []byte) {
	now := e.Now()

	if e.Expiration != nil {
		e.Expiration.OnWrite(ent, now)
	} else {
		ent.CreatedAt = now
		ent.LastAccessedAt = now
	}

	if e.WritePolicy != nil {
		e.WritePolicy.OnWrite(ctx, ent.Key, raw)
	}
}

// Load is used when the cache does NOT have the data. This usually means a
// snapshot read or a network request to the BookedBarber API.
func (e *CacheEngine) Load(ctx context.Context, key string) ([]byte, error) {
	return e.Loader.Load(ctx, key)
}
