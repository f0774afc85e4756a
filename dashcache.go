package dashcache

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/bookedbarber/dashcache/engine"
	evict "github.com/bookedbarber/dashcache/eviction"
	"github.com/bookedbarber/dashcache/shard"
	"github.com/bookedbarber/dashcache/types"
)

/*
ShardedCache is the main cache implementation.
This struct is the orchestrator that connects:
- shards
- eviction
- expiration
- loading
- write policies
- metrics
*/
type ShardedCache struct {
	// shards are the actual storage units. Each shard is an independent
	// mini-cache with its own slice of the byte budget.
	shards []*shard.Shard

	// engine contains the "rules" of the cache: expiry, prefetch hook,
	// loader, write policy, metrics.
	engine *engine.CacheEngine

	// selector decides which shard a key should go to.
	selector shard.Selector

	// budgetPerShard is the byte budget of one shard. The cache-wide budget
	// is divided evenly across shards.
	budgetPerShard int64

	compression CompressionOptions

	// singleflight prevents multiple goroutines from loading the same key
	// from the loader simultaneously.
	sf singleflight.Group

	sweepDone chan struct{}
	closeOnce sync.Once
}

// Options configures a ShardedCache.
type Options struct {

	// Shards is the number of independent storage units. Default 1: one flat
	// map, cache-wide eviction ordering. More shards trade that ordering for
	// write concurrency.
	Shards int

	// MaxBytes is the byte budget before eviction triggers. Default 50 MB.
	MaxBytes int64

	// Eviction selects the eviction policy. Default PriorityLRU.
	Eviction evict.PolicyType

	// PriorityWeightStep is how far one priority level pushes an entry's
	// eviction score into the future. Default 1 hour.
	PriorityWeightStep time.Duration

	// SweepInterval is how often stale entries are reclaimed even if nobody
	// reads them again. 0 disables the background sweeper.
	SweepInterval time.Duration

	// Compression routes large payloads through brotli before storage.
	Compression CompressionOptions
}

// CompressionOptions controls the best-effort payload compression step.
type CompressionOptions struct {
	Enabled bool

	// MinSize is the smallest payload worth compressing. Default 4 KiB.
	MinSize int
}

const (
	defaultMaxBytes = 50 << 20
	defaultMinSize  = 4 << 10
)

// NewShardedCache creates the cache and starts its sweeper if configured.
func NewShardedCache(opts Options, eng *engine.CacheEngine) *ShardedCache {
	if opts.Shards <= 0 {
		opts.Shards = 1
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = defaultMaxBytes
	}
	if opts.Compression.Enabled && opts.Compression.MinSize <= 0 {
		opts.Compression.MinSize = defaultMinSize
	}

	// Each shard gets its own eviction policy instance, sharing the clock
	// with the engine so tests can drive both from one fake.
	shards := make([]*shard.Shard, opts.Shards)
	for i := range shards {
		shards[i] = shard.New(evict.NewPolicy(opts.Eviction, evict.Config{
			WeightStep: opts.PriorityWeightStep,
			Now:        eng.Now,
		}))
	}

	c := &ShardedCache{
		shards:         shards,
		engine:         eng,
		selector:       shard.HashSelector{},
		budgetPerShard: opts.MaxBytes / int64(opts.Shards),
		compression:    opts.Compression,
		sweepDone:      make(chan struct{}),
	}

	if opts.SweepInterval > 0 {
		go c.sweeper(opts.SweepInterval)
	}

	return c
}

/*
Get retrieves a value from the cache.

A fresh entry is a hit: timestamps and hit count are refreshed and the payload
returned. A stale entry is removed and treated as a miss. On a miss the loader
is consulted through singleflight, the result is stored, and returned.
*/
func (c *ShardedCache) Get(ctx context.Context, key string) ([]byte, error) {
	sh := c.selector.Select(key, c.shards)

	if ent, ok := sh.Store.Get(key); ok {
		if c.engine.IsExpired(ent) {
			c.engine.Metrics.Expire()
			c.Remove(key)
		} else {
			c.engine.Metrics.Hit()
			c.engine.OnRead(key, ent)

			sh.Mu.Lock()
			sh.Eviction.OnGet(key)
			sh.Mu.Unlock()

			return decodeEntry(ent)
		}
	}

	c.engine.Metrics.Miss()

	/*
		singleflight ensures that if many goroutines request the same missing
		key, only ONE of them loads it from behind the cache. Others wait for
		the result.
	*/
	val, err, _ := c.sf.Do(key, func() (any, error) {
		data, err := c.engine.Load(ctx, key)
		if err != nil {
			return nil, err
		}
		if err := c.PutWithOptions(ctx, key, data, types.PutOptions{}); err != nil {
			return nil, err
		}
		return data, nil
	})
	if err != nil {
		// Keys with no backing endpoint and snapshot-only staleness both
		// surface as a plain miss to callers.
		if errors.Is(err, types.ErrNoUpstream) || errors.Is(err, types.ErrExpired) {
			return nil, types.ErrNotFound
		}
		return nil, err
	}

	return val.([]byte), nil
}

// Contains reports whether a fresh entry for key is present, without touching
// timestamps, hit counts or eviction order. The prefetch scheduler uses this
// to skip keys that are already hot.
func (c *ShardedCache) Contains(key string) bool {
	sh := c.selector.Select(key, c.shards)
	ent, ok := sh.Store.Get(key)
	return ok && !c.engine.IsExpired(ent)
}

// Put stores a value with default TTL and medium priority.
func (c *ShardedCache) Put(ctx context.Context, key string, value []byte) error {
	return c.PutWithOptions(ctx, key, value, types.PutOptions{})
}

// PutWithTTL stores a value with an explicit TTL.
func (c *ShardedCache) PutWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.PutWithOptions(ctx, key, value, types.PutOptions{TTL: ttl})
}

/*
PutWithOptions stores a value with explicit per-entry options.

The payload is optionally compressed, its stored size is computed, and if the
insert would push the shard over its byte budget the eviction policy frees
space first. The byte-budget invariant holds the moment this returns: total
stored bytes never exceed the budget after an insert completes.
*/
func (c *ShardedCache) PutWithOptions(ctx context.Context, key string, value []byte, opts types.PutOptions) error {
	pri := opts.Priority
	if pri == "" {
		pri = types.PriorityMedium
	}

	stored, compressed := c.encode(value)
	size := int64(len(stored))
	if size > c.budgetPerShard {
		return types.ErrValueTooLarge
	}

	sh := c.selector.Select(key, c.shards)

	sh.Mu.Lock()
	defer sh.Mu.Unlock()

	// Replacement is delete + insert so byte accounting stays exact and the
	// eviction policy never picks the key being written as its own victim.
	if _, ok := sh.Store.Get(key); ok {
		sh.Store.Delete(key)
		sh.Eviction.Remove(key)
	}

	if over := sh.Store.Bytes() + size - c.budgetPerShard; over > 0 {
		for _, victim := range sh.Eviction.Evict(over) {
			sh.Store.Delete(victim)
			c.engine.Metrics.Eviction()
		}
	}

	ent := &types.Entry{
		Key:        key,
		Value:      stored,
		SizeBytes:  size,
		Priority:   pri,
		Category:   types.CategoryOf(key),
		Compressed: compressed,
	}
	if opts.TTL > 0 {
		ent.ExpireAt = c.engine.Now().Add(opts.TTL)
	}

	// Apply expiration stamps and forward the raw payload to the write policy.
	c.engine.OnWrite(ctx, ent, value)

	sh.Store.Put(key, ent)
	sh.Eviction.OnPut(key, size, pri)

	return nil
}

// Remove deletes a key from the cache immediately. Idempotent.
func (c *ShardedCache) Remove(key string) {
	sh := c.selector.Select(key, c.shards)

	sh.Mu.Lock()
	defer sh.Mu.Unlock()

	sh.Store.Delete(key)
	sh.Eviction.Remove(key)
}

/*
Clear removes entries in bulk and returns how many were removed.
With an empty category it empties the whole store; otherwise only entries of
the matching category are removed, other categories stay untouched.
*/
func (c *ShardedCache) Clear(category types.Category) int {
	removed := 0
	for _, sh := range c.shards {
		sh.Mu.Lock()
		var victims []string
		sh.Store.Range(func(k string, ent *types.Entry) bool {
			if category == "" || ent.Category == category {
				victims = append(victims, k)
			}
			return true
		})
		for _, k := range victims {
			sh.Store.Delete(k)
			sh.Eviction.Remove(k)
			removed++
		}
		sh.Mu.Unlock()
	}
	return removed
}

// Expire sets or updates the TTL for an existing key. Returns false when the
// key does not exist.
func (c *ShardedCache) Expire(key string, ttl time.Duration) bool {
	sh := c.selector.Select(key, c.shards)

	sh.Mu.Lock()
	defer sh.Mu.Unlock()

	ent, ok := sh.Store.Get(key)
	if !ok {
		return false
	}

	ent.ExpireAt = c.engine.Now().Add(ttl)
	return true
}

/*
TTL returns the remaining time-to-live for a key.

Redis-compatible semantics:
> 0 : duration remaining before expiration
-1  : key exists but has no TTL
-2  : key does not exist or is already expired
*/
func (c *ShardedCache) TTL(key string) time.Duration {
	sh := c.selector.Select(key, c.shards)

	ent, ok := sh.Store.Get(key)
	if !ok {
		return -2
	}
	if ent.ExpireAt.IsZero() {
		return -1
	}

	d := ent.ExpireAt.Sub(c.engine.Now())
	if d < 0 {
		return -2
	}
	return d
}

// Len returns the number of entries across all shards.
func (c *ShardedCache) Len() int64 {
	var n int64
	for _, sh := range c.shards {
		n += sh.Store.Len()
	}
	return n
}

// Bytes returns the total stored payload size across all shards.
func (c *ShardedCache) Bytes() int64 {
	var n int64
	for _, sh := range c.shards {
		n += sh.Store.Bytes()
	}
	return n
}

/*
Sweep removes every stale entry and returns how many were removed. The sweeper
calls this on its interval so memory is reclaimed even for keys nobody reads
again; tests call it directly.
*/
func (c *ShardedCache) Sweep() int {
	removed := 0
	for _, sh := range c.shards {
		sh.Mu.Lock()
		var stale []string
		sh.Store.Range(func(k string, ent *types.Entry) bool {
			if c.engine.IsExpired(ent) {
				stale = append(stale, k)
			}
			return true
		})
		for _, k := range stale {
			sh.Store.Delete(k)
			sh.Eviction.Remove(k)
			c.engine.Metrics.Expire()
			removed++
		}
		sh.Mu.Unlock()
	}
	return removed
}

func (c *ShardedCache) sweeper(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			c.Sweep()
		case <-c.sweepDone:
			return
		}
	}
}

// Close gracefully shuts down the cache: the sweeper stops and pending
// write-back operations are flushed.
func (c *ShardedCache) Close() {
	c.closeOnce.Do(func() {
		close(c.sweepDone)
		if c.engine.WritePolicy != nil {
			c.engine.WritePolicy.Close()
		}
	})
}
