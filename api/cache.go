package api

import (
	"context"
	"time"

	"github.com/bookedbarber/dashcache/types"
)

/*
Cache defines the PUBLIC API of the dashboard cache.
This is a contract that guarantees certain behaviors without exposing
internals. All of the details (sharding, eviction, expiration, concurrency,
loading, persistence) are hidden behind this interface.
*/
type Cache interface {

	/*
		Get retrieves the payload associated with the given key.

		BEHAVIOR:
		---------
		1. If the key exists in cache and is NOT stale:
		   - Refresh its access time and hit count
		   - Return the payload immediately (cache hit)

		2. If the key does NOT exist or is stale:
		   - Load the payload from behind the cache (snapshot tier / API)
		   - Store it in cache
		   - Return the payload (cache miss)

		A miss with nothing to load reports types.ErrNotFound. That is normal
		control flow, not a failure.
	*/
	Get(ctx context.Context, key string) ([]byte, error)

	/*
		Put stores a payload with the default TTL and medium priority.

		- Computes the stored size (after optional compression)
		- Evicts first if the insert would exceed the byte budget
		- Applies the expiration strategy and the write policy
	*/
	Put(ctx context.Context, key string, value []byte) error

	// PutWithTTL stores a payload with an explicit time-to-live.
	PutWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// PutWithOptions stores a payload with explicit TTL and priority.
	PutWithOptions(ctx context.Context, key string, value []byte, opts types.PutOptions) error

	// Contains reports whether a fresh entry is present, without mutating
	// any bookkeeping. Used by the prefetch scheduler.
	Contains(key string) bool

	/*
		Remove deletes a key from the cache immediately.

		- Removes the key from in-memory storage
		- Removes it from eviction policy tracking
		- Does NOT touch the snapshot tier

		This operation is idempotent: removing a non-existing key is safe.
	*/
	Remove(key string)

	/*
		Clear removes entries in bulk and returns how many were removed.

		- Empty category: empties the whole store
		- Otherwise: removes only entries of that category; unrelated
		  categories are untouched
	*/
	Clear(category types.Category) int

	/*
		Expire sets or updates the TTL for an existing key.

		- Key exists: expiration becomes now + ttl, returns true
		- Key missing: does nothing, returns false
	*/
	Expire(key string, ttl time.Duration) bool

	/*
		TTL returns the remaining time-to-live for a key.

		RETURN VALUES (Redis-compatible semantics):
		-------------------------------------------
		> 0 : duration remaining before expiration
		-1  : key exists but has no TTL
		-2  : key does not exist or is already expired
	*/
	TTL(key string) time.Duration

	// Len returns the current entry count.
	Len() int64

	// Bytes returns the total stored payload size.
	Bytes() int64

	/*
		Close gracefully shuts down the cache:
		- Stops the background sweeper
		- Flushes pending write-back operations
	*/
	Close()
}
