package types

import (
	"context"
	"errors"
)

// Sentinel errors shared by the cache, the snapshot tier and the API client.
var (
	// ErrNotFound reports a normal cache miss. It is control flow, not a failure.
	ErrNotFound = errors.New("dashcache: not found")

	// ErrExpired reports that a stored value exists but its TTL has elapsed.
	ErrExpired = errors.New("dashcache: expired")

	// ErrNoUpstream reports that a key has no backing endpoint to load from
	// (ui-state keys are populated by callers only).
	ErrNoUpstream = errors.New("dashcache: no upstream for key")

	// ErrValueTooLarge reports a payload that cannot fit the byte budget
	// even after evicting everything else.
	ErrValueTooLarge = errors.New("dashcache: value exceeds byte budget")
)

// Loader is the contract between the cache and the world behind it.
type Loader interface {

	/*
		Load is called when the cache misses. The key was not found in memory,
		so the cache asks the Loader to fetch it.

		1. Cache checks memory → key not found
		2. Cache calls Load(key)
		3. Loader fetches from the snapshot tier or the BookedBarber API
		4. Cache stores the result in memory
		5. Cache returns the value

		Load must return ErrNotFound (or wrap it) when the key simply does not
		exist, so callers can tell a miss from a real failure.
	*/
	Load(ctx context.Context, key string) ([]byte, error)

	/*
		Put is called when the cache needs to propagate a write outward.

		This is used by write policies:
		-------------------------------
		- Write-through: persist immediately
		- Write-back: persist asynchronously later

		This does NOT store data in the cache. It stores data in the tier
		behind it (the bbolt snapshot, typically). Loaders with a read-only
		upstream implement Put as a no-op.
	*/
	Put(ctx context.Context, key string, value []byte) error
}
