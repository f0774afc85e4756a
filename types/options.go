package types

import "time"

// PutOptions carries per-entry knobs for cache writes.
// The zero value means: default TTL, medium priority.
type PutOptions struct {

	// TTL overrides the cache-wide default time-to-live when > 0.
	TTL time.Duration

	// Priority affects eviction order only. Empty means medium.
	Priority Priority
}
