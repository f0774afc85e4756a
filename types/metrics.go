package types

// This file defines how the cache reports what it is doing.

/*
Metrics is an interface that defines what the cache wants to measure.
Each method represents an event in the cache lifecycle. The cache will call
these methods whenever something happens.
*/
type Metrics interface {

	// Hit is called when the cache successfully returns a value.
	Hit()

	// Miss is called when the cache does NOT find a key and has to load it
	// from the snapshot tier or the upstream API.
	Miss()

	// Eviction is called when a key is removed because the cache is over its
	// byte budget and needs space.
	Eviction()

	// Expire is called when a key is removed because it has passed its TTL.
	Expire()

	// Prefetch is called when the prefetch scheduler stores a speculative entry.
	Prefetch()
}

/*
NoopMetrics is a "do nothing" implementation of Metrics.

We don't want to force every user of the cache to implement metrics.
If someone does not care about them, the cache still works without
nil pointer checks everywhere.
*/
type NoopMetrics struct{}

// All methods below intentionally do nothing.
func (NoopMetrics) Hit()      {}
func (NoopMetrics) Miss()     {}
func (NoopMetrics) Eviction() {}
func (NoopMetrics) Expire()   {}
func (NoopMetrics) Prefetch() {}
