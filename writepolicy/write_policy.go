package writepolicy

import "context"

/*
This file defines what a "write policy" is.

Whenever the in-memory cache stores a payload, the write policy decides whether
and how that payload reaches the tier behind it (the bbolt snapshot that makes
warm restarts possible):
- Write-through: persist synchronously, nothing is ever lost
- Write-back: persist asynchronously, the write path stays fast

Instead of hard-coding one behavior, we define an interface so strategies can
be plugged in.
*/

/*
WritePolicy is the contract that all write policies must follow.
The cache engine does not care which policy is used. It simply calls these
methods with the uncompressed payload.
*/
type WritePolicy interface {

	// OnWrite is called whenever the cache stores a key.
	OnWrite(ctx context.Context, key string, value []byte)

	// Close is called when the cache is shutting down. Policies with pending
	// asynchronous work flush it here.
	Close()
}
