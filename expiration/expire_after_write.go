package expiration

import (
	"time"

	"github.com/bookedbarber/dashcache/types"
)

/*
ExpireAfterWrite is the dashboard default: an entry goes stale a fixed duration
after it was created, no matter how often it is read in between. Booking and
analytics data ages from the moment it was fetched, so reads must not push the
deadline forward.
*/
type ExpireAfterWrite struct {

	// TTL defines how long the entry remains valid after creation.
	// An explicit TTL set by the caller (PutWithTTL) always wins over this.
	TTL time.Duration
}

// IsExpired checks whether the entry is expired at this moment.
func (e *ExpireAfterWrite) IsExpired(ent *types.Entry, now time.Time) bool {
	return !ent.ExpireAt.IsZero() && now.After(ent.ExpireAt)
}

// OnAccess only records the access time. The expiry deadline never moves on reads.
func (e *ExpireAfterWrite) OnAccess(ent *types.Entry, now time.Time) {
	ent.LastAccessedAt = now
}

/*
OnWrite is called when the entry is first written or replaced in the cache.
- We record when the entry was created
- We record the last access time
- We set ExpireAt if it is not already set

We only set ExpireAt if it is currently zero, because the caller might have
explicitly set a TTL (using PutWithTTL). We do NOT want to overwrite an
explicit TTL.
*/
func (e *ExpireAfterWrite) OnWrite(ent *types.Entry, now time.Time) {
	ent.CreatedAt = now
	ent.LastAccessedAt = now

	if ent.ExpireAt.IsZero() && e.TTL > 0 {
		ent.ExpireAt = now.Add(e.TTL)
	}
}
