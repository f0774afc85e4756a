package expiration

import (
	"time"

	"github.com/bookedbarber/dashcache/types"
)

/*
ExpireAfterAccess implements "sliding TTL". Every time someone reads the data,
the expiration timer is pushed forward. As long as the data keeps getting used,
it stays alive. If nobody touches it for a while, it expires.

ui-state entries use this: they should live as long as the session keeps
touching them, not age out mid-interaction.
*/
type ExpireAfterAccess struct {

	// TTL defines how long the entry should remain valid AFTER it is accessed.
	TTL time.Duration
}

// IsExpired checks whether the entry is expired at this moment.
func (e *ExpireAfterAccess) IsExpired(ent *types.Entry, now time.Time) bool {
	return !ent.ExpireAt.IsZero() && now.After(ent.ExpireAt)
}

// OnAccess pushes the deadline forward: this is the sliding part.
func (e *ExpireAfterAccess) OnAccess(ent *types.Entry, now time.Time) {
	ent.LastAccessedAt = now
	ent.ExpireAt = now.Add(e.TTL)
}

// OnWrite stamps creation and sets the initial deadline unless the caller
// already set one explicitly.
func (e *ExpireAfterAccess) OnWrite(ent *types.Entry, now time.Time) {
	ent.CreatedAt = now
	ent.LastAccessedAt = now

	if ent.ExpireAt.IsZero() {
		ent.ExpireAt = now.Add(e.TTL)
	}
}
