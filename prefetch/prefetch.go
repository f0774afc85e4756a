/*
Package prefetch populates the cache speculatively, before dashboard panels ask
for the data. A trigger (date change, navigation, idle period) is debounced and
then handed to a prioritized list of strategies; each strategy predicts keys
that are about to be requested and the scheduler fetches and stores them.
*/
package prefetch

import (
	"context"
	"strings"
	"time"

	"github.com/bookedbarber/dashcache/types"
)

// Hook receives read notifications from the cache engine.
// Implementations MUST be fast and non-blocking: this runs on the hot read path.
type Hook interface {
	OnRead(key string, ent *types.Entry)
}

/*
View is the dashboard context a trigger describes: which calendar date is
visible, which route the user is on, which staff member is focused, and whether
the session has gone idle.

A trigger only describes what changed; zero-valued fields inherit the previous
view, so a date change does not erase the current route.
*/
type View struct {
	Date      time.Time // visible calendar date (day granularity)
	Route     string    // current navigation route, e.g. "/calendar"
	PrevRoute string    // route the user came from
	BarberID  string    // focused staff member, if any
	Idle      bool      // session has been quiet long enough to warm caches
}

// merge fills zero-valued fields of v from base.
func (v View) merge(base View) View {
	if v.Date.IsZero() {
		v.Date = base.Date
	}
	if v.Route == "" {
		v.Route = base.Route
		if v.PrevRoute == "" {
			v.PrevRoute = base.PrevRoute
		}
	}
	if v.BarberID == "" {
		v.BarberID = base.BarberID
	}
	return v
}

// Target is one key a strategy predicts will soon be requested.
type Target struct {
	Key      string
	TTL      time.Duration  // 0 => cache default
	Priority types.Priority // "" => medium
}

/*
Strategy predicts cache keys from a view. Strategies are pure: the scheduler
owns fetching, storing, ordering and failure isolation.
*/
type Strategy interface {

	// Name identifies the strategy in logs and enable/disable toggles.
	Name() string

	// Targets returns zero or more keys worth prefetching for this view.
	Targets(view View) []Target
}

// Cache is the slice of the cache surface the scheduler needs: a freshness
// probe and a write path.
type Cache interface {
	Contains(key string) bool
	PutWithOptions(ctx context.Context, key string, value []byte, opts types.PutOptions) error
}

// DateLayout is the day format used in appointment cache keys.
const DateLayout = "2006-01-02"

// dateFromKey extracts the trailing day component of an appointments key,
// e.g. "appointments:2026-08-23" or "appointments:barber:b1:2026-08-23".
func dateFromKey(key string) (time.Time, bool) {
	idx := strings.LastIndex(key, ":")
	if idx < 0 {
		return time.Time{}, false
	}
	d, err := time.Parse(DateLayout, key[idx+1:])
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}
