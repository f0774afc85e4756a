package prefetch

import (
	"fmt"
	"time"

	"github.com/bookedbarber/dashcache/types"
)

// The four built-in strategies. Speculative entries are stored at low priority
// so they yield eviction space to data the user actually asked for.

/*
RangeAroundDate prefetches the appointment days around the visible calendar
date. Barbers page through the calendar a day or two at a time, so the
neighboring days are the most likely next requests.
*/
type RangeAroundDate struct {

	// Radius is how many days on each side of the visible date to prefetch.
	Radius int
}

func (RangeAroundDate) Name() string { return "range-around-date" }

func (r RangeAroundDate) Targets(view View) []Target {
	if view.Date.IsZero() {
		return nil
	}
	radius := r.Radius
	if radius <= 0 {
		radius = 3
	}
	targets := make([]Target, 0, 2*radius)
	for i := 1; i <= radius; i++ {
		for _, d := range []time.Time{view.Date.AddDate(0, 0, i), view.Date.AddDate(0, 0, -i)} {
			targets = append(targets, Target{
				Key:      AppointmentsKey(d),
				Priority: types.PriorityLow,
			})
		}
	}
	return targets
}

/*
AdjacentNavigation prefetches the data behind the screens a user typically
opens next from the current route. The table encodes observed dashboard
navigation patterns, not a sitemap.
*/
type AdjacentNavigation struct {

	// Routes maps a current route to the keys its likely successors need.
	// Nil means the default table.
	Routes map[string][]string
}

func (AdjacentNavigation) Name() string { return "adjacent-navigation" }

// defaultRoutes: from the overview people open the calendar or staff list;
// from the calendar they check analytics; from staff they drill into bookings.
var defaultRoutes = map[string][]string{
	"/dashboard": {"analytics:summary:7d", "staff:all"},
	"/calendar":  {"staff:all", "analytics:summary:7d"},
	"/staff":     {"staff:all"},
	"/analytics": {"analytics:summary:30d", "analytics:summary:7d"},
}

func (a AdjacentNavigation) Targets(view View) []Target {
	if view.Route == "" {
		return nil
	}
	routes := a.Routes
	if routes == nil {
		routes = defaultRoutes
	}
	keys := routes[view.Route]
	targets := make([]Target, 0, len(keys))
	for _, k := range keys {
		targets = append(targets, Target{Key: k, Priority: types.PriorityLow})
	}
	return targets
}

/*
IdleTime warms the slow-moving reference data while the session is quiet, so
the next burst of activity starts hot. It only acts on idle views.
*/
type IdleTime struct{}

func (IdleTime) Name() string { return "idle-time" }

func (IdleTime) Targets(view View) []Target {
	if !view.Idle {
		return nil
	}
	return []Target{
		{Key: "staff:all", Priority: types.PriorityLow},
		{Key: "analytics:summary:7d", Priority: types.PriorityLow},
		{Key: "analytics:summary:30d", Priority: types.PriorityLow},
	}
}

/*
RelatedEntity prefetches the records surrounding the focused staff member:
their profile and their bookings for the visible day.
*/
type RelatedEntity struct {

	// Now supplies "today" when the view has no visible date. Defaults to time.Now.
	Now func() time.Time
}

func (RelatedEntity) Name() string { return "related-entity" }

func (r RelatedEntity) Targets(view View) []Target {
	if view.BarberID == "" {
		return nil
	}
	day := view.Date
	if day.IsZero() {
		now := r.Now
		if now == nil {
			now = time.Now
		}
		day = now()
	}
	return []Target{
		{Key: StaffKey(view.BarberID), Priority: types.PriorityLow},
		{Key: BarberAppointmentsKey(view.BarberID, day), Priority: types.PriorityLow},
	}
}

// RegisterDefaults wires the four built-in strategies in their standard order.
func RegisterDefaults(s *Scheduler) {
	s.Register(RangeAroundDate{}, 10)
	s.Register(AdjacentNavigation{}, 20)
	s.Register(IdleTime{}, 30)
	s.Register(RelatedEntity{}, 40)
}

// Key constructors shared with the API client and tests.

func AppointmentsKey(day time.Time) string {
	return fmt.Sprintf("appointments:%s", day.Format(DateLayout))
}

func BarberAppointmentsKey(barberID string, day time.Time) string {
	return fmt.Sprintf("appointments:barber:%s:%s", barberID, day.Format(DateLayout))
}

func StaffKey(barberID string) string {
	return fmt.Sprintf("staff:%s", barberID)
}
