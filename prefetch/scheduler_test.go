package prefetch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/bookedbarber/dashcache/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

//
// ================= FAKES =================
//

type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (c *fakeCache) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

func (c *fakeCache) PutWithOptions(ctx context.Context, key string, value []byte, opts types.PutOptions) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *fakeCache) keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.data))
	for k := range c.data {
		out = append(out, k)
	}
	return out
}

type fakeLoader struct {
	mu      sync.Mutex
	loaded  []string
	failOn  map[string]bool
	payload []byte
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{failOn: make(map[string]bool), payload: []byte(`{}`)}
}

func (l *fakeLoader) Load(ctx context.Context, key string) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failOn[key] {
		return nil, errors.New("upstream unavailable")
	}
	l.loaded = append(l.loaded, key)
	return l.payload, nil
}

func (l *fakeLoader) Put(ctx context.Context, key string, value []byte) error { return nil }

func (l *fakeLoader) loads() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.loaded...)
}

// keyStrategy returns a fixed target list, for tests that need exact control.
type keyStrategy struct {
	name string
	keys []string
}

func (s keyStrategy) Name() string { return s.name }

func (s keyStrategy) Targets(View) []Target {
	targets := make([]Target, 0, len(s.keys))
	for _, k := range s.keys {
		targets = append(targets, Target{Key: k})
	}
	return targets
}

func newTestScheduler(t *testing.T, cache *fakeCache, loader *fakeLoader) *Scheduler {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	s := NewScheduler(cache, loader, SchedulerOptions{
		Debounce: 20 * time.Millisecond,
		Logger:   log,
	})
	t.Cleanup(s.Close)
	return s
}

// waitFor polls until the condition holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

//
// ================= SCHEDULER =================
//

func TestDebounceCollapsesTriggerBurst(t *testing.T) {
	cache := newFakeCache()
	loader := newFakeLoader()
	s := newTestScheduler(t, cache, loader)
	s.Register(keyStrategy{name: "probe", keys: []string{"staff:all"}}, 10)

	// Five rapid triggers must collapse into exactly one run.
	for i := 0; i < 5; i++ {
		s.Trigger(View{Route: "/calendar"})
		time.Sleep(2 * time.Millisecond)
	}

	waitFor(t, func() bool { return len(loader.loads()) > 0 })
	time.Sleep(50 * time.Millisecond) // no second run may follow

	assert.Equal(t, []string{"staff:all"}, loader.loads())
}

func TestTriggerMergesIntoPendingView(t *testing.T) {
	cache := newFakeCache()
	loader := newFakeLoader()
	s := newTestScheduler(t, cache, loader)
	s.Register(RelatedEntity{}, 10)

	day := time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC)

	// The date trigger and the barber trigger land within one debounce window;
	// the run must see both.
	s.Trigger(View{Date: day})
	s.Trigger(View{BarberID: "b7"})

	waitFor(t, func() bool { return len(loader.loads()) == 2 })
	assert.ElementsMatch(t, []string{
		"staff:b7",
		"appointments:barber:b7:2026-08-23",
	}, loader.loads())
}

func TestStrategiesRunInPriorityOrder(t *testing.T) {
	cache := newFakeCache()
	loader := newFakeLoader()
	s := newTestScheduler(t, cache, loader)

	// Registered out of order on purpose.
	s.Register(keyStrategy{name: "late", keys: []string{"ui-state:late"}}, 20)
	s.Register(keyStrategy{name: "early", keys: []string{"ui-state:early"}}, 10)

	s.Trigger(View{Route: "/dashboard"})

	waitFor(t, func() bool { return len(loader.loads()) == 2 })
	assert.Equal(t, []string{"ui-state:early", "ui-state:late"}, loader.loads())
}

func TestStrategyFailureDoesNotStopLaterStrategies(t *testing.T) {
	cache := newFakeCache()
	loader := newFakeLoader()
	loader.failOn["ui-state:broken"] = true

	s := newTestScheduler(t, cache, loader)
	s.Register(keyStrategy{name: "broken", keys: []string{"ui-state:broken", "ui-state:skipped"}}, 10)
	s.Register(keyStrategy{name: "healthy", keys: []string{"ui-state:ok"}}, 20)

	s.Trigger(View{})

	// The failing strategy abandons its remaining targets, the healthy
	// strategy still runs.
	waitFor(t, func() bool { return len(loader.loads()) == 1 })
	assert.Equal(t, []string{"ui-state:ok"}, loader.loads())
	assert.NotContains(t, cache.keys(), "ui-state:skipped")
}

func TestSchedulerSkipsFreshKeys(t *testing.T) {
	cache := newFakeCache()
	cache.data["staff:all"] = []byte(`[]`)
	loader := newFakeLoader()

	s := newTestScheduler(t, cache, loader)
	s.Register(keyStrategy{name: "probe", keys: []string{"staff:all", "analytics:summary:7d"}}, 10)

	s.Trigger(View{})

	waitFor(t, func() bool { return len(loader.loads()) == 1 })
	assert.Equal(t, []string{"analytics:summary:7d"}, loader.loads())
}

func TestSetEnabled(t *testing.T) {
	cache := newFakeCache()
	loader := newFakeLoader()
	s := newTestScheduler(t, cache, loader)

	s.Register(keyStrategy{name: "off", keys: []string{"ui-state:off"}}, 10)
	s.Register(keyStrategy{name: "on", keys: []string{"ui-state:on"}}, 20)
	s.SetEnabled("off", false)

	s.Trigger(View{})

	waitFor(t, func() bool { return len(loader.loads()) == 1 })
	assert.Equal(t, []string{"ui-state:on"}, loader.loads())
}

func TestOnReadTriggersAroundDate(t *testing.T) {
	cache := newFakeCache()
	loader := newFakeLoader()
	s := newTestScheduler(t, cache, loader)
	s.Register(RangeAroundDate{Radius: 1}, 10)

	ent := &types.Entry{Key: "appointments:2026-08-23", Category: types.CategoryAppointments}
	s.OnRead("appointments:2026-08-23", ent)

	waitFor(t, func() bool { return len(loader.loads()) == 2 })
	assert.ElementsMatch(t, []string{
		"appointments:2026-08-24",
		"appointments:2026-08-22",
	}, loader.loads())
}

func TestOnReadIgnoresUnrelatedKeys(t *testing.T) {
	cache := newFakeCache()
	loader := newFakeLoader()
	s := newTestScheduler(t, cache, loader)
	s.Register(keyStrategy{name: "probe", keys: []string{"ui-state:x"}}, 10)

	s.OnRead("ui-state:theme", &types.Entry{Key: "ui-state:theme", Category: types.CategoryUIState})
	s.OnRead("staff:all", &types.Entry{Key: "staff:all", Category: types.CategoryStaff})
	s.OnRead("appointments:latest", &types.Entry{Key: "appointments:latest", Category: types.CategoryAppointments})

	time.Sleep(80 * time.Millisecond)
	assert.Empty(t, loader.loads())
}

func TestCloseStopsPendingRun(t *testing.T) {
	cache := newFakeCache()
	loader := newFakeLoader()

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	s := NewScheduler(cache, loader, SchedulerOptions{Debounce: time.Hour, Logger: log})
	s.Register(keyStrategy{name: "probe", keys: []string{"staff:all"}}, 10)

	s.Trigger(View{})
	s.Close()

	// Triggers after Close are ignored.
	s.Trigger(View{})
	assert.Empty(t, loader.loads())
}

//
// ================= VIEW MERGE =================
//

func TestViewMerge(t *testing.T) {
	day := time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC)
	base := View{Date: day, Route: "/calendar", PrevRoute: "/dashboard", BarberID: "b1"}

	merged := View{BarberID: "b2"}.merge(base)
	assert.Equal(t, day, merged.Date)
	assert.Equal(t, "/calendar", merged.Route)
	assert.Equal(t, "/dashboard", merged.PrevRoute)
	assert.Equal(t, "b2", merged.BarberID)

	// A route change resets the previous-route inheritance.
	merged = View{Route: "/staff", PrevRoute: "/calendar"}.merge(base)
	assert.Equal(t, "/staff", merged.Route)
	assert.Equal(t, "/calendar", merged.PrevRoute)
}

//
// ================= STRATEGIES =================
//

func TestRangeAroundDateTargets(t *testing.T) {
	day := time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC)

	targets := RangeAroundDate{Radius: 2}.Targets(View{Date: day})
	keys := make([]string, 0, len(targets))
	for _, tgt := range targets {
		keys = append(keys, tgt.Key)
		assert.Equal(t, types.PriorityLow, tgt.Priority)
	}
	assert.ElementsMatch(t, []string{
		"appointments:2026-08-24",
		"appointments:2026-08-22",
		"appointments:2026-08-25",
		"appointments:2026-08-21",
	}, keys)

	assert.Empty(t, RangeAroundDate{}.Targets(View{}))
	assert.Len(t, RangeAroundDate{}.Targets(View{Date: day}), 6) // default radius 3
}

func TestAdjacentNavigationTargets(t *testing.T) {
	targets := AdjacentNavigation{}.Targets(View{Route: "/dashboard"})
	require.Len(t, targets, 2)
	assert.Equal(t, "analytics:summary:7d", targets[0].Key)
	assert.Equal(t, "staff:all", targets[1].Key)

	assert.Empty(t, AdjacentNavigation{}.Targets(View{}))
	assert.Empty(t, AdjacentNavigation{}.Targets(View{Route: "/settings"}))

	custom := AdjacentNavigation{Routes: map[string][]string{"/pos": {"api-response:/api/v2/products"}}}
	targets = custom.Targets(View{Route: "/pos"})
	require.Len(t, targets, 1)
	assert.Equal(t, "api-response:/api/v2/products", targets[0].Key)
}

func TestIdleTimeTargets(t *testing.T) {
	assert.Empty(t, IdleTime{}.Targets(View{}))
	assert.Len(t, IdleTime{}.Targets(View{Idle: true}), 3)
}

func TestRelatedEntityTargets(t *testing.T) {
	day := time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC)

	targets := RelatedEntity{}.Targets(View{BarberID: "b1", Date: day})
	require.Len(t, targets, 2)
	assert.Equal(t, "staff:b1", targets[0].Key)
	assert.Equal(t, "appointments:barber:b1:2026-08-23", targets[1].Key)

	// No visible date: falls back to the injected clock's today.
	fixed := RelatedEntity{Now: func() time.Time { return day }}
	targets = fixed.Targets(View{BarberID: "b1"})
	require.Len(t, targets, 2)
	assert.Equal(t, "appointments:barber:b1:2026-08-23", targets[1].Key)

	assert.Empty(t, RelatedEntity{}.Targets(View{}))
}
