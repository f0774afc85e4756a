package prefetch

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bookedbarber/dashcache/types"
)

const (
	defaultDebounce   = 300 * time.Millisecond
	defaultRunTimeout = 30 * time.Second
)

// SchedulerOptions configures a Scheduler.
type SchedulerOptions struct {

	// Debounce is how long a burst of triggers must quiet down before a
	// prefetch run starts. A new trigger stops and restarts the pending timer.
	Debounce time.Duration

	// RunTimeout bounds one full strategy pass, including all fetches.
	RunTimeout time.Duration

	// Logger receives per-strategy failure logs. Defaults to the standard logger.
	Logger logrus.FieldLogger

	// Metrics counts stored prefetch entries. Defaults to no-op.
	Metrics types.Metrics
}

/*
Scheduler owns the single pending debounce timer and the strategy list.

Concurrency contract:
- Trigger may be called from any goroutine; only the latest merged view is kept.
- At most one timer is pending; re-triggering restarts it atomically.
- A run already in flight is never cancelled by a new trigger. It completes and
  populates the cache regardless; that is wasted work at worst, never corruption.
- Close stops the pending timer and waits for an in-flight run to finish.
*/
type Scheduler struct {
	cache   Cache
	loader  types.Loader
	log     logrus.FieldLogger
	metrics types.Metrics

	debounce   time.Duration
	runTimeout time.Duration

	mu         sync.Mutex
	timer      *time.Timer
	pending    View
	hasPending bool
	last       View
	regs       []*registration
	closed     bool

	wg sync.WaitGroup
}

type registration struct {
	strategy Strategy
	priority int // lower runs first
	enabled  bool
}

// NewScheduler creates a Scheduler. Strategies are added with Register.
func NewScheduler(cache Cache, loader types.Loader, opts SchedulerOptions) *Scheduler {
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	if opts.RunTimeout <= 0 {
		opts.RunTimeout = defaultRunTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Metrics == nil {
		opts.Metrics = types.NoopMetrics{}
	}
	return &Scheduler{
		cache:      cache,
		loader:     loader,
		log:        opts.Logger,
		metrics:    opts.Metrics,
		debounce:   opts.Debounce,
		runTimeout: opts.RunTimeout,
	}
}

// Register adds a strategy. Lower priority values run first. Strategies are
// enabled on registration and can be toggled with SetEnabled.
func (s *Scheduler) Register(st Strategy, priority int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regs = append(s.regs, &registration{strategy: st, priority: priority, enabled: true})
	sort.SliceStable(s.regs, func(i, j int) bool {
		return s.regs[i].priority < s.regs[j].priority
	})
}

// SetEnabled toggles a registered strategy by name. Unknown names are ignored.
func (s *Scheduler) SetEnabled(name string, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.regs {
		if r.strategy.Name() == name {
			r.enabled = enabled
		}
	}
}

/*
Trigger records a view change and (re)starts the debounce timer. Rapid bursts
of triggers collapse into one run over the final merged view.
*/
func (s *Scheduler) Trigger(view View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	base := s.pending
	if !s.hasPending {
		base = s.last
	}
	s.pending = view.merge(base)
	s.hasPending = true

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.fire)
}

/*
OnRead implements Hook. Reads of date-bearing appointment keys and staff keys
feed back into the scheduler so navigation-driven strategies can follow the
session's focus. The debounce collapses read bursts; prefetch writes go through
Put, not Get, so stored entries never re-trigger a run.
*/
func (s *Scheduler) OnRead(key string, ent *types.Entry) {
	switch ent.Category {
	case types.CategoryAppointments:
		if d, ok := dateFromKey(key); ok {
			s.Trigger(View{Date: d})
		}
	case types.CategoryStaff:
		if rest, found := strings.CutPrefix(key, "staff:"); found && rest != "all" {
			s.Trigger(View{BarberID: rest})
		}
	}
}

// fire runs when the debounce timer elapses.
func (s *Scheduler) fire() {
	s.mu.Lock()
	if s.closed || !s.hasPending {
		s.mu.Unlock()
		return
	}
	view := s.pending
	s.last = view
	s.hasPending = false

	regs := make([]*registration, 0, len(s.regs))
	for _, r := range s.regs {
		if r.enabled {
			regs = append(regs, r)
		}
	}
	s.wg.Add(1)
	s.mu.Unlock()

	defer s.wg.Done()
	s.run(view, regs)
}

/*
run executes the enabled strategies sequentially, in ascending priority order.
A failure inside one strategy is logged and abandons that strategy's remaining
targets; later strategies still run. There is no retry and no backoff: the
cache is an optimization, misses fall back to a direct fetch anyway.
*/
func (s *Scheduler) run(view View, regs []*registration) {
	ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
	defer cancel()

	for _, r := range regs {
		if err := s.runStrategy(ctx, r.strategy, view); err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"strategy": r.strategy.Name(),
				"route":    view.Route,
			}).Warn("prefetch strategy failed")
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func (s *Scheduler) runStrategy(ctx context.Context, st Strategy, view View) error {
	for _, t := range st.Targets(view) {
		if s.cache.Contains(t.Key) {
			continue
		}
		data, err := s.loader.Load(ctx, t.Key)
		if err != nil {
			return err
		}
		opts := types.PutOptions{TTL: t.TTL, Priority: t.Priority}
		if err := s.cache.PutWithOptions(ctx, t.Key, data, opts); err != nil {
			return err
		}
		s.metrics.Prefetch()
	}
	return nil
}

// Close stops the pending timer and waits for any in-flight run.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	s.wg.Wait()
}
