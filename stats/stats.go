/*
Package stats derives the numbers the dashboard header shows: hit rate, entry
count, stored bytes and memory usage relative to the configured budget.
*/
package stats

import (
	"sync/atomic"
	"time"
)

// Aggregator counts cache lifecycle events and carries the latest sampled
// entry/byte totals. It implements types.Metrics, so it plugs straight into
// the cache engine. All counters are atomic; reads take consistent-enough
// snapshots for display purposes.
type Aggregator struct {
	hits        atomic.Int64
	misses      atomic.Int64
	evictions   atomic.Int64
	expirations atomic.Int64
	prefetches  atomic.Int64

	entries atomic.Int64
	bytes   atomic.Int64

	budget int64
}

// NewAggregator creates an Aggregator for a cache with the given byte budget.
func NewAggregator(budgetBytes int64) *Aggregator {
	return &Aggregator{budget: budgetBytes}
}

func (a *Aggregator) Hit()      { a.hits.Add(1) }
func (a *Aggregator) Miss()     { a.misses.Add(1) }
func (a *Aggregator) Eviction() { a.evictions.Add(1) }
func (a *Aggregator) Expire()   { a.expirations.Add(1) }
func (a *Aggregator) Prefetch() { a.prefetches.Add(1) }

// Sample records the current entry and byte totals of the cache.
func (a *Aggregator) Sample(entries, bytes int64) {
	a.entries.Store(entries)
	a.bytes.Store(bytes)
}

// Snapshot is a point-in-time view of the aggregated statistics.
type Snapshot struct {
	Hits        int64   `json:"hits"`
	Misses      int64   `json:"misses"`
	HitRate     float64 `json:"hit_rate"` // hits / (hits + misses), 0 when idle
	Evictions   int64   `json:"evictions"`
	Expirations int64   `json:"expirations"`
	Prefetches  int64   `json:"prefetches"`
	Entries     int64   `json:"entries"`
	Bytes       int64   `json:"bytes"`
	BudgetBytes int64   `json:"budget_bytes"`
	UsagePct    float64 `json:"usage_pct"` // bytes / budget * 100
}

// Snapshot derives the display values from the current counters.
func (a *Aggregator) Snapshot() Snapshot {
	s := Snapshot{
		Hits:        a.hits.Load(),
		Misses:      a.misses.Load(),
		Evictions:   a.evictions.Load(),
		Expirations: a.expirations.Load(),
		Prefetches:  a.prefetches.Load(),
		Entries:     a.entries.Load(),
		Bytes:       a.bytes.Load(),
		BudgetBytes: a.budget,
	}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	}
	if a.budget > 0 {
		s.UsagePct = float64(s.Bytes) / float64(a.budget) * 100
	}
	return s
}

// Sizer is the slice of the cache the sampler polls.
type Sizer interface {
	Len() int64
	Bytes() int64
}

// Sampler copies entry/byte totals from the cache into the aggregator on a
// fixed interval. Purely read-only derived state; no behavioral contract
// beyond the periodic recomputation.
type Sampler struct {
	cache    Sizer
	agg      *Aggregator
	interval time.Duration
	done     chan struct{}
}

// NewSampler creates a sampler; Start launches it.
func NewSampler(cache Sizer, agg *Aggregator, interval time.Duration) *Sampler {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Sampler{cache: cache, agg: agg, interval: interval, done: make(chan struct{})}
}

// Start launches the polling goroutine. It samples once immediately so the
// first snapshot is never all-zero.
func (s *Sampler) Start() {
	s.agg.Sample(s.cache.Len(), s.cache.Bytes())
	go func() {
		t := time.NewTicker(s.interval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				s.agg.Sample(s.cache.Len(), s.cache.Bytes())
			case <-s.done:
				return
			}
		}
	}()
}

// Stop terminates the polling goroutine.
func (s *Sampler) Stop() {
	close(s.done)
}
