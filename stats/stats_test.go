package stats

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotDerivedValues(t *testing.T) {
	a := NewAggregator(1 << 20)

	for i := 0; i < 3; i++ {
		a.Hit()
	}
	a.Miss()
	a.Eviction()
	a.Expire()
	a.Prefetch()
	a.Sample(12, 512*1024)

	s := a.Snapshot()
	assert.Equal(t, int64(3), s.Hits)
	assert.Equal(t, int64(1), s.Misses)
	assert.InDelta(t, 0.75, s.HitRate, 1e-9)
	assert.Equal(t, int64(1), s.Evictions)
	assert.Equal(t, int64(1), s.Expirations)
	assert.Equal(t, int64(1), s.Prefetches)
	assert.Equal(t, int64(12), s.Entries)
	assert.Equal(t, int64(512*1024), s.Bytes)
	assert.Equal(t, int64(1<<20), s.BudgetBytes)
	assert.InDelta(t, 50.0, s.UsagePct, 1e-9)
}

func TestSnapshotIdle(t *testing.T) {
	s := NewAggregator(0).Snapshot()
	assert.Zero(t, s.HitRate)
	assert.Zero(t, s.UsagePct)
}

type fixedSizer struct {
	entries int64
	bytes   int64
}

func (f fixedSizer) Len() int64   { return f.entries }
func (f fixedSizer) Bytes() int64 { return f.bytes }

func TestSamplerSamplesOnStart(t *testing.T) {
	a := NewAggregator(1000)
	s := NewSampler(fixedSizer{entries: 4, bytes: 400}, a, time.Hour)

	s.Start()
	defer s.Stop()

	snap := a.Snapshot()
	assert.Equal(t, int64(4), snap.Entries)
	assert.Equal(t, int64(400), snap.Bytes)
	assert.InDelta(t, 40.0, snap.UsagePct, 1e-9)
}

func TestCollector(t *testing.T) {
	a := NewAggregator(1000)
	a.Hit()
	a.Hit()
	a.Miss()
	a.Sample(2, 250)

	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(NewCollector(a)))

	assert.InDelta(t, 2.0, gatheredValue(t, reg, "dashcache_hits_total"), 1e-9)
	assert.InDelta(t, 1.0, gatheredValue(t, reg, "dashcache_misses_total"), 1e-9)
	assert.InDelta(t, 2.0, gatheredValue(t, reg, "dashcache_entries"), 1e-9)
	assert.InDelta(t, 250.0, gatheredValue(t, reg, "dashcache_bytes"), 1e-9)
	assert.InDelta(t, 25.0, gatheredValue(t, reg, "dashcache_usage_percent"), 1e-9)
}

func gatheredValue(t *testing.T, g prometheus.Gatherer, name string) float64 {
	t.Helper()
	families, err := g.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		m := mf.GetMetric()[0]
		if m.GetCounter() != nil {
			return m.GetCounter().GetValue()
		}
		return m.GetGauge().GetValue()
	}
	t.Fatalf("metric %s not gathered", name)
	return 0
}
