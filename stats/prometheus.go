package stats

import "github.com/prometheus/client_golang/prometheus"

// Collector exposes an Aggregator to Prometheus without double bookkeeping:
// metrics are read from the aggregator's counters at scrape time.
type Collector struct {
	agg *Aggregator

	hits        *prometheus.Desc
	misses      *prometheus.Desc
	evictions   *prometheus.Desc
	expirations *prometheus.Desc
	prefetches  *prometheus.Desc
	entries     *prometheus.Desc
	bytes       *prometheus.Desc
	usage       *prometheus.Desc
}

// NewCollector wraps an Aggregator for registration with a prometheus.Registerer.
func NewCollector(agg *Aggregator) *Collector {
	return &Collector{
		agg:         agg,
		hits:        prometheus.NewDesc("dashcache_hits_total", "Cache hits.", nil, nil),
		misses:      prometheus.NewDesc("dashcache_misses_total", "Cache misses.", nil, nil),
		evictions:   prometheus.NewDesc("dashcache_evictions_total", "Entries evicted for space.", nil, nil),
		expirations: prometheus.NewDesc("dashcache_expirations_total", "Entries removed after TTL.", nil, nil),
		prefetches:  prometheus.NewDesc("dashcache_prefetches_total", "Entries stored speculatively.", nil, nil),
		entries:     prometheus.NewDesc("dashcache_entries", "Current entry count.", nil, nil),
		bytes:       prometheus.NewDesc("dashcache_bytes", "Current stored payload bytes.", nil, nil),
		usage:       prometheus.NewDesc("dashcache_usage_percent", "Stored bytes relative to the budget.", nil, nil),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hits
	ch <- c.misses
	ch <- c.evictions
	ch <- c.expirations
	ch <- c.prefetches
	ch <- c.entries
	ch <- c.bytes
	ch <- c.usage
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.agg.Snapshot()
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(s.Hits))
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(s.Misses))
	ch <- prometheus.MustNewConstMetric(c.evictions, prometheus.CounterValue, float64(s.Evictions))
	ch <- prometheus.MustNewConstMetric(c.expirations, prometheus.CounterValue, float64(s.Expirations))
	ch <- prometheus.MustNewConstMetric(c.prefetches, prometheus.CounterValue, float64(s.Prefetches))
	ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(s.Entries))
	ch <- prometheus.MustNewConstMetric(c.bytes, prometheus.GaugeValue, float64(s.Bytes))
	ch <- prometheus.MustNewConstMetric(c.usage, prometheus.GaugeValue, s.UsagePct)
}
