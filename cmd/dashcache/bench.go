package main

// In-process load generator: measures the cache layer itself, with a
// synthetic loader standing in for the BookedBarber API.

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/bookedbarber/dashcache"
	"github.com/bookedbarber/dashcache/engine"
	"github.com/bookedbarber/dashcache/eviction"
	"github.com/bookedbarber/dashcache/expiration"
	"github.com/bookedbarber/dashcache/prefetch"
	"github.com/bookedbarber/dashcache/stats"
)

type syntheticLoader struct {
	payload []byte
}

func (s *syntheticLoader) Load(ctx context.Context, key string) ([]byte, error) {
	return s.payload, nil
}

func (s *syntheticLoader) Put(ctx context.Context, key string, value []byte) error {
	return nil
}

func newBenchCmd() *cobra.Command {
	var (
		workers int
		ops     int
		keys    int
		size    int
	)
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run a synthetic load against an in-process cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			runBench(workers, ops, keys, size)
			return nil
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 8, "concurrent workers")
	cmd.Flags().IntVar(&ops, "ops", 100000, "operations per worker")
	cmd.Flags().IntVar(&keys, "keys", 5000, "distinct keys in the working set")
	cmd.Flags().IntVar(&size, "size", 2048, "payload size in bytes")
	return cmd
}

func runBench(workers, ops, keys, size int) {
	ctx := context.Background()

	agg := stats.NewAggregator(64 << 20)
	loader := &syntheticLoader{payload: make([]byte, size)}

	eng := engine.NewCacheEngine(
		&expiration.ExpireAfterWrite{TTL: time.Minute},
		nil,
		loader,
		nil,
		agg,
	)

	cache := dashcache.NewShardedCache(dashcache.Options{
		Shards:   8,
		MaxBytes: 64 << 20,
		Eviction: eviction.PriorityLRU,
	}, eng)
	defer cache.Close()

	start := time.Now()
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < ops; i++ {
				key := prefetch.AppointmentsKey(time.Unix(int64((w*ops+i)%keys)*86400, 0))
				if _, err := cache.Get(ctx, key); err != nil {
					return
				}
			}
		}(w)
	}
	wg.Wait()
	elapsed := time.Since(start)

	agg.Sample(cache.Len(), cache.Bytes())
	s := agg.Snapshot()

	total := workers * ops
	fmt.Printf("ops        : %d in %v (%.0f ops/sec)\n", total, elapsed, float64(total)/elapsed.Seconds())
	fmt.Printf("entries    : %d (%d bytes)\n", s.Entries, s.Bytes)
	fmt.Printf("hit rate   : %.1f%%\n", s.HitRate*100)
	fmt.Printf("evictions  : %d\n", s.Evictions)
}
