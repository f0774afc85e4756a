package dashcache_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bookedbarber/dashcache"
	"github.com/bookedbarber/dashcache/engine"
	"github.com/bookedbarber/dashcache/eviction"
	"github.com/bookedbarber/dashcache/expiration"
)

type benchLoader struct {
	payload []byte
}

func (l *benchLoader) Load(ctx context.Context, key string) ([]byte, error) {
	return l.payload, nil
}

func (l *benchLoader) Put(ctx context.Context, key string, value []byte) error { return nil }

func newBenchCache(shards int, compression bool) *dashcache.ShardedCache {
	eng := engine.NewCacheEngine(
		&expiration.ExpireAfterWrite{TTL: time.Hour},
		nil,
		&benchLoader{payload: make([]byte, 2048)},
		nil,
		nil,
	)
	return dashcache.NewShardedCache(dashcache.Options{
		Shards:   shards,
		MaxBytes: 64 << 20,
		Eviction: eviction.PriorityLRU,
		Compression: dashcache.CompressionOptions{
			Enabled: compression,
			MinSize: 1024,
		},
	}, eng)
}

func BenchmarkGetHit(b *testing.B) {
	ctx := context.Background()
	c := newBenchCache(1, false)
	defer c.Close()

	c.Put(ctx, "staff:all", make([]byte, 2048))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.Get(ctx, "staff:all"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGetHitParallel(b *testing.B) {
	ctx := context.Background()
	c := newBenchCache(8, false)
	defer c.Close()

	keys := make([]string, 128)
	for i := range keys {
		keys[i] = fmt.Sprintf("api-response:/api/v2/bulk/%d", i)
		c.Put(ctx, keys[i], make([]byte, 2048))
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			if _, err := c.Get(ctx, keys[i%len(keys)]); err != nil {
				b.Fatal(err)
			}
			i++
		}
	})
}

func BenchmarkPut(b *testing.B) {
	ctx := context.Background()
	c := newBenchCache(1, false)
	defer c.Close()

	payload := make([]byte, 2048)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := fmt.Sprintf("api-response:/api/v2/bulk/%d", i%1024)
		if err := c.Put(ctx, key, payload); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkPutCompressed(b *testing.B) {
	ctx := context.Background()
	c := newBenchCache(1, true)
	defer c.Close()

	payload := []byte(fmt.Sprintf("%2048s", "barbershop"))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := fmt.Sprintf("api-response:/api/v2/bulk/%d", i%1024)
		if err := c.Put(ctx, key, payload); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkMissWithLoader(b *testing.B) {
	ctx := context.Background()
	c := newBenchCache(1, false)
	defer c.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := fmt.Sprintf("api-response:/api/v2/bulk/%d", i)
		if _, err := c.Get(ctx, key); err != nil {
			b.Fatal(err)
		}
	}
}
