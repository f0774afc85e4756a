package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/bookedbarber/dashcache"
	"github.com/bookedbarber/dashcache/admin"
	"github.com/bookedbarber/dashcache/boltstore"
	"github.com/bookedbarber/dashcache/bookedapi"
	"github.com/bookedbarber/dashcache/config"
	"github.com/bookedbarber/dashcache/engine"
	"github.com/bookedbarber/dashcache/eviction"
	"github.com/bookedbarber/dashcache/expiration"
	"github.com/bookedbarber/dashcache/prefetch"
	"github.com/bookedbarber/dashcache/stats"
	"github.com/bookedbarber/dashcache/writepolicy"
)

func newServeCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the cache daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfgPath)
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to YAML config")
	return cmd
}

func runServe(ctx context.Context, cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	log := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	// Snapshot tier (optional).
	var snap *boltstore.Store
	if cfg.Snapshot.Enabled {
		snap, err = boltstore.Open(cfg.Snapshot.Path, boltstore.Options{
			DefaultTTL: cfg.Snapshot.TTL(),
		})
		if err != nil {
			return err
		}
		defer snap.Close()
	}

	// Loader chain: memory misses go snapshot → API.
	apiClient := bookedapi.NewClient(cfg.API.BaseURL, cfg.API.Timeout(), log)
	loader := &dashcache.TieredLoader{Upstream: apiClient}
	if snap != nil {
		loader.Snapshot = snap
	}

	// Persistence of cache writes back into the snapshot.
	var wp writepolicy.WritePolicy
	if snap != nil {
		switch cfg.Snapshot.Mode {
		case "write-through":
			wp = writepolicy.NewWriteThroughPolicy(snap, log)
		default:
			wp = writepolicy.NewWriteBackPolicy(snap, 1024, log)
		}
	}

	agg := stats.NewAggregator(cfg.Cache.MaxBytes())

	eng := engine.NewCacheEngine(
		&expiration.ExpireAfterWrite{TTL: cfg.Cache.DefaultTTL()},
		nil, // prefetch hook attached below, after the cache exists
		loader,
		wp,
		agg,
	)

	cache := dashcache.NewShardedCache(dashcache.Options{
		Shards:             cfg.Cache.Shards,
		MaxBytes:           cfg.Cache.MaxBytes(),
		Eviction:           evictionPolicy(cfg.Cache.Eviction),
		PriorityWeightStep: cfg.Cache.PriorityWeight(),
		SweepInterval:      cfg.Cache.SweepInterval(),
		Compression: dashcache.CompressionOptions{
			Enabled: cfg.Cache.Compression,
			MinSize: cfg.Cache.CompressionMinBytes,
		},
	}, eng)
	defer cache.Close()

	// Prefetch scheduler.
	var sched *prefetch.Scheduler
	if cfg.Prefetch.Enabled {
		sched = prefetch.NewScheduler(cache, loader, prefetch.SchedulerOptions{
			Debounce: cfg.Prefetch.Debounce(),
			Logger:   log,
			Metrics:  agg,
		})
		registerStrategies(sched, cfg.Prefetch)
		eng.Prefetch = sched
		defer sched.Close()
	}

	sampler := stats.NewSampler(cache, agg, cfg.Cache.StatsInterval())
	sampler.Start()
	defer sampler.Stop()

	// Admin socket.
	var snapshotter admin.Snapshotter
	if snap != nil {
		snapshotter = snap
	}
	adminSrv := admin.NewServer(cache, agg, snapshotter, log)
	if err := adminSrv.Listen(cfg.Admin.Socket); err != nil {
		return err
	}
	defer adminSrv.Close()

	// Prometheus endpoint.
	if cfg.Metrics.Listen != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(stats.NewCollector(agg))
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: cfg.Metrics.Listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.WithError(err).Error("metrics listener failed")
			}
		}()
		defer srv.Close()
	}

	log.WithFields(logrus.Fields{
		"socket":   cfg.Admin.Socket,
		"budget":   cfg.Cache.MaxBytes(),
		"eviction": cfg.Cache.Eviction,
	}).Info("dashcache daemon started")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info("shutting down")
	return nil
}

func evictionPolicy(name string) eviction.PolicyType {
	switch name {
	case "lru":
		return eviction.LRU
	case "lfu":
		return eviction.LFU
	default:
		return eviction.PriorityLRU
	}
}

// defaultStrategyOrder mirrors prefetch.RegisterDefaults.
var defaultStrategyOrder = map[string]int{
	"range-around-date":   10,
	"adjacent-navigation": 20,
	"idle-time":           30,
	"related-entity":      40,
}

func registerStrategies(s *prefetch.Scheduler, cfg config.PrefetchConfig) {
	order := func(name string) int {
		if p, ok := cfg.Priorities[name]; ok {
			return p
		}
		return defaultStrategyOrder[name]
	}

	s.Register(prefetch.RangeAroundDate{Radius: cfg.RangeRadius}, order("range-around-date"))
	s.Register(prefetch.AdjacentNavigation{}, order("adjacent-navigation"))
	s.Register(prefetch.IdleTime{}, order("idle-time"))
	s.Register(prefetch.RelatedEntity{}, order("related-entity"))

	for _, name := range cfg.Disabled {
		s.SetEnabled(name, false)
	}
}
