package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all dashcache daemon configuration.
type Config struct {
	Cache    CacheConfig    `yaml:"cache"`
	Prefetch PrefetchConfig `yaml:"prefetch"`
	API      APIConfig      `yaml:"api"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Admin    AdminConfig    `yaml:"admin"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	LogLevel string         `yaml:"log_level"`
}

// CacheConfig controls the in-memory store. Units follow the dashboard
// convention: megabytes, minutes, seconds.
type CacheConfig struct {
	MaxSizeMB            int    `yaml:"max_size_mb"`
	DefaultTTLMinutes    int    `yaml:"default_ttl_minutes"`
	SweepIntervalSeconds int    `yaml:"sweep_interval_seconds"`
	StatsIntervalSeconds int    `yaml:"stats_interval_seconds"`
	Shards               int    `yaml:"shards"`
	Eviction             string `yaml:"eviction"` // priority-lru | lru | lfu
	PriorityWeightMins   int    `yaml:"priority_weight_minutes"`
	Compression          bool   `yaml:"compression"`
	CompressionMinBytes  int    `yaml:"compression_min_bytes"`
}

// PrefetchConfig controls the speculative prefetcher.
type PrefetchConfig struct {
	Enabled        bool           `yaml:"enabled"`
	DebounceMillis int            `yaml:"debounce_millis"`
	RangeRadius    int            `yaml:"range_radius"`
	Disabled       []string       `yaml:"disabled"`   // strategy names to turn off
	Priorities     map[string]int `yaml:"priorities"` // name → execution order override
}

// APIConfig points at the BookedBarber backend.
type APIConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// SnapshotConfig controls the bbolt warm-restart tier.
type SnapshotConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Path       string `yaml:"path"`
	TTLMinutes int    `yaml:"ttl_minutes"`
	Mode       string `yaml:"mode"` // write-back | write-through
}

// AdminConfig controls the unix-socket control surface.
type AdminConfig struct {
	Socket string `yaml:"socket"`
}

// MetricsConfig controls the Prometheus endpoint. Empty listen disables it.
type MetricsConfig struct {
	Listen string `yaml:"listen"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Cache: CacheConfig{
			MaxSizeMB:            50,
			DefaultTTLMinutes:    5,
			SweepIntervalSeconds: 60,
			StatsIntervalSeconds: 5,
			Shards:               1,
			Eviction:             "priority-lru",
			PriorityWeightMins:   60,
			Compression:          false,
			CompressionMinBytes:  4096,
		},
		Prefetch: PrefetchConfig{
			Enabled:        true,
			DebounceMillis: 300,
			RangeRadius:    3,
		},
		API: APIConfig{
			BaseURL:        "http://localhost:8000",
			TimeoutSeconds: 10,
		},
		Snapshot: SnapshotConfig{
			Enabled:    true,
			Path:       "dashcache.db",
			TTLMinutes: 60,
			Mode:       "write-back",
		},
		Admin: AdminConfig{
			Socket: defaultSocketPath(),
		},
		LogLevel: "info",
	}
}

// Load reads a YAML config file and expands environment variables.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// Derived durations, so the rest of the code never multiplies units itself.

func (c CacheConfig) MaxBytes() int64             { return int64(c.MaxSizeMB) << 20 }
func (c CacheConfig) DefaultTTL() time.Duration   { return time.Duration(c.DefaultTTLMinutes) * time.Minute }
func (c CacheConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}
func (c CacheConfig) StatsInterval() time.Duration {
	return time.Duration(c.StatsIntervalSeconds) * time.Second
}
func (c CacheConfig) PriorityWeight() time.Duration {
	return time.Duration(c.PriorityWeightMins) * time.Minute
}

func (p PrefetchConfig) Debounce() time.Duration {
	return time.Duration(p.DebounceMillis) * time.Millisecond
}

func (a APIConfig) Timeout() time.Duration { return time.Duration(a.TimeoutSeconds) * time.Second }

func (s SnapshotConfig) TTL() time.Duration { return time.Duration(s.TTLMinutes) * time.Minute }

func defaultSocketPath() string {
	home, _ := os.UserHomeDir()
	if home == "" {
		home = "."
	}
	return home + "/.cache/dashcache/admin.sock"
}
