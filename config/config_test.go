package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, int64(50<<20), cfg.Cache.MaxBytes())
	assert.Equal(t, 5*time.Minute, cfg.Cache.DefaultTTL())
	assert.Equal(t, time.Minute, cfg.Cache.SweepInterval())
	assert.Equal(t, 5*time.Second, cfg.Cache.StatsInterval())
	assert.Equal(t, time.Hour, cfg.Cache.PriorityWeight())
	assert.Equal(t, "priority-lru", cfg.Cache.Eviction)
	assert.False(t, cfg.Cache.Compression)

	assert.True(t, cfg.Prefetch.Enabled)
	assert.Equal(t, 300*time.Millisecond, cfg.Prefetch.Debounce())
	assert.Equal(t, 3, cfg.Prefetch.RangeRadius)

	assert.Equal(t, 10*time.Second, cfg.API.Timeout())
	assert.Equal(t, time.Hour, cfg.Snapshot.TTL())
	assert.Equal(t, "write-back", cfg.Snapshot.Mode)
	assert.NotEmpty(t, cfg.Admin.Socket)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashcache.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
cache:
  max_size_mb: 10
  eviction: lru
  compression: true
prefetch:
  enabled: false
  disabled: [idle-time]
  priorities:
    related-entity: 15
api:
  base_url: https://app.bookedbarber.com
log_level: debug
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, int64(10<<20), cfg.Cache.MaxBytes())
	assert.Equal(t, "lru", cfg.Cache.Eviction)
	assert.True(t, cfg.Cache.Compression)

	// Untouched sections keep their defaults.
	assert.Equal(t, 5*time.Minute, cfg.Cache.DefaultTTL())
	assert.True(t, cfg.Snapshot.Enabled)

	assert.False(t, cfg.Prefetch.Enabled)
	assert.Equal(t, []string{"idle-time"}, cfg.Prefetch.Disabled)
	assert.Equal(t, 15, cfg.Prefetch.Priorities["related-entity"])

	assert.Equal(t, "https://app.bookedbarber.com", cfg.API.BaseURL)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("DASHCACHE_TEST_DIR", "/var/lib/dashcache")

	path := filepath.Join(t.TempDir(), "dashcache.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
snapshot:
  path: ${DASHCACHE_TEST_DIR}/snapshot.db
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/dashcache/snapshot.db", cfg.Snapshot.Path)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache: [not a map"), 0o600))
	_, err = Load(path)
	assert.Error(t, err)
}
