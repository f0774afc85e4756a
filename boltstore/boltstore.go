/*
Package boltstore is the warm-restart tier: a bbolt-backed implementation of
types.Loader. Cached payloads written through it survive a daemon restart, so
the first dashboard render after a deploy does not hammer the API.
*/
package boltstore

import (
	"bytes"
	"context"
	"encoding/binary"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/bookedbarber/dashcache/types"
)

// Store persists key/payload pairs with TTL semantics.
// It is safe for concurrent use by multiple goroutines.
type Store struct {
	db         *bolt.DB
	bucket     []byte
	defaultTTL time.Duration
	now        func() time.Time
	mu         sync.RWMutex
}

// Options configures a Store.
type Options struct {

	// Bucket is the name of the bolt bucket to use. Default "dashcache".
	Bucket string

	// DefaultTTL bounds how long a snapshot entry is served. Snapshot entries
	// carry their own expiry because the daemon's in-memory TTLs die with the
	// process. <= 0 means entries never expire.
	DefaultTTL time.Duration

	// Now supplies wall-clock time. Tests substitute a fake clock here.
	Now func() time.Time
}

// Open initializes or opens a Store at the given path.
func Open(path string, opts Options) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	bucket := []byte("dashcache")
	if opts.Bucket != "" {
		bucket = []byte(opts.Bucket)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Store{db: db, bucket: bucket, defaultTTL: opts.DefaultTTL, now: now}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Put stores a payload with an absolute expiration of now+DefaultTTL.
// Layout: 8 bytes big endian unix expiry || raw payload. Zero expiry means
// the entry never expires.
func (s *Store) Put(_ context.Context, key string, value []byte) error {
	expiresAt := int64(0)
	if s.defaultTTL > 0 {
		expiresAt = s.now().Add(s.defaultTTL).Unix()
	}
	buf := make([]byte, 8+len(value))
	binary.BigEndian.PutUint64(buf[:8], uint64(expiresAt))
	copy(buf[8:], value)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(key), buf)
	})
}

// Load returns the stored payload if present and not expired.
// Misses report types.ErrNotFound; stale entries report types.ErrExpired.
func (s *Store) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []byte
	var expired bool
	var exists bool
	if err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(s.bucket).Get([]byte(key))
		if v == nil {
			return nil
		}
		exists = true
		expiresAt := int64(binary.BigEndian.Uint64(v[:8]))
		if expiresAt > 0 && s.now().Unix() > expiresAt {
			expired = true
			return nil
		}
		out = append([]byte(nil), v[8:]...)
		return nil
	}); err != nil {
		return nil, err
	}
	if !exists {
		return nil, types.ErrNotFound
	}
	if expired {
		return nil, types.ErrExpired
	}
	return out, nil
}

// Delete removes a key.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(key))
	})
}

// ClearPrefix removes every key with the given prefix and returns the count.
// The admin clear operation uses this so category clears reach the snapshot
// tier too, not just memory.
func (s *Store) ClearPrefix(prefix string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		p := []byte(prefix)
		for k, _ := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, _ = c.Next() {
			if err := c.Delete(); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	return removed, err
}
