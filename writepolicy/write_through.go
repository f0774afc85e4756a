package writepolicy

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/bookedbarber/dashcache/types"
)

// This file implements the "write-through" policy:
// cache write → snapshot write, synchronously.

// WriteThroughPolicy forwards every cache write to the snapshot tier before
// the cache write is considered complete. If the snapshot is slow, cache
// writes become slow.
type WriteThroughPolicy struct {
	store types.Loader
	log   logrus.FieldLogger
}

// NewWriteThroughPolicy creates a new write-through policy.
func NewWriteThroughPolicy(store types.Loader, log logrus.FieldLogger) *WriteThroughPolicy {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &WriteThroughPolicy{store: store, log: log}
}

// OnWrite persists the payload immediately. A snapshot failure is logged and
// swallowed: the in-memory write already succeeded and the snapshot is an
// optimization, not the source of truth.
func (w *WriteThroughPolicy) OnWrite(ctx context.Context, key string, value []byte) {
	if err := w.store.Put(ctx, key, value); err != nil {
		w.log.WithError(err).WithField("key", key).Warn("snapshot write failed")
	}
}

// Close is required by the WritePolicy interface. Write-through has no
// background workers, so there is nothing to clean up.
func (w *WriteThroughPolicy) Close() {}
