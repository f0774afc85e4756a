package writepolicy

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/bookedbarber/dashcache/types"
)

// This file implements the "write-back" policy.

// writeReq represents one pending write that needs to reach the snapshot tier.
type writeReq struct {
	key   string
	value []byte
}

/*
WriteBackPolicy manages asynchronous writes to the snapshot tier.

Writes are queued on a buffered channel and drained by one background worker.
If the queue is full the write is DROPPED: blocking the cache write path would
defeat the purpose of write-back, and a missing snapshot entry only costs one
upstream fetch after a restart.
*/
type WriteBackPolicy struct {
	store types.Loader
	log   logrus.FieldLogger

	ch chan writeReq
	wg sync.WaitGroup
}

// NewWriteBackPolicy creates a write-back policy with the given queue depth
// and starts its worker.
func NewWriteBackPolicy(store types.Loader, buffer int, log logrus.FieldLogger) *WriteBackPolicy {
	if log == nil {
		log = logrus.StandardLogger()
	}
	w := &WriteBackPolicy{
		store: store,
		log:   log,
		ch:    make(chan writeReq, buffer),
	}

	w.wg.Add(1)
	go w.worker()

	return w
}

// OnWrite queues the payload for the worker. The payload is copied because the
// caller may reuse its buffer after OnWrite returns.
func (w *WriteBackPolicy) OnWrite(_ context.Context, key string, value []byte) {
	req := writeReq{key: key, value: append([]byte(nil), value...)}
	select {
	case w.ch <- req:
	default:
		// Intentional drop under pressure. The cache stays fast; the snapshot
		// may miss this update.
	}
}

// worker drains queued writes. Requests use a background context: the
// triggering cache write has long since returned.
func (w *WriteBackPolicy) worker() {
	defer w.wg.Done()

	for req := range w.ch {
		if err := w.store.Put(context.Background(), req.key, req.value); err != nil {
			w.log.WithError(err).WithField("key", req.key).Warn("snapshot write-back failed")
		}
	}
}

/*
Close shuts down the policy gracefully:
1. Close the channel (no more writes accepted)
2. Wait for the worker to finish processing queued writes

Without this, pending snapshot writes could be lost on shutdown.
*/
func (w *WriteBackPolicy) Close() {
	close(w.ch)
	w.wg.Wait()
}
