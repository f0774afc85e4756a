package dashcache

import (
	"context"
	"errors"

	"github.com/bookedbarber/dashcache/types"
)

/*
TieredLoader chains the snapshot tier in front of the upstream API: a cold
miss is served from the bbolt snapshot when possible, and only falls through
to the network when the snapshot has nothing fresh. Upstream results are
written back into the snapshot so the next restart starts warm.
*/
type TieredLoader struct {

	// Snapshot is the local persistent tier. Optional.
	Snapshot types.Loader

	// Upstream is the BookedBarber API client.
	Upstream types.Loader
}

// Load tries the snapshot first, then the upstream.
func (t *TieredLoader) Load(ctx context.Context, key string) ([]byte, error) {
	if t.Snapshot != nil {
		data, err := t.Snapshot.Load(ctx, key)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, types.ErrNotFound) && !errors.Is(err, types.ErrExpired) {
			// A broken snapshot must not take the cache down; the upstream
			// still serves the data.
			return t.loadUpstream(ctx, key)
		}
	}
	return t.loadUpstream(ctx, key)
}

func (t *TieredLoader) loadUpstream(ctx context.Context, key string) ([]byte, error) {
	data, err := t.Upstream.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	if t.Snapshot != nil {
		_ = t.Snapshot.Put(ctx, key, data)
	}
	return data, nil
}

// Put persists to the snapshot tier; the upstream is read-only from here.
func (t *TieredLoader) Put(ctx context.Context, key string, value []byte) error {
	if t.Snapshot == nil {
		return nil
	}
	return t.Snapshot.Put(ctx, key, value)
}
