package dashcache

import (
	"bytes"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"

	"github.com/bookedbarber/dashcache/types"
)

// Best-effort payload compression. Payloads below the threshold, payloads
// that fail to compress and payloads that come out bigger are stored raw.

func (c *ShardedCache) encode(value []byte) (stored []byte, compressed bool) {
	if !c.compression.Enabled || len(value) < c.compression.MinSize {
		return value, false
	}

	var buf bytes.Buffer
	w := brotli.NewWriter(&buf)
	if _, err := w.Write(value); err != nil {
		return value, false
	}
	if err := w.Close(); err != nil {
		return value, false
	}
	if buf.Len() >= len(value) {
		return value, false
	}
	return buf.Bytes(), true
}

// decodeEntry returns the entry's payload, transparently decompressing it.
// Callers get their own copy; the stored buffer is never aliased out.
func decodeEntry(ent *types.Entry) ([]byte, error) {
	if !ent.Compressed {
		return append([]byte(nil), ent.Value...), nil
	}

	data, err := io.ReadAll(brotli.NewReader(bytes.NewReader(ent.Value)))
	if err != nil {
		return nil, fmt.Errorf("decompress %s: %w", ent.Key, err)
	}
	return data, nil
}
