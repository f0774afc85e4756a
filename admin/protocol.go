package admin

// Simple JSON protocol for the cache daemon's control surface over a unix
// domain socket. One request -> one response using json.Encoder/Decoder per
// connection.

import "github.com/bookedbarber/dashcache/stats"

// Request ops.
const (
	OpStats  = "stats"
	OpGet    = "get"
	OpRemove = "remove"
	OpClear  = "clear"
)

type Request struct {
	Op       string `json:"op"` // "stats" | "get" | "remove" | "clear"
	Key      string `json:"key,omitempty"`
	Category string `json:"category,omitempty"` // clear filter; empty clears all
}

type Response struct {
	OK      bool            `json:"ok"`
	Error   string          `json:"error,omitempty"`
	Value   []byte          `json:"value,omitempty"`
	Removed int             `json:"removed,omitempty"`
	Stats   *stats.Snapshot `json:"stats,omitempty"`
}
