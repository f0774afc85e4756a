package admin

import (
	"encoding/json"
	"errors"
	"net"
	"time"

	"github.com/bookedbarber/dashcache/stats"
	"github.com/bookedbarber/dashcache/types"
)

// Client talks to a running daemon over its unix socket. Used by the CLI.
type Client struct {
	socketPath string
}

func NewClient(socketPath string) *Client {
	return &Client{socketPath: socketPath}
}

func (c *Client) roundTrip(req Request) (Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, 500*time.Millisecond)
	if err != nil {
		return Response{}, err
	}
	defer conn.Close()

	if err := json.NewEncoder(conn).Encode(&req); err != nil {
		return Response{}, err
	}
	var resp Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return Response{}, err
	}
	if !resp.OK {
		if resp.Error == types.ErrNotFound.Error() {
			return Response{}, types.ErrNotFound
		}
		return Response{}, errors.New(resp.Error)
	}
	return resp, nil
}

// Stats fetches the current statistics snapshot.
func (c *Client) Stats() (stats.Snapshot, error) {
	resp, err := c.roundTrip(Request{Op: OpStats})
	if err != nil {
		return stats.Snapshot{}, err
	}
	if resp.Stats == nil {
		return stats.Snapshot{}, errors.New("admin: empty stats response")
	}
	return *resp.Stats, nil
}

// Get fetches one payload through the daemon's cache.
func (c *Client) Get(key string) ([]byte, error) {
	resp, err := c.roundTrip(Request{Op: OpGet, Key: key})
	if err != nil {
		return nil, err
	}
	return resp.Value, nil
}

// Remove deletes one key from the daemon's cache.
func (c *Client) Remove(key string) error {
	_, err := c.roundTrip(Request{Op: OpRemove, Key: key})
	return err
}

// Clear empties the cache, or one category of it, and returns how many
// entries were removed from memory.
func (c *Client) Clear(category string) (int, error) {
	resp, err := c.roundTrip(Request{Op: OpClear, Category: category})
	if err != nil {
		return 0, err
	}
	return resp.Removed, nil
}
