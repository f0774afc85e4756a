package bookedapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookedbarber/dashcache/types"
)

func TestRouting(t *testing.T) {
	tests := []struct {
		key   string
		path  string
		query string
	}{
		{"appointments:2026-08-23", "/api/v2/appointments", "date=2026-08-23"},
		{"appointments:barber:b1:2026-08-23", "/api/v2/appointments", "barber_id=b1&date=2026-08-23"},
		{"staff:all", "/api/v2/staff", ""},
		{"staff:b1", "/api/v2/staff/b1", ""},
		{"analytics:summary:7d", "/api/v2/analytics/summary", "range=7d"},
		{"api-response:/api/v2/services", "/api/v2/services", ""},
	}

	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			var gotPath, gotQuery string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotQuery = r.URL.RawQuery
				w.Write([]byte(`{}`))
			}))
			defer srv.Close()

			c := NewClient(srv.URL, time.Second, nil)
			body, err := c.Load(context.Background(), tc.key)
			require.NoError(t, err)
			assert.Equal(t, []byte(`{}`), body)
			assert.Equal(t, tc.path, gotPath)
			assert.Equal(t, tc.query, gotQuery)
		})
	}
}

func TestNoUpstreamKeys(t *testing.T) {
	c := NewClient("http://localhost:0", time.Second, nil)

	for _, key := range []string{
		"ui-state:theme",
		"analytics:revenue", // analytics without the summary: form
		"api-response:not-a-path",
	} {
		_, err := c.Load(context.Background(), key)
		assert.ErrorIs(t, err, types.ErrNoUpstream, "key %s", key)
	}
}

func TestNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	_, err := c.Load(context.Background(), "staff:ghost")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	_, err := c.Load(context.Background(), "staff:all")
	require.Error(t, err)
	assert.NotErrorIs(t, err, types.ErrNotFound)
	assert.Contains(t, err.Error(), "502")
}

func TestAcceptHeaderAndBaseURLTrim(t *testing.T) {
	var accept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accept = r.Header.Get("Accept")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	// Trailing slash on the base URL must not produce a double slash.
	c := NewClient(srv.URL+"/", time.Second, nil)
	_, err := c.Load(context.Background(), "staff:all")
	require.NoError(t, err)
	assert.Equal(t, "application/json", accept)
}
