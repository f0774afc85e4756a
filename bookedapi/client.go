/*
Package bookedapi is the read side of the cache: a thin client for the
BookedBarber REST API. It implements types.Loader, translating cache keys of
the form "<category>:<rest>" into /api/v2 requests.
*/
package bookedapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bookedbarber/dashcache/types"
)

const defaultTimeout = 10 * time.Second

// Client fetches dashboard payloads from the BookedBarber API.
type Client struct {
	baseURL string
	http    *http.Client
	log     logrus.FieldLogger
}

// NewClient creates a Client for the given base URL, e.g.
// "https://app.bookedbarber.com". A zero timeout gets the default.
func NewClient(baseURL string, timeout time.Duration, log logrus.FieldLogger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

/*
Load resolves a cache key to an endpoint and fetches it.

Key routing:

	appointments:barber:<id>:<date> → GET /api/v2/appointments?barber_id=<id>&date=<date>
	appointments:<date>             → GET /api/v2/appointments?date=<date>
	staff:all                       → GET /api/v2/staff
	staff:<id>                      → GET /api/v2/staff/<id>
	analytics:summary:<range>       → GET /api/v2/analytics/summary?range=<range>
	api-response:<path>             → GET <path> (ad-hoc passthrough)
	ui-state:*                      → ErrNoUpstream (client-populated only)
*/
func (c *Client) Load(ctx context.Context, key string) ([]byte, error) {
	path, query, err := route(key)
	if err != nil {
		return nil, err
	}
	return c.get(ctx, path, query)
}

// Put is a no-op: the API is read-only from the cache's point of view.
func (c *Client) Put(context.Context, string, []byte) error { return nil }

func route(key string) (path string, query url.Values, err error) {
	category, rest, _ := strings.Cut(key, ":")
	switch types.Category(category) {
	case types.CategoryAppointments:
		if id, day, ok := strings.Cut(strings.TrimPrefix(rest, "barber:"), ":"); ok && strings.HasPrefix(rest, "barber:") {
			return "/api/v2/appointments", url.Values{"barber_id": {id}, "date": {day}}, nil
		}
		return "/api/v2/appointments", url.Values{"date": {rest}}, nil
	case types.CategoryStaff:
		if rest == "all" || rest == "" {
			return "/api/v2/staff", nil, nil
		}
		return "/api/v2/staff/" + url.PathEscape(rest), nil, nil
	case types.CategoryAnalytics:
		if r, ok := strings.CutPrefix(rest, "summary:"); ok {
			return "/api/v2/analytics/summary", url.Values{"range": {r}}, nil
		}
		return "", nil, fmt.Errorf("%w: %q", types.ErrNoUpstream, key)
	case types.CategoryUIState:
		return "", nil, fmt.Errorf("%w: %q", types.ErrNoUpstream, key)
	default:
		// api-response keys carry the request path verbatim.
		if strings.HasPrefix(rest, "/") {
			return rest, nil, nil
		}
		return "", nil, fmt.Errorf("%w: %q", types.ErrNoUpstream, key)
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", types.ErrNotFound, path)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetch %s: unexpected status %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: read body: %w", path, err)
	}
	return body, nil
}
