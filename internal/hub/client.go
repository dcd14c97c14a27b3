// Package hub is a small client for the Home Assistant REST API: entity state
// lookups and domain service calls.
package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tonhe/hometray/internal/metrics"
	"github.com/tonhe/hometray/internal/rgb"
)

// DefaultTimeout bounds every request so a stalled hub cannot hang a poller.
const DefaultTimeout = 10 * time.Second

const (
	// maxErrorBody caps how much of an error response is kept in StatusError.
	maxErrorBody = 512

	// maxResponseBody caps any response read from the hub. /api/states on a
	// large install is a few megabytes.
	maxResponseBody = 16 << 20
)

// Client talks to one Home Assistant instance.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// NewClient returns a client for apiURL, which should look like
// http://192.168.0.125:8123/api. A missing /api suffix is added.
func NewClient(apiURL, token string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(apiURL))
	if err != nil {
		return nil, fmt.Errorf("invalid api url %q: %w", apiURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api url %q: scheme must be http or https", apiURL)
	}
	base := strings.TrimRight(u.String(), "/")
	if !strings.HasSuffix(base, "/api") {
		base += "/api"
	}
	c := &Client{
		baseURL: base,
		token:   token,
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Ping checks that the API is reachable and the token is accepted.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, "ping", http.MethodGet, "/", nil)
	return err
}

// GetState fetches the current state of one entity.
func (c *Client) GetState(ctx context.Context, entityID string) (EntityState, error) {
	body, err := c.do(ctx, "get_state", http.MethodGet, "/states/"+url.PathEscape(entityID), nil)
	if err != nil {
		return EntityState{}, err
	}
	var st EntityState
	if err := json.Unmarshal(body, &st); err != nil {
		return EntityState{}, fmt.Errorf("%w: state of %s: %v", ErrMalformed, entityID, err)
	}
	if st.EntityID == "" {
		st.EntityID = entityID
	}
	return st, nil
}

// ListEntities returns every entity in domain, sorted by id. An empty domain
// returns all entities.
func (c *Client) ListEntities(ctx context.Context, domain string) ([]EntityState, error) {
	body, err := c.do(ctx, "list_states", http.MethodGet, "/states", nil)
	if err != nil {
		return nil, err
	}
	var all []EntityState
	if err := json.Unmarshal(body, &all); err != nil {
		return nil, fmt.Errorf("%w: states: %v", ErrMalformed, err)
	}
	prefix := domain + "."
	var out []EntityState
	for _, st := range all {
		if domain == "" || strings.HasPrefix(st.EntityID, prefix) {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntityID < out[j].EntityID })
	return out, nil
}

// CallService invokes domain.service for entityID with optional extra fields.
func (c *Client) CallService(ctx context.Context, domain, service, entityID string, params map[string]any) error {
	payload := map[string]any{"entity_id": entityID}
	for k, v := range params {
		payload[k] = v
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	path := "/services/" + url.PathEscape(domain) + "/" + url.PathEscape(service)
	_, err = c.do(ctx, domain+"."+service, http.MethodPost, path, data)
	return err
}

// Toggle flips an entity through the generic homeassistant domain.
func (c *Client) Toggle(ctx context.Context, entityID string) error {
	return c.CallService(ctx, "homeassistant", "toggle", entityID, nil)
}

// TurnOnColor turns an entity on with the given color.
func (c *Client) TurnOnColor(ctx context.Context, entityID string, col rgb.Color) error {
	return c.CallService(ctx, Domain(entityID), "turn_on", entityID, map[string]any{
		"rgb_color": col.Ints(),
	})
}

func (c *Client) do(ctx context.Context, op, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to create request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveHub(op, "error", time.Since(start))
		return nil, fmt.Errorf("%s: unable to make request: %w", op, err)
	}
	defer resp.Body.Close()
	metrics.ObserveHub(op, strconv.Itoa(resp.StatusCode), time.Since(start))

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody+1))
	if err != nil {
		return nil, fmt.Errorf("%s: unable to read response body: %w", op, err)
	}
	if len(respBody) > maxResponseBody {
		return nil, fmt.Errorf("%s: response body exceeds %d bytes: %w", op, maxResponseBody, ErrMalformed)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound && op == "get_state":
		return nil, ErrEntityNotFound
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		msg := string(respBody)
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return nil, &StatusError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(msg)}
	}
	return respBody, nil
}
