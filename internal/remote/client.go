package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"monitoring-console/internal/observability/metrics"
)

const defaultTimeout = 10 * time.Second

// Client talks to the monitoring REST backend.
type Client struct {
	baseURL  string
	token    string
	client   *http.Client
	cache    Cache
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient overrides the transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.client.Timeout = d
		}
	}
}

// WithToken sends a bearer token on every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithCache enables caching of dashboard summaries.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cache
		c.cacheTTL = ttl
	}
}

// WithLogger sets the client logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient constructs a backend client.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("remote: empty base url")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("remote: invalid base url: %w", err)
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultTimeout},
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

type request struct {
	route  string
	method string
	path   string
	query  url.Values
	body   any
}

// doJSON sends req and decodes the response into out. It reports false when
// the backend answered without a body (204 or empty payload).
func (c *Client) doJSON(ctx context.Context, req request, out any) (bool, error) {
	var reqBody io.Reader = bytes.NewReader(nil)
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return false, err
		}
		reqBody = bytes.NewReader(payload)
	}

	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, reqBody)
	if err != nil {
		return false, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		metrics.ObserveRemote(req.route, req.method, 0, time.Since(start))
		c.logger.Warn().Err(err).Str("route", req.route).Str("method", req.method).Msg("backend request failed")
		return false, fmt.Errorf("remote: %s %s: %w", req.method, req.path, err)
	}
	defer resp.Body.Close()
	metrics.ObserveRemote(req.route, req.method, resp.StatusCode, time.Since(start))

	if resp.StatusCode == http.StatusNotFound {
		return false, ErrNotFound
	}
	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, &StatusError{Method: req.method, Path: req.path, Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	if resp.StatusCode == http.StatusNoContent {
		return false, nil
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("remote: read %s: %w", req.path, err)
	}
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 {
		return false, nil
	}
	if out == nil {
		return true, nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return true, fmt.Errorf("%w: %s: %v", ErrDecode, req.path, err)
	}
	return true, nil
}

func query(params map[string]string) url.Values {
	if len(params) == 0 {
		return nil
	}
	values := url.Values{}
	for k, v := range params {
		if v == "" {
			continue
		}
		values.Set(k, v)
	}
	return values
}
