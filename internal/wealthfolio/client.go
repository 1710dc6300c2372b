package wealthfolio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds every upstream call when the caller does not choose one.
const DefaultTimeout = 30 * time.Second

// Observer receives the outcome of every upstream request. Status is zero
// when the request never produced an HTTP response.
type Observer interface {
	ObserveRequest(endpoint string, status int, elapsed time.Duration)
}

// Client is an HTTP client for the Wealthfolio REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	now        func() time.Time
	observer   Observer
}

// Option customizes a Client.
type Option func(*Client)

// WithClock sets the clock used to compute history date windows.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithObserver reports every request to o.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a new Wealthfolio API client. A non-positive timeout
// selects DefaultTimeout.
func NewClient(baseURL, apiKey string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get performs a GET request and returns the body of a 2xx response.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, int, error) {
	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(path, 0, start)
		return nil, 0, &TransportError{Path: path, Err: err}
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	c.observe(path, resp.StatusCode, start)
	if err != nil {
		return nil, resp.StatusCode, &TransportError{Path: path, Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, &UpstreamError{
			StatusCode: resp.StatusCode,
			Path:       path,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	return body, resp.StatusCode, nil
}

// getJSON performs a GET request and unmarshals the JSON response.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, dest any) error {
	body, status, err := c.get(ctx, path, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return &UpstreamError{
			StatusCode: status,
			Path:       path,
			Message:    fmt.Sprintf("parsing JSON: %v", err),
		}
	}
	return nil
}

func (c *Client) observe(path string, status int, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveRequest(path, status, time.Since(start))
	}
}

// repeated encodes values as a repeated array-style query key, e.g. accountIds[]=a&accountIds[]=b.
func repeated(key string, values []string) url.Values {
	params := url.Values{}
	for _, v := range values {
		params.Add(key+"[]", v)
	}
	return params
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
