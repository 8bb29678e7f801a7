// Package fetch provides the outbound HTTP client used for image
// verification. Requests are rate limited and carry a per-request timeout;
// a failed fetch is reported, never retried, since a retry would hide a
// real data-quality problem from the operator.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const userAgent = "CatalogValidator/1.0"

// maxBodyBytes bounds how much of a remote image is read. 20 MiB is far
// beyond any legitimate catalog image.
const maxBodyBytes = 20 << 20

// StatusError is returned for a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// Config controls client behavior.
type Config struct {
	// Timeout is the per-request ceiling. One unreachable host must not
	// stall a run.
	Timeout time.Duration
	// RequestsPerSecond throttles outbound fetches so the tool does not
	// hammer a CDN when a catalog references one host for every row.
	RequestsPerSecond int
}

// DefaultConfig returns the default fetch configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:           10 * time.Second,
		RequestsPerSecond: 8,
	}
}

// Client is a rate-limited HTTP client.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a client from config, filling in defaults for zero
// values.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultConfig().RequestsPerSecond
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.RequestsPerSecond),
	}
}

// GetBytes performs a rate-limited GET and returns the response body. A
// non-2xx status yields a *StatusError.
func (c *Client) GetBytes(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "*/*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return data, nil
}
