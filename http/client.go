// Package http provides HTTP client infrastructure for are.na interactions
// with built-in retry logic, rate limiting, and browser-like request headers.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/strangesongs/arena-dl/retry"
)

// Client wraps an HTTP client with retry logic and per-domain rate limiting.
type Client struct {
	base        *http.Client
	config      *Config
	rateLimiter *RateLimiter
}

// Config holds HTTP client configuration.
type Config struct {
	// Timeout for individual HTTP requests
	Timeout time.Duration

	// MaxRedirects bounds redirect chains for image fetches
	MaxRedirects int

	// Retry configuration for transient failures
	Retry retry.Config

	// Rate limiter configuration
	RateLimiter RateLimiterConfig

	// Connection pool configuration
	Transport TransportConfig
}

// TransportConfig configures the HTTP transport (connection pooling).
type TransportConfig struct {
	// MaxIdleConns is the maximum number of idle connections across all hosts.
	MaxIdleConns int

	// MaxIdleConnsPerHost is the maximum idle connections per host.
	MaxIdleConnsPerHost int

	// MaxConnsPerHost is the maximum concurrent connections per host.
	MaxConnsPerHost int

	// IdleConnTimeout is how long an idle connection remains open.
	IdleConnTimeout time.Duration

	// ForceAttemptHTTP2 forces HTTP/2 where the server allows it.
	ForceAttemptHTTP2 bool
}

// DefaultConfig returns sensible defaults for HTTP client configuration.
func DefaultConfig() *Config {
	return &Config{
		Timeout:      30 * time.Second,
		MaxRedirects: 10,
		Retry:        retry.DefaultConfig(),
		RateLimiter:  DefaultRateLimiterConfig(),
		Transport:    DefaultTransportConfig(),
	}
}

// DefaultTransportConfig returns sensible defaults for connection pooling.
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     20,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}
}

// New creates a new HTTP client with the given configuration.
func New(cfg *Config) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	transport := &http.Transport{
		MaxIdleConns:        cfg.Transport.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.Transport.MaxIdleConnsPerHost,
		MaxConnsPerHost:     cfg.Transport.MaxConnsPerHost,
		IdleConnTimeout:     cfg.Transport.IdleConnTimeout,
		ForceAttemptHTTP2:   cfg.Transport.ForceAttemptHTTP2,
	}

	maxRedirects := cfg.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = 10
	}

	base := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}

	return &Client{
		base:        base,
		config:      cfg,
		rateLimiter: NewRateLimiter(cfg.RateLimiter),
	}
}

// Response represents an HTTP response with status code and body.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Get performs a GET request with the given headers and retry logic.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	return c.do(ctx, http.MethodGet, url, headers, c.config.Retry)
}

// GetOnce performs a GET request without retries. Per-item image fetches are
// attempted once per run; the remedy for a failure is re-running the sync.
func (c *Client) GetOnce(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	return c.do(ctx, http.MethodGet, url, headers, retry.None())
}

func (c *Client) do(ctx context.Context, method, urlStr string, headers map[string]string, retryCfg retry.Config) (*Response, error) {
	if err := c.rateLimiter.Wait(ctx, urlStr); err != nil {
		return nil, err
	}

	var result *Response

	err := retry.Do(ctx, retryCfg, isRetryableHTTPError, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, method, urlStr, nil)
		if err != nil {
			return err
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		if req.Header.Get("User-Agent") == "" {
			req.Header.Set("User-Agent", defaultUserAgent)
		}

		resp, err := c.base.Do(req)
		if err != nil {
			return fmt.Errorf("http request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests ||
			resp.StatusCode == http.StatusServiceUnavailable {
			return &RateLimitError{
				StatusCode: resp.StatusCode,
				RetryAfter: parseRetryAfter(resp.Header),
			}
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			body, _ := io.ReadAll(resp.Body)
			return &HTTPError{StatusCode: resp.StatusCode, Body: body}
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response body: %w", err)
		}

		result = &Response{
			StatusCode: resp.StatusCode,
			Header:     resp.Header,
			Body:       body,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// isRetryableHTTPError retries rate limits and 5xx responses; other HTTP
// errors (404 and friends) are permanent.
func isRetryableHTTPError(err error) bool {
	if !retry.IsRetryable(err) {
		return false
	}
	if _, ok := err.(*RateLimitError); ok {
		return true
	}
	if httpErr, ok := err.(*HTTPError); ok {
		return httpErr.StatusCode >= 500
	}
	return true
}

// parseRetryAfter extracts the Retry-After header value.
// Returns zero if not present or unparseable.
func parseRetryAfter(header http.Header) time.Duration {
	retryAfter := header.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(retryAfter); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(retryAfter); err == nil {
		return time.Until(t)
	}
	return 0
}

// Close releases idle connections held by the client.
func (c *Client) Close() error {
	if c.base != nil {
		c.base.CloseIdleConnections()
	}
	return nil
}
